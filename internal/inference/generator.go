// Package inference talks to the remote text-generation services used to
// augment assistant replies.
package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"iam-assistant-backend/internal/config"
	"iam-assistant-backend/internal/store"
)

// ErrUnexpectedResponse is returned when the service answers 2xx with a body
// that does not carry any generation candidates.
var ErrUnexpectedResponse = errors.New("unexpected inference response")

// Generator produces free text for a prompt. Implementations return the raw
// text of the first candidate; post-processing is left to the caller.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Params are passed to the service unmodified.
type Params struct {
	MaxNewTokens      int
	Temperature       float64
	DoSample          bool
	TopP              float64
	RepetitionPenalty float64
}

func ParamsFromConfig(g config.Generation) Params {
	return Params{
		MaxNewTokens:      g.MaxNewTokens,
		Temperature:       g.Temperature,
		DoSample:          g.DoSample,
		TopP:              g.TopP,
		RepetitionPenalty: g.RepetitionPenalty,
	}
}

// StatusError reports a non-2xx answer from the service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("inference service returned status %d", e.Code)
	}
	return fmt.Sprintf("inference service returned status %d: %s", e.Code, e.Body)
}

// New builds the generator selected by cfg.Provider.
func New(cfg config.Config) (Generator, error) {
	params := ParamsFromConfig(cfg.Generation)
	switch cfg.Provider {
	case config.ProviderHuggingFace, "":
		token := cfg.InferenceToken
		if token == "" {
			tok, err := store.NewFileTokenStore(cfg.InferenceTokenFile).Read()
			if err != nil {
				return nil, fmt.Errorf("failed to read inference token file: %w", err)
			}
			if tok != nil {
				token = tok.AccessToken
			}
		}
		return NewHuggingFace(cfg.InferenceURL, params, newHTTPClient(cfg, token)), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, params, newHTTPClient(cfg, "")), nil
	default:
		return nil, fmt.Errorf("unknown inference provider %q", cfg.Provider)
	}
}

// newHTTPClient returns a client bounded by the inference timeout. A non-empty
// token is attached as a bearer credential on every request.
func newHTTPClient(cfg config.Config, token string) *http.Client {
	base := &http.Client{Timeout: cfg.InferenceTimeout}
	if token == "" {
		return base
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	client.Timeout = cfg.InferenceTimeout
	return client
}
