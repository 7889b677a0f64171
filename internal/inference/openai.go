package inference

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI sends the prompt through an OpenAI-compatible completions API.
type OpenAI struct {
	client *openai.Client
	model  string
	params Params
}

func NewOpenAI(apiKey, baseURL, model string, params Params, httpClient *http.Client) *OpenAI {
	cc := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cc.BaseURL = baseURL
	}
	if httpClient != nil {
		cc.HTTPClient = httpClient
	}
	return &OpenAI{client: openai.NewClientWithConfig(cc), model: model, params: params}
}

func (c *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:            c.model,
		Prompt:           prompt,
		MaxTokens:        c.params.MaxNewTokens,
		Temperature:      float32(c.params.Temperature),
		TopP:             float32(c.params.TopP),
		FrequencyPenalty: float32(frequencyPenalty(c.params.RepetitionPenalty)),
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrUnexpectedResponse)
	}
	return resp.Choices[0].Text, nil
}

// frequencyPenalty maps a multiplicative repetition penalty (1 = neutral) onto
// the additive [-2, 2] range of the completions API.
func frequencyPenalty(repetition float64) float64 {
	if repetition == 0 {
		return 0
	}
	p := repetition - 1
	if p > 2 {
		return 2
	}
	if p < -2 {
		return -2
	}
	return p
}
