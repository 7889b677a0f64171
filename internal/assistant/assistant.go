package assistant

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"iam-assistant-backend/internal/config"
	"iam-assistant-backend/internal/inference"
)

// ApologyReply is sent when a request carries no usable message.
const ApologyReply = "I'm sorry, I couldn't read your message. Could you please try sending it again?"

type Answer struct {
	Text           string
	Category       Category
	Source         Source
	Rule           string
	FallbackReason string
}

// Apology is the answer for requests without a usable message.
func Apology() Answer {
	return Answer{Text: ApologyReply, Category: CategoryWarning, Source: SourceLocal, Rule: "apology"}
}

type Assistant struct {
	rules     *Ruleset
	responder *Responder
}

func New(rules *Ruleset, responder *Responder) *Assistant {
	return &Assistant{rules: rules, responder: responder}
}

// FromConfig loads the configured rules and, for the remote strategy, the
// configured generator.
func FromConfig(cfg config.Config, logger *zap.Logger) (*Assistant, error) {
	rules, err := LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	var gen inference.Generator
	if cfg.RemoteEnabled() {
		gen, err = inference.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create generator: %w", err)
		}
	}
	responder := NewResponder(rules, gen, ResponderOptions{
		AssistantName: cfg.AssistantName,
		Timeout:       cfg.InferenceTimeout,
		Logger:        logger,
	})
	return New(rules, responder), nil
}

func (a *Assistant) Strategy() string {
	if a.responder.Remote() {
		return config.StrategyRemote
	}
	return config.StrategyLocal
}

// Answer runs the responder and the categorizer on the same message.
func (a *Assistant) Answer(ctx context.Context, message string) Answer {
	out := a.responder.Respond(ctx, message)
	return Answer{
		Text:           out.Text,
		Category:       a.rules.Categorize(message),
		Source:         out.Source,
		Rule:           out.Rule,
		FallbackReason: out.FallbackReason,
	}
}
