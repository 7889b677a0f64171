package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"iam-assistant-backend/internal/inference"
)

const (
	// Generated replies shorter than this are discarded in favour of the local reply.
	minRemoteReplyLength = 10
	defaultRemoteTimeout = 8 * time.Second
	defaultAssistantName = "AI IAM Assistant"
)

var ErrOutputTooShort = errors.New("generated reply too short")

type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// Outcome is the reply text and where it came from.
type Outcome struct {
	Text   string
	Source Source
	// Rule is the local rule that produced Text; empty for remote replies.
	Rule string
	// FallbackReason explains why a remote attempt was abandoned.
	FallbackReason string
}

type ResponderOptions struct {
	AssistantName string
	Timeout       time.Duration
	Logger        *zap.Logger
}

// Responder produces reply text. With a nil generator it only uses the local
// rules; otherwise it tries the generator once and falls back to the local
// rules on any failure.
type Responder struct {
	rules         *Ruleset
	generator     inference.Generator
	assistantName string
	timeout       time.Duration
	logger        *zap.Logger
}

func NewResponder(rules *Ruleset, generator inference.Generator, opts ResponderOptions) *Responder {
	r := &Responder{
		rules:         rules,
		generator:     generator,
		assistantName: opts.AssistantName,
		timeout:       opts.Timeout,
		logger:        opts.Logger,
	}
	if r.assistantName == "" {
		r.assistantName = defaultAssistantName
	}
	if r.timeout <= 0 {
		r.timeout = defaultRemoteTimeout
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// Remote reports whether replies are first attempted through the generator.
func (r *Responder) Remote() bool {
	return r.generator != nil
}

func (r *Responder) Prompt(message string) string {
	return "User: " + message + "\n" + r.assistantName + ":"
}

// Respond always yields text.
func (r *Responder) Respond(ctx context.Context, message string) Outcome {
	if r.generator == nil {
		return r.local(message, "")
	}
	text, err := r.remote(ctx, message)
	if err != nil {
		r.logger.Warn("remote generation failed, using local reply",
			zap.Error(err),
			zap.Int("message_length", len(message)))
		return r.local(message, err.Error())
	}
	return Outcome{Text: text, Source: SourceRemote}
}

func (r *Responder) local(message, reason string) Outcome {
	m := r.rules.Reply(message)
	return Outcome{Text: m.Text, Source: SourceLocal, Rule: m.Rule, FallbackReason: reason}
}

func (r *Responder) remote(ctx context.Context, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	prompt := r.Prompt(message)
	raw, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(strings.TrimPrefix(raw, prompt))
	if n := utf8.RuneCountInString(text); n < minRemoteReplyLength {
		return "", fmt.Errorf("%w: %d characters", ErrOutputTooShort, n)
	}
	return text, nil
}
