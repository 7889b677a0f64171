package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Interaction is one answered chat message, kept for analytics only.
type Interaction struct {
	ID             string
	Message        string
	Response       string
	Category       string
	Source         string
	Rule           string
	FallbackReason string
	CreatedAt      time.Time
}

// InteractionRecorder persists answered messages.
type InteractionRecorder interface {
	Record(ctx context.Context, in Interaction) error
}

// stamp fills the ID and timestamp when the caller left them empty.
func stamp(in Interaction) Interaction {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	return in
}
