package session

import (
	"context"

	"voyago/models"
)

// Store persists conversation state between turns. Implementations must treat
// the state as a single JSON document: one read at the start of a turn, one
// write at the end.
type Store interface {
	// Get loads a conversation. A missing or expired conversation returns
	// ErrNotFound so the caller can start a fresh one.
	Get(ctx context.Context, id string) (*models.ConversationState, error)
	// Save writes the state back and refreshes its TTL.
	Save(ctx context.Context, state *models.ConversationState) error
	// Delete resets a conversation. Deleting a missing conversation is not
	// an error.
	Delete(ctx context.Context, id string) error
}
