package chat

import (
	"context"

	"github.com/AmeyaShriwas/chatappbackend/internal/identity"
)

// Store is the durable conversation log. Implemented by PostgresStore and
// SQLiteStore; tests use in-memory fakes.
//
// CreateIfAbsent and AppendMessage must be atomic: two first-time senders
// racing on the same pair end up with one conversation, and two concurrent
// appends to the same log both land, in commit order.
type Store interface {
	// FindByKey returns the conversation for a canonical key, or nil when
	// no record exists. A nil conversation with nil error is not an error.
	FindByKey(ctx context.Context, key string) (*Conversation, error)

	// CreateIfAbsent inserts the conversation for the pair unless one
	// already exists, then returns the surviving record. Losing a creation
	// race is resolved internally by re-reading, never surfaced.
	CreateIfAbsent(ctx context.Context, p identity.Pair) (*Conversation, error)

	// AppendMessage appends one message to the conversation's log as a
	// single atomic write. Returns ErrNoConversation if the key has no
	// record. Never partially writes.
	AppendMessage(ctx context.Context, key string, m *Message) error

	// History returns the full log in commit order. Returns
	// ErrNoConversation when the pair has no record (distinct from an
	// existing conversation with no messages).
	History(ctx context.Context, key string) ([]Message, error)

	Ping(ctx context.Context) error
	Close() error
}
