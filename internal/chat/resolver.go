package chat

import (
	"context"

	"github.com/AmeyaShriwas/chatappbackend/internal/identity"
)

// Resolver maps a participant pair to its durable conversation, creating the
// record lazily on first contact.
type Resolver struct{ st Store }

func NewResolver(st Store) *Resolver { return &Resolver{st: st} }

// Resolve canonicalizes the pair and loads-or-creates its conversation.
// Fails only on malformed ids, self-pairs or store trouble; a concurrent
// first contact from both sides yields the same single record for both
// callers (the store's upsert settles the race).
func (r *Resolver) Resolve(ctx context.Context, a, b string) (*Conversation, error) {
	p, err := identity.Canonical(a, b)
	if err != nil { return nil, err }
	c, err := r.st.FindByKey(ctx, p.Key())
	if err != nil { return nil, err }
	if c != nil { return c, nil }
	return r.st.CreateIfAbsent(ctx, p)
}
