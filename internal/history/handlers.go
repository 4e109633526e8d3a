package history

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/AmeyaShriwas/chatappbackend/internal/chat"
	"github.com/AmeyaShriwas/chatappbackend/internal/httputil"
	"github.com/AmeyaShriwas/chatappbackend/internal/identity"
	"github.com/AmeyaShriwas/chatappbackend/internal/metrics"
)

type response struct {
	ConversationID string         `json:"conversationId,omitempty"`
	Messages       []chat.Message `json:"messages"`
}

// HandleGet returns the full ordered log for a pair. Read-only: a pair with
// no conversation gets an empty result, never a lazily created record.
func HandleGet(st chat.Store, timeout time.Duration, w http.ResponseWriter, r *http.Request) error {
	a := r.URL.Query().Get("user_a")
	b := r.URL.Query().Get("user_b")
	p, err := identity.Canonical(a, b)
	if err != nil { return err }

	claims := httputil.ClaimsFrom(r.Context())
	if claims == nil || !p.Contains(claims.UserID) {
		return identity.ErrNotParticipant
	}

	metrics.HistoryQueries.Inc()
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	c, err := st.FindByKey(ctx, p.Key())
	if err != nil { return err }
	if c == nil {
		return json.NewEncoder(w).Encode(response{Messages: []chat.Message{}})
	}
	msgs, err := st.History(ctx, p.Key())
	if err != nil { return err }
	return json.NewEncoder(w).Encode(response{ConversationID: c.ID, Messages: msgs})
}
