package presence

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AmeyaShriwas/chatappbackend/internal/identity"
)

func HandleGet(t *Tracker, w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	if err := identity.Validate(id); err != nil { return err }
	online, lastSeen, err := t.Get(r.Context(), id)
	if err != nil { return err }
	resp := map[string]any{"id": id, "online": online}
	if !lastSeen.IsZero() { resp["last_seen"] = lastSeen }
	return json.NewEncoder(w).Encode(resp)
}
