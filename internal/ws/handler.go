package ws

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/AmeyaShriwas/chatappbackend/internal/auth"
	"github.com/AmeyaShriwas/chatappbackend/internal/identity"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser origin policy is enforced at the CORS layer; agents and
		// mobile clients send no Origin at all.
		return true
	},
}

// Handle authenticates the handshake and hands the connection to its pumps.
// The token rides the query string because browsers cannot set headers on a
// websocket upgrade.
func Handle(relay *Relay, jwtAuth *auth.JWT, w http.ResponseWriter, r *http.Request) {
	tok := r.URL.Query().Get("token")
	claims, err := jwtAuth.Parse(tok)
	if err != nil { http.Error(w, "invalid token", http.StatusUnauthorized); return }
	if err := identity.Validate(claims.UserID); err != nil {
		http.Error(w, "invalid identity", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil { return }

	c := newClient(relay, conn, claims.UserID)
	relay.connected(c)
	go c.writePump()
	go c.readPump()
}
