package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// The users table belongs to the identity store; these handlers only read
// it, registration and password flows live elsewhere.

type loginReq struct{ Email, Password string }

func HandleLogin(db *sqlx.DB, jwt *JWT, w http.ResponseWriter, r *http.Request) error {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil { return err }
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	var (
		id string
		ph string
	)
	err := db.QueryRowx(db.Rebind(`SELECT id, password_hash FROM users WHERE email=?`), req.Email).Scan(&id, &ph)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) { http.Error(w, "invalid credentials", http.StatusUnauthorized); return nil }
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(ph), []byte(req.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return nil
	}
	tok, err := jwt.Sign(id, req.Email, 24*time.Hour)
	if err != nil { return err }

	resp := map[string]any{"token": tok, "user": map[string]any{"id": id, "email": req.Email}}
	return json.NewEncoder(w).Encode(resp)
}

func HandleMe(db *sqlx.DB, claims *Claims, w http.ResponseWriter, r *http.Request) error {
	var createdAt time.Time
	err := db.QueryRowx(db.Rebind(`SELECT created_at FROM users WHERE id=?`), claims.UserID).Scan(&createdAt)
	if err != nil { return err }
	resp := map[string]any{"id": claims.UserID, "email": claims.Email, "created_at": createdAt}
	return json.NewEncoder(w).Encode(resp)
}
