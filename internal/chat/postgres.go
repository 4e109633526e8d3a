package chat

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/AmeyaShriwas/chatappbackend/internal/identity"
)

// seq carries commit order; it is never exposed outside the store.
const pgSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT UNIQUE NOT NULL,
	name          TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS conversations (
	id            UUID PRIMARY KEY,
	key           TEXT UNIQUE NOT NULL,
	participant_a TEXT NOT NULL,
	participant_b TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	seq             BIGSERIAL PRIMARY KEY,
	id              TEXT NOT NULL,
	conversation_id UUID NOT NULL REFERENCES conversations(id),
	sender_id       TEXT NOT NULL,
	receiver_id     TEXT NOT NULL,
	body            TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS messages_conversation_seq ON messages(conversation_id, seq);
`

type PostgresStore struct{ db *sqlx.DB }

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil { return nil, err }
	if err := db.PingContext(ctx); err != nil { _ = db.Close(); return nil, err }
	return &PostgresStore{db: db}, nil
}

// DB exposes the underlying handle for collaborators that read the users
// table (auth). The chat core itself only goes through the Store interface.
func (s *PostgresStore) DB() *sqlx.DB { return s.db }

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	// One statement per Exec; the pgx driver rejects multi-statement strings.
	for _, stmt := range strings.Split(pgSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" { continue }
		if _, err := s.db.ExecContext(ctx, stmt); err != nil { return err }
	}
	return nil
}

func (s *PostgresStore) FindByKey(ctx context.Context, key string) (*Conversation, error) {
	var c Conversation
	err := s.db.GetContext(ctx, &c, `SELECT id, key, participant_a, participant_b, created_at
		FROM conversations WHERE key=$1`, key)
	if errors.Is(err, sql.ErrNoRows) { return nil, nil }
	if err != nil { return nil, err }
	return &c, nil
}

func (s *PostgresStore) CreateIfAbsent(ctx context.Context, p identity.Pair) (*Conversation, error) {
	_, err := s.db.ExecContext(ctx, `INSERT INTO conversations(id, key, participant_a, participant_b, created_at)
		VALUES($1,$2,$3,$4,$5) ON CONFLICT (key) DO NOTHING`,
		uuid.NewString(), p.Key(), p.A, p.B, time.Now().UTC())
	if err != nil { return nil, err }
	// Either our row or the concurrent winner's; the re-read settles it.
	c, err := s.FindByKey(ctx, p.Key())
	if err != nil { return nil, err }
	if c == nil { return nil, errors.New("conversation missing after upsert") }
	return c, nil
}

func (s *PostgresStore) AppendMessage(ctx context.Context, key string, m *Message) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO messages(id, conversation_id, sender_id, receiver_id, body, created_at)
		SELECT $1, c.id, $2, $3, $4, $5 FROM conversations c WHERE c.key=$6`,
		m.ID, m.SenderID, m.ReceiverID, m.Body, m.CreatedAt, key)
	if err != nil { return err }
	n, err := res.RowsAffected()
	if err != nil { return err }
	if n == 0 { return ErrNoConversation }
	return nil
}

func (s *PostgresStore) History(ctx context.Context, key string) ([]Message, error) {
	c, err := s.FindByKey(ctx, key)
	if err != nil { return nil, err }
	if c == nil { return nil, ErrNoConversation }
	msgs := []Message{}
	err = s.db.SelectContext(ctx, &msgs, `SELECT id, sender_id, receiver_id, body, created_at
		FROM messages WHERE conversation_id=$1 ORDER BY seq ASC`, c.ID)
	if err != nil { return nil, err }
	return msgs, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *PostgresStore) Close() error { return s.db.Close() }
