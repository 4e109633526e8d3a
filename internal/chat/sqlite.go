package chat

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/AmeyaShriwas/chatappbackend/internal/identity"
)

// SQLiteStore backs single-node and development deployments; same contract
// as PostgresStore. ROWID order carries commit order.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT UNIQUE NOT NULL,
	name          TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS conversations (
	id            TEXT PRIMARY KEY,
	key           TEXT UNIQUE NOT NULL,
	participant_a TEXT NOT NULL,
	participant_b TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	id              TEXT NOT NULL,
	conversation_id TEXT NOT NULL REFERENCES conversations(id),
	sender_id       TEXT NOT NULL,
	receiver_id     TEXT NOT NULL,
	body            TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS messages_conversation_seq ON messages(conversation_id, seq);
`

type SQLiteStore struct{ db *sqlx.DB }

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	// Serialized writes; the driver queues concurrent appends instead of
	// returning SQLITE_BUSY for the common case.
	db, err := sqlx.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil { return nil, err }
	if err := db.PingContext(ctx); err != nil { _ = db.Close(); return nil, err }
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) DB() *sqlx.DB { return s.db }

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(sqliteSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" { continue }
		if _, err := s.db.ExecContext(ctx, stmt); err != nil { return err }
	}
	return nil
}

func (s *SQLiteStore) FindByKey(ctx context.Context, key string) (*Conversation, error) {
	var c Conversation
	err := s.db.GetContext(ctx, &c, `SELECT id, key, participant_a, participant_b, created_at
		FROM conversations WHERE key=?`, key)
	if errors.Is(err, sql.ErrNoRows) { return nil, nil }
	if err != nil { return nil, err }
	return &c, nil
}

func (s *SQLiteStore) CreateIfAbsent(ctx context.Context, p identity.Pair) (*Conversation, error) {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO conversations(id, key, participant_a, participant_b, created_at)
		VALUES(?,?,?,?,?)`,
		uuid.NewString(), p.Key(), p.A, p.B, time.Now().UTC())
	if err != nil { return nil, err }
	c, err := s.FindByKey(ctx, p.Key())
	if err != nil { return nil, err }
	if c == nil { return nil, errors.New("conversation missing after upsert") }
	return c, nil
}

func (s *SQLiteStore) AppendMessage(ctx context.Context, key string, m *Message) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO messages(id, conversation_id, sender_id, receiver_id, body, created_at)
		SELECT ?, c.id, ?, ?, ?, ? FROM conversations c WHERE c.key=?`,
		m.ID, m.SenderID, m.ReceiverID, m.Body, m.CreatedAt, key)
	if err != nil { return err }
	n, err := res.RowsAffected()
	if err != nil { return err }
	if n == 0 { return ErrNoConversation }
	return nil
}

func (s *SQLiteStore) History(ctx context.Context, key string) ([]Message, error) {
	c, err := s.FindByKey(ctx, key)
	if err != nil { return nil, err }
	if c == nil { return nil, ErrNoConversation }
	msgs := []Message{}
	err = s.db.SelectContext(ctx, &msgs, `SELECT id, sender_id, receiver_id, body, created_at
		FROM messages WHERE conversation_id=? ORDER BY seq ASC`, c.ID)
	if err != nil { return nil, err }
	return msgs, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteStore) Close() error { return s.db.Close() }
