package ws

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/AmeyaShriwas/chatappbackend/internal/chat"
	"github.com/AmeyaShriwas/chatappbackend/internal/identity"
)

func hexID(c byte) string { return strings.Repeat(string(c), 24) }

// fakeStore implements chat.Store in memory, with switches to simulate a
// failing or slow backend.
type fakeStore struct {
	mu         sync.Mutex
	convs      map[string]*chat.Conversation
	logs       map[string][]chat.Message
	failAppend bool
	failRead   bool
}

var errStoreDown = context.DeadlineExceeded

func newFakeStore() *fakeStore {
	return &fakeStore{convs: make(map[string]*chat.Conversation), logs: make(map[string][]chat.Message)}
}

func (s *fakeStore) FindByKey(_ context.Context, key string) (*chat.Conversation, error) {
	s.mu.Lock(); defer s.mu.Unlock()
	if s.failRead { return nil, errStoreDown }
	c, ok := s.convs[key]
	if !ok { return nil, nil }
	cp := *c
	return &cp, nil
}

func (s *fakeStore) CreateIfAbsent(_ context.Context, p identity.Pair) (*chat.Conversation, error) {
	s.mu.Lock(); defer s.mu.Unlock()
	if s.failRead { return nil, errStoreDown }
	if c, ok := s.convs[p.Key()]; ok {
		cp := *c
		return &cp, nil
	}
	c := &chat.Conversation{ID: uuid.NewString(), Key: p.Key(), ParticipantA: p.A, ParticipantB: p.B, CreatedAt: time.Now().UTC()}
	s.convs[p.Key()] = c
	cp := *c
	return &cp, nil
}

func (s *fakeStore) AppendMessage(_ context.Context, key string, m *chat.Message) error {
	s.mu.Lock(); defer s.mu.Unlock()
	if s.failAppend { return errStoreDown }
	if _, ok := s.convs[key]; !ok { return chat.ErrNoConversation }
	s.logs[key] = append(s.logs[key], *m)
	return nil
}

func (s *fakeStore) History(_ context.Context, key string) ([]chat.Message, error) {
	s.mu.Lock(); defer s.mu.Unlock()
	if s.failRead { return nil, errStoreDown }
	if _, ok := s.convs[key]; !ok { return nil, chat.ErrNoConversation }
	return append([]chat.Message(nil), s.logs[key]...), nil
}

func (s *fakeStore) messageCount(key string) int {
	s.mu.Lock(); defer s.mu.Unlock()
	return len(s.logs[key])
}

func (s *fakeStore) Ping(context.Context) error { return nil }
func (s *fakeStore) Close() error               { return nil }

func newTestRelay(st *fakeStore) *Relay {
	hub := NewHub(zerolog.Nop())
	return NewRelay(zerolog.Nop(), st, hub, nil, time.Second)
}

// testClient builds a client without a transport; tests drive the relay
// directly and read server events off the send buffer.
func testClient(r *Relay, userID string) *Client {
	return newClient(r, nil, userID)
}

func event(t *testing.T, typ string, fields map[string]any) []byte {
	t.Helper()
	m := map[string]any{"type": typ}
	for k, v := range fields { m[k] = v }
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return b
}

func joinEvent(t *testing.T, a, b string) []byte {
	return event(t, "join", map[string]any{"participantA": a, "participantB": b})
}

func sendEvent(t *testing.T, a, b, body string) []byte {
	return event(t, "send", map[string]any{"participantA": a, "participantB": b, "body": body})
}

func recvEvent(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case raw := <-c.send:
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		return m
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return nil
	}
}

func requireNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("unexpected event: %s", raw)
	default:
	}
}
