package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/AmeyaShriwas/chatappbackend/internal/identity"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()
	st, err := NewSQLiteStore(ctx, ":memory:")
	require.NoError(t, err)
	// A pooled second connection would see its own empty :memory: database.
	st.DB().SetMaxOpenConns(1)
	require.NoError(t, st.EnsureSchema(ctx))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func testPair(t *testing.T) identity.Pair {
	t.Helper()
	p, err := identity.Canonical(hexID('a'), hexID('b'))
	require.NoError(t, err)
	return p
}

func TestSQLiteCreateIfAbsent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	p := testPair(t)

	c1, err := st.CreateIfAbsent(ctx, p)
	require.NoError(t, err)
	require.Equal(t, p.Key(), c1.Key)
	require.Equal(t, p.A, c1.ParticipantA)
	require.Equal(t, p.B, c1.ParticipantB)

	// Second create for the same pair keeps the first record.
	c2, err := st.CreateIfAbsent(ctx, p)
	require.NoError(t, err)
	require.Equal(t, c1.ID, c2.ID)

	got, err := st.FindByKey(ctx, p.Key())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, c1.ID, got.ID)
}

func TestSQLiteFindAbsent(t *testing.T) {
	st := newTestStore(t)
	got, err := st.FindByKey(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSQLiteAppendOrderEqualsHistoryOrder(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	p := testPair(t)

	_, err := st.CreateIfAbsent(ctx, p)
	require.NoError(t, err)

	// Identical timestamps on purpose: the log order must come from the
	// store's append order, not from timestamps or ids.
	now := time.Now().UTC().Truncate(time.Second)
	const n = 25
	for i := 0; i < n; i++ {
		sender, receiver := p.A, p.B
		if i%2 == 1 { sender, receiver = p.B, p.A }
		err := st.AppendMessage(ctx, p.Key(), &Message{
			ID:         ulid.Make().String(),
			SenderID:   sender,
			ReceiverID: receiver,
			Body:       fmt.Sprintf("msg-%d", i),
			CreatedAt:  now,
		})
		require.NoError(t, err)
	}

	msgs, err := st.History(ctx, p.Key())
	require.NoError(t, err)
	require.Len(t, msgs, n)
	for i, m := range msgs {
		require.Equal(t, fmt.Sprintf("msg-%d", i), m.Body)
	}
}

func TestSQLiteAppendUnknownKey(t *testing.T) {
	st := newTestStore(t)
	err := st.AppendMessage(context.Background(), "missing", &Message{
		ID: ulid.Make().String(), SenderID: hexID('a'), ReceiverID: hexID('b'),
		Body: "hello", CreatedAt: time.Now().UTC(),
	})
	require.ErrorIs(t, err, ErrNoConversation)
}

func TestSQLiteHistoryUnknownKey(t *testing.T) {
	st := newTestStore(t)
	_, err := st.History(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNoConversation)
}

func TestSQLiteEmptyConversationHistory(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	p := testPair(t)

	_, err := st.CreateIfAbsent(ctx, p)
	require.NoError(t, err)

	msgs, err := st.History(ctx, p.Key())
	require.NoError(t, err)
	require.Empty(t, msgs)
}
