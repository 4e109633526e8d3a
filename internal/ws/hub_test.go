package ws

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHubJoinIdempotent(t *testing.T) {
	r := newTestRelay(newFakeStore())
	c := testClient(r, hexID('a'))

	r.hub.Join("k", c)
	r.hub.Join("k", c)
	require.Equal(t, 1, r.hub.subscribers("k"))
}

func TestHubLastLeaveRemovesRoom(t *testing.T) {
	r := newTestRelay(newFakeStore())
	c1 := testClient(r, hexID('a'))
	c2 := testClient(r, hexID('b'))

	r.hub.Join("k", c1)
	r.hub.Join("k", c2)
	require.True(t, r.hub.hasRoom("k"))

	r.hub.Leave("k", c1)
	require.True(t, r.hub.hasRoom("k"))
	r.hub.Leave("k", c2)
	require.False(t, r.hub.hasRoom("k"))

	// Leaving a room that no longer exists must not blow up.
	r.hub.Leave("k", c2)
}

func TestHubBroadcastOrderPerSubscriber(t *testing.T) {
	r := newTestRelay(newFakeStore())
	c1 := testClient(r, hexID('a'))
	c2 := testClient(r, hexID('b'))
	r.hub.Join("k", c1)
	r.hub.Join("k", c2)

	const n = 50
	for i := 0; i < n; i++ {
		r.hub.Broadcast("k", map[string]any{"seq": i})
	}

	for _, c := range []*Client{c1, c2} {
		for i := 0; i < n; i++ {
			var m map[string]any
			require.NoError(t, json.Unmarshal(<-c.send, &m))
			require.Equal(t, float64(i), m["seq"])
		}
	}
}

func TestHubBroadcastSkipsOtherRooms(t *testing.T) {
	r := newTestRelay(newFakeStore())
	c1 := testClient(r, hexID('a'))
	c2 := testClient(r, hexID('b'))
	r.hub.Join("k1", c1)
	r.hub.Join("k2", c2)

	r.hub.Broadcast("k1", map[string]any{"x": 1})
	require.Len(t, c1.send, 1)
	requireNoEvent(t, c2)
}

func TestHubBroadcastDropsStalledClient(t *testing.T) {
	r := newTestRelay(newFakeStore())
	stalled := testClient(r, hexID('a'))
	healthy := testClient(r, hexID('b'))
	r.hub.Join("k", stalled)
	stalled.track("k")
	r.hub.Join("k", healthy)
	healthy.track("k")

	// Saturate the stalled client's buffer.
	for i := 0; i < cap(stalled.send); i++ {
		require.True(t, stalled.enqueue([]byte("x")))
	}

	for i := 0; i < 5; i++ {
		r.hub.Broadcast("k", map[string]any{"i": i})
	}

	// The healthy subscriber got everything.
	require.Len(t, healthy.send, 5)

	// The stalled one is eventually closed and evicted from the room.
	require.Eventually(t, func() bool {
		return r.hub.subscribers("k") == 1
	}, time.Second, 5*time.Millisecond)
	requireClosed(t, stalled)
}

func requireClosed(t *testing.T, c *Client) {
	t.Helper()
	c.mu.Lock(); defer c.mu.Unlock()
	require.True(t, c.closed, fmt.Sprintf("client %s not closed", c.userID))
}
