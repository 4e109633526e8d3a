package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/AmeyaShriwas/chatappbackend/internal/chat"
	"github.com/AmeyaShriwas/chatappbackend/internal/identity"
	"github.com/AmeyaShriwas/chatappbackend/internal/metrics"
	"github.com/AmeyaShriwas/chatappbackend/internal/presence"
)

// Client -> server events.
type clientEvent struct {
	Type         string `json:"type"`
	ParticipantA string `json:"participantA"`
	ParticipantB string `json:"participantB"`
	Body         string `json:"body"`
}

// Server -> client events.
type messageEvent struct {
	Type       string    `json:"type"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Body       string    `json:"body"`
	Timestamp  time.Time `json:"timestamp"`
}

type historyEvent struct {
	Type     string         `json:"type"`
	Messages []chat.Message `json:"messages"`
}

type errorEvent struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// Relay is the session manager: it owns the join/send paths for every live
// connection and guarantees that a message is persisted before any
// subscriber sees it. Append+broadcast for one conversation key is a single
// critical section; unrelated keys proceed in parallel.
type Relay struct {
	log      zerolog.Logger
	st       chat.Store
	resolver *chat.Resolver
	hub      *Hub
	presence *presence.Tracker
	timeout  time.Duration
	keys     *keyedMutex
}

func NewRelay(log zerolog.Logger, st chat.Store, hub *Hub, pr *presence.Tracker, timeout time.Duration) *Relay {
	return &Relay{
		log:      log,
		st:       st,
		resolver: chat.NewResolver(st),
		hub:      hub,
		presence: pr,
		timeout:  timeout,
		keys:     newKeyedMutex(),
	}
}

func (r *Relay) connected(c *Client) {
	metrics.WSConnections.Inc()
	r.markPresence(c.userID, true)
}

func (r *Relay) disconnected(c *Client) {
	metrics.WSConnections.Dec()
	r.markPresence(c.userID, false)
}

func (r *Relay) markPresence(userID string, online bool) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	var err error
	if online {
		err = r.presence.SetOnline(ctx, userID)
	} else {
		err = r.presence.SetOffline(ctx, userID)
	}
	if err != nil { r.log.Warn().Err(err).Str("user", userID).Msg("presence update failed") }
}

func (r *Relay) handle(c *Client, raw []byte) {
	var ev clientEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		c.sendError("malformed event")
		return
	}
	switch ev.Type {
	case "join":
		r.join(c, ev.ParticipantA, ev.ParticipantB)
	case "send":
		r.send(c, ev.ParticipantA, ev.ParticipantB, ev.Body)
	default:
		c.sendError("unknown event type")
	}
}

// join resolves the conversation (creating it on first contact), subscribes
// the connection and replays full history to the joiner only. History read
// and subscription happen under the key lock so the replay plus subsequent
// broadcasts cover the log exactly once, with no gap and no duplicate.
func (r *Relay) join(c *Client, a, b string) {
	p, err := identity.Canonical(a, b)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if !p.Contains(c.userID) {
		c.sendError(identity.ErrNotParticipant.Error())
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if _, err := r.resolver.Resolve(ctx, p.A, p.B); err != nil {
		metrics.StoreErrors.WithLabelValues("resolve").Inc()
		r.log.Error().Err(err).Str("key", p.Key()).Msg("join: resolve failed")
		c.sendError("conversation unavailable, try again")
		return
	}

	key := p.Key()
	r.keys.Lock(key)
	msgs, err := r.st.History(ctx, key)
	if err != nil {
		r.keys.Unlock(key)
		metrics.StoreErrors.WithLabelValues("history").Inc()
		r.log.Error().Err(err).Str("key", key).Msg("join: history load failed")
		c.sendError("conversation unavailable, try again")
		return
	}
	if msgs == nil { msgs = []chat.Message{} }
	r.hub.Join(key, c)
	if !c.track(key) {
		r.hub.Leave(key, c)
		r.keys.Unlock(key)
		return
	}
	c.sendEvent(historyEvent{Type: "history", Messages: msgs})
	r.keys.Unlock(key)

	r.log.Debug().Str("key", key).Str("user", c.userID).Int("history", len(msgs)).Msg("joined conversation")
}

// send validates, persists, then broadcasts. A failed append reports back to
// the sender and broadcasts nothing; nobody ever sees an unpersisted
// message. Broadcast trouble after a successful append is non-fatal, the
// message is durable and surfaces on the next history fetch.
func (r *Relay) send(c *Client, a, b, body string) {
	p, err := identity.Canonical(a, b)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if !p.Contains(c.userID) {
		c.sendError(identity.ErrNotParticipant.Error())
		return
	}
	key := p.Key()
	if !c.isJoined(key) {
		c.sendError("join the conversation before sending")
		return
	}
	body, err = chat.ValidateBody(body)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	m := &chat.Message{
		ID:         ulid.Make().String(),
		SenderID:   c.userID,
		ReceiverID: p.Other(c.userID),
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	r.keys.Lock(key)
	err = r.st.AppendMessage(ctx, key, m)
	if err == nil {
		r.hub.Broadcast(key, messageEvent{
			Type:       "message",
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			Body:       m.Body,
			Timestamp:  m.CreatedAt,
		})
	}
	r.keys.Unlock(key)

	if err != nil {
		metrics.StoreErrors.WithLabelValues("append").Inc()
		r.log.Error().Err(err).Str("key", key).Msg("send: append failed")
		if errors.Is(err, context.DeadlineExceeded) {
			c.sendError("store timeout, message not sent")
		} else {
			c.sendError("message not sent, try again")
		}
		return
	}
	metrics.MessagesRelayed.Inc()
}

func (c *Client) sendEvent(ev any) {
	b, err := json.Marshal(ev)
	if err != nil { return }
	c.enqueue(b)
}

func (c *Client) sendError(reason string) {
	c.sendEvent(errorEvent{Type: "error", Reason: reason})
}
