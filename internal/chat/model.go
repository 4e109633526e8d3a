package chat

import (
	"errors"
	"strings"
	"time"
)

const MaxBodyBytes = 5 * 1024

var (
	ErrEmptyBody      = errors.New("empty message body")
	ErrBodyTooLarge   = errors.New("message body too large")
	ErrNoConversation = errors.New("conversation not found")
)

// Message is one persisted chat message. Immutable once written; ordering
// within a conversation is the store's append order, the message itself
// carries no sequence number.
type Message struct {
	ID         string    `db:"id" json:"id"`
	SenderID   string    `db:"sender_id" json:"senderId"`
	ReceiverID string    `db:"receiver_id" json:"receiverId"`
	Body       string    `db:"body" json:"body"`
	CreatedAt  time.Time `db:"created_at" json:"timestamp"`
}

// Conversation is the durable record for one participant pair. ParticipantA
// and ParticipantB are stored in canonical (sorted) order.
type Conversation struct {
	ID           string    `db:"id" json:"id"`
	Key          string    `db:"key" json:"-"`
	ParticipantA string    `db:"participant_a" json:"participantA"`
	ParticipantB string    `db:"participant_b" json:"participantB"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// ValidateBody trims the body and rejects blank or oversized messages.
func ValidateBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" { return "", ErrEmptyBody }
	if len(body) > MaxBodyBytes { return "", ErrBodyTooLarge }
	return body, nil
}
