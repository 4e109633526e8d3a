package identity

import (
	"errors"
	"regexp"
)

// Participant ids are the string form of the identity store's record ids:
// 24 lowercase hex characters. Anything else never reaches the store.
var idRe = regexp.MustCompile(`^[0-9a-f]{24}$`)

var (
	ErrInvalidID      = errors.New("invalid participant id")
	ErrSelfPair       = errors.New("conversation with self not allowed")
	ErrNotParticipant = errors.New("not a participant of this conversation")
)

// KeySep joins the sorted pair into a conversation key. Ids are hex, so the
// separator can never collide with id content.
const KeySep = ":"

func Validate(id string) error {
	if !idRe.MatchString(id) { return ErrInvalidID }
	return nil
}

// Pair is a canonicalized participant pair: both ids valid, distinct, and
// ordered so that A < B. Build one through Canonical; the zero value is not
// meaningful.
type Pair struct {
	A string
	B string
}

// Canonical validates both ids, rejects self-pairs and orders the pair.
// Canonical(a,b) and Canonical(b,a) yield the same Pair.
func Canonical(a, b string) (Pair, error) {
	if err := Validate(a); err != nil { return Pair{}, err }
	if err := Validate(b); err != nil { return Pair{}, err }
	if a == b { return Pair{}, ErrSelfPair }
	if b < a { a, b = b, a }
	return Pair{A: a, B: b}, nil
}

// Key returns the canonical conversation key for the pair.
func (p Pair) Key() string { return p.A + KeySep + p.B }

// Contains reports whether id is one of the two participants.
func (p Pair) Contains(id string) bool { return id == p.A || id == p.B }

// Other returns the participant opposite to id. Caller guarantees membership.
func (p Pair) Other(id string) string {
	if id == p.A { return p.B }
	return p.A
}
