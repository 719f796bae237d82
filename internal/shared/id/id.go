// Package id provides centralized ID generation for the view store.
//
// Two ID families are used:
//   - Envelope IDs: random UUIDv4 strings, one per constructed envelope. The
//     host uses them for de-duplication and ack correlation.
//   - Entity IDs: a kind prefix and a monotonic ULID (sess_*, win_*, proj_*,
//     req_*). IDs of one kind sort in creation order, even within the same
//     millisecond, so the host lists windows in the order they connected.
package id

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// EnvelopeID identifies a single message envelope
type EnvelopeID string

// SessionID identifies a renderer session (the App's connection identity)
type SessionID string

// WindowID identifies a renderer connection on the host side
type WindowID string

// ProjectID identifies a project document
type ProjectID string

// RequestID identifies an HTTP request or trace span
type RequestID string

func (id EnvelopeID) String() string { return string(id) }
func (id SessionID) String() string  { return string(id) }
func (id WindowID) String() string   { return string(id) }
func (id ProjectID) String() string  { return string(id) }
func (id RequestID) String() string  { return string(id) }

// Kind is the prefix naming what an entity ID identifies.
type Kind string

const (
	KindSession Kind = "sess"
	KindWindow  Kind = "win"
	KindProject Kind = "proj"
	KindRequest Kind = "req"
)

// ErrMalformed is returned when a string is not a prefixed ULID.
var ErrMalformed = errors.New("malformed id")

var entropy = struct {
	sync.Mutex
	source *ulid.MonotonicEntropy
}{source: ulid.Monotonic(rand.Reader, 0)}

func next(kind Kind) string {
	entropy.Lock()
	u := ulid.MustNew(ulid.Timestamp(time.Now()), entropy.source)
	entropy.Unlock()
	return string(kind) + "_" + u.String()
}

// NewEnvelopeID generates a fresh envelope ID.
func NewEnvelopeID() EnvelopeID {
	return EnvelopeID(uuid.New().String())
}

// NewSessionID generates a new session ID
func NewSessionID() SessionID { return SessionID(next(KindSession)) }

// NewWindowID generates a new window ID
func NewWindowID() WindowID { return WindowID(next(KindWindow)) }

// NewProjectID generates a new project ID
func NewProjectID() ProjectID { return ProjectID(next(KindProject)) }

// NewRequestID generates a new request ID
func NewRequestID() RequestID { return RequestID(next(KindRequest)) }

// Split separates a prefixed ID into its kind and ULID.
func Split(s string) (Kind, ulid.ULID, error) {
	prefix, rest, ok := strings.Cut(s, "_")
	if !ok || prefix == "" {
		return "", ulid.ULID{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	u, err := ulid.ParseStrict(rest)
	if err != nil {
		return "", ulid.ULID{}, fmt.Errorf("%w: %q: %v", ErrMalformed, s, err)
	}
	return Kind(prefix), u, nil
}

// ParseWindowID checks that s is a window ID as issued by NewWindowID.
func ParseWindowID(s string) (WindowID, error) {
	kind, _, err := Split(s)
	if err != nil {
		return "", err
	}
	if kind != KindWindow {
		return "", fmt.Errorf("%w: %q is a %s id", ErrMalformed, s, kind)
	}
	return WindowID(s), nil
}
