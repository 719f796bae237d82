package message

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GriffinCanCode/viewsync/internal/shared/id"
	"github.com/bytedance/sonic"
)

// ErrMalformedEnvelope is returned for frames that are not envelopes.
var ErrMalformedEnvelope = errors.New("malformed envelope")

// Type identifies an envelope kind on the wire.
type Type string

// Outbound (renderer to host)
const (
	TypeWindowFocused    Type = "window-focused"
	TypeChromeScreenShot Type = "chrome-screenshot"
	TypeHistoryChanged   Type = "history-changed"
)

// Inbound (host to renderer)
const (
	TypeChangeActiveView Type = "change-active-view"
	TypeAppUpdate        Type = "app-update"
	TypeProjectOpened    Type = "project-opened"
	TypeUndo             Type = "undo"
	TypeRedo             Type = "redo"
	TypeSaveProject      Type = "save-project"
	TypeOpenFile         Type = "open-file"
	TypeProjectSaved     Type = "project-saved"
)

func (t Type) String() string { return string(t) }

// Envelope is the unit exchanged over the channel. It is immutable once built.
type Envelope struct {
	ID      id.EnvelopeID   `json:"id"`
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// New builds an envelope with a fresh id. A nil payload produces no payload field.
func New(t Type, payload any) (Envelope, error) {
	env := Envelope{ID: id.NewEnvelopeID(), Type: t}
	if payload == nil {
		return env, nil
	}

	raw, err := sonic.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	env.Payload = raw
	return env, nil
}

// MustNew is New for payloads that cannot fail to encode.
func MustNew(t Type, payload any) Envelope {
	env, err := New(t, payload)
	if err != nil {
		panic(err)
	}
	return env
}

// Encode serializes an envelope for the wire.
func Encode(env Envelope) ([]byte, error) {
	data, err := sonic.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope %s: %w", env.Type, err)
	}
	return data, nil
}

// Decode parses a wire frame. Frames without id or type are rejected.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.ID == "" || env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing id or type", ErrMalformedEnvelope)
	}
	return env, nil
}

// DecodePayload decodes the payload into v.
func DecodePayload(env Envelope, v any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("%w: %s has no payload", ErrMalformedEnvelope, env.Type)
	}
	if err := sonic.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrMalformedEnvelope, env.Type, err)
	}
	return nil
}
