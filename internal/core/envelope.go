package core

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/dkeye/relay/internal/domain"
)

const (
	TypeAuth    = "auth"
	TypeMessage = "message"

	// NullMessage replaces an absent or empty message body on the wire.
	NullMessage = "__null__"
)

var errNotObject = errors.New("envelope is not a JSON object")

// Envelope is one classified inbound frame: exactly one of
// MalformedEnvelope, AuthEnvelope, MessageEnvelope or UnknownEnvelope.
type Envelope interface {
	envelope()
}

type MalformedEnvelope struct {
	Err error
}

type AuthEnvelope struct {
	RoomID domain.RoomID
	Code   domain.Secret
}

type MessageEnvelope struct {
	Text string
}

// UnknownEnvelope is a well-formed envelope whose type is neither auth nor
// message. Type is empty when the field was missing.
type UnknownEnvelope struct {
	Type string
}

func (MalformedEnvelope) envelope() {}
func (AuthEnvelope) envelope() {}
func (MessageEnvelope) envelope() {}
func (UnknownEnvelope) envelope() {}

// Body is the payload relayed to the other members.
func (m MessageEnvelope) Body() Frame {
	if m.Text == "" {
		return Frame(NullMessage)
	}
	return Frame(m.Text)
}

type rawEnvelope struct {
	Type    *string         `json:"type"`
	ID      json.RawMessage `json:"id"`
	Code    json.RawMessage `json:"code"`
	Message json.RawMessage `json:"message"`
}

// DecodeEnvelope never fails; undecodable input becomes a MalformedEnvelope.
// Non-string id, code and message values are treated as absent.
func DecodeEnvelope(data []byte) Envelope {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return MalformedEnvelope{Err: errNotObject}
	}
	var raw rawEnvelope
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return MalformedEnvelope{Err: err}
	}
	var typ string
	if raw.Type != nil {
		typ = *raw.Type
	}
	switch typ {
	case TypeAuth:
		return AuthEnvelope{
			RoomID: domain.RoomID(stringField(raw.ID)),
			Code:   domain.Secret(stringField(raw.Code)),
		}
	case TypeMessage:
		return MessageEnvelope{Text: stringField(raw.Message)}
	default:
		return UnknownEnvelope{Type: typ}
	}
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
