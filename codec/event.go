package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"textbox/domain/event"
	"textbox/errors"
)

type eventEnvelope struct {
	Kind    event.Kind      `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

type userEventDoc struct {
	Username string    `json:"username"`
	At       time.Time `json:"at"`
}

type contactEventDoc struct {
	Owner   string    `json:"owner"`
	Contact string    `json:"contact"`
	At      time.Time `json:"at"`
}

type clearEventDoc struct {
	UserA string    `json:"user_a"`
	UserB string    `json:"user_b"`
	At    time.Time `json:"at"`
}

// EncodeEvent wraps a single domain event in a self-describing
// envelope suitable for an append-only log entry.
func EncodeEvent(e event.ChatEvent) ([]byte, error) {
	var payload any
	switch evt := e.(type) {
	case event.UserRegistered:
		payload = userEventDoc{Username: evt.Username, At: evt.At}
	case event.UserLoggedIn:
		payload = userEventDoc{Username: evt.Username, At: evt.At}
	case event.ContactAdded:
		payload = contactEventDoc{Owner: evt.Owner, Contact: evt.Contact, At: evt.At}
	case event.MessagePosted:
		payload = fromMessage(evt.Message)
	case event.ConversationCleared:
		payload = clearEventDoc{UserA: evt.UserA, UserB: evt.UserB, At: evt.At}
	default:
		return nil, fmt.Errorf("%w: %T", errors.ErrUnknownEvent, e)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(eventEnvelope{Kind: e.EventKind(), Payload: raw})
}

// DecodeEvent parses a log entry back into its domain event.
func DecodeEvent(data []byte) (event.ChatEvent, error) {
	var envelope eventEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrCorruptData, err)
	}

	switch envelope.Kind {
	case event.KindUserRegistered:
		var doc userEventDoc
		if err := json.Unmarshal(envelope.Payload, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrCorruptData, err)
		}
		return event.UserRegistered{Username: doc.Username, At: doc.At}, nil

	case event.KindUserLoggedIn:
		var doc userEventDoc
		if err := json.Unmarshal(envelope.Payload, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrCorruptData, err)
		}
		return event.UserLoggedIn{Username: doc.Username, At: doc.At}, nil

	case event.KindContactAdded:
		var doc contactEventDoc
		if err := json.Unmarshal(envelope.Payload, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrCorruptData, err)
		}
		return event.ContactAdded{Owner: doc.Owner, Contact: doc.Contact, At: doc.At}, nil

	case event.KindMessagePosted:
		var doc messageDoc
		if err := json.Unmarshal(envelope.Payload, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrCorruptData, err)
		}
		msg, err := toMessage(doc)
		if err != nil {
			return nil, err
		}
		return event.MessagePosted{Message: msg}, nil

	case event.KindConversationCleared:
		var doc clearEventDoc
		if err := json.Unmarshal(envelope.Payload, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrCorruptData, err)
		}
		return event.ConversationCleared{UserA: doc.UserA, UserB: doc.UserB, At: doc.At}, nil

	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEvent, envelope.Kind)
	}
}
