package domain

import (
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the message payload. There is no untyped variant:
// anything that is not text or image fails at construction time.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Message is an immutable chat event between two registered users.
// Content holds UTF-8 text for KindText and a base64 data URI for
// KindImage. The log owning these values is append-only.
type Message struct {
	ID          uuid.UUID
	Kind        Kind
	Sender      string
	Receiver    string
	Content     string
	DisplayTime string // wall-clock HH:MM shown next to the bubble
	At          time.Time
}

// NewTextMessage builds a text message stamped at the given instant.
func NewTextMessage(sender, receiver, content string, at time.Time) Message {
	return newMessage(KindText, sender, receiver, content, at)
}

// NewImageMessage builds an image message whose content is an already
// encoded data URI.
func NewImageMessage(sender, receiver, dataURI string, at time.Time) Message {
	return newMessage(KindImage, sender, receiver, dataURI, at)
}

func newMessage(kind Kind, sender, receiver, content string, at time.Time) Message {
	return Message{
		ID:          uuid.New(),
		Kind:        kind,
		Sender:      sender,
		Receiver:    receiver,
		Content:     content,
		DisplayTime: at.Format("15:04"),
		At:          at,
	}
}

// Between reports whether the message belongs to the conversation
// between a and b, in either direction.
func (m Message) Between(a, b string) bool {
	return (m.Sender == a && m.Receiver == b) || (m.Sender == b && m.Receiver == a)
}
