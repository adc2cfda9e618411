// Package event defines the domain events the store persists.
// A snapshot is always a fold over a sequence of these events, which
// is what makes concurrent writers safe: each logical operation is
// recorded independently instead of overwriting a whole document.
package event

import (
	"time"

	"textbox/domain"
)

type Kind string

const (
	KindUserRegistered      Kind = "user_registered"
	KindUserLoggedIn        Kind = "user_logged_in"
	KindContactAdded        Kind = "contact_added"
	KindMessagePosted       Kind = "message_posted"
	KindConversationCleared Kind = "conversation_cleared"
)

// ChatEvent is one recorded mutation of the shared chat state.
type ChatEvent interface {
	EventKind() Kind
	OccurredAt() time.Time
}

type UserRegistered struct {
	Username string
	At       time.Time
}

func (e UserRegistered) EventKind() Kind       { return KindUserRegistered }
func (e UserRegistered) OccurredAt() time.Time { return e.At }

type UserLoggedIn struct {
	Username string
	At       time.Time
}

func (e UserLoggedIn) EventKind() Kind       { return KindUserLoggedIn }
func (e UserLoggedIn) OccurredAt() time.Time { return e.At }

type ContactAdded struct {
	Owner   string
	Contact string
	At      time.Time
}

func (e ContactAdded) EventKind() Kind       { return KindContactAdded }
func (e ContactAdded) OccurredAt() time.Time { return e.At }

type MessagePosted struct {
	Message domain.Message
}

func (e MessagePosted) EventKind() Kind       { return KindMessagePosted }
func (e MessagePosted) OccurredAt() time.Time { return e.Message.At }

type ConversationCleared struct {
	UserA string
	UserB string
	At    time.Time
}

func (e ConversationCleared) EventKind() Kind       { return KindConversationCleared }
func (e ConversationCleared) OccurredAt() time.Time { return e.At }
