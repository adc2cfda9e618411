// Package codec serializes the store aggregate to and from the
// persisted JSON document. The document shape is stable for the
// lifetime of a store and must round-trip losslessly, preserving
// message order and contact list order.
package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"textbox/domain"
	"textbox/errors"
)

type userDoc struct {
	CreatedAt time.Time `json:"created_at"`
	LastLogin time.Time `json:"last_login"`
}

type messageDoc struct {
	ID       string    `json:"id,omitempty"`
	Type     string    `json:"type"`
	Sender   string    `json:"sender"`
	Receiver string    `json:"receiver"`
	Content  string    `json:"content"`
	Time     string    `json:"time"`
	At       time.Time `json:"timestamp"`
}

type snapshotDoc struct {
	Users    map[string]userDoc  `json:"users"`
	Contacts map[string][]string `json:"contacts"`
	Messages []messageDoc        `json:"messages"`
}

// EncodeSnapshot renders the aggregate as the persisted JSON document.
func EncodeSnapshot(snapshot domain.Snapshot) ([]byte, error) {
	doc := snapshotDoc{
		Users:    make(map[string]userDoc, len(snapshot.Users)),
		Contacts: snapshot.Contacts,
		Messages: make([]messageDoc, 0, len(snapshot.Messages)),
	}
	for name, user := range snapshot.Users {
		doc.Users[name] = userDoc{CreatedAt: user.CreatedAt, LastLogin: user.LastLogin}
	}
	for _, m := range snapshot.Messages {
		doc.Messages = append(doc.Messages, fromMessage(m))
	}
	return json.Marshal(doc)
}

// DecodeSnapshot parses a persisted document back into the aggregate.
// Any malformed input fails with ErrCorruptData; the caller decides
// whether to fall back to the empty snapshot.
func DecodeSnapshot(data []byte) (domain.Snapshot, error) {
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", errors.ErrCorruptData, err)
	}

	snapshot := domain.EmptySnapshot()
	for name, u := range doc.Users {
		snapshot.Users[name] = domain.User{Username: name, CreatedAt: u.CreatedAt, LastLogin: u.LastLogin}
	}
	for owner, list := range doc.Contacts {
		snapshot.Contacts[owner] = list
	}
	for _, m := range doc.Messages {
		msg, err := toMessage(m)
		if err != nil {
			return domain.Snapshot{}, err
		}
		snapshot.Messages = append(snapshot.Messages, msg)
	}
	return snapshot, nil
}

func fromMessage(m domain.Message) messageDoc {
	id := ""
	if m.ID != uuid.Nil {
		id = m.ID.String()
	}
	return messageDoc{
		ID:       id,
		Type:     string(m.Kind),
		Sender:   m.Sender,
		Receiver: m.Receiver,
		Content:  m.Content,
		Time:     m.DisplayTime,
		At:       m.At,
	}
}

func toMessage(doc messageDoc) (domain.Message, error) {
	kind := domain.Kind(doc.Type)
	if kind != domain.KindText && kind != domain.KindImage {
		return domain.Message{}, fmt.Errorf("%w: message type %q", errors.ErrCorruptData, doc.Type)
	}

	// Documents written before message identity was introduced carry
	// no id field; those decode to the nil uuid.
	id := uuid.Nil
	if doc.ID != "" {
		parsed, err := uuid.Parse(doc.ID)
		if err != nil {
			return domain.Message{}, fmt.Errorf("%w: message id %q", errors.ErrCorruptData, doc.ID)
		}
		id = parsed
	}

	return domain.Message{
		ID:          id,
		Kind:        kind,
		Sender:      doc.Sender,
		Receiver:    doc.Receiver,
		Content:     doc.Content,
		DisplayTime: doc.Time,
		At:          doc.At,
	}, nil
}
