package domain

import (
	"sort"

	"github.com/samber/lo"
)

// Snapshot is the full persisted state of the store at one instant:
// every user, every contact list and the whole message log. It is the
// unit of persistence and is owned exclusively by the chat store;
// callers only ever see copies.
type Snapshot struct {
	Users    map[string]User
	Contacts map[string][]string
	Messages []Message
}

// EmptySnapshot is the canonical zero state a corrupt or missing
// backing file resets to.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Users:    map[string]User{},
		Contacts: map[string][]string{},
		Messages: nil,
	}
}

// Clone returns a deep copy so a caller can never mutate the store's
// live aggregate through a returned snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Users:    make(map[string]User, len(s.Users)),
		Contacts: make(map[string][]string, len(s.Contacts)),
		Messages: make([]Message, len(s.Messages)),
	}
	for name, u := range s.Users {
		out.Users[name] = u
	}
	for owner, list := range s.Contacts {
		out.Contacts[owner] = append([]string(nil), list...)
	}
	copy(out.Messages, s.Messages)
	return out
}

// HasUser reports whether username is registered.
func (s Snapshot) HasUser(username string) bool {
	_, ok := s.Users[username]
	return ok
}

// Conversation yields the messages exchanged between a and b, sorted
// by timestamp ascending with insertion order breaking ties. The
// result is computed fresh on each call.
func (s Snapshot) Conversation(a, b string) []Message {
	msgs := lo.Filter(s.Messages, func(m Message, _ int) bool {
		return m.Between(a, b)
	})
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].At.Before(msgs[j].At)
	})
	return msgs
}

// Stats are the display counters shown in the sidebar info panel.
type Stats struct {
	Users    int
	Contacts int
	Messages int
}

// Stats counts users, contact edges and messages.
func (s Snapshot) Stats() Stats {
	return Stats{
		Users:    len(s.Users),
		Contacts: lo.SumBy(lo.Values(s.Contacts), func(list []string) int { return len(list) }),
		Messages: len(s.Messages),
	}
}
