// Package projection folds recorded events into snapshots.
// Handles ordering and replay tolerance. Does not emit events or
// touch storage directly.
package projection

import (
	"github.com/samber/lo"

	"textbox/domain"
	"textbox/domain/event"
)

// Fold replays a full event sequence into a snapshot, starting from
// the canonical empty state.
func Fold(events []event.ChatEvent) domain.Snapshot {
	snapshot := domain.EmptySnapshot()
	for _, e := range events {
		Apply(&snapshot, e)
	}
	return snapshot
}

// Apply folds a single event into the snapshot, in place.
// Application is replay tolerant: an event that no longer makes sense
// against the current state (say a duplicate contact recorded by an
// older log) is skipped rather than corrupting the aggregate.
func Apply(snapshot *domain.Snapshot, e event.ChatEvent) {
	switch evt := e.(type) {
	case event.UserRegistered:
		if snapshot.HasUser(evt.Username) {
			return
		}
		snapshot.Users[evt.Username] = domain.User{
			Username:  evt.Username,
			CreatedAt: evt.At,
			LastLogin: evt.At,
		}
		// Registration also reserves the empty contact list.
		snapshot.Contacts[evt.Username] = []string{}

	case event.UserLoggedIn:
		user, ok := snapshot.Users[evt.Username]
		if !ok {
			return
		}
		user.LastLogin = evt.At
		snapshot.Users[evt.Username] = user

	case event.ContactAdded:
		if evt.Owner == evt.Contact || !snapshot.HasUser(evt.Contact) {
			return
		}
		if lo.Contains(snapshot.Contacts[evt.Owner], evt.Contact) {
			return
		}
		snapshot.Contacts[evt.Owner] = append(snapshot.Contacts[evt.Owner], evt.Contact)

	case event.MessagePosted:
		snapshot.Messages = append(snapshot.Messages, evt.Message)

	case event.ConversationCleared:
		snapshot.Messages = lo.Reject(snapshot.Messages, func(m domain.Message, _ int) bool {
			return m.Between(evt.UserA, evt.UserB)
		})
	}
}
