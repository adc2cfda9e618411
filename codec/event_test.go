package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"textbox/domain"
	"textbox/domain/event"
	"textbox/errors"
)

func Test_Event_Round_Trip(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	events := []event.ChatEvent{
		event.UserRegistered{Username: "alice", At: at},
		event.UserLoggedIn{Username: "alice", At: at.Add(time.Minute)},
		event.ContactAdded{Owner: "alice", Contact: "bob", At: at},
		event.MessagePosted{Message: domain.NewTextMessage("alice", "bob", "hi", at)},
		event.ConversationCleared{UserA: "alice", UserB: "bob", At: at},
	}

	for _, e := range events {
		t.Run(string(e.EventKind()), func(t *testing.T) {
			req := require.New(t)
			data, err := EncodeEvent(e)
			req.NoError(err)

			decoded, err := DecodeEvent(data)
			req.NoError(err)
			req.Equal(e, decoded)
		})
	}
}

func Test_Decode_Unknown_Event_Kind(t *testing.T) {
	_, err := DecodeEvent([]byte(`{"kind":"user_banned","payload":{}}`))
	require.ErrorIs(t, err, errors.ErrUnknownEvent)
}

func Test_Decode_Garbage_Event(t *testing.T) {
	_, err := DecodeEvent([]byte("garbage"))
	require.ErrorIs(t, err, errors.ErrCorruptData)
}
