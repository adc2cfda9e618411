package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"textbox/domain"
	"textbox/domain/event"
)

func openTestLog(t *testing.T) EventLog {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewEventLog(db, slog.Default())
}

func Test_Empty_Log_Folds_To_Empty_Snapshot(t *testing.T) {
	req := require.New(t)
	log := openTestLog(t)

	snapshot, err := log.Load()
	req.NoError(err)
	req.Equal(domain.EmptySnapshot(), snapshot)
}

func Test_Apply_Then_Load_Replays_In_Order(t *testing.T) {
	req := require.New(t)
	log := openTestLog(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	req.NoError(log.Apply(
		event.UserRegistered{Username: "alice", At: at},
		event.UserRegistered{Username: "bob", At: at},
	))
	req.NoError(log.Apply(event.ContactAdded{Owner: "alice", Contact: "bob", At: at}))
	req.NoError(log.Apply(
		event.MessagePosted{Message: domain.NewTextMessage("alice", "bob", "hi", at)},
		event.MessagePosted{Message: domain.NewTextMessage("bob", "alice", "hey", at.Add(time.Minute))},
	))

	snapshot, err := log.Load()
	req.NoError(err)
	req.True(snapshot.HasUser("alice"))
	req.Equal([]string{"bob"}, snapshot.Contacts["alice"])
	req.Len(snapshot.Messages, 2)
	req.Equal("hi", snapshot.Messages[0].Content)
	req.Equal("hey", snapshot.Messages[1].Content)
}

func Test_Clear_Event_Is_Folded_On_Load(t *testing.T) {
	req := require.New(t)
	log := openTestLog(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	req.NoError(log.Apply(
		event.UserRegistered{Username: "alice", At: at},
		event.UserRegistered{Username: "bob", At: at},
		event.MessagePosted{Message: domain.NewTextMessage("alice", "bob", "hi", at)},
	))
	req.NoError(log.Apply(event.ConversationCleared{UserA: "alice", UserB: "bob", At: at.Add(time.Minute)}))

	snapshot, err := log.Load()
	req.NoError(err)
	req.Empty(snapshot.Messages)
	req.True(snapshot.HasUser("alice"))
}

func Test_Concurrent_Appends_Are_All_Reflected(t *testing.T) {
	req := require.New(t)
	log := openTestLog(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	req.NoError(log.Apply(
		event.UserRegistered{Username: "alice", At: at},
		event.UserRegistered{Username: "carol", At: at},
		event.UserRegistered{Username: "dave", At: at},
	))

	done := make(chan error, 2)
	go func() { done <- log.Apply(event.ContactAdded{Owner: "alice", Contact: "carol", At: at}) }()
	go func() { done <- log.Apply(event.ContactAdded{Owner: "alice", Contact: "dave", At: at}) }()
	req.NoError(<-done)
	req.NoError(<-done)

	snapshot, err := log.Load()
	req.NoError(err)
	req.ElementsMatch([]string{"carol", "dave"}, snapshot.Contacts["alice"])
}

func Test_Undecodable_Entry_Is_Skipped(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()
	log := NewEventLog(db, slog.Default())

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	req.NoError(log.Apply(event.UserRegistered{Username: "alice", At: at}))
	req.NoError(db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("evt:9999999999999999999:junk"), []byte("not an envelope"))
	}))

	snapshot, err := log.Load()
	req.NoError(err)
	req.True(snapshot.HasUser("alice"))
	req.Len(snapshot.Users, 1)
}
