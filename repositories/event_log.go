//go:generate go run go.uber.org/mock/mockgen -source=event_log.go -destination=../mocks/mock_event_log.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"textbox/codec"
	"textbox/domain"
	"textbox/domain/event"
	"textbox/errors"
	"textbox/projection"
)

type IEventLog interface {
	Apply(events ...event.ChatEvent) error
	Load() (domain.Snapshot, error)
}

// EventLog is the append-only backend: every mutation is its own
// BadgerDB entry and the snapshot is a fold over the ordered log.
// Concurrent writers append under distinct keys, so no write can
// overwrite another and lost updates cannot happen here at all.
type EventLog struct {
	db  *badger.DB
	log *slog.Logger
}

func NewEventLog(db *badger.DB, log *slog.Logger) EventLog {
	return EventLog{db: db, log: log}
}

// Apply appends the events to the log.
// The key is formatted as "evt:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological replay using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two events
//     are appended at the same nanosecond.
func (l EventLog) Apply(events ...event.ChatEvent) error {
	return l.db.Update(func(txn *badger.Txn) error {
		for _, e := range events {
			data, err := codec.EncodeEvent(e)
			if err != nil {
				return fmt.Errorf("%w: %v", errors.ErrPersistenceFailure, err)
			}
			key := fmt.Sprintf("evt:%019d:%s", time.Now().UnixNano(), uuid.New())
			if err = txn.Set([]byte(key), data); err != nil {
				return fmt.Errorf("%w: %v", errors.ErrPersistenceFailure, err)
			}
		}
		return nil
	})
}

// Load replays the whole log into a snapshot. Entries that fail to
// decode are skipped with a warning so one bad record never blocks
// registration or login for everyone.
func (l EventLog) Load() (domain.Snapshot, error) {
	var entries [][]byte
	err := l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("evt:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				entries = append(entries, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", errors.ErrPersistenceFailure, err)
	}

	var events []event.ChatEvent
	for _, entry := range entries {
		e, err := codec.DecodeEvent(entry)
		if err != nil {
			l.log.Warn("skipping undecodable log entry", "error", err)
			continue
		}
		events = append(events, e)
	}
	return projection.Fold(events), nil
}
