//go:generate go run go.uber.org/mock/mockgen -source=chat_store.go -destination=../mocks/mock_chat_store.go -package=mocks
package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"

	"textbox/domain"
	"textbox/domain/event"
	dsearch "textbox/domain/search"
	"textbox/errors"
	"textbox/search"
)

// Backend persists the chat aggregate. Load returns the current state
// and Apply durably records mutations; both implementations guarantee
// that concurrent Applies are all reflected, never silently lost.
type Backend interface {
	Load() (domain.Snapshot, error)
	Apply(events ...event.ChatEvent) error
}

type IChatStore interface {
	Register(username string) (domain.User, error)
	Authenticate(username string) (domain.User, error)
	Exists(username string) (bool, error)
	AddContact(owner, contact string) error
	ListContacts(owner string) ([]string, error)
	PostTextMessage(sender, receiver, content string) (domain.Message, error)
	PostImageMessage(sender, receiver string, payload []byte, eventKey string) (domain.Message, bool, error)
	Conversation(userA, userB string) ([]domain.Message, error)
	ClearConversation(userA, userB string) error
	SearchMessages(ctx context.Context, rawQuery string) ([]domain.Message, error)
	Stats() (domain.Stats, error)
}

// ChatStore composes the user registry, contact graph, message log
// and dedup guard behind one API. Every mutating operation runs as a
// single load-validate-apply cycle under the store lock, so two users
// acting at once can never overwrite each other's change.
type ChatStore struct {
	backend Backend
	index   *search.MessageIndex
	guard   *UploadGuard
	log     *slog.Logger

	mu           sync.Mutex
	lockAttempts int
	lockInterval time.Duration

	now func() time.Time
}

// NewChatStore wires the store. index may be nil when full-text search
// is not wanted. lockAttempts and lockInterval bound how long an
// operation waits for the store lock before failing with
// ErrContention instead of blocking forever.
func NewChatStore(backend Backend, index *search.MessageIndex, log *slog.Logger,
	lockAttempts int, lockInterval time.Duration) *ChatStore {
	if lockAttempts < 1 {
		lockAttempts = 1
	}
	return &ChatStore{
		backend:      backend,
		index:        index,
		guard:        NewUploadGuard(),
		log:          log,
		lockAttempts: lockAttempts,
		lockInterval: lockInterval,
		now:          time.Now,
	}
}

// acquire takes the store lock, retrying a bounded number of times.
func (s *ChatStore) acquire() (func(), error) {
	for attempt := 0; attempt < s.lockAttempts; attempt++ {
		if s.mu.TryLock() {
			return s.mu.Unlock, nil
		}
		time.Sleep(s.lockInterval)
	}
	return nil, errors.ErrContention
}

// Register creates a user and reserves their empty contact list.
func (s *ChatStore) Register(username string) (domain.User, error) {
	if err := validateUsername(username); err != nil {
		return domain.User{}, err
	}

	unlock, err := s.acquire()
	if err != nil {
		return domain.User{}, err
	}
	defer unlock()

	snapshot, err := s.backend.Load()
	if err != nil {
		return domain.User{}, err
	}
	if snapshot.HasUser(username) {
		return domain.User{}, fmt.Errorf("%w: %q", errors.ErrAlreadyExists, username)
	}

	registered := event.UserRegistered{Username: username, At: s.now()}
	if err = s.backend.Apply(registered); err != nil {
		return domain.User{}, err
	}

	s.log.Info("user registered", "username", username)
	return domain.User{Username: username, CreatedAt: registered.At, LastLogin: registered.At}, nil
}

// Authenticate looks the user up and stamps their last login. There is
// no credential check here: hardening authentication is explicitly out
// of this layer's hands.
func (s *ChatStore) Authenticate(username string) (domain.User, error) {
	unlock, err := s.acquire()
	if err != nil {
		return domain.User{}, err
	}
	defer unlock()

	snapshot, err := s.backend.Load()
	if err != nil {
		return domain.User{}, err
	}
	user, ok := snapshot.Users[username]
	if !ok {
		return domain.User{}, fmt.Errorf("%w: %q", errors.ErrNotFound, username)
	}

	loggedIn := event.UserLoggedIn{Username: username, At: s.now()}
	if err = s.backend.Apply(loggedIn); err != nil {
		return domain.User{}, err
	}

	user.LastLogin = loggedIn.At
	return user, nil
}

// Exists is a pure lookup with no side effect.
func (s *ChatStore) Exists(username string) (bool, error) {
	snapshot, err := s.backend.Load()
	if err != nil {
		return false, err
	}
	return snapshot.HasUser(username), nil
}

// AddContact appends contact to owner's ordered list. The relation is
// one-directional: owner sees contact, not the other way around.
func (s *ChatStore) AddContact(owner, contact string) error {
	unlock, err := s.acquire()
	if err != nil {
		return err
	}
	defer unlock()

	snapshot, err := s.backend.Load()
	if err != nil {
		return err
	}
	switch {
	case owner == contact:
		return errors.ErrSelfReference
	case !snapshot.HasUser(owner):
		return fmt.Errorf("%w: %q", errors.ErrNotFound, owner)
	case !snapshot.HasUser(contact):
		return fmt.Errorf("%w: %q", errors.ErrNotFound, contact)
	case lo.Contains(snapshot.Contacts[owner], contact):
		return fmt.Errorf("%w: %q", errors.ErrDuplicateContact, contact)
	}

	return s.backend.Apply(event.ContactAdded{Owner: owner, Contact: contact, At: s.now()})
}

// ListContacts returns owner's contacts in insertion order. An owner
// without an entry gets the empty list, never an error.
func (s *ChatStore) ListContacts(owner string) ([]string, error) {
	snapshot, err := s.backend.Load()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), snapshot.Contacts[owner]...), nil
}

// PostTextMessage appends a text message to the log.
func (s *ChatStore) PostTextMessage(sender, receiver, content string) (domain.Message, error) {
	unlock, err := s.acquire()
	if err != nil {
		return domain.Message{}, err
	}
	defer unlock()

	snapshot, err := s.backend.Load()
	if err != nil {
		return domain.Message{}, err
	}
	if err = checkParticipants(snapshot, sender, receiver); err != nil {
		return domain.Message{}, err
	}

	msg := domain.NewTextMessage(sender, receiver, content, s.now())
	if err = s.backend.Apply(event.MessagePosted{Message: msg}); err != nil {
		return domain.Message{}, err
	}
	s.indexMessage(msg)
	return msg, nil
}

// PostImageMessage appends an image message, encoded as a base64 data
// URI, unless the dedup guard has already seen this upload event. The
// second return value reports whether the message was admitted.
func (s *ChatStore) PostImageMessage(sender, receiver string, payload []byte, eventKey string) (domain.Message, bool, error) {
	detected := mimetype.Detect(payload)
	if !strings.HasPrefix(detected.String(), "image/") {
		return domain.Message{}, false, fmt.Errorf("%w: detected %s", errors.ErrUnsupportedImage, detected)
	}

	unlock, err := s.acquire()
	if err != nil {
		return domain.Message{}, false, err
	}
	defer unlock()

	// Checked under the store lock so concurrent submissions of the
	// same upload event cannot all pass before the first one records.
	key := uploadKey(sender, receiver, eventKey)
	if !s.guard.Admit(key) {
		s.log.Debug("duplicate upload suppressed", "sender", sender, "receiver", receiver, "event_key", eventKey)
		return domain.Message{}, false, nil
	}

	snapshot, err := s.backend.Load()
	if err != nil {
		return domain.Message{}, false, err
	}
	if err = checkParticipants(snapshot, sender, receiver); err != nil {
		return domain.Message{}, false, err
	}

	dataURI := "data:" + detected.String() + ";base64," + base64.StdEncoding.EncodeToString(payload)
	msg := domain.NewImageMessage(sender, receiver, dataURI, s.now())
	if err = s.backend.Apply(event.MessagePosted{Message: msg}); err != nil {
		return domain.Message{}, false, err
	}

	// Recorded only after the append is durable, so a failed save does
	// not burn the event key.
	s.guard.Record(key)
	return msg, true, nil
}

// Conversation returns all messages between the two users, oldest
// first. The result is symmetric in its arguments.
func (s *ChatStore) Conversation(userA, userB string) ([]domain.Message, error) {
	snapshot, err := s.backend.Load()
	if err != nil {
		return nil, err
	}
	return snapshot.Conversation(userA, userB), nil
}

// ClearConversation irreversibly removes every message between the two
// users, in both directions.
func (s *ChatStore) ClearConversation(userA, userB string) error {
	unlock, err := s.acquire()
	if err != nil {
		return err
	}
	defer unlock()

	snapshot, err := s.backend.Load()
	if err != nil {
		return err
	}
	cleared := snapshot.Conversation(userA, userB)

	if err = s.backend.Apply(event.ConversationCleared{UserA: userA, UserB: userB, At: s.now()}); err != nil {
		return err
	}

	if s.index != nil {
		for _, msg := range cleared {
			if err := s.index.Remove(msg.ID); err != nil {
				s.log.Warn("failed to drop message from search index", "id", msg.ID, "error", err)
			}
		}
	}
	return nil
}

// SearchMessages runs a /find style query over the indexed text
// messages and resolves the hits against the current snapshot.
func (s *ChatStore) SearchMessages(ctx context.Context, rawQuery string) ([]domain.Message, error) {
	if s.index == nil {
		return nil, fmt.Errorf("search index not configured")
	}

	hits, err := s.index.Search(ctx, dsearch.NewQuery(rawQuery))
	if err != nil {
		return nil, err
	}

	snapshot, err := s.backend.Load()
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(snapshot.Messages, func(m domain.Message) string { return m.ID.String() })

	var msgs []domain.Message
	for _, hit := range hits {
		if msg, ok := byID[hit.ID]; ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

// Stats returns the display counters for the info panel.
func (s *ChatStore) Stats() (domain.Stats, error) {
	snapshot, err := s.backend.Load()
	if err != nil {
		return domain.Stats{}, err
	}
	return snapshot.Stats(), nil
}

func (s *ChatStore) indexMessage(msg domain.Message) {
	if s.index == nil {
		return
	}
	if err := s.index.Index(msg); err != nil {
		s.log.Warn("failed to index message", "id", msg.ID, "error", err)
	}
}

func checkParticipants(snapshot domain.Snapshot, sender, receiver string) error {
	if !snapshot.HasUser(sender) || !snapshot.HasUser(receiver) {
		return fmt.Errorf("%w: %q -> %q", errors.ErrUnknownParticipant, sender, receiver)
	}
	return nil
}

var _ IChatStore = (*ChatStore)(nil)
