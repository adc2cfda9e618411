package services

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// UploadGuard suppresses accidental duplicate image submissions: a
// view layer that re-runs the post path on every re-render submits
// the same upload event over and over. The guard admits exactly one
// message per distinct event key.
//
// The seen set lives only as long as the guard, not across restarts,
// so the same file can legitimately be re-sent in a later session.
// That trade-off is deliberate.
type UploadGuard struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewUploadGuard() *UploadGuard {
	return &UploadGuard{seen: make(map[string]struct{})}
}

// Admit reports whether the key has not been recorded yet. The caller
// must Record the key once the message is durably appended.
func (g *UploadGuard) Admit(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, dup := g.seen[key]
	return !dup
}

// Record marks the key as seen for the lifetime of this guard.
func (g *UploadGuard) Record(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seen[key] = struct{}{}
}

// uploadKey derives the guard key for one upload event. Keying on
// (sender, receiver, event key) rather than raw content means a user
// can still re-send the same picture under another filename.
func uploadKey(sender, receiver, eventKey string) string {
	sum := sha256.Sum256([]byte(sender + "\x00" + receiver + "\x00" + eventKey))
	return hex.EncodeToString(sum[:])
}
