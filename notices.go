package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultNoticeTTL = 4 * time.Second

type noticeLevel string

const (
	noticeSuccess noticeLevel = "success"
	noticeError   noticeLevel = "error"
)

type notice struct {
	ID        string
	Level     noticeLevel
	Message   string
	ExpiresAt time.Time
}

// noticeCenter is the single notification component for the whole dashboard.
// Every screen pushes success notices here; they auto-dismiss after one shared
// TTL instead of each screen running its own timer. Error notices belong to
// the action that produced them and are rendered inline, not stored here.
type noticeCenter struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	notices map[string][]notice
}

func newNoticeCenter(ttl time.Duration) *noticeCenter {
	if ttl <= 0 {
		ttl = defaultNoticeTTL
	}
	return &noticeCenter{
		ttl:     ttl,
		now:     time.Now,
		notices: make(map[string][]notice),
	}
}

// Push records a success notice for the given session.
func (n *noticeCenter) Push(sessionKey, message string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	entry := notice{
		ID:        uuid.NewString(),
		Level:     noticeSuccess,
		Message:   message,
		ExpiresAt: n.now().Add(n.ttl),
	}
	n.notices[sessionKey] = append(n.notices[sessionKey], entry)
	return entry.ID
}

// Active returns the not-yet-expired notices for a session and drops the rest.
func (n *noticeCenter) Active(sessionKey string) []notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	kept := n.notices[sessionKey][:0]
	for _, entry := range n.notices[sessionKey] {
		if entry.ExpiresAt.After(now) {
			kept = append(kept, entry)
		}
	}
	if len(kept) == 0 {
		delete(n.notices, sessionKey)
		return nil
	}
	n.notices[sessionKey] = kept
	out := make([]notice, len(kept))
	copy(out, kept)
	return out
}

// Dismiss removes a single notice ahead of its timer, for screens that render
// an explicit close button.
func (n *noticeCenter) Dismiss(sessionKey, noticeID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	entries := n.notices[sessionKey]
	kept := entries[:0]
	for _, entry := range entries {
		if entry.ID != noticeID {
			kept = append(kept, entry)
		}
	}
	if len(kept) == 0 {
		delete(n.notices, sessionKey)
		return
	}
	n.notices[sessionKey] = kept
}

// TTLSeconds is exposed to templates so the client dismisses on the same
// schedule the server prunes on.
func (n *noticeCenter) TTLSeconds() int {
	return int(n.ttl / time.Second)
}
