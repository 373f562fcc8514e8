// Package notify holds transient user-facing messages. Producers enqueue them
// with a lifetime and the renderer reads whatever is active.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Queue struct {
	mu    sync.Mutex
	items []Notification
	now   func() time.Time
}

func NewQueue() *Queue {
	return &Queue{now: time.Now}
}

// Enqueue adds a message that stays active for ttl. A non-positive ttl
// keeps it until dismissed.
func (q *Queue) Enqueue(msg string, severity Severity, ttl time.Duration) Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	created := q.now()
	n := Notification{
		ID:        uuid.NewString(),
		Message:   msg,
		Severity:  severity,
		CreatedAt: created,
	}
	if ttl > 0 {
		n.ExpiresAt = created.Add(ttl)
	}
	q.items = append(q.items, n)
	return n
}

// Active returns the messages still alive at now, oldest first, and drops the
// expired ones.
func (q *Queue) Active(now time.Time) []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.items[:0]
	for _, n := range q.items {
		if n.ExpiresAt.IsZero() || now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	q.items = kept
	out := make([]Notification, len(kept))
	copy(out, kept)
	return out
}

func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}
