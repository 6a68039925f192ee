package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Level string

const (
	Success Level = "success"
	Info    Level = "info"
	Error   Level = "error"
)

const (
	ShortDuration = 3 * time.Second
	LongDuration  = 5 * time.Second
)

var log = logrus.WithField("module", "notify")

// Notification is a transient user-facing message.
type Notification struct {
	ID        string        `json:"id"`
	Level     Level         `json:"level"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"createdAt"`
	Duration  time.Duration `json:"duration"`
}

// Expired reports whether the notification should no longer be displayed at now.
func (n Notification) Expired(now time.Time) bool {
	return now.Sub(n.CreatedAt) >= n.Duration
}

type Notifier interface {
	Notify(level Level, message string) Notification
}

// Feed keeps the most recent notifications in memory.
type Feed struct {
	mu      sync.RWMutex
	items   []Notification
	maxSize int
	now     func() time.Time
}

func NewFeed(maxSize int) *Feed {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Feed{maxSize: maxSize, now: time.Now}
}

func (f *Feed) Notify(level Level, message string) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: f.now(),
		Duration:  durationFor(level),
	}

	entry := log.WithField("level", string(level))
	if level == Error {
		entry.Warn(message)
	} else {
		entry.Info(message)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
	if len(f.items) > f.maxSize {
		f.items = append(f.items[:0:0], f.items[len(f.items)-f.maxSize:]...)
	}
	return n
}

// Active returns the notifications still displayable at now, oldest first.
func (f *Feed) Active(now time.Time) []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Notification, 0, len(f.items))
	for _, n := range f.items {
		if !n.Expired(now) {
			out = append(out, n)
		}
	}
	return out
}

// Recent returns every retained notification, oldest first.
func (f *Feed) Recent() []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Notification, len(f.items))
	copy(out, f.items)
	return out
}

func durationFor(level Level) time.Duration {
	if level == Error {
		return LongDuration
	}
	return ShortDuration
}
