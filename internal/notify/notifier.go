package notify

import (
	"sync"
	"time"
)

const DefaultTTL = 5 * time.Second

type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

type Notice struct {
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Notifier keeps a single self-clearing notice per session. A new notice
// replaces the previous one; a notice older than the TTL reads as absent.
type Notifier struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	notices map[string]Notice
}

type Option func(*Notifier)

func WithClock(now func() time.Time) Option {
	return func(n *Notifier) { n.now = now }
}

func New(ttl time.Duration, opts ...Option) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	n := &Notifier{
		ttl:     ttl,
		now:     time.Now,
		notices: make(map[string]Notice),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) Publish(session string, level Level, message string) Notice {
	now := n.now()
	notice := Notice{
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(n.ttl),
	}

	n.mu.Lock()
	n.notices[session] = notice
	n.mu.Unlock()

	return notice
}

func (n *Notifier) Current(session string) *Notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	notice, ok := n.notices[session]
	if !ok {
		return nil
	}
	if !n.now().Before(notice.ExpiresAt) {
		delete(n.notices, session)
		return nil
	}
	return &notice
}

func (n *Notifier) Dismiss(session string) {
	n.mu.Lock()
	delete(n.notices, session)
	n.mu.Unlock()
}
