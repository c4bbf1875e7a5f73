package chat

import (
	"context"
	"sync"
	"time"
)

// userLimiter is a sliding-window limiter keyed by chat user.
type userLimiter struct {
	mu    sync.Mutex
	users map[string]*window
	limit int
	span  time.Duration
	now   func() time.Time
}

type window struct {
	hits     []time.Time
	lastSeen time.Time
}

// newUserLimiter returns nil when limit or span is not positive; a nil limiter allows everything.
func newUserLimiter(limit int, span time.Duration) *userLimiter {
	if limit <= 0 || span <= 0 {
		return nil
	}
	return &userLimiter{users: make(map[string]*window), limit: limit, span: span, now: time.Now}
}

// cleanupLoop drops idle users until ctx is done.
func (l *userLimiter) cleanupLoop(ctx context.Context) {
	if l == nil {
		return
	}
	ticker := time.NewTicker(l.span)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-ctx.Done():
			return
		}
	}
}

// cleanup removes users with no hits in the last two windows.
func (l *userLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for user, w := range l.users {
		if now.Sub(w.lastSeen) > l.span*2 {
			delete(l.users, user)
		}
	}
}

// allow records a hit for user and reports whether it fits the window.
func (l *userLimiter) allow(user string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.users[user]
	if !ok {
		l.users[user] = &window{hits: []time.Time{now}, lastSeen: now}
		return true
	}

	cutoff := now.Add(-l.span)
	kept := w.hits[:0]
	for _, t := range w.hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.hits = kept
	w.lastSeen = now

	if len(w.hits) >= l.limit {
		return false
	}
	w.hits = append(w.hits, now)
	return true
}
