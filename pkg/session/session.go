// Package session tracks idle time of authenticated API sessions and tears
// them down after a period without activity.
package session

import (
	"sync"
	"time"
)

// Session is one authenticated session. Its idle timer restarts on every Touch.
type Session struct {
	Key      string
	Owner    string
	Started  time.Time
	Expires  time.Time // credential expiry; zero if unknown
	mu       sync.Mutex
	timer    *time.Timer
	expired  bool
	lastSeen time.Time
}

// Expired reports whether the session has been torn down.
func (s *Session) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expired
}

// LastSeen is the time of the most recent activity.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Tracker owns all live sessions. A zero timeout disables expiry.
type Tracker struct {
	timeout    time.Duration
	onTeardown func(*Session)

	mu       sync.Mutex
	sessions map[string]*Session
	ended    map[string]time.Time // key -> time until which it stays rejected
}

// endedRetention is how long a torn down key without a known expiry is
// remembered.
const endedRetention = 24 * time.Hour

// NewTracker creates a Tracker. onTeardown runs once per expired session, on
// the timer goroutine.
func NewTracker(timeout time.Duration, onTeardown func(*Session)) *Tracker {
	return &Tracker{
		timeout:    timeout,
		onTeardown: onTeardown,
		sessions:   make(map[string]*Session),
		ended:      make(map[string]time.Time),
	}
}

// Touch records activity for key, starting a session on first use. expires is
// when the credential behind key stops being valid. It returns false if the
// session for key has already ended; an ended key stays rejected until its
// expiry.
func (t *Tracker) Touch(key, owner string, expires time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, dead := t.ended[key]; dead {
		return false
	}

	now := time.Now()
	s, ok := t.sessions[key]
	if !ok {
		s = &Session{Key: key, Owner: owner, Started: now, Expires: expires, lastSeen: now}
		t.sessions[key] = s
		if t.timeout > 0 {
			s.timer = time.AfterFunc(t.timeout, func() { t.expire(s, true) })
		}
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expired {
		return false
	}
	s.lastSeen = now
	if s.timer != nil {
		s.timer.Reset(t.timeout)
	}
	return true
}

// End tears a session down immediately, as on logout.
func (t *Tracker) End(key string) {
	t.mu.Lock()
	s, ok := t.sessions[key]
	t.mu.Unlock()
	if ok {
		t.expire(s, false)
	}
}

// Active returns the number of live sessions.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

func (t *Tracker) expire(s *Session, idle bool) {
	t.mu.Lock()
	s.mu.Lock()
	// A Touch may have reset the timer after it fired.
	if s.expired || (idle && time.Since(s.lastSeen) < t.timeout) {
		s.mu.Unlock()
		t.mu.Unlock()
		return
	}
	s.expired = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	delete(t.sessions, s.Key)
	now := time.Now()
	for key, until := range t.ended {
		if now.After(until) {
			delete(t.ended, key)
		}
	}
	until := s.Expires
	if until.IsZero() {
		until = now.Add(endedRetention)
	}
	t.ended[s.Key] = until
	t.mu.Unlock()

	if t.onTeardown != nil {
		t.onTeardown(s)
	}
}
