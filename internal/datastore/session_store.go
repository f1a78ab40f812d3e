// Package datastore keeps the result set currently being analyzed.
package datastore

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"caption-eval-compare/backend/internal/coreengine/resultset"
)

// ErrNoSession is returned before anything has been ingested.
var ErrNoSession = errors.New("no result set has been ingested")

// SessionStore publishes whole sessions atomically. Readers get either
// the previous or the new session, never a mix.
type SessionStore struct {
	current atomic.Pointer[Session]
	now     func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{now: time.Now}
}

// Replace publishes set as the current session.
func (s *SessionStore) Replace(source string, set *resultset.ResultSet) *Session {
	if set == nil {
		set = &resultset.ResultSet{}
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	sess := &Session{
		ID:       uuid.New(),
		Source:   source,
		LoadedAt: now().UTC(),
		Results:  set,
	}
	s.current.Store(sess)
	return sess
}

// Current returns the published session.
func (s *SessionStore) Current() (*Session, error) {
	sess := s.current.Load()
	if sess == nil {
		return nil, ErrNoSession
	}
	return sess, nil
}
