package datastore

import (
	"time"

	"github.com/google/uuid"

	"caption-eval-compare/backend/internal/coreengine/resultset"
)

// Session is one ingested, normalized result set. A session is never
// modified after it is published.
type Session struct {
	ID       uuid.UUID            `json:"id"`
	Source   string               `json:"source"`
	LoadedAt time.Time            `json:"loaded_at"`
	Results  *resultset.ResultSet `json:"-"`
}

// SessionInfo is the public description of a session.
type SessionInfo struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	LoadedAt    time.Time `json:"loaded_at"`
	ResultCount int       `json:"result_count"`
}

func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:          s.ID.String(),
		Source:      s.Source,
		LoadedAt:    s.LoadedAt,
		ResultCount: s.Results.Len(),
	}
}
