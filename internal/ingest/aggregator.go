package ingest

import (
	"encoding/json"

	"github.com/Agent-Analytics/agent-analytics-core/internal/domain"
	"github.com/Agent-Analytics/agent-analytics-core/internal/storage"
)

const insertEventSQL = `INSERT INTO events
	(event_id, project_id, event_name, properties, user_id, session_id, timestamp, date)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// upsertSessionSQL creates-or-merges a session row in one conditional
// statement. Two events for the same session may arrive on independent
// request handlers, so the merge cannot be a read-then-write pair: the store
// evaluates min/max start/end, the conditional entry/exit page rules and the
// bounce flip against the stored row atomically. In the SET clauses bare
// column names refer to the stored row and excluded.* to the incoming one.
const upsertSessionSQL = `INSERT INTO sessions
	(session_id, user_id, project_id, started_at, ended_at, duration, entry_page, exit_page, event_count, bounce, date)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		started_at = MIN(started_at, excluded.started_at),
		ended_at = MAX(ended_at, excluded.ended_at),
		duration = MAX(ended_at, excluded.ended_at) - MIN(started_at, excluded.started_at),
		entry_page = CASE WHEN excluded.started_at < started_at THEN excluded.entry_page ELSE entry_page END,
		exit_page = CASE WHEN excluded.ended_at >= ended_at THEN excluded.exit_page ELSE exit_page END,
		event_count = event_count + excluded.event_count,
		bounce = CASE WHEN event_count + excluded.event_count > 1 THEN 0 ELSE 1 END`

// EventStatement builds the insert statement for one event.
func EventStatement(e *domain.Event) storage.Statement {
	var props any
	if len(e.Properties) > 0 {
		if b, err := json.Marshal(e.Properties); err == nil {
			props = string(b)
		}
	}

	return storage.Statement{
		SQL: insertEventSQL,
		Args: []any{
			e.EventID,
			e.ProjectID,
			e.EventName,
			props,
			nullable(e.UserID),
			nullable(e.SessionID),
			e.Timestamp,
			e.Date,
		},
	}
}

// FoldSessions folds same-session events into one accumulated upsert per
// session, in first-seen order. Events without a session identifier are
// skipped. Folding client-side keeps a multi-event batch down to a single
// conditional upsert per session.
func FoldSessions(events []*domain.Event) []storage.Statement {
	type fold struct {
		session *domain.Session
	}

	order := make([]string, 0)
	folds := make(map[string]*fold)

	for _, e := range events {
		if e.SessionID == "" {
			continue
		}

		f, ok := folds[e.SessionID]
		if !ok {
			f = &fold{session: &domain.Session{
				SessionID:  e.SessionID,
				UserID:     e.UserID,
				ProjectID:  e.ProjectID,
				StartedAt:  e.Timestamp,
				EndedAt:    e.Timestamp,
				EntryPage:  e.Page(),
				ExitPage:   e.Page(),
				EventCount: 1,
				Date:       e.Date,
			}}
			folds[e.SessionID] = f
			order = append(order, e.SessionID)
			continue
		}

		s := f.session
		s.EventCount++
		if e.Timestamp < s.StartedAt {
			s.StartedAt = e.Timestamp
			s.EntryPage = e.Page()
			s.Date = e.Date
		}
		if e.Timestamp >= s.EndedAt {
			s.EndedAt = e.Timestamp
			s.ExitPage = e.Page()
		}
	}

	stmts := make([]storage.Statement, 0, len(order))
	for _, id := range order {
		s := folds[id].session
		s.Duration = s.EndedAt - s.StartedAt
		bounce := int64(1)
		if s.EventCount > 1 {
			bounce = 0
		}

		stmts = append(stmts, storage.Statement{
			SQL: upsertSessionSQL,
			Args: []any{
				s.SessionID,
				nullable(s.UserID),
				s.ProjectID,
				s.StartedAt,
				s.EndedAt,
				s.Duration,
				s.EntryPage,
				s.ExitPage,
				s.EventCount,
				bounce,
				s.Date,
			},
		})
	}
	return stmts
}

// BatchStatements builds the atomic event-insert + session-upsert batch for a
// set of events. The caller submits it through ExecuteBatch so a crash cannot
// leave an event recorded without its session update.
func BatchStatements(events []*domain.Event) []storage.Statement {
	stmts := make([]storage.Statement, 0, len(events)+1)
	for _, e := range events {
		stmts = append(stmts, EventStatement(e))
	}
	stmts = append(stmts, FoldSessions(events)...)
	return stmts
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
