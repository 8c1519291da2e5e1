package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/Agent-Analytics/agent-analytics-core/internal/domain"
	"github.com/Agent-Analytics/agent-analytics-core/internal/dto"
	"github.com/Agent-Analytics/agent-analytics-core/internal/experiment"
	"github.com/Agent-Analytics/agent-analytics-core/internal/storage"
)

// ErrFutureTimestamp marks events whose timestamp lies ahead of server time.
var ErrFutureTimestamp = errors.New("timestamp cannot be in the future")

// allowed clock skew before an event timestamp counts as future
const futureSkew = int64(time.Second / time.Millisecond)

// Service writes events and their session aggregates through the storage
// port.
type Service struct {
	store storage.Store
	log   *zap.Logger
}

// NewService creates a new ingestion service.
func NewService(store storage.Store, log *zap.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
	}
}

// NewEventID mints a time-ordered, collision-free event identifier.
func NewEventID(timestamp int64) string {
	return ulid.MustNew(uint64(timestamp), ulid.DefaultEntropy()).String()
}

// DateOf derives the denormalized calendar date from an epoch-ms timestamp.
func DateOf(timestamp int64) string {
	return time.UnixMilli(timestamp).UTC().Format("2006-01-02")
}

// NewEvent builds a domain event from a track request. A zero timestamp
// defaults to now; an empty eventID mints a fresh ULID.
func NewEvent(req *dto.TrackEventRequest, eventID string, now time.Time) (*domain.Event, error) {
	ts := req.Timestamp
	if ts == 0 {
		ts = now.UnixMilli()
	}
	if ts > now.UnixMilli()+futureSkew {
		return nil, fmt.Errorf("%w: %d > %d", ErrFutureTimestamp, ts, now.UnixMilli())
	}
	if eventID == "" {
		eventID = NewEventID(ts)
	}

	return &domain.Event{
		EventID:    eventID,
		ProjectID:  req.ProjectID,
		EventName:  req.EventName,
		Properties: req.Properties,
		UserID:     req.UserID,
		SessionID:  req.SessionID,
		Timestamp:  ts,
		Date:       DateOf(ts),
	}, nil
}

// Track ingests a single event atomically with its session upsert.
func (s *Service) Track(ctx context.Context, req *dto.TrackEventRequest) (string, error) {
	event, err := NewEvent(req, "", time.Now())
	if err != nil {
		s.log.Warn("Rejected event",
			zap.String("event_name", req.EventName),
			zap.Error(err))
		return "", err
	}

	if _, err := s.WriteBatch(ctx, []*domain.Event{event}); err != nil {
		return "", err
	}
	return event.EventID, nil
}

// TrackMany validates and ingests multiple events as one atomic batch,
// folding same-session events into a single session upsert.
func (s *Service) TrackMany(ctx context.Context, reqs []dto.TrackEventRequest) ([]string, []string, error) {
	now := time.Now()
	events := make([]*domain.Event, 0, len(reqs))
	var errs []string

	for i := range reqs {
		event, err := NewEvent(&reqs[i], "", now)
		if err != nil {
			errs = append(errs, err.Error())
			s.log.Warn("Failed to build event in bulk",
				zap.Int("index", i),
				zap.String("event_name", reqs[i].EventName),
				zap.Error(err))
			continue
		}
		events = append(events, event)
	}

	if _, err := s.WriteBatch(ctx, events); err != nil {
		return nil, errs, err
	}

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.EventID
	}
	return ids, errs, nil
}

// WriteBatch applies the event inserts and folded session upserts for the
// given events as one all-or-nothing batch. Returns the number of events
// written.
func (s *Service) WriteBatch(ctx context.Context, events []*domain.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	if err := s.store.ExecuteBatch(ctx, BatchStatements(events)); err != nil {
		return 0, fmt.Errorf("failed to write event batch: %w", err)
	}

	s.log.Debug("Event batch written", zap.Int("event_count", len(events)))
	return len(events), nil
}

// TrackExposure records an experiment exposure through the ordinary
// ingestion path, so exposure counts live next to every other event.
func (s *Service) TrackExposure(ctx context.Context, exp experiment.Exposure) error {
	props := map[string]any{
		"experiment": exp.Experiment,
		"variant":    exp.Variant,
	}
	if exp.Forced {
		props["forced"] = true
	}

	_, err := s.Track(ctx, &dto.TrackEventRequest{
		ProjectID:  exp.ProjectID,
		EventName:  experiment.ExposureEventName,
		UserID:     exp.UserID,
		Properties: props,
	})
	return err
}

// CleanupSessions deletes sessions whose date precedes the cutoff.
func (s *Service) CleanupSessions(ctx context.Context, projectID, before string) error {
	if err := s.store.Execute(ctx,
		`DELETE FROM sessions WHERE project_id = ? AND date < ?`,
		projectID, before); err != nil {
		return fmt.Errorf("failed to clean up sessions: %w", err)
	}
	return nil
}

// CleanupEvents bulk-deletes events whose date precedes the cutoff. This is
// the only path that removes events.
func (s *Service) CleanupEvents(ctx context.Context, projectID, before string) error {
	if err := s.store.Execute(ctx,
		`DELETE FROM events WHERE project_id = ? AND date < ?`,
		projectID, before); err != nil {
		return fmt.Errorf("failed to clean up events: %w", err)
	}
	return nil
}
