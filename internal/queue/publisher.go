package queue

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Agent-Analytics/agent-analytics-core/internal/dto"
	"github.com/Agent-Analytics/agent-analytics-core/internal/ingest"
)

// Publisher is the queued ingestion path: it validates events, mints their
// identifiers, and defers the actual write to the consumer. It satisfies the
// same Ingestor contract as the direct path.
type Publisher struct {
	queue QueuePublisher
	log   *zap.Logger
}

// NewPublisher creates a queue-backed ingestor.
func NewPublisher(queue QueuePublisher, log *zap.Logger) *Publisher {
	return &Publisher{
		queue: queue,
		log:   log,
	}
}

// Track validates the event and publishes it for deferred ingestion. The
// event identifier is minted here so the caller's acknowledgment carries it;
// the consumer reuses the carried identifier.
func (p *Publisher) Track(ctx context.Context, req *dto.TrackEventRequest) (string, error) {
	event, err := ingest.NewEvent(req, "", time.Now())
	if err != nil {
		return "", err
	}

	queued := &dto.QueuedEvent{
		EventID:    event.EventID,
		ProjectID:  event.ProjectID,
		EventName:  event.EventName,
		UserID:     event.UserID,
		SessionID:  event.SessionID,
		Timestamp:  event.Timestamp,
		Properties: event.Properties,
	}

	if err := p.queue.PublishEvent(ctx, queued); err != nil {
		return "", err
	}
	return event.EventID, nil
}

// TrackMany publishes each event of a batch, collecting per-event errors the
// way the direct path does.
func (p *Publisher) TrackMany(ctx context.Context, reqs []dto.TrackEventRequest) ([]string, []string, error) {
	var ids []string
	var errs []string

	for i := range reqs {
		id, err := p.Track(ctx, &reqs[i])
		if err != nil {
			errs = append(errs, err.Error())
			p.log.Warn("Failed to publish event in bulk",
				zap.Int("index", i),
				zap.String("event_name", reqs[i].EventName),
				zap.Error(err))
			continue
		}
		ids = append(ids, id)
	}
	return ids, errs, nil
}
