package ingest

import (
	"context"

	"github.com/Agent-Analytics/agent-analytics-core/internal/dto"
)

// Ingestor accepts tracked events. Implemented by Service for direct writes
// and by the queue publisher for deferred ingestion.
type Ingestor interface {
	Track(ctx context.Context, req *dto.TrackEventRequest) (string, error)
	TrackMany(ctx context.Context, reqs []dto.TrackEventRequest) ([]string, []string, error)
}

// Retention deletes aged-out rows. Sessions whose date precedes the cutoff
// are destroyed; the matching event cleanup is the only path that removes
// events.
type Retention interface {
	CleanupSessions(ctx context.Context, projectID, before string) error
	CleanupEvents(ctx context.Context, projectID, before string) error
}
