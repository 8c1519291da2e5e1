package consumer

import (
	"context"

	"github.com/Agent-Analytics/agent-analytics-core/internal/domain"
)

// MessageParser defines the interface for parsing raw message bytes into events
type MessageParser interface {
	Parse(body []byte) (*domain.Event, error)
}

// EventWriter writes a batch of events together with their folded session
// upserts as one atomic unit.
type EventWriter interface {
	WriteBatch(ctx context.Context, events []*domain.Event) (int, error)
}
