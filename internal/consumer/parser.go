package consumer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Agent-Analytics/agent-analytics-core/internal/domain"
	"github.com/Agent-Analytics/agent-analytics-core/internal/dto"
	"github.com/Agent-Analytics/agent-analytics-core/internal/ingest"
)

// JSONEventParser implements MessageParser for the queued-event wire format
type JSONEventParser struct{}

// NewJSONEventParser creates a new JSON event parser
func NewJSONEventParser() *JSONEventParser {
	return &JSONEventParser{}
}

// Parse parses a queued-event message body into a domain event. The event
// identifier minted at publish time is reused when present so a redelivered
// message keeps its identity.
func (p *JSONEventParser) Parse(body []byte) (*domain.Event, error) {
	var queued dto.QueuedEvent
	if err := json.Unmarshal(body, &queued); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	if queued.ProjectID == "" {
		return nil, fmt.Errorf("message missing project_id")
	}
	if queued.EventName == "" {
		return nil, fmt.Errorf("message missing event_name")
	}

	ts := queued.Timestamp
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	eventID := queued.EventID
	if eventID == "" {
		eventID = ingest.NewEventID(ts)
	}

	return &domain.Event{
		EventID:    eventID,
		ProjectID:  queued.ProjectID,
		EventName:  queued.EventName,
		Properties: queued.Properties,
		UserID:     queued.UserID,
		SessionID:  queued.SessionID,
		Timestamp:  ts,
		Date:       ingest.DateOf(ts),
	}, nil
}
