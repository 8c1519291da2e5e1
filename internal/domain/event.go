package domain

// Event represents a single tracked behavioral event. Events are immutable
// facts: once written they are never updated, only removed by bulk retention
// cleanup.
type Event struct {
	EventID    string
	ProjectID  string
	EventName  string
	Properties map[string]any
	UserID     string
	SessionID  string
	Timestamp  int64 // epoch milliseconds
	Date       string
}

// Page returns the page associated with the event, taken from the `path`
// property with `url` as fallback. Events carrying neither contribute a nil
// page to session aggregates.
func (e *Event) Page() *string {
	for _, key := range []string{"path", "url"} {
		if v, ok := e.Properties[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return &s
			}
		}
	}
	return nil
}
