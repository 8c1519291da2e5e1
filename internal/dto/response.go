package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"validation_error"`
	Message string `json:"message,omitempty" example:"invalid metric: clicks"`
}

// Period represents a resolved date range
type Period struct {
	DateFrom string `json:"date_from" example:"2026-08-20"`
	DateTo   string `json:"date_to" example:"2026-08-27"`
}

// TrackEventResponse represents a successful event ingestion response
type TrackEventResponse struct {
	EventID string `json:"event_id" example:"01J5ZC3F9Q4R8T0V2X4Z6B8D0F"`
	Status  string `json:"status" example:"accepted"`
}

// TrackEventsBulkResponse represents a successful bulk ingestion response
type TrackEventsBulkResponse struct {
	Accepted int      `json:"accepted" example:"5"`
	Rejected int      `json:"rejected" example:"0"`
	EventIDs []string `json:"event_ids,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// QueryResponse represents the flexible query endpoint response
type QueryResponse struct {
	Period  Period           `json:"period"`
	Metrics []string         `json:"metrics"`
	GroupBy []string         `json:"group_by"`
	Rows    []map[string]any `json:"rows"`
	Count   int              `json:"count"`
}

// TimeBucket represents one bucket of the stats time series
type TimeBucket struct {
	Bucket      string `json:"bucket" example:"2026-08-27"`
	Events      int64  `json:"events" example:"120"`
	UniqueUsers int64  `json:"unique_users" example:"42"`
}

// EventCount represents one entry of the top-events list
type EventCount struct {
	EventName string `json:"event_name" example:"page_view"`
	Count     int64  `json:"count" example:"310"`
}

// Totals represents window-wide event totals
type Totals struct {
	TotalEvents int64 `json:"total_events" example:"500"`
	UniqueUsers int64 `json:"unique_users" example:"87"`
}

// SessionStats represents window-wide session statistics
type SessionStats struct {
	TotalSessions   int64   `json:"total_sessions" example:"96"`
	BounceRate      float64 `json:"bounce_rate" example:"0.42"`
	AvgDuration     float64 `json:"avg_duration" example:"73500"`
	PagesPerSession float64 `json:"pages_per_session" example:"3.1"`
	SessionsPerUser float64 `json:"sessions_per_user" example:"1.4"`
}

// StatsResponse represents the stats overview response
type StatsResponse struct {
	ProjectID   string       `json:"project_id"`
	Granularity string       `json:"granularity" example:"day"`
	Period      Period       `json:"period"`
	Series      []TimeBucket `json:"series"`
	TopEvents   []EventCount `json:"top_events"`
	Totals      Totals       `json:"totals"`
	Sessions    SessionStats `json:"sessions"`
}

// BreakdownValue represents one value row of a property breakdown
type BreakdownValue struct {
	Value       string `json:"value" example:"/home"`
	Count       int64  `json:"count" example:"5"`
	UniqueUsers int64  `json:"unique_users" example:"4"`
}

// BreakdownResponse represents the property breakdown response
type BreakdownResponse struct {
	Property          string           `json:"property" example:"path"`
	Event             string           `json:"event,omitempty" example:"page_view"`
	Values            []BreakdownValue `json:"values"`
	TotalEvents       int64            `json:"total_events" example:"9"`
	TotalWithProperty int64            `json:"total_with_property" example:"9"`
}

// DeltaMetric represents one period-over-period comparison.
// ChangePct is null when the previous period is zero and the current one is
// not; that is a division-by-zero sentinel, not an error.
type DeltaMetric struct {
	Current   float64  `json:"current" example:"5"`
	Previous  float64  `json:"previous" example:"0"`
	Change    float64  `json:"change" example:"5"`
	ChangePct *float64 `json:"change_pct"`
}

// InsightsResponse represents the period-over-period insights response
type InsightsResponse struct {
	CurrentPeriod  Period                 `json:"current_period"`
	PreviousPeriod Period                 `json:"previous_period"`
	Metrics        map[string]DeltaMetric `json:"metrics"`
	Trend          string                 `json:"trend" example:"growing"`
}

// PageStats represents aggregated session statistics for one page
type PageStats struct {
	Page        string  `json:"page" example:"/home"`
	Sessions    int64   `json:"sessions" example:"40"`
	Bounces     int64   `json:"bounces" example:"12"`
	BounceRate  float64 `json:"bounce_rate" example:"0.3"`
	AvgDuration float64 `json:"avg_duration" example:"64000"`
	AvgEvents   float64 `json:"avg_events" example:"2.8"`
}

// PagesResponse represents the entry/exit page aggregation response
type PagesResponse struct {
	Period     Period      `json:"period"`
	EntryPages []PageStats `json:"entry_pages,omitempty"`
	ExitPages  []PageStats `json:"exit_pages,omitempty"`
}

// DurationBucket represents one bucket of the session-duration distribution
type DurationBucket struct {
	Bucket    string  `json:"bucket" example:"30-60s"`
	Sessions  int64   `json:"sessions" example:"12"`
	Bounces   int64   `json:"bounces" example:"2"`
	AvgEvents float64 `json:"avg_events" example:"3.5"`
	Pct       float64 `json:"pct" example:"14.3"`
}

// DistributionResponse represents the session-duration distribution response
type DistributionResponse struct {
	Period       Period           `json:"period"`
	Distribution []DurationBucket `json:"distribution"`
	MedianBucket *string          `json:"median_bucket"`
	EngagedPct   float64          `json:"engaged_pct" example:"57.1"`
}

// HeatmapCell represents one day-of-week/hour-of-day cell
type HeatmapCell struct {
	Day         int   `json:"day" example:"1"`
	Hour        int   `json:"hour" example:"14"`
	Events      int64 `json:"events" example:"33"`
	UniqueUsers int64 `json:"unique_users" example:"17"`
}

// HeatmapResponse represents the day/hour heatmap response
type HeatmapResponse struct {
	Period      Period        `json:"period"`
	Cells       []HeatmapCell `json:"cells"`
	Peak        *HeatmapCell  `json:"peak"`
	BusiestDay  *int          `json:"busiest_day"`
	BusiestHour *int          `json:"busiest_hour"`
}

// CleanupResponse represents a retention cleanup acknowledgment
type CleanupResponse struct {
	Status string `json:"status" example:"ok"`
	Before string `json:"before" example:"2026-01-01"`
}
