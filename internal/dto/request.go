package dto

// TrackEventRequest represents a single tracked event submission
type TrackEventRequest struct {
	ProjectID  string         `json:"project_id" binding:"required" example:"proj_123"`
	EventName  string         `json:"event_name" binding:"required" example:"page_view"`
	UserID     string         `json:"user_id" example:"user_123"`
	SessionID  string         `json:"session_id" example:"sess_456"`
	Timestamp  int64          `json:"timestamp" example:"1723475612000"`
	Properties map[string]any `json:"properties" swaggertype:"object,string" example:"path:/pricing,referrer:google"`
}

// TrackEventsBulkRequest represents a batched event submission
type TrackEventsBulkRequest struct {
	Events []TrackEventRequest `json:"events" binding:"required,min=1,max=1000,dive"`
}

// QueuedEvent is the wire shape of one event on the queue between the API
// publisher and the consumer
type QueuedEvent struct {
	EventID    string         `json:"event_id"`
	ProjectID  string         `json:"project_id"`
	EventName  string         `json:"event_name"`
	UserID     string         `json:"user_id,omitempty"`
	SessionID  string         `json:"session_id,omitempty"`
	Timestamp  int64          `json:"timestamp"`
	Properties map[string]any `json:"properties,omitempty"`
}

// StatsRequest represents a stats overview query
type StatsRequest struct {
	ProjectID   string `form:"project" binding:"required" example:"proj_123"`
	Granularity string `form:"granularity" example:"day"`
	DateFrom    string `form:"date_from" example:"2026-08-20"`
	DateTo      string `form:"date_to" example:"2026-08-27"`
}

// BreakdownRequest represents a property breakdown query
type BreakdownRequest struct {
	ProjectID string `form:"project" binding:"required" example:"proj_123"`
	Property  string `form:"property" binding:"required" example:"path"`
	Event     string `form:"event" example:"page_view"`
	Since     string `form:"since" example:"2026-08-01"`
	Limit     int    `form:"limit" example:"20"`
}

// InsightsRequest represents a period-over-period insights query
type InsightsRequest struct {
	ProjectID string `form:"project" binding:"required" example:"proj_123"`
	Period    string `form:"period" example:"7d"`
}

// PagesRequest represents an entry/exit page aggregation query
type PagesRequest struct {
	ProjectID string `form:"project" binding:"required" example:"proj_123"`
	Kind      string `form:"kind" example:"both"`
	DateFrom  string `form:"date_from" example:"2026-08-20"`
	DateTo    string `form:"date_to" example:"2026-08-27"`
	Limit     int    `form:"limit" example:"20"`
}

// DistributionRequest represents a session-duration distribution query
type DistributionRequest struct {
	ProjectID string `form:"project" binding:"required" example:"proj_123"`
	DateFrom  string `form:"date_from" example:"2026-08-20"`
	DateTo    string `form:"date_to" example:"2026-08-27"`
}

// HeatmapRequest represents a day/hour heatmap query
type HeatmapRequest struct {
	ProjectID string `form:"project" binding:"required" example:"proj_123"`
	DateFrom  string `form:"date_from" example:"2026-08-20"`
	DateTo    string `form:"date_to" example:"2026-08-27"`
}

// CleanupRequest represents a retention cleanup request
type CleanupRequest struct {
	ProjectID string `json:"project_id" binding:"required" example:"proj_123"`
	Before    string `json:"before" binding:"required" example:"2026-01-01"`
}
