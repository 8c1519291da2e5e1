package analytics

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Agent-Analytics/agent-analytics-core/internal/dto"
	"github.com/Agent-Analytics/agent-analytics-core/internal/query"
)

// periodMetrics holds one period's raw aggregates.
type periodMetrics struct {
	TotalEvents   float64
	UniqueUsers   float64
	TotalSessions float64
	BounceRate    float64
	AvgDuration   float64
}

// Insights compares the current N-day period against the equal-length period
// immediately preceding it and classifies the overall trend from the
// total_events delta.
func (s *Service) Insights(ctx context.Context, req *dto.InsightsRequest) (*dto.InsightsResponse, error) {
	days := parsePeriodDays(req.Period)

	now := time.Now().UTC()
	curTo := now.Format("2006-01-02")
	curFrom := now.AddDate(0, 0, -days).Format("2006-01-02")
	prevTo := now.AddDate(0, 0, -days-1).Format("2006-01-02")
	prevFrom := now.AddDate(0, 0, -2*days-1).Format("2006-01-02")

	current, err := s.periodMetrics(ctx, req.ProjectID, curFrom, curTo)
	if err != nil {
		return nil, err
	}
	previous, err := s.periodMetrics(ctx, req.ProjectID, prevFrom, prevTo)
	if err != nil {
		return nil, err
	}

	metrics := map[string]dto.DeltaMetric{
		"total_events":   delta(current.TotalEvents, previous.TotalEvents),
		"unique_users":   delta(current.UniqueUsers, previous.UniqueUsers),
		"total_sessions": delta(current.TotalSessions, previous.TotalSessions),
		"bounce_rate":    delta(current.BounceRate, previous.BounceRate),
		"avg_duration":   delta(current.AvgDuration, previous.AvgDuration),
	}

	return &dto.InsightsResponse{
		CurrentPeriod:  dto.Period{DateFrom: curFrom, DateTo: curTo},
		PreviousPeriod: dto.Period{DateFrom: prevFrom, DateTo: prevTo},
		Metrics:        metrics,
		Trend:          trend(metrics["total_events"].ChangePct),
	}, nil
}

func (s *Service) periodMetrics(ctx context.Context, projectID, dateFrom, dateTo string) (*periodMetrics, error) {
	eventRow, err := s.store.QueryOne(ctx,
		`SELECT COUNT(*) AS total_events, COUNT(DISTINCT user_id) AS unique_users
		FROM events WHERE project_id = ? AND date >= ? AND date <= ?`,
		projectID, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("failed to query period events: %w", err)
	}

	sessionRow, err := s.store.QueryOne(ctx,
		`SELECT COUNT(*) AS total, COALESCE(SUM(bounce), 0) AS bounced, COALESCE(AVG(duration), 0) AS avg_duration
		FROM sessions WHERE project_id = ? AND date >= ? AND date <= ?`,
		projectID, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("failed to query period sessions: %w", err)
	}

	m := &periodMetrics{}
	if eventRow != nil {
		m.TotalEvents = eventRow.Float64("total_events")
		m.UniqueUsers = eventRow.Float64("unique_users")
	}
	if sessionRow != nil {
		total := sessionRow.Float64("total")
		m.TotalSessions = total
		if total > 0 {
			m.BounceRate = round3(sessionRow.Float64("bounced") / total)
			m.AvgDuration = math.Round(sessionRow.Float64("avg_duration"))
		}
	}
	return m, nil
}

// delta builds one comparison object. change_pct is null when the previous
// period is zero but the current is not; zero when both are zero.
func delta(current, previous float64) dto.DeltaMetric {
	d := dto.DeltaMetric{
		Current:  current,
		Previous: previous,
		Change:   current - previous,
	}
	switch {
	case previous > 0:
		pct := math.Round((current - previous) / previous * 100)
		d.ChangePct = &pct
	case current > 0:
		d.ChangePct = nil
	default:
		zero := 0.0
		d.ChangePct = &zero
	}
	return d
}

// trend classifies the total_events delta: new activity from nothing or more
// than +10% is growing, below -10% is declining.
func trend(changePct *float64) string {
	switch {
	case changePct == nil:
		return "growing"
	case *changePct > 10:
		return "growing"
	case *changePct < -10:
		return "declining"
	default:
		return "stable"
	}
}

// parsePeriodDays extracts N from period strings like "30d" or "30".
// Unparsable input falls back to the default window.
func parsePeriodDays(period string) int {
	period = strings.TrimSuffix(strings.TrimSpace(period), "d")
	if period == "" {
		return query.DefaultPeriodDays
	}
	n, err := strconv.Atoi(period)
	if err != nil || n <= 0 {
		return query.DefaultPeriodDays
	}
	return n
}
