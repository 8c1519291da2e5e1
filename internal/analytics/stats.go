package analytics

import (
	"context"
	"fmt"
	"math"

	"github.com/Agent-Analytics/agent-analytics-core/internal/dto"
	"github.com/Agent-Analytics/agent-analytics-core/internal/query"
)

const topEventsLimit = 20

// bucketExprs maps a granularity to its SQL bucket expression. Weekly
// buckets anchor to the most recent prior (or same) Sunday; daily buckets
// use the denormalized date directly.
var bucketExprs = map[string]string{
	"hour":  `strftime('%Y-%m-%d %H:00:00', timestamp / 1000, 'unixepoch')`,
	"day":   `date`,
	"week":  `date(timestamp / 1000, 'unixepoch', '-6 days', 'weekday 0')`,
	"month": `strftime('%Y-%m', timestamp / 1000, 'unixepoch')`,
}

// Stats produces the time-bucketed overview: per-bucket unique users and
// event counts, the top events in the window, window totals, and session
// statistics.
func (s *Service) Stats(ctx context.Context, req *dto.StatsRequest) (*dto.StatsResponse, error) {
	granularity := req.Granularity
	if granularity == "" {
		granularity = "day"
	}
	bucketExpr, ok := bucketExprs[granularity]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: hour, day, week, month)", ErrInvalidGranularity, granularity)
	}

	dateFrom, dateTo := query.DefaultPeriod(req.DateFrom, req.DateTo)
	args := []any{req.ProjectID, dateFrom, dateTo}

	seriesSQL := fmt.Sprintf(`SELECT %s AS bucket, COUNT(*) AS events, COUNT(DISTINCT user_id) AS unique_users
		FROM events WHERE project_id = ? AND date >= ? AND date <= ?
		GROUP BY bucket ORDER BY bucket`, bucketExpr)

	seriesRows, err := s.store.QueryAll(ctx, seriesSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time series: %w", err)
	}

	series := make([]dto.TimeBucket, 0, len(seriesRows))
	for _, row := range seriesRows {
		series = append(series, dto.TimeBucket{
			Bucket:      row.String("bucket"),
			Events:      row.Int64("events"),
			UniqueUsers: row.Int64("unique_users"),
		})
	}

	topRows, err := s.store.QueryAll(ctx,
		`SELECT event_name, COUNT(*) AS count
		FROM events WHERE project_id = ? AND date >= ? AND date <= ?
		GROUP BY event_name ORDER BY count DESC LIMIT ?`,
		req.ProjectID, dateFrom, dateTo, topEventsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top events: %w", err)
	}

	topEvents := make([]dto.EventCount, 0, len(topRows))
	for _, row := range topRows {
		topEvents = append(topEvents, dto.EventCount{
			EventName: row.String("event_name"),
			Count:     row.Int64("count"),
		})
	}

	totalsRow, err := s.store.QueryOne(ctx,
		`SELECT COUNT(*) AS total_events, COUNT(DISTINCT user_id) AS unique_users
		FROM events WHERE project_id = ? AND date >= ? AND date <= ?`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}

	totals := dto.Totals{}
	if totalsRow != nil {
		totals.TotalEvents = totalsRow.Int64("total_events")
		totals.UniqueUsers = totalsRow.Int64("unique_users")
	}

	sessions, err := s.sessionStats(ctx, req.ProjectID, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	return &dto.StatsResponse{
		ProjectID:   req.ProjectID,
		Granularity: granularity,
		Period:      dto.Period{DateFrom: dateFrom, DateTo: dateTo},
		Series:      series,
		TopEvents:   topEvents,
		Totals:      totals,
		Sessions:    *sessions,
	}, nil
}

// sessionStats computes the window-wide session block: totals, bounce rate,
// rounded average duration, pages per session and sessions per user. All
// fields zero when no sessions fall in range.
func (s *Service) sessionStats(ctx context.Context, projectID, dateFrom, dateTo string) (*dto.SessionStats, error) {
	row, err := s.store.QueryOne(ctx,
		`SELECT COUNT(*) AS total,
			COALESCE(SUM(bounce), 0) AS bounced,
			COALESCE(AVG(duration), 0) AS avg_duration,
			COALESCE(AVG(event_count), 0) AS avg_events,
			COUNT(DISTINCT user_id) AS users
		FROM sessions WHERE project_id = ? AND date >= ? AND date <= ?`,
		projectID, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("failed to query session stats: %w", err)
	}

	stats := &dto.SessionStats{}
	if row == nil {
		return stats, nil
	}

	total := row.Int64("total")
	if total == 0 {
		return stats, nil
	}

	stats.TotalSessions = total
	stats.BounceRate = round3(row.Float64("bounced") / float64(total))
	stats.AvgDuration = math.Round(row.Float64("avg_duration"))
	stats.PagesPerSession = round1(row.Float64("avg_events"))
	if users := row.Int64("users"); users > 0 {
		stats.SessionsPerUser = round1(float64(total) / float64(users))
	}
	return stats, nil
}
