package analytics

import (
	"context"
	"fmt"

	"github.com/Agent-Analytics/agent-analytics-core/internal/dto"
	"github.com/Agent-Analytics/agent-analytics-core/internal/query"
)

const defaultPagesLimit = 20

// Pages aggregates session rows by entry page, exit page, or both, ordered
// by session count descending.
func (s *Service) Pages(ctx context.Context, req *dto.PagesRequest) (*dto.PagesResponse, error) {
	kind := req.Kind
	if kind == "" {
		kind = "both"
	}
	if kind != "entry" && kind != "exit" && kind != "both" {
		return nil, fmt.Errorf("%w: %q (supported: entry, exit, both)", ErrInvalidPagesKind, kind)
	}

	dateFrom, dateTo := query.DefaultPeriod(req.DateFrom, req.DateTo)
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPagesLimit
	}
	if limit > maxBreakdownLimit {
		limit = maxBreakdownLimit
	}

	resp := &dto.PagesResponse{
		Period: dto.Period{DateFrom: dateFrom, DateTo: dateTo},
	}

	if kind == "entry" || kind == "both" {
		entry, err := s.pageStats(ctx, "entry_page", req.ProjectID, dateFrom, dateTo, limit)
		if err != nil {
			return nil, err
		}
		resp.EntryPages = entry
	}
	if kind == "exit" || kind == "both" {
		exit, err := s.pageStats(ctx, "exit_page", req.ProjectID, dateFrom, dateTo, limit)
		if err != nil {
			return nil, err
		}
		resp.ExitPages = exit
	}
	return resp, nil
}

func (s *Service) pageStats(ctx context.Context, column, projectID, dateFrom, dateTo string, limit int) ([]dto.PageStats, error) {
	// column is one of two fixed names chosen above, never caller input.
	sql := fmt.Sprintf(`SELECT %s AS page,
		COUNT(*) AS sessions,
		COALESCE(SUM(bounce), 0) AS bounces,
		COALESCE(AVG(duration), 0) AS avg_duration,
		COALESCE(AVG(event_count), 0) AS avg_events
	FROM sessions
	WHERE project_id = ? AND date >= ? AND date <= ? AND %s IS NOT NULL
	GROUP BY page ORDER BY sessions DESC LIMIT ?`, column, column)

	rows, err := s.store.QueryAll(ctx, sql, projectID, dateFrom, dateTo, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s stats: %w", column, err)
	}

	out := make([]dto.PageStats, 0, len(rows))
	for _, row := range rows {
		sessions := row.Int64("sessions")
		stat := dto.PageStats{
			Page:        row.String("page"),
			Sessions:    sessions,
			Bounces:     row.Int64("bounces"),
			AvgDuration: round1(row.Float64("avg_duration")),
			AvgEvents:   round1(row.Float64("avg_events")),
		}
		if sessions > 0 {
			stat.BounceRate = round3(float64(stat.Bounces) / float64(sessions))
		}
		out = append(out, stat)
	}
	return out, nil
}
