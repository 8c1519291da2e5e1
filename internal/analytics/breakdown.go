package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/Agent-Analytics/agent-analytics-core/internal/dto"
	"github.com/Agent-Analytics/agent-analytics-core/internal/query"
)

const (
	defaultBreakdownLimit = 20
	maxBreakdownLimit     = 1000
)

// Breakdown groups events by the value of one validated property key and
// returns per-value event and distinct-user counts ordered by count
// descending, plus window totals.
func (s *Service) Breakdown(ctx context.Context, req *dto.BreakdownRequest) (*dto.BreakdownResponse, error) {
	if err := query.ValidatePropertyKey(req.Property); err != nil {
		return nil, err
	}

	since := req.Since
	if since == "" {
		since = time.Now().UTC().AddDate(0, 0, -query.DefaultPeriodDays).Format("2006-01-02")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultBreakdownLimit
	}
	if limit > maxBreakdownLimit {
		limit = maxBreakdownLimit
	}

	// The property key is validated above; only then is it interpolated
	// into the json_extract path.
	propExpr := fmt.Sprintf("json_extract(properties, '$.%s')", req.Property)

	where := "project_id = ? AND date >= ?"
	args := []any{req.ProjectID, since}
	if req.Event != "" {
		where += " AND event_name = ?"
		args = append(args, req.Event)
	}

	valueSQL := fmt.Sprintf(`SELECT %s AS value, COUNT(*) AS count, COUNT(DISTINCT user_id) AS unique_users
		FROM events WHERE %s AND %s IS NOT NULL
		GROUP BY value ORDER BY count DESC LIMIT ?`, propExpr, where, propExpr)

	rows, err := s.store.QueryAll(ctx, valueSQL, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query breakdown: %w", err)
	}

	values := make([]dto.BreakdownValue, 0, len(rows))
	for _, row := range rows {
		values = append(values, dto.BreakdownValue{
			Value:       row.String("value"),
			Count:       row.Int64("count"),
			UniqueUsers: row.Int64("unique_users"),
		})
	}

	totalsSQL := fmt.Sprintf(`SELECT COUNT(*) AS total_events,
		COUNT(CASE WHEN %s IS NOT NULL THEN 1 END) AS total_with_property
		FROM events WHERE %s`, propExpr, where)

	totals, err := s.store.QueryOne(ctx, totalsSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query breakdown totals: %w", err)
	}

	resp := &dto.BreakdownResponse{
		Property: req.Property,
		Event:    req.Event,
		Values:   values,
	}
	if totals != nil {
		resp.TotalEvents = totals.Int64("total_events")
		resp.TotalWithProperty = totals.Int64("total_with_property")
	}
	return resp, nil
}
