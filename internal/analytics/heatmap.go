package analytics

import (
	"context"
	"fmt"

	"github.com/Agent-Analytics/agent-analytics-core/internal/dto"
	"github.com/Agent-Analytics/agent-analytics-core/internal/query"
)

// Heatmap aggregates events into a day-of-week (0=Sunday) by hour-of-day
// grid and reports the peak cell, busiest day and busiest hour. All three
// are null when no events fall in range.
func (s *Service) Heatmap(ctx context.Context, req *dto.HeatmapRequest) (*dto.HeatmapResponse, error) {
	dateFrom, dateTo := query.DefaultPeriod(req.DateFrom, req.DateTo)

	rows, err := s.store.QueryAll(ctx,
		`SELECT CAST(strftime('%w', timestamp / 1000, 'unixepoch') AS INTEGER) AS day,
			CAST(strftime('%H', timestamp / 1000, 'unixepoch') AS INTEGER) AS hour,
			COUNT(*) AS events,
			COUNT(DISTINCT user_id) AS unique_users
		FROM events WHERE project_id = ? AND date >= ? AND date <= ?
		GROUP BY day, hour ORDER BY day, hour`,
		req.ProjectID, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("failed to query heatmap: %w", err)
	}

	resp := &dto.HeatmapResponse{
		Period: dto.Period{DateFrom: dateFrom, DateTo: dateTo},
		Cells:  make([]dto.HeatmapCell, 0, len(rows)),
	}
	if len(rows) == 0 {
		return resp, nil
	}

	dayTotals := make(map[int]int64)
	hourTotals := make(map[int]int64)
	var peak dto.HeatmapCell

	for _, row := range rows {
		cell := dto.HeatmapCell{
			Day:         int(row.Int64("day")),
			Hour:        int(row.Int64("hour")),
			Events:      row.Int64("events"),
			UniqueUsers: row.Int64("unique_users"),
		}
		resp.Cells = append(resp.Cells, cell)

		dayTotals[cell.Day] += cell.Events
		hourTotals[cell.Hour] += cell.Events
		if cell.Events > peak.Events {
			peak = cell
		}
	}

	resp.Peak = &peak
	busiestDay := argmax(dayTotals)
	busiestHour := argmax(hourTotals)
	resp.BusiestDay = &busiestDay
	resp.BusiestHour = &busiestHour
	return resp, nil
}

func argmax(totals map[int]int64) int {
	best, bestCount := 0, int64(-1)
	for k, v := range totals {
		if v > bestCount || (v == bestCount && k < best) {
			best, bestCount = k, v
		}
	}
	return best
}
