package analytics

import (
	"context"
	"fmt"

	"github.com/Agent-Analytics/agent-analytics-core/internal/dto"
	"github.com/Agent-Analytics/agent-analytics-core/internal/query"
)

// The seven fixed duration ranges: exactly 0, then (0,10s), [10s,30s),
// [30s,60s), [1m,3m), [3m,10m), [10m,inf). Buckets at index >= engagedFrom
// count as engaged.
var durationBuckets = []string{"0s", "0-10s", "10-30s", "30-60s", "1-3m", "3-10m", "10m+"}

const engagedFrom = 3

// Distribution buckets sessions into the fixed duration ranges and derives
// the median bucket and the engaged share.
func (s *Service) Distribution(ctx context.Context, req *dto.DistributionRequest) (*dto.DistributionResponse, error) {
	dateFrom, dateTo := query.DefaultPeriod(req.DateFrom, req.DateTo)

	rows, err := s.store.QueryAll(ctx,
		`SELECT CASE
			WHEN duration = 0 THEN 0
			WHEN duration < 10000 THEN 1
			WHEN duration < 30000 THEN 2
			WHEN duration < 60000 THEN 3
			WHEN duration < 180000 THEN 4
			WHEN duration < 600000 THEN 5
			ELSE 6
		END AS bucket,
		COUNT(*) AS sessions,
		COALESCE(SUM(bounce), 0) AS bounces,
		COALESCE(AVG(event_count), 0) AS avg_events
		FROM sessions WHERE project_id = ? AND date >= ? AND date <= ?
		GROUP BY bucket ORDER BY bucket`,
		req.ProjectID, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("failed to query session distribution: %w", err)
	}

	resp := &dto.DistributionResponse{
		Period:       dto.Period{DateFrom: dateFrom, DateTo: dateTo},
		Distribution: make([]dto.DurationBucket, 0, len(rows)),
	}

	var total, engaged int64
	counts := make([]int64, len(durationBuckets))
	for _, row := range rows {
		idx := int(row.Int64("bucket"))
		if idx < 0 || idx >= len(durationBuckets) {
			continue
		}
		counts[idx] = row.Int64("sessions")
		total += counts[idx]
		if idx >= engagedFrom {
			engaged += counts[idx]
		}
	}
	if total == 0 {
		return resp, nil
	}

	for _, row := range rows {
		idx := int(row.Int64("bucket"))
		if idx < 0 || idx >= len(durationBuckets) {
			continue
		}
		sessions := row.Int64("sessions")
		resp.Distribution = append(resp.Distribution, dto.DurationBucket{
			Bucket:    durationBuckets[idx],
			Sessions:  sessions,
			Bounces:   row.Int64("bounces"),
			AvgEvents: round1(row.Float64("avg_events")),
			Pct:       round1(float64(sessions) / float64(total) * 100),
		})
	}

	// Median bucket: the first bucket whose cumulative count reaches the
	// 50th-percentile session.
	var cumulative int64
	for idx, count := range counts {
		cumulative += count
		if float64(cumulative) >= float64(total)/2 && count > 0 {
			label := durationBuckets[idx]
			resp.MedianBucket = &label
			break
		}
	}

	resp.EngagedPct = round1(float64(engaged) / float64(total) * 100)
	return resp, nil
}
