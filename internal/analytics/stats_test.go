package analytics

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agent-Analytics/agent-analytics-core/internal/dto"
	"github.com/Agent-Analytics/agent-analytics-core/internal/storage"
)

func TestStats_InvalidGranularity(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.Stats(context.Background(), &dto.StatsRequest{
		ProjectID:   "proj_1",
		Granularity: "fortnight",
	})

	assert.ErrorIs(t, err, ErrInvalidGranularity)
}

func TestStats_AssemblesResponse(t *testing.T) {
	store := &fakeStore{
		queryAll: func(sql string, args []any) ([]storage.Row, error) {
			if strings.Contains(sql, "GROUP BY event_name") {
				return []storage.Row{
					{"event_name": "page_view", "count": int64(8)},
					{"event_name": "signup", "count": int64(2)},
				}, nil
			}
			return []storage.Row{
				{"bucket": "2025-06-01", "events": int64(6), "unique_users": int64(3)},
				{"bucket": "2025-06-02", "events": int64(4), "unique_users": int64(2)},
			}, nil
		},
		queryOne: func(sql string, args []any) (storage.Row, error) {
			if strings.Contains(sql, "FROM sessions") {
				return storage.Row{
					"total":        int64(4),
					"bounced":      int64(1),
					"avg_duration": 73500.4,
					"avg_events":   2.5,
					"users":        int64(3),
				}, nil
			}
			return storage.Row{"total_events": int64(10), "unique_users": int64(4)}, nil
		},
	}
	svc := newTestService(store)

	resp, err := svc.Stats(context.Background(), &dto.StatsRequest{
		ProjectID: "proj_1",
		DateFrom:  "2025-06-01",
		DateTo:    "2025-06-07",
	})

	require.NoError(t, err)
	assert.Equal(t, "day", resp.Granularity, "default granularity")
	assert.Equal(t, dto.Period{DateFrom: "2025-06-01", DateTo: "2025-06-07"}, resp.Period)

	require.Len(t, resp.Series, 2)
	assert.Equal(t, "2025-06-01", resp.Series[0].Bucket)
	assert.Equal(t, int64(6), resp.Series[0].Events)

	require.Len(t, resp.TopEvents, 2)
	assert.Equal(t, "page_view", resp.TopEvents[0].EventName)

	assert.Equal(t, int64(10), resp.Totals.TotalEvents)
	assert.Equal(t, int64(4), resp.Totals.UniqueUsers)

	assert.Equal(t, int64(4), resp.Sessions.TotalSessions)
	assert.Equal(t, 0.25, resp.Sessions.BounceRate)
	assert.Equal(t, 73500.0, resp.Sessions.AvgDuration)
	assert.Equal(t, 2.5, resp.Sessions.PagesPerSession)
	assert.Equal(t, 1.3, resp.Sessions.SessionsPerUser)
}

func TestStats_EmptyWindowZeroesSessions(t *testing.T) {
	store := &fakeStore{
		queryAll: func(string, []any) ([]storage.Row, error) {
			return nil, nil
		},
		queryOne: func(sql string, args []any) (storage.Row, error) {
			if strings.Contains(sql, "FROM sessions") {
				return storage.Row{"total": int64(0)}, nil
			}
			return storage.Row{"total_events": int64(0), "unique_users": int64(0)}, nil
		},
	}
	svc := newTestService(store)

	resp, err := svc.Stats(context.Background(), &dto.StatsRequest{ProjectID: "proj_1"})

	require.NoError(t, err)
	assert.Empty(t, resp.Series)
	assert.Zero(t, resp.Sessions.TotalSessions)
	assert.Zero(t, resp.Sessions.BounceRate)
	assert.Zero(t, resp.Sessions.SessionsPerUser)
}

func TestBucketExprs_CoverSupportedGranularities(t *testing.T) {
	for _, g := range []string{"hour", "day", "week", "month"} {
		assert.Contains(t, bucketExprs, g)
	}
}
