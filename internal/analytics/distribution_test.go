package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agent-Analytics/agent-analytics-core/internal/dto"
	"github.com/Agent-Analytics/agent-analytics-core/internal/storage"
)

func TestDistribution_OneSessionPerBucket(t *testing.T) {
	store := &fakeStore{
		queryAll: func(sql string, args []any) ([]storage.Row, error) {
			rows := make([]storage.Row, 0, 7)
			for i := 0; i < 7; i++ {
				rows = append(rows, storage.Row{
					"bucket":     int64(i),
					"sessions":   int64(1),
					"bounces":    int64(0),
					"avg_events": 2.0,
				})
			}
			return rows, nil
		},
	}
	svc := newTestService(store)

	resp, err := svc.Distribution(context.Background(), &dto.DistributionRequest{ProjectID: "proj_1"})

	require.NoError(t, err)
	require.Len(t, resp.Distribution, 7)

	var pctSum float64
	for i, b := range resp.Distribution {
		assert.Equal(t, durationBuckets[i], b.Bucket)
		assert.Equal(t, int64(1), b.Sessions)
		assert.Equal(t, 14.3, b.Pct)
		pctSum += b.Pct
	}
	assert.InDelta(t, 100, pctSum, 1, "rounded percentages stay near 100")

	// The 4th of 7 sessions is the median; 30-60s and up count as engaged.
	require.NotNil(t, resp.MedianBucket)
	assert.Equal(t, "30-60s", *resp.MedianBucket)
	assert.Equal(t, 57.1, resp.EngagedPct)
}

func TestDistribution_SkewedTowardBounces(t *testing.T) {
	store := &fakeStore{
		queryAll: func(sql string, args []any) ([]storage.Row, error) {
			return []storage.Row{
				{"bucket": int64(0), "sessions": int64(8), "bounces": int64(8), "avg_events": 1.0},
				{"bucket": int64(4), "sessions": int64(2), "bounces": int64(0), "avg_events": 5.5},
			}, nil
		},
	}
	svc := newTestService(store)

	resp, err := svc.Distribution(context.Background(), &dto.DistributionRequest{ProjectID: "proj_1"})

	require.NoError(t, err)
	require.Len(t, resp.Distribution, 2)
	assert.Equal(t, "0s", resp.Distribution[0].Bucket)
	assert.Equal(t, 80.0, resp.Distribution[0].Pct)
	assert.Equal(t, "1-3m", resp.Distribution[1].Bucket)

	require.NotNil(t, resp.MedianBucket)
	assert.Equal(t, "0s", *resp.MedianBucket)
	assert.Equal(t, 20.0, resp.EngagedPct)
}

func TestDistribution_EmptyWindow(t *testing.T) {
	store := &fakeStore{
		queryAll: func(string, []any) ([]storage.Row, error) {
			return nil, nil
		},
	}
	svc := newTestService(store)

	resp, err := svc.Distribution(context.Background(), &dto.DistributionRequest{ProjectID: "proj_1"})

	require.NoError(t, err)
	assert.Empty(t, resp.Distribution)
	assert.Nil(t, resp.MedianBucket)
	assert.Zero(t, resp.EngagedPct)
}
