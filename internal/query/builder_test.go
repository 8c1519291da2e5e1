package query

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Defaults(t *testing.T) {
	built, err := Build(Request{ProjectID: "proj_1"})

	require.NoError(t, err)
	assert.Equal(t, []string{"event_count"}, built.Metrics)
	assert.Contains(t, built.SQL, "COUNT(*) AS event_count")
	assert.NotContains(t, built.SQL, "LEFT JOIN")
	assert.Contains(t, built.SQL, "ORDER BY event_count DESC")
	assert.Equal(t, DefaultLimit, built.Args[len(built.Args)-1])

	// Absent date range defaults to the trailing week.
	now := time.Now().UTC()
	assert.Equal(t, now.Format("2006-01-02"), built.DateTo)
	assert.Equal(t, now.AddDate(0, 0, -DefaultPeriodDays).Format("2006-01-02"), built.DateFrom)
}

func TestBuild_GroupByAndFilters(t *testing.T) {
	built, err := Build(Request{
		ProjectID: "proj_1",
		Metrics:   []string{"event_count", "unique_users"},
		GroupBy:   []string{"event", "date"},
		Filters: []Filter{
			{Field: "event", Op: "eq", Value: "page_view"},
			{Field: "user_id", Op: "neq", Value: "bot_1"},
		},
		DateFrom: "2025-01-01",
		DateTo:   "2025-01-31",
	})

	require.NoError(t, err)
	assert.Contains(t, built.SQL, "e.event_name AS event")
	assert.Contains(t, built.SQL, "GROUP BY event, date")
	assert.Contains(t, built.SQL, "AND e.event_name = ?")
	assert.Contains(t, built.SQL, "AND e.user_id != ?")
	assert.Equal(t, []any{"proj_1", "2025-01-01", "2025-01-31", "page_view", "bot_1", DefaultLimit}, built.Args)
}

func TestBuild_SessionMetricsRequireJoin(t *testing.T) {
	built, err := Build(Request{
		ProjectID: "proj_1",
		Metrics:   []string{"bounce_rate", "avg_duration"},
	})

	require.NoError(t, err)
	assert.Contains(t, built.SQL, "LEFT JOIN sessions s ON s.session_id = e.session_id")
}

func TestBuild_PropertyFilter(t *testing.T) {
	built, err := Build(Request{
		ProjectID: "proj_1",
		Filters:   []Filter{{Field: "properties.plan", Op: "eq", Value: "pro"}},
	})

	require.NoError(t, err)
	assert.Contains(t, built.SQL, "json_extract(e.properties, '$.plan') = ?")
	assert.Contains(t, built.Args, "pro")
}

func TestBuild_RejectsUnknownVocabulary(t *testing.T) {
	_, err := Build(Request{ProjectID: "proj_1", Metrics: []string{"sum_revenue"}})
	assert.ErrorIs(t, err, ErrInvalidMetric)

	_, err = Build(Request{ProjectID: "proj_1", GroupBy: []string{"browser"}})
	assert.ErrorIs(t, err, ErrInvalidGroupBy)

	_, err = Build(Request{ProjectID: "proj_1", Filters: []Filter{{Field: "ip", Op: "eq", Value: "x"}}})
	assert.ErrorIs(t, err, ErrInvalidFilterField)

	_, err = Build(Request{ProjectID: "proj_1", Filters: []Filter{{Field: "event", Op: "like", Value: "x"}}})
	assert.ErrorIs(t, err, ErrInvalidFilterOp)
}

func TestBuild_RejectsUnsafePropertyKeys(t *testing.T) {
	for _, key := range []string{
		"properties.a-b",
		"properties.a b",
		"properties.a');DROP TABLE events;--",
		"properties.",
		"properties." + strings.Repeat("a", 129),
	} {
		_, err := Build(Request{
			ProjectID: "proj_1",
			Filters:   []Filter{{Field: key, Op: "eq", Value: "x"}},
		})
		assert.ErrorIs(t, err, ErrInvalidPropertyKey, "field %q", key)
	}
}

func TestValidatePropertyKey_MaxLength(t *testing.T) {
	assert.NoError(t, ValidatePropertyKey(strings.Repeat("a", 128)))
	assert.Error(t, ValidatePropertyKey(strings.Repeat("a", 129)))
}

func TestBuild_OrderByValidation(t *testing.T) {
	built, err := Build(Request{
		ProjectID: "proj_1",
		Metrics:   []string{"event_count"},
		GroupBy:   []string{"date"},
		OrderBy:   "date",
		Order:     "asc",
	})
	require.NoError(t, err)
	assert.Contains(t, built.SQL, "ORDER BY date ASC")

	_, err = Build(Request{
		ProjectID: "proj_1",
		Metrics:   []string{"event_count"},
		OrderBy:   "unique_users",
	})
	assert.ErrorIs(t, err, ErrInvalidOrderBy, "order_by must be a requested column")
}

func TestBuild_LimitClamped(t *testing.T) {
	built, err := Build(Request{ProjectID: "proj_1", Limit: 50000})
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, built.Args[len(built.Args)-1])

	built, err = Build(Request{ProjectID: "proj_1", Limit: -3})
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, built.Args[len(built.Args)-1])
}

func TestIsValidation(t *testing.T) {
	_, err := Build(Request{ProjectID: "proj_1", Metrics: []string{"nope"}})
	assert.True(t, IsValidation(err))
	assert.False(t, IsValidation(assert.AnError))
}
