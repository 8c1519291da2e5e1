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

func TestPages_InvalidKind(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.Pages(context.Background(), &dto.PagesRequest{
		ProjectID: "proj_1",
		Kind:      "landing",
	})

	assert.ErrorIs(t, err, ErrInvalidPagesKind)
}

func TestPages_BothKindsByDefault(t *testing.T) {
	store := &fakeStore{
		queryAll: func(sql string, args []any) ([]storage.Row, error) {
			if strings.Contains(sql, "entry_page") {
				return []storage.Row{
					{"page": "/home", "sessions": int64(40), "bounces": int64(12), "avg_duration": 64000.0, "avg_events": 2.8},
				}, nil
			}
			return []storage.Row{
				{"page": "/checkout", "sessions": int64(25), "bounces": int64(5), "avg_duration": 90000.0, "avg_events": 4.2},
			}, nil
		},
	}
	svc := newTestService(store)

	resp, err := svc.Pages(context.Background(), &dto.PagesRequest{ProjectID: "proj_1"})

	require.NoError(t, err)
	require.Len(t, resp.EntryPages, 1)
	require.Len(t, resp.ExitPages, 1)

	entry := resp.EntryPages[0]
	assert.Equal(t, "/home", entry.Page)
	assert.Equal(t, int64(40), entry.Sessions)
	assert.Equal(t, 0.3, entry.BounceRate)
	assert.Equal(t, 64000.0, entry.AvgDuration)

	assert.Equal(t, "/checkout", resp.ExitPages[0].Page)
	assert.Equal(t, 0.2, resp.ExitPages[0].BounceRate)
}

func TestPages_EntryOnly(t *testing.T) {
	var queried []string
	store := &fakeStore{
		queryAll: func(sql string, args []any) ([]storage.Row, error) {
			queried = append(queried, sql)
			return nil, nil
		},
	}
	svc := newTestService(store)

	resp, err := svc.Pages(context.Background(), &dto.PagesRequest{
		ProjectID: "proj_1",
		Kind:      "entry",
	})

	require.NoError(t, err)
	require.Len(t, queried, 1)
	assert.Contains(t, queried[0], "entry_page")
	assert.Empty(t, resp.EntryPages)
	assert.Nil(t, resp.ExitPages)
}
