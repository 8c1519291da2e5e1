package analytics

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Agent-Analytics/agent-analytics-core/internal/dto"
	"github.com/Agent-Analytics/agent-analytics-core/internal/query"
	"github.com/Agent-Analytics/agent-analytics-core/internal/storage"
)

// Provider defines the analytics operations exposed to handlers.
type Provider interface {
	Stats(ctx context.Context, req *dto.StatsRequest) (*dto.StatsResponse, error)
	Breakdown(ctx context.Context, req *dto.BreakdownRequest) (*dto.BreakdownResponse, error)
	Insights(ctx context.Context, req *dto.InsightsRequest) (*dto.InsightsResponse, error)
	Pages(ctx context.Context, req *dto.PagesRequest) (*dto.PagesResponse, error)
	Distribution(ctx context.Context, req *dto.DistributionRequest) (*dto.DistributionResponse, error)
	Heatmap(ctx context.Context, req *dto.HeatmapRequest) (*dto.HeatmapResponse, error)
	Run(ctx context.Context, req query.Request) (*dto.QueryResponse, error)
}

// Service computes aggregate analytics over the storage port.
type Service struct {
	store storage.Store
	log   *zap.Logger
}

// NewService creates a new analytics service.
func NewService(store storage.Store, log *zap.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
	}
}

// Run executes a flexible query built from the allow-listed vocabulary.
func (s *Service) Run(ctx context.Context, req query.Request) (*dto.QueryResponse, error) {
	built, err := query.Build(req)
	if err != nil {
		return nil, err
	}

	s.log.Debug("Running flexible query",
		zap.String("project_id", req.ProjectID),
		zap.Strings("metrics", built.Metrics),
		zap.Strings("group_by", built.GroupBy))

	rows, err := s.store.QueryAll(ctx, built.SQL, built.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}

	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		out[i] = map[string]any(row)
	}

	return &dto.QueryResponse{
		Period:  dto.Period{DateFrom: built.DateFrom, DateTo: built.DateTo},
		Metrics: built.Metrics,
		GroupBy: built.GroupBy,
		Rows:    out,
		Count:   len(out),
	}, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
