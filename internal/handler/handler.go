package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/Agent-Analytics/agent-analytics-core/internal/analytics"
	"github.com/Agent-Analytics/agent-analytics-core/internal/dto"
	"github.com/Agent-Analytics/agent-analytics-core/internal/ingest"
	"github.com/Agent-Analytics/agent-analytics-core/internal/query"
)

type Handler struct {
	ingestor  ingest.Ingestor
	analytics analytics.Provider
	retention ingest.Retention
	router    *gin.Engine
	log       *zap.Logger
}

func NewHandler(ingestor ingest.Ingestor, provider analytics.Provider, retention ingest.Retention, log *zap.Logger) *Handler {
	h := &Handler{
		ingestor:  ingestor,
		analytics: provider,
		retention: retention,
		router:    gin.Default(),
		log:       log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.POST("/events", h.trackEvent)
	h.router.POST("/events/bulk", h.trackEventsBulk)
	h.router.POST("/query", h.runQuery)
	h.router.GET("/stats", h.stats)
	h.router.GET("/breakdown", h.breakdown)
	h.router.GET("/insights", h.insights)
	h.router.GET("/pages", h.pages)
	h.router.GET("/sessions/distribution", h.distribution)
	h.router.GET("/heatmap", h.heatmap)
	h.router.POST("/retention/cleanup", h.cleanup)
	h.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheck handles health check requests
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// trackEvent handles POST /events
// @Summary Track a single event
// @Description Ingest one behavioral event; the session aggregate is updated atomically with the insert
// @Tags events
// @Accept json
// @Produce json
// @Param event body dto.TrackEventRequest true "Event data"
// @Success 202 {object} dto.TrackEventResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events [post]
func (h *Handler) trackEvent(c *gin.Context) {
	var req dto.TrackEventRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	eventID, err := h.ingestor.Track(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.TrackEventResponse{
		EventID: eventID,
		Status:  "accepted",
	})
}

// trackEventsBulk handles POST /events/bulk
// @Summary Track multiple events
// @Description Ingest a batch of events; same-session events are folded into one session upsert
// @Tags events
// @Accept json
// @Produce json
// @Param events body dto.TrackEventsBulkRequest true "Event batch"
// @Success 202 {object} dto.TrackEventsBulkResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events/bulk [post]
func (h *Handler) trackEventsBulk(c *gin.Context) {
	var req dto.TrackEventsBulkRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	eventIDs, errs, err := h.ingestor.TrackMany(c.Request.Context(), req.Events)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.TrackEventsBulkResponse{
		Accepted: len(eventIDs),
		Rejected: len(errs),
		EventIDs: eventIDs,
		Errors:   errs,
	})
}

// runQuery handles POST /query
// @Summary Run a flexible aggregate query
// @Description Metrics, group-by dimensions and filters are validated against a closed vocabulary before execution
// @Tags analytics
// @Accept json
// @Produce json
// @Param query body query.Request true "Query"
// @Success 200 {object} dto.QueryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /query [post]
func (h *Handler) runQuery(c *gin.Context) {
	var req query.Request

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.analytics.Run(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// stats handles GET /stats
// @Summary Stats overview
// @Tags analytics
// @Produce json
// @Param project query string true "Project ID"
// @Param granularity query string false "hour, day, week or month" default(day)
// @Success 200 {object} dto.StatsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /stats [get]
func (h *Handler) stats(c *gin.Context) {
	var req dto.StatsRequest
	if !h.bindQuery(c, &req) {
		return
	}

	resp, err := h.analytics.Stats(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// breakdown handles GET /breakdown
// @Summary Property breakdown
// @Tags analytics
// @Produce json
// @Param project query string true "Project ID"
// @Param property query string true "Property key"
// @Success 200 {object} dto.BreakdownResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /breakdown [get]
func (h *Handler) breakdown(c *gin.Context) {
	var req dto.BreakdownRequest
	if !h.bindQuery(c, &req) {
		return
	}

	resp, err := h.analytics.Breakdown(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// insights handles GET /insights
// @Summary Period-over-period insights
// @Tags analytics
// @Produce json
// @Param project query string true "Project ID"
// @Param period query string false "Window like 7d or 30d" default(7d)
// @Success 200 {object} dto.InsightsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /insights [get]
func (h *Handler) insights(c *gin.Context) {
	var req dto.InsightsRequest
	if !h.bindQuery(c, &req) {
		return
	}

	resp, err := h.analytics.Insights(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// pages handles GET /pages
// @Summary Entry/exit page aggregation
// @Tags analytics
// @Produce json
// @Param project query string true "Project ID"
// @Param kind query string false "entry, exit or both" default(both)
// @Success 200 {object} dto.PagesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /pages [get]
func (h *Handler) pages(c *gin.Context) {
	var req dto.PagesRequest
	if !h.bindQuery(c, &req) {
		return
	}

	resp, err := h.analytics.Pages(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// distribution handles GET /sessions/distribution
// @Summary Session duration distribution
// @Tags analytics
// @Produce json
// @Param project query string true "Project ID"
// @Success 200 {object} dto.DistributionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /sessions/distribution [get]
func (h *Handler) distribution(c *gin.Context) {
	var req dto.DistributionRequest
	if !h.bindQuery(c, &req) {
		return
	}

	resp, err := h.analytics.Distribution(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// heatmap handles GET /heatmap
// @Summary Day/hour activity heatmap
// @Tags analytics
// @Produce json
// @Param project query string true "Project ID"
// @Success 200 {object} dto.HeatmapResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /heatmap [get]
func (h *Handler) heatmap(c *gin.Context) {
	var req dto.HeatmapRequest
	if !h.bindQuery(c, &req) {
		return
	}

	resp, err := h.analytics.Heatmap(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// cleanup handles POST /retention/cleanup
// @Summary Retention cleanup
// @Description Deletes sessions and events whose date precedes the cutoff
// @Tags retention
// @Accept json
// @Produce json
// @Param cleanup body dto.CleanupRequest true "Cutoff"
// @Success 200 {object} dto.CleanupResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /retention/cleanup [post]
func (h *Handler) cleanup(c *gin.Context) {
	var req dto.CleanupRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	if err := h.retention.CleanupSessions(ctx, req.ProjectID, req.Before); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.retention.CleanupEvents(ctx, req.ProjectID, req.Before); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CleanupResponse{
		Status: "ok",
		Before: req.Before,
	})
}

func (h *Handler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return false
	}
	return true
}

// fail maps validation failures to 400 and everything else to an opaque 500.
func (h *Handler) fail(c *gin.Context, err error) {
	if query.IsValidation(err) ||
		errors.Is(err, analytics.ErrInvalidGranularity) ||
		errors.Is(err, analytics.ErrInvalidPagesKind) ||
		errors.Is(err, ingest.ErrFutureTimestamp) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	h.log.Error("Request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	})
}
