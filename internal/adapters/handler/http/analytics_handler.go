package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/services"
)

type AnalyticsHandler struct {
	svc     *services.AnalyticsService
	records *services.RecordService
}

func NewAnalyticsHandler(svc *services.AnalyticsService, records *services.RecordService) *AnalyticsHandler {
	return &AnalyticsHandler{
		svc:     svc,
		records: records,
	}
}

type changeRequest struct {
	Kind string `json:"kind" binding:"required"`
}

func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	analytics := router.Group("/analytics")
	{
		analytics.GET("/report", h.Report)
		analytics.GET("/latest", h.Latest)
		analytics.GET("/days", h.Days)
		analytics.GET("/streaks", h.Streaks)
		analytics.GET("/insights", h.Insights)
		analytics.POST("/changes", h.Changes)
	}
}

// Report recomputes the caller's report and commits it.
func (h *AnalyticsHandler) Report(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	report, err := h.svc.Refresh(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *AnalyticsHandler) Latest(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	report, err := h.svc.Latest(userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// current serves the committed report, computing one on first use.
func (h *AnalyticsHandler) current(c *gin.Context, userID string) (*domain.Report, error) {
	report, err := h.svc.Latest(userID)
	if errors.Is(err, domain.ErrReportNotReady) {
		return h.svc.Refresh(c.Request.Context(), userID)
	}
	return report, err
}

func (h *AnalyticsHandler) Streaks(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	report, err := h.current(c, userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"today":        report.Today,
		"streaks":      report.Streaks,
		"is_new_best":  report.Streaks.IsNewBest(),
		"generated_at": report.GeneratedAt,
	})
}

func (h *AnalyticsHandler) Insights(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	report, err := h.current(c, userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"insights":         report.Insights,
		"metric_available": report.MetricAvailable,
		"generated_at":     report.GeneratedAt,
	})
}

// Days classifies a date range. Without parameters it returns the last seven
// days ending on the user's local today.
func (h *AnalyticsHandler) Days(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var from, to time.Time
	var err error

	if s := c.Query("end_date"); s != "" {
		if to, err = domain.ParseDate(s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date format, expected YYYY-MM-DD"})
			return
		}
	}

	if s := c.Query("start_date"); s != "" {
		if from, err = domain.ParseDate(s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date format, expected YYYY-MM-DD"})
			return
		}
	}

	result, err := h.svc.Days(c.Request.Context(), userID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Changes accepts "habit edited", "day advanced" and "records changed" signals.
func (h *AnalyticsHandler) Changes(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req changeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.records.NotifyChange(c.Request.Context(), userID, domain.ChangeKind(req.Kind)); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}
