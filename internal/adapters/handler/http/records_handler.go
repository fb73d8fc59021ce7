package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/services"
)

type RecordsHandler struct {
	svc *services.RecordService
}

func NewRecordsHandler(svc *services.RecordService) *RecordsHandler {
	return &RecordsHandler{svc: svc}
}

type completionRequest struct {
	HabitID string `json:"habit_id" binding:"required"`
	Date    string `json:"date" binding:"required"`
	Value   *int   `json:"value" binding:"required"`
}

type dayModeRequest struct {
	Date string `json:"date" binding:"required"`
	Mode string `json:"mode" binding:"required"`
}

type snoozeRequest struct {
	HabitID      string    `json:"habit_id" binding:"required"`
	Date         string    `json:"date" binding:"required"`
	SnoozedUntil time.Time `json:"snoozed_until" binding:"required"`
}

func (h *RecordsHandler) RegisterRoutes(router *gin.RouterGroup) {
	records := router.Group("/records")
	{
		records.PUT("/completions", h.SetCompletion)
		records.PUT("/day-modes", h.SetDayMode)
		records.POST("/snoozes", h.Snooze)
	}
}

func (h *RecordsHandler) SetCompletion(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req completionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	completion, err := h.svc.SetCompletion(c.Request.Context(), services.SetCompletionInput{
		UserID:  userID,
		HabitID: req.HabitID,
		Date:    req.Date,
		Value:   *req.Value,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, completion)
}

func (h *RecordsHandler) SetDayMode(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dayModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode, err := h.svc.SetDayMode(c.Request.Context(), services.SetDayModeInput{
		UserID: userID,
		Date:   req.Date,
		Mode:   domain.DayModeKind(req.Mode),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, mode)
}

func (h *RecordsHandler) Snooze(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req snoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snooze, err := h.svc.Snooze(c.Request.Context(), services.SnoozeInput{
		UserID:       userID,
		HabitID:      req.HabitID,
		Date:         req.Date,
		SnoozedUntil: req.SnoozedUntil,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, snooze)
}
