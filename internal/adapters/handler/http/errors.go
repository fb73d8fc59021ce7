package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-consistency-engine/internal/core/domain"
)

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidValue),
		errors.Is(err, domain.ErrInvalidDayMode),
		errors.Is(err, domain.ErrInvalidSnooze),
		errors.Is(err, domain.ErrHabitIDRequired),
		errors.Is(err, domain.ErrInvalidChange),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrDateRangeTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized access"})

	case errors.Is(err, domain.ErrHabitNotFound), errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})

	case errors.Is(err, domain.ErrReportNotReady):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrSuperseded):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "superseded",
			"message": "a newer computation is running, fetch the latest report",
		})

	default:
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")

		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func requireUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return userID, true
}
