package utils

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceIDOf(c *gin.Context) string {
	return c.GetString("trace_id")
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceIDOf(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceIDOf(c),
	})
}

func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidPreferences):
		RespondError(c, http.StatusBadRequest, "Budget and day count must be greater than 0")
	case errors.Is(err, ErrInvalidGoalType):
		RespondError(c, http.StatusBadRequest, "Goal type must be one of budget, balanced, luxury, backpacker")
	case errors.Is(err, ErrInvalidMetric):
		RespondError(c, http.StatusBadRequest, "Unknown progress metric")
	case errors.Is(err, ErrInvalidStatus):
		RespondError(c, http.StatusBadRequest, "Status must be one of active, completed, paused, cancelled")
	case errors.Is(err, ErrInvalidInput):
		RespondError(c, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, ErrGoalNotFound):
		RespondError(c, http.StatusNotFound, "Goal not found")
	case errors.Is(err, ErrSnapshotNotFound):
		RespondError(c, http.StatusNotFound, "No itinerary stored for this goal")
	case errors.Is(err, ErrStaleUpdate):
		RespondError(c, http.StatusConflict, "Progress update is older than the stored value")
	case errors.Is(err, ErrReplanInFlight):
		RespondError(c, http.StatusConflict, "Itinerary is being replanned")
	case errors.Is(err, ErrDatabaseError):
		slog.Error("database error", "error", err, "trace_id", traceIDOf(c))
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		slog.Error("unhandled service error", "error", err, "trace_id", traceIDOf(c))
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
