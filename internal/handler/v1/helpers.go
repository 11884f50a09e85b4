package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emr-platform/emr-api/internal/domain/appointment"
	"github.com/emr-platform/emr-api/internal/domain/patient"
	"github.com/emr-platform/emr-api/internal/service"
	"github.com/emr-platform/emr-api/internal/session"
)

// MessageResponse is the failure envelope every route returns: the same
// {success, message} shape the procedure layer's own envelopes use.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, MessageResponse{Success: false, Message: message})
}

// respondServiceError maps the workflow error taxonomy onto status codes.
// Business rejections never arrive here (they travel inside envelopes), so
// everything below is an access or infrastructure failure.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		respondMessage(c, http.StatusUnauthorized, "User ID required")

	case errors.Is(err, service.ErrForbidden):
		respondMessage(c, http.StatusForbidden, "Access denied. Administrator role required.")

	case errors.Is(err, session.ErrConnectionUnavailable):
		respondMessage(c, http.StatusInternalServerError, "Database connection failed")

	case errors.Is(err, patient.ErrSearchTermMissing):
		respondMessage(c, http.StatusBadRequest, "Search term required")

	case errors.Is(err, appointment.ErrInvalidStatus):
		respondMessage(c, http.StatusBadRequest, err.Error())

	default:
		respondMessage(c, http.StatusInternalServerError, "Internal server error")
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

// parseID reads an integer path parameter; 0 with a 400 response on garbage.
func parseID(c *gin.Context, param string) (int64, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondMessage(c, http.StatusBadRequest, "invalid "+param)
		return 0, false
	}
	return id, true
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}
