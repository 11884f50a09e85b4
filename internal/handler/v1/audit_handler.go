package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/service"
)

type AuditHandler struct {
	audit *service.AuditService
	log   *zap.Logger
}

func NewAuditHandler(audit *service.AuditService, log *zap.Logger) *AuditHandler {
	return &AuditHandler{audit: audit, log: log}
}

// AdminList serves the full trail; administrators only.
func (h *AuditHandler) AdminList(c *gin.Context) {
	limit := parseQueryInt(c, "limit", 100)

	res, err := h.audit.AdminList(c.Request.Context(), actorID(c), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SelfList returns the caller's own audit entries via the viewing
// procedure, which enforces its own visibility rules.
func (h *AuditHandler) SelfList(c *gin.Context) {
	limit := parseQueryInt(c, "limit", 50)

	res, err := h.audit.SelfList(c.Request.Context(), actorID(c), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
