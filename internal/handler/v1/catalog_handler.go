package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/service"
)

type CatalogHandler struct {
	catalog *service.CatalogService
	log     *zap.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

// Doctors is open to unauthenticated callers: the roster backs the
// appointment booking form shown before login.
func (h *CatalogHandler) Doctors(c *gin.Context) {
	res, err := h.catalog.Doctors(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *CatalogHandler) Medications(c *gin.Context) {
	res, err := h.catalog.Medications(c.Request.Context(), actorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
