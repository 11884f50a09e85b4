package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/domain/prescription"
	"github.com/emr-platform/emr-api/internal/service"
)

type PrescriptionHandler struct {
	prescriptions *service.PrescriptionService
	log           *zap.Logger
}

func NewPrescriptionHandler(prescriptions *service.PrescriptionService, log *zap.Logger) *PrescriptionHandler {
	return &PrescriptionHandler{prescriptions: prescriptions, log: log}
}

func (h *PrescriptionHandler) List(c *gin.Context) {
	res, err := h.prescriptions.List(c.Request.Context(), actorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Create rejects a failed procedure outcome with 403: the procedure
// refuses the write when the actor has no prescribing rights, so the
// failure is surfaced as a denial rather than a validation error.
func (h *PrescriptionHandler) Create(c *gin.Context) {
	var cmd prescription.CreatePrescriptionCommand
	if !bindJSON(c, &cmd) {
		return
	}

	res, err := h.prescriptions.Create(c.Request.Context(), actorID(c), &cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !res.Success {
		c.JSON(http.StatusForbidden, res)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *PrescriptionHandler) Update(c *gin.Context) {
	prescriptionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var cmd prescription.UpdatePrescriptionCommand
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.PrescriptionID = prescriptionID

	res, err := h.prescriptions.Update(c.Request.Context(), actorID(c), &cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PrescriptionHandler) Delete(c *gin.Context) {
	prescriptionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	res, err := h.prescriptions.Delete(c.Request.Context(), actorID(c), prescriptionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !res.Success {
		c.JSON(http.StatusForbidden, res)
		return
	}
	c.JSON(http.StatusOK, res)
}
