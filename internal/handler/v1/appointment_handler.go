package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/domain/appointment"
	"github.com/emr-platform/emr-api/internal/service"
)

type AppointmentHandler struct {
	appointments *service.AppointmentService
	log          *zap.Logger
}

func NewAppointmentHandler(appointments *service.AppointmentService, log *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments, log: log}
}

func (h *AppointmentHandler) List(c *gin.Context) {
	res, err := h.appointments.List(c.Request.Context(), actorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AppointmentHandler) Schedule(c *gin.Context) {
	var cmd appointment.CreateAppointmentCommand
	if !bindJSON(c, &cmd) {
		return
	}

	res, err := h.appointments.Schedule(c.Request.Context(), actorID(c), &cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !res.Success {
		c.JSON(http.StatusBadRequest, res)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	appointmentID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var cmd appointment.UpdateAppointmentCommand
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.AppointmentID = appointmentID

	res, err := h.appointments.Update(c.Request.Context(), actorID(c), &cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !res.Success {
		c.JSON(http.StatusBadRequest, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Delete returns 403 on a failed removal, mirroring the hard-delete
// policy: a row that cannot be removed is treated as a denied action.
func (h *AppointmentHandler) Delete(c *gin.Context) {
	appointmentID, ok := parseID(c, "id")
	if !ok {
		return
	}

	res, err := h.appointments.Delete(c.Request.Context(), actorID(c), appointmentID)
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
