package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/domain/patient"
	"github.com/emr-platform/emr-api/internal/service"
)

type PatientHandler struct {
	patients *service.PatientService
	log      *zap.Logger
}

func NewPatientHandler(patients *service.PatientService, log *zap.Logger) *PatientHandler {
	return &PatientHandler{patients: patients, log: log}
}

func (h *PatientHandler) List(c *gin.Context) {
	q := patient.ListPatientsQuery{
		Limit:  parseQueryInt(c, "limit", 0),
		Offset: parseQueryInt(c, "offset", 0),
	}

	res, err := h.patients.List(c.Request.Context(), actorID(c), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListAll bypasses the listing procedure and returns the raw table,
// ordered by patient id.
func (h *PatientHandler) ListAll(c *gin.Context) {
	res, err := h.patients.GetAll(c.Request.Context(), actorID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PatientHandler) Get(c *gin.Context) {
	patientID, ok := parseID(c, "id")
	if !ok {
		return
	}

	res, err := h.patients.Get(c.Request.Context(), actorID(c), patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PatientHandler) Search(c *gin.Context) {
	// Clients send ?q=; ?term= is accepted as an alias.
	term := c.Query("q")
	if term == "" {
		term = c.Query("term")
	}

	res, err := h.patients.Search(c.Request.Context(), actorID(c), term)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PatientHandler) Create(c *gin.Context) {
	var cmd patient.CreatePatientCommand
	if !bindJSON(c, &cmd) {
		return
	}

	res, err := h.patients.Add(c.Request.Context(), actorID(c), &cmd)
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

func (h *PatientHandler) Update(c *gin.Context) {
	patientID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var cmd patient.UpdatePatientCommand
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.PatientID = patientID

	res, err := h.patients.Update(c.Request.Context(), actorID(c), &cmd)
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
