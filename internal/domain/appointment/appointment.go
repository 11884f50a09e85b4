package appointment

// Status is the appointment lifecycle value. The intended direction is
//
//	Scheduled → {Completed, Cancelled, No-Show}
//
// but updates accept any member of the legal set; CanTransitionTo is an
// advisory helper for callers that want the stricter reading.
type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
	StatusNoShow    Status = "No-Show"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

func (s Status) CanTransitionTo(next Status) bool {
	if s != StatusScheduled {
		return false
	}
	switch next {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type CreateAppointmentCommand struct {
	PatientID       int64  `json:"patient_id" binding:"required"`
	DoctorID        int64  `json:"doctor_id" binding:"required"`
	AppointmentDate string `json:"appointment_date" binding:"required"`
	ReasonForVisit  string `json:"reason_for_visit"`
}

func (c *CreateAppointmentCommand) Args() []any {
	return []any{c.PatientID, c.DoctorID, c.AppointmentDate, c.ReasonForVisit}
}

type UpdateAppointmentCommand struct {
	AppointmentID   int64  `json:"appointment_id"`
	PatientID       int64  `json:"patient_id"`
	DoctorID        int64  `json:"doctor_id"`
	AppointmentDate string `json:"appointment_date"`
	ReasonForVisit  string `json:"reason_for_visit"`
	Status          Status `json:"status"`
}
