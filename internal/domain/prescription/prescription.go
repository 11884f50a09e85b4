package prescription

// CreatePrescriptionCommand carries sp_add_prescription's IN arguments, in
// declaration order. The procedure reports back through two OUT parameters:
// the new prescription id and a result message.
type CreatePrescriptionCommand struct {
	PatientID          int64  `json:"patient_id" binding:"required"`
	AppointmentID      int64  `json:"appointment_id"`
	MedicationID       int64  `json:"medication_id" binding:"required"`
	DosageInstructions string `json:"dosage_instructions"`
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date"`
	RefillCount        int    `json:"refill_count"`
}

func (c *CreatePrescriptionCommand) Args() []any {
	return []any{
		c.PatientID, c.AppointmentID, c.MedicationID, c.DosageInstructions,
		c.StartDate, c.EndDate, c.RefillCount,
	}
}

type UpdatePrescriptionCommand struct {
	PrescriptionID     int64  `json:"prescription_id"`
	MedicationID       int64  `json:"medication_id"`
	DosageInstructions string `json:"dosage_instructions"`
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date"`
	RefillCount        int    `json:"refill_count"`
}

func (c *UpdatePrescriptionCommand) Args() []any {
	return []any{
		c.PrescriptionID, c.MedicationID, c.DosageInstructions,
		c.StartDate, c.EndDate, c.RefillCount,
	}
}
