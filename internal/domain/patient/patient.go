package patient

// CreatePatientCommand carries the positional arguments of sp_add_patient,
// in declaration order.
type CreatePatientCommand struct {
	FirstName     string `json:"first_name" binding:"required"`
	LastName      string `json:"last_name" binding:"required"`
	DateOfBirth   string `json:"date_of_birth" binding:"required"`
	Gender        string `json:"gender"`
	PhoneNumber   string `json:"phone_number"`
	EmailAddress  string `json:"email_address"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postal_code"`
}

// Args returns the procedure arguments following the caller's user id.
func (c *CreatePatientCommand) Args() []any {
	return []any{
		c.FirstName, c.LastName, c.DateOfBirth, c.Gender, c.PhoneNumber,
		c.EmailAddress, c.StreetAddress, c.City, c.State, c.PostalCode,
	}
}

type UpdatePatientCommand struct {
	PatientID     int64  `json:"patient_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	DateOfBirth   string `json:"date_of_birth"`
	Gender        string `json:"gender"`
	PhoneNumber   string `json:"phone_number"`
	EmailAddress  string `json:"email_address"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postal_code"`
}

func (c *UpdatePatientCommand) Args() []any {
	return []any{
		c.PatientID, c.FirstName, c.LastName, c.DateOfBirth, c.Gender,
		c.PhoneNumber, c.EmailAddress, c.StreetAddress, c.City, c.State,
		c.PostalCode,
	}
}

// ListPatientsQuery defines pagination for patient list calls.
type ListPatientsQuery struct {
	Limit  int
	Offset int
}

func (q *ListPatientsQuery) Normalize() {
	if q.Limit <= 0 {
		q.Limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}
