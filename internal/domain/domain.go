package domain

import "time"

// Role is the single authoritative role string resolved per actor. Values
// come from the Role table; the constants below are the ones workflows gate
// on. Comparison conventions differ per call site: the audit log check is
// case-sensitive, the appointment-list check is case-insensitive.
type Role string

const (
	RoleAdministrator Role = "Administrator"
	RolePhysician     Role = "Physician"
	RoleReceptionist  Role = "Receptionist"
	RoleUnknown       Role = "Unknown"
)

// Actor is the authenticated identity issuing a request. Assembled at login
// resolution, held for one request, never persisted.
type Actor struct {
	UserID      int64    `json:"user_id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Role        Role     `json:"role"`
	Specialty   *string  `json:"specialty"`
	DoctorName  *string  `json:"doctor_name"`
	Permissions []string `json:"permissions"`
}

type Claims struct {
	UserID   int64  `json:"sub"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

// Operation is the audit operation kind. The set is fixed by the Audit_Log
// schema that external tooling (the audit viewer) reads.
type Operation string

const (
	OpInsert Operation = "INSERT"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
	OpSelect Operation = "SELECT"
)

