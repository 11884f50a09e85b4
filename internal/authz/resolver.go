// Package authz resolves an actor's role, permission set and derived doctor
// identity. Enforcement stays at the call sites: workflows compare the
// resolved role themselves (audit log: exact "Administrator"; appointment
// list: case-insensitive "receptionist"). Permission strings are aggregated
// for display only; no workflow currently gates on an individual permission,
// a documented gap preserved deliberately.
package authz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/domain"
	"github.com/emr-platform/emr-api/internal/session"
)

type Resolver struct {
	log *zap.Logger
}

func NewResolver(log *zap.Logger) *Resolver {
	return &Resolver{log: log}
}

// Role returns the single authoritative role string for the actor, or
// RoleUnknown when no role row exists. An unknown role is not an error;
// callers treat it as the non-privileged branch.
func (r *Resolver) Role(ctx context.Context, sess *session.Session, userID int64) (domain.Role, error) {
	rows, err := sess.QueryContext(ctx,
		`SELECT r.role_name
		 FROM User_Role ur
		 JOIN Role r ON ur.role_id = r.role_id
		 WHERE ur.user_id = ?`, userID)
	if err != nil {
		return domain.RoleUnknown, fmt.Errorf("resolving role: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return domain.RoleUnknown, rows.Err()
	}
	var role string
	if err := rows.Scan(&role); err != nil {
		return domain.RoleUnknown, fmt.Errorf("scanning role: %w", err)
	}
	return domain.Role(role), nil
}

// Permissions resolves the actor's role name and aggregated, de-duplicated
// permission set from the permissions view.
func (r *Resolver) Permissions(ctx context.Context, sess *session.Session, userID int64) (domain.Role, []string, error) {
	rows, err := sess.QueryContext(ctx,
		`SELECT role_name, GROUP_CONCAT(permission_name SEPARATOR ', ') AS permissions
		 FROM vw_user_permissions
		 WHERE user_id = ?
		 GROUP BY user_id, role_name`, userID)
	if err != nil {
		return domain.RoleUnknown, nil, fmt.Errorf("resolving permissions: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return domain.RoleUnknown, []string{}, rows.Err()
	}

	var role string
	var joined sql.NullString
	if err := rows.Scan(&role, &joined); err != nil {
		return domain.RoleUnknown, nil, fmt.Errorf("scanning permissions: %w", err)
	}

	return domain.Role(role), splitPermissions(joined.String), nil
}

func splitPermissions(joined string) []string {
	if joined == "" {
		return []string{}
	}
	seen := make(map[string]struct{})
	perms := make([]string, 0, 8)
	for _, p := range strings.Split(joined, ", ") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		perms = append(perms, p)
	}
	return perms
}

// DoctorID maps a user to their Doctor record through the account naming
// convention: a clinician's username is "dr_" + lowercase last name. The
// User and Doctor tables share no foreign key, so this lookup is the one
// sanctioned bridge between them. ok=false means the user is not a doctor.
func (r *Resolver) DoctorID(ctx context.Context, sess *session.Session, userID int64) (doctorID int64, ok bool, err error) {
	rows, err := sess.QueryContext(ctx,
		`SELECT d.doctor_id
		 FROM User u
		 JOIN Doctor d ON CONCAT('dr_', LOWER(d.last_name)) = u.username
		 WHERE u.user_id = ?
		 LIMIT 1`, userID)
	if err != nil {
		return 0, false, fmt.Errorf("resolving doctor identity: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, false, rows.Err()
	}
	if err := rows.Scan(&doctorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("scanning doctor identity: %w", err)
	}
	return doctorID, true, nil
}
