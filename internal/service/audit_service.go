package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/authz"
	"github.com/emr-platform/emr-api/internal/domain"
	"github.com/emr-platform/emr-api/internal/session"
	"github.com/emr-platform/emr-api/pkg/metrics"
)

// auditMode states, per mutating operation, where its audit row comes from.
// Most mutations run through procedures that insert their own Audit_Log row;
// the appointment update/delete path runs raw statements and must write the
// row itself. The asymmetry is part of the procedure contract, so it is kept
// explicit here rather than buried in control flow.
type auditMode int

const (
	auditByProcedure auditMode = iota
	auditManual
)

// AuditModeFor reports where the audit row for a mutation comes from. Only
// the raw-statement appointment paths write their own rows; everything else
// relies on the procedure.
func AuditModeFor(table string, op domain.Operation) auditMode {
	if table == "Appointment" && (op == domain.OpUpdate || op == domain.OpDelete) {
		return auditManual
	}
	return auditByProcedure
}

type AuditService struct {
	sessions *session.Factory
	authz    *authz.Resolver
	log      *zap.Logger
	metrics  *metrics.Collector
	timeout  time.Duration
}

func NewAuditService(sessions *session.Factory, az *authz.Resolver, log *zap.Logger, m *metrics.Collector, timeout time.Duration) *AuditService {
	return &AuditService{sessions: sessions, authz: az, log: log, metrics: m, timeout: timeout}
}

// Record writes one audit row on the caller's session, inside the same
// request. Used only by auditManual operations; procedure-mediated mutations
// must not call it or the entry would be duplicated.
func (s *AuditService) Record(ctx context.Context, sess *session.Session, userID int64, table string, op domain.Operation, recordID int64) error {
	_, err := sess.ExecContext(ctx,
		`INSERT INTO Audit_Log (user_id, table_name, operation_type, record_id) VALUES (?, ?, ?, ?)`,
		userID, table, string(op), recordID,
	)
	if err != nil {
		return fmt.Errorf("writing audit entry: %w", err)
	}
	if s.metrics != nil {
		s.metrics.AuditEntriesTotal.WithLabelValues(table, string(op)).Inc()
	}
	return nil
}

// AdminList returns the full audit trail with actor names joined. Requires
// the exact role "Administrator"; the comparison is case-sensitive on
// purpose; it matches the procedure layer's seeding of role names.
func (s *AuditService) AdminList(ctx context.Context, userID int64, limit int) (session.Result, error) {
	if err := requireActor(userID); err != nil {
		return session.Result{}, err
	}
	if limit <= 0 {
		limit = 100
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	sess := s.sessions.Session()
	if err := sess.Open(ctx); err != nil {
		return session.Result{}, err
	}
	defer sess.Close()

	role, err := s.authz.Role(ctx, sess, userID)
	if err != nil {
		s.log.Error("failed to resolve role for audit access", zap.Int64("user_id", userID), zap.Error(err))
		return session.Result{}, err
	}
	if role != domain.RoleAdministrator {
		return session.Result{}, ErrForbidden
	}

	rows, err := sess.QueryContext(ctx,
		`SELECT
			al.audit_id,
			al.user_id,
			u.username,
			al.table_name,
			al.operation_type,
			al.record_id,
			al.old_value,
			al.new_value,
			al.field_changed,
			al.timestamp,
			al.ip_address
		FROM Audit_Log al
		LEFT JOIN User u ON al.user_id = u.user_id
		ORDER BY al.timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return session.Result{Success: false, Data: []session.Row{}, Error: err.Error()}, nil
	}
	defer rows.Close()

	data, err := session.ScanRows(rows)
	if err != nil {
		return session.Result{Success: false, Data: []session.Row{}, Error: err.Error()}, nil
	}

	return session.Result{Success: true, Data: data}, nil
}

// SelfList is the self-scoped audit view any actor may call; the procedure
// limits rows to the requesting user.
func (s *AuditService) SelfList(ctx context.Context, userID int64, limit int) (session.Result, error) {
	if err := requireActor(userID); err != nil {
		return session.Result{}, err
	}
	if limit <= 0 {
		limit = 50
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	sess := s.sessions.Session()
	if err := sess.Open(ctx); err != nil {
		return session.Result{}, err
	}
	defer sess.Close()

	return sess.Invoke(ctx, session.Call{
		Name: "sp_view_audit_log",
		Args: []any{userID, limit},
	}), nil
}
