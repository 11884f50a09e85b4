package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/authz"
	"github.com/emr-platform/emr-api/internal/domain"
	"github.com/emr-platform/emr-api/internal/domain/appointment"
	"github.com/emr-platform/emr-api/internal/session"
)

type AppointmentService struct {
	sessions *session.Factory
	authz    *authz.Resolver
	audit    *AuditService
	log      *zap.Logger
	timeout  time.Duration
}

func NewAppointmentService(sessions *session.Factory, az *authz.Resolver, audit *AuditService, log *zap.Logger, timeout time.Duration) *AppointmentService {
	return &AppointmentService{sessions: sessions, authz: az, audit: audit, log: log, timeout: timeout}
}

// List is role-sensitive: a receptionist (compared case-insensitively, as
// the front desk accounts predate consistent casing) sees every appointment
// through the aggregated join; any other role sees only the clinician's own
// schedule via the procedure.
func (s *AppointmentService) List(ctx context.Context, userID int64) (session.Result, error) {
	if err := requireActor(userID); err != nil {
		return session.Result{}, err
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
		s.log.Error("failed to resolve role for appointment list", zap.Int64("user_id", userID), zap.Error(err))
		return session.Result{}, err
	}

	if strings.EqualFold(string(role), string(domain.RoleReceptionist)) {
		return s.listAll(ctx, sess)
	}

	return sess.Invoke(ctx, session.Call{
		Name: "sp_get_doctor_appointments",
		Args: []any{userID},
	}), nil
}

func (s *AppointmentService) listAll(ctx context.Context, sess *session.Session) (session.Result, error) {
	rows, err := sess.QueryContext(ctx,
		`SELECT
			a.appointment_id,
			a.patient_id,
			COALESCE(CONCAT(p.first_name, ' ', p.last_name), 'Unknown Patient') AS patient_name,
			a.doctor_id,
			COALESCE(CONCAT(d.first_name, ' ', d.last_name), 'Unknown Doctor') AS doctor_name,
			COALESCE(d.specialty, 'N/A') AS specialty,
			a.appointment_date,
			a.reason_for_visit,
			a.status
		FROM Appointment a
		LEFT JOIN Patient p ON a.patient_id = p.patient_id
		LEFT JOIN Doctor d ON a.doctor_id = d.doctor_id
		ORDER BY a.appointment_id ASC`)
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

// Schedule creates an appointment through sp_schedule_appointment. Audit
// mode: auditByProcedure.
func (s *AppointmentService) Schedule(ctx context.Context, userID int64, cmd *appointment.CreateAppointmentCommand) (session.Result, error) {
	if err := requireActor(userID); err != nil {
		return session.Result{}, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	sess := s.sessions.Session()
	if err := sess.Open(ctx); err != nil {
		return session.Result{}, err
	}
	defer sess.Close()

	return sess.Invoke(ctx, session.Call{
		Name: "sp_schedule_appointment",
		Args: append([]any{userID}, cmd.Args()...),
	}), nil
}

// Update rewrites an appointment with a raw parameterized statement and, on
// success, writes the audit row itself (auditManual): unlike the create
// path there is no procedure here to do it. Any member of the legal status
// set is accepted; the directional transition table is advisory only.
func (s *AppointmentService) Update(ctx context.Context, userID int64, cmd *appointment.UpdateAppointmentCommand) (session.Result, error) {
	if err := requireActor(userID); err != nil {
		return session.Result{}, err
	}

	status := cmd.Status
	if status == "" {
		status = appointment.StatusScheduled
	}
	if !status.IsValid() {
		return session.Result{}, appointment.ErrInvalidStatus
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	sess := s.sessions.Session()
	if err := sess.Open(ctx); err != nil {
		return session.Result{}, err
	}
	defer sess.Close()

	sess.SetActorContext(ctx, userID)

	result, err := sess.ExecContext(ctx,
		`UPDATE Appointment SET patient_id = ?, doctor_id = ?, appointment_date = ?, reason_for_visit = ?, status = ? WHERE appointment_id = ?`,
		cmd.PatientID, cmd.DoctorID, cmd.AppointmentDate, cmd.ReasonForVisit, string(status), cmd.AppointmentID,
	)
	if err != nil {
		s.log.Error("error updating appointment", zap.Int64("appointment_id", cmd.AppointmentID), zap.Error(err))
		return session.Result{Success: false, Data: []session.Row{}, Error: err.Error()}, nil
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return session.Result{Success: false, Data: []session.Row{}, Error: err.Error()}, nil
	}
	if affected == 0 {
		return emptyResult("Appointment not found"), nil
	}

	if AuditModeFor("Appointment", domain.OpUpdate) == auditManual {
		if err := s.audit.Record(ctx, sess, userID, "Appointment", domain.OpUpdate, cmd.AppointmentID); err != nil {
			s.log.Error("error writing appointment audit entry", zap.Int64("appointment_id", cmd.AppointmentID), zap.Error(err))
			return session.Result{Success: false, Data: []session.Row{}, Error: err.Error()}, nil
		}
	}

	return session.Result{Success: true, Data: []session.Row{}, Message: "Appointment updated successfully"}, nil
}

// Delete removes an appointment with a raw statement; audit mode is
// auditManual, as for Update.
func (s *AppointmentService) Delete(ctx context.Context, userID, appointmentID int64) (session.Result, error) {
	if err := requireActor(userID); err != nil {
		return session.Result{}, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	sess := s.sessions.Session()
	if err := sess.Open(ctx); err != nil {
		return session.Result{}, err
	}
	defer sess.Close()

	sess.SetActorContext(ctx, userID)

	result, err := sess.ExecContext(ctx,
		`DELETE FROM Appointment WHERE appointment_id = ?`, appointmentID)
	if err != nil {
		s.log.Error("error deleting appointment", zap.Int64("appointment_id", appointmentID), zap.Error(err))
		return session.Result{Success: false, Data: []session.Row{}, Error: err.Error()}, nil
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return session.Result{Success: false, Data: []session.Row{}, Error: err.Error()}, nil
	}
	if affected == 0 {
		return emptyResult("Appointment not found"), nil
	}

	if AuditModeFor("Appointment", domain.OpDelete) == auditManual {
		if err := s.audit.Record(ctx, sess, userID, "Appointment", domain.OpDelete, appointmentID); err != nil {
			s.log.Error("error writing appointment audit entry", zap.Int64("appointment_id", appointmentID), zap.Error(err))
			return session.Result{Success: false, Data: []session.Row{}, Error: err.Error()}, nil
		}
	}

	return session.Result{Success: true, Data: []session.Row{}, Message: "Appointment deleted successfully"}, nil
}
