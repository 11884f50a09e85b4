package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/domain/appointment"
)

func TestAppointmentListReceptionistSeesAll(t *testing.T) {
	db, mock, f, az := setupSessions(t)
	defer db.Close()

	// Casing varies in the role seed data; the branch must still match.
	mock.ExpectQuery("SELECT r.role_name").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"role_name"}).AddRow("receptionist"))
	mock.ExpectQuery("FROM Appointment a").
		WillReturnRows(sqlmock.NewRows([]string{"appointment_id", "patient_name", "doctor_name"}).
			AddRow(int64(1), "Alice Nguyen", "Unknown Doctor").
			AddRow(int64(2), "Bob Okafor", "Dana Silva"))

	audit := NewAuditService(f, az, zap.NewNop(), nil, testTimeout)
	svc := NewAppointmentService(f, az, audit, zap.NewNop(), testTimeout)

	res, err := svc.List(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, res.Data, 2)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentListPhysicianSeesOwnSchedule(t *testing.T) {
	db, mock, f, az := setupSessions(t)
	defer db.Close()

	mock.ExpectQuery("SELECT r.role_name").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"role_name"}).AddRow("Physician"))
	mock.ExpectQuery("CALL sp_get_doctor_appointments").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"appointment_id"}).AddRow(int64(7)))

	audit := NewAuditService(f, az, zap.NewNop(), nil, testTimeout)
	svc := NewAppointmentService(f, az, audit, zap.NewNop(), testTimeout)

	res, err := svc.List(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, res.Data, 1)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentUpdateWritesOneAuditRow(t *testing.T) {
	db, mock, f, az := setupSessions(t)
	defer db.Close()

	mock.ExpectExec("SET @current_user_id").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE Appointment SET").
		WithArgs(int64(2), int64(3), "2026-09-10 09:00:00", "Follow-up", "Completed", int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO Audit_Log").
		WithArgs(int64(5), "Appointment", "UPDATE", int64(11)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	audit := NewAuditService(f, az, zap.NewNop(), nil, testTimeout)
	svc := NewAppointmentService(f, az, audit, zap.NewNop(), testTimeout)

	res, err := svc.Update(context.Background(), 5, &appointment.UpdateAppointmentCommand{
		AppointmentID:   11,
		PatientID:       2,
		DoctorID:        3,
		AppointmentDate: "2026-09-10 09:00:00",
		ReasonForVisit:  "Follow-up",
		Status:          appointment.StatusCompleted,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Appointment updated successfully", res.Message)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentUpdateNotFoundSkipsAudit(t *testing.T) {
	db, mock, f, az := setupSessions(t)
	defer db.Close()

	mock.ExpectExec("SET @current_user_id").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE Appointment SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	audit := NewAuditService(f, az, zap.NewNop(), nil, testTimeout)
	svc := NewAppointmentService(f, az, audit, zap.NewNop(), testTimeout)

	res, err := svc.Update(context.Background(), 5, &appointment.UpdateAppointmentCommand{
		AppointmentID: 999,
		Status:        appointment.StatusScheduled,
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Appointment not found", res.Message)

	// No Audit_Log insert may happen for a miss.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentUpdateRejectsUnknownStatus(t *testing.T) {
	db, mock, f, az := setupSessions(t)
	defer db.Close()

	audit := NewAuditService(f, az, zap.NewNop(), nil, testTimeout)
	svc := NewAppointmentService(f, az, audit, zap.NewNop(), testTimeout)

	_, err := svc.Update(context.Background(), 5, &appointment.UpdateAppointmentCommand{
		AppointmentID: 11,
		Status:        appointment.Status("Rescheduled"),
	})
	assert.True(t, errors.Is(err, appointment.ErrInvalidStatus))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentDeleteWritesOneAuditRow(t *testing.T) {
	db, mock, f, az := setupSessions(t)
	defer db.Close()

	mock.ExpectExec("SET @current_user_id").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM Appointment").
		WithArgs(int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO Audit_Log").
		WithArgs(int64(5), "Appointment", "DELETE", int64(11)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	audit := NewAuditService(f, az, zap.NewNop(), nil, testTimeout)
	svc := NewAppointmentService(f, az, audit, zap.NewNop(), testTimeout)

	res, err := svc.Delete(context.Background(), 5, 11)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Appointment deleted successfully", res.Message)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentDeleteNotFound(t *testing.T) {
	db, mock, f, az := setupSessions(t)
	defer db.Close()

	mock.ExpectExec("SET @current_user_id").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM Appointment").
		WithArgs(int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	audit := NewAuditService(f, az, zap.NewNop(), nil, testTimeout)
	svc := NewAppointmentService(f, az, audit, zap.NewNop(), testTimeout)

	res, err := svc.Delete(context.Background(), 5, 999)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Appointment not found", res.Message)

	require.NoError(t, mock.ExpectationsWereMet())
}
