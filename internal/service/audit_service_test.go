package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/domain"
)

func TestAuditModeFor(t *testing.T) {
	assert.Equal(t, auditManual, AuditModeFor("Appointment", domain.OpUpdate))
	assert.Equal(t, auditManual, AuditModeFor("Appointment", domain.OpDelete))
	assert.Equal(t, auditByProcedure, AuditModeFor("Appointment", domain.OpInsert))
	assert.Equal(t, auditByProcedure, AuditModeFor("Patient", domain.OpUpdate))
	assert.Equal(t, auditByProcedure, AuditModeFor("Prescription", domain.OpDelete))
}

func TestAdminListRequiresAdministrator(t *testing.T) {
	db, mock, f, az := setupSessions(t)
	defer db.Close()

	// "administrator" is not "Administrator"; the check is case-sensitive.
	mock.ExpectQuery("SELECT r.role_name").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"role_name"}).AddRow("administrator"))

	svc := NewAuditService(f, az, zap.NewNop(), nil, testTimeout)

	_, err := svc.AdminList(context.Background(), 4, 100)
	assert.True(t, errors.Is(err, ErrForbidden))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminList(t *testing.T) {
	db, mock, f, az := setupSessions(t)
	defer db.Close()

	mock.ExpectQuery("SELECT r.role_name").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"role_name"}).AddRow("Administrator"))
	mock.ExpectQuery("FROM Audit_Log al").
		WithArgs(25).
		WillReturnRows(sqlmock.NewRows([]string{"audit_id", "user_id", "username", "table_name", "operation_type"}).
			AddRow(int64(301), int64(5), "frontdesk1", "Appointment", "DELETE").
			AddRow(int64(300), int64(4), "dr_silva", "Prescription", "INSERT"))

	svc := NewAuditService(f, az, zap.NewNop(), nil, testTimeout)

	res, err := svc.AdminList(context.Background(), 1, 25)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, res.Data, 2)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelfListUsesViewingProcedure(t *testing.T) {
	db, mock, f, az := setupSessions(t)
	defer db.Close()

	mock.ExpectQuery("CALL sp_view_audit_log").
		WithArgs(int64(4), 50).
		WillReturnRows(sqlmock.NewRows([]string{"audit_id", "table_name"}).
			AddRow(int64(300), "Prescription"))

	svc := NewAuditService(f, az, zap.NewNop(), nil, testTimeout)

	res, err := svc.SelfList(context.Background(), 4, 0)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, res.Data, 1)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRequiresActor(t *testing.T) {
	db, mock, f, az := setupSessions(t)
	defer db.Close()

	svc := NewAuditService(f, az, zap.NewNop(), nil, testTimeout)

	_, err := svc.AdminList(context.Background(), 0, 100)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	_, err = svc.SelfList(context.Background(), 0, 50)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	require.NoError(t, mock.ExpectationsWereMet())
}
