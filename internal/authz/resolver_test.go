package authz

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/domain"
	"github.com/emr-platform/emr-api/internal/session"
)

func setupResolver(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *session.Session, *Resolver) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	f := session.NewFactory(db, zap.NewNop(), nil)
	sess := f.Session()
	require.NoError(t, sess.Open(context.Background()))

	return db, mock, sess, NewResolver(zap.NewNop())
}

func TestResolveRole(t *testing.T) {
	db, mock, sess, r := setupResolver(t)
	defer db.Close()
	defer sess.Close()

	mock.ExpectQuery("SELECT r.role_name").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"role_name"}).AddRow("Physician"))

	role, err := r.Role(context.Background(), sess, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.RolePhysician, role)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveRoleMissing(t *testing.T) {
	db, mock, sess, r := setupResolver(t)
	defer db.Close()
	defer sess.Close()

	mock.ExpectQuery("SELECT r.role_name").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"role_name"}))

	role, err := r.Role(context.Background(), sess, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUnknown, role)
}

func TestResolvePermissions(t *testing.T) {
	db, mock, sess, r := setupResolver(t)
	defer db.Close()
	defer sess.Close()

	mock.ExpectQuery("FROM vw_user_permissions").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"role_name", "permissions"}).
			AddRow("Physician", "view_patient, add_prescription, view_patient, edit_prescription"))

	role, perms, err := r.Permissions(context.Background(), sess, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.RolePhysician, role)
	assert.Equal(t, []string{"view_patient", "add_prescription", "edit_prescription"}, perms)
}

func TestResolvePermissionsNullAggregate(t *testing.T) {
	db, mock, sess, r := setupResolver(t)
	defer db.Close()
	defer sess.Close()

	mock.ExpectQuery("FROM vw_user_permissions").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"role_name", "permissions"}).
			AddRow("Receptionist", nil))

	role, perms, err := r.Permissions(context.Background(), sess, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleReceptionist, role)
	assert.Empty(t, perms)
}

func TestDoctorIdentity(t *testing.T) {
	db, mock, sess, r := setupResolver(t)
	defer db.Close()
	defer sess.Close()

	mock.ExpectQuery("SELECT d.doctor_id").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"doctor_id"}).AddRow(int64(12)))

	doctorID, ok, err := r.DoctorID(context.Background(), sess, 9)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(12), doctorID)
}

func TestDoctorIdentityNotADoctor(t *testing.T) {
	db, mock, sess, r := setupResolver(t)
	defer db.Close()
	defer sess.Close()

	mock.ExpectQuery("SELECT d.doctor_id").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"doctor_id"}))

	_, ok, err := r.DoctorID(context.Background(), sess, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSplitPermissions(t *testing.T) {
	assert.Empty(t, splitPermissions(""))
	assert.Equal(t, []string{"a"}, splitPermissions("a"))
	assert.Equal(t, []string{"a", "b"}, splitPermissions("a, b, a"))
}
