package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/config"
	"github.com/emr-platform/emr-api/internal/domain"
	"github.com/emr-platform/emr-api/pkg/auth"
)

func testJWTManager() *auth.JWTManager {
	return auth.NewJWTManager(config.JWTConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "emr-api",
	})
}

func TestLogin(t *testing.T) {
	db, mock, f, az := setupSessions(t)
	defer db.Close()

	mock.ExpectQuery("CALL sp_user_login").
		WithArgs("dr_silva", "s3cret").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "message", "specialty", "doctor_name"}).
			AddRow(int64(4), "dr_silva", "Login successful", "Cardiology", "Dana Silva"))
	mock.ExpectQuery("SELECT email FROM User").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("dsilva@clinic.example"))
	mock.ExpectQuery("FROM vw_user_permissions").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"role_name", "permissions"}).
			AddRow("Physician", "view_patient, add_prescription"))

	svc := NewAuthService(f, az, testJWTManager(), zap.NewNop(), testTimeout)

	res, err := svc.Login(context.Background(), "dr_silva", "s3cret")
	require.NoError(t, err)
	assert.True(t, res.Success)

	require.NotNil(t, res.User)
	assert.Equal(t, int64(4), res.User.UserID)
	assert.Equal(t, "dr_silva", res.User.Username)
	assert.Equal(t, "dsilva@clinic.example", res.User.Email)
	assert.Equal(t, domain.RolePhysician, res.User.Role)
	assert.Equal(t, []string{"view_patient", "add_prescription"}, res.User.Permissions)
	require.NotNil(t, res.User.Specialty)
	assert.Equal(t, "Cardiology", *res.User.Specialty)

	require.NotNil(t, res.Token)
	assert.NotEmpty(t, res.Token.AccessToken)
	assert.Equal(t, "Bearer", res.Token.TokenType)

	claims, err := testJWTManager().ValidateAccessToken(res.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(4), claims.UserID)
	assert.Equal(t, domain.RolePhysician, claims.Role)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginRejected(t *testing.T) {
	db, mock, f, az := setupSessions(t)
	defer db.Close()

	mock.ExpectQuery("CALL sp_user_login").
		WithArgs("dr_silva", "wrong").
		WillReturnRows(sqlmock.NewRows([]string{"message"}).
			AddRow("Invalid username or password"))

	svc := NewAuthService(f, az, testJWTManager(), zap.NewNop(), testTimeout)

	res, err := svc.Login(context.Background(), "dr_silva", "wrong")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid username or password", res.Message)
	assert.Nil(t, res.User)
	assert.Nil(t, res.Token)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginEmptyResultSet(t *testing.T) {
	db, mock, f, az := setupSessions(t)
	defer db.Close()

	mock.ExpectQuery("CALL sp_user_login").
		WithArgs("ghost", "pw").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username"}))

	svc := NewAuthService(f, az, testJWTManager(), zap.NewNop(), testTimeout)

	res, err := svc.Login(context.Background(), "ghost", "pw")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Login failed", res.Message)
}

func TestLoginProcedureError(t *testing.T) {
	db, mock, f, az := setupSessions(t)
	defer db.Close()

	mock.ExpectQuery("CALL sp_user_login").
		WithArgs("dr_silva", "s3cret").
		WillReturnError(errors.New("Lock wait timeout exceeded"))

	svc := NewAuthService(f, az, testJWTManager(), zap.NewNop(), testTimeout)

	res, err := svc.Login(context.Background(), "dr_silva", "s3cret")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Lock wait timeout")
}
