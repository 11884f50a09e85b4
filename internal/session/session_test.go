package session

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupFactory(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *Factory) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	f := NewFactory(db, zap.NewNop(), nil)
	return db, mock, f
}

func TestSessionOpenAndClose(t *testing.T) {
	db, mock, f := setupFactory(t)
	defer db.Close()

	sess := f.Session()
	require.NoError(t, sess.Open(context.Background()))

	sess.Close()
	sess.Close() // second close is a no-op

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionOpenOnCancelledContext(t *testing.T) {
	db, _, f := setupFactory(t)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sess := f.Session()
	err := sess.Open(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnectionUnavailable))
}

func TestSessionReopenAfterCloseRejected(t *testing.T) {
	db, _, f := setupFactory(t)
	defer db.Close()

	sess := f.Session()
	require.NoError(t, sess.Open(context.Background()))
	sess.Close()

	err := sess.Open(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnectionUnavailable))
}

func TestPoolExhaustionBlocksUntilRelease(t *testing.T) {
	db, _, f := setupFactory(t)
	defer db.Close()
	db.SetMaxOpenConns(1)

	first := f.Session()
	require.NoError(t, first.Open(context.Background()))

	released := make(chan struct{})
	go func() {
		time.Sleep(50 * time.Millisecond)
		first.Close()
		close(released)
	}()

	second := f.Session()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, second.Open(ctx))
	second.Close()

	<-released
}

func TestPoolExhaustionTimesOut(t *testing.T) {
	db, _, f := setupFactory(t)
	defer db.Close()
	db.SetMaxOpenConns(1)

	first := f.Session()
	require.NoError(t, first.Open(context.Background()))
	defer first.Close()

	second := f.Session()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := second.Open(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnectionUnavailable))
}

func TestCloseReleasesExactlyOnce(t *testing.T) {
	db, _, f := setupFactory(t)
	defer db.Close()
	db.SetMaxOpenConns(1)

	sess := f.Session()
	require.NoError(t, sess.Open(context.Background()))
	sess.Close()
	sess.Close()

	// The single pooled connection must be available again.
	next := f.Session()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, next.Open(ctx))
	next.Close()
}

func TestConnectionReleasedAfterFailedInvoke(t *testing.T) {
	db, mock, f := setupFactory(t)
	defer db.Close()
	db.SetMaxOpenConns(1)

	mock.ExpectQuery("CALL sp_view_patient").
		WillReturnError(errors.New("ER_SP_DOES_NOT_EXIST"))

	sess := f.Session()
	require.NoError(t, sess.Open(context.Background()))

	res := sess.Invoke(context.Background(), Call{Name: "sp_view_patient", Args: []any{int64(1), int64(2)}})
	assert.False(t, res.Success)
	sess.Close()

	// The failed call must not leak the pool's only connection.
	next := f.Session()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, next.Open(ctx))
	next.Close()

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatementsOnUnboundSession(t *testing.T) {
	db, _, f := setupFactory(t)
	defer db.Close()

	sess := f.Session()

	_, err := sess.QueryContext(context.Background(), "SELECT 1")
	assert.True(t, errors.Is(err, ErrNotBound))

	_, err = sess.ExecContext(context.Background(), "DELETE FROM Appointment WHERE appointment_id = ?", 1)
	assert.True(t, errors.Is(err, ErrNotBound))

	res := sess.Invoke(context.Background(), Call{Name: "sp_list_patients", Args: []any{1}})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "not bound")
}

func TestSetActorContext(t *testing.T) {
	db, mock, f := setupFactory(t)
	defer db.Close()

	mock.ExpectExec("SET @current_user_id").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	sess := f.Session()
	require.NoError(t, sess.Open(context.Background()))
	defer sess.Close()

	sess.SetActorContext(context.Background(), 7)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetActorContextFailureIsSwallowed(t *testing.T) {
	db, mock, f := setupFactory(t)
	defer db.Close()

	mock.ExpectExec("SET @current_user_id").
		WithArgs(int64(7)).
		WillReturnError(errors.New("server has gone away"))
	mock.ExpectQuery("CALL sp_list_patients").
		WithArgs(int64(7), 100, 0).
		WillReturnRows(sqlmock.NewRows([]string{"patient_id"}).AddRow(int64(1)))

	sess := f.Session()
	require.NoError(t, sess.Open(context.Background()))
	defer sess.Close()

	// The failed SET must not poison the session.
	sess.SetActorContext(context.Background(), 7)
	res := sess.Invoke(context.Background(), Call{Name: "sp_list_patients", Args: []any{int64(7), 100, 0}})
	assert.True(t, res.Success)

	require.NoError(t, mock.ExpectationsWereMet())
}
