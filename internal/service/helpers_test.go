package service

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/authz"
	"github.com/emr-platform/emr-api/internal/session"
)

const testTimeout = 5 * time.Second

func setupSessions(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *session.Factory, *authz.Resolver) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	f := session.NewFactory(db, zap.NewNop(), nil)
	return db, mock, f, authz.NewResolver(zap.NewNop())
}
