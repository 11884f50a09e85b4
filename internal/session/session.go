// Package session owns the per-request database session: one borrowed pooled
// connection, the actor context set on it, and the stored-procedure calling
// convention executed through it. A Session is the only type in the codebase
// permitted to issue statements on its connection.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/pkg/metrics"
)

var (
	// ErrConnectionUnavailable covers pool exhaustion, connect failures and
	// acquire deadline expiry. Callers map it to a 500-class outcome and
	// decide retry policy themselves; this layer never retries.
	ErrConnectionUnavailable = errors.New("database connection unavailable")

	// ErrNotBound is returned when a statement is attempted on a session
	// that was never opened or has been closed.
	ErrNotBound = errors.New("session is not bound to a connection")
)

type state int

const (
	stateIdle state = iota
	stateBound
	stateClosed
)

// Factory builds request-scoped sessions over the shared pool.
type Factory struct {
	db      *sql.DB
	log     *zap.Logger
	metrics *metrics.Collector
}

func NewFactory(db *sql.DB, log *zap.Logger, m *metrics.Collector) *Factory {
	return &Factory{db: db, log: log, metrics: m}
}

// Session returns a new idle session. Call Open before use and Close on
// every exit path.
func (f *Factory) Session() *Session {
	return &Session{db: f.db, log: f.log, metrics: f.metrics}
}

// Session wraps exactly one borrowed connection for the duration of a
// request. Lifecycle: Idle → Bound → Closed. Not safe for concurrent use;
// each request owns its own session.
type Session struct {
	db      *sql.DB
	conn    *sql.Conn
	state   state
	log     *zap.Logger
	metrics *metrics.Collector
}

// Open borrows a connection from the pool, blocking while the pool is at
// capacity until one frees or ctx expires. Any failure leaves the session
// unusable and is reported as ErrConnectionUnavailable.
func (s *Session) Open(ctx context.Context) error {
	if s.state != stateIdle {
		return fmt.Errorf("%w: session already %s", ErrConnectionUnavailable, s.stateName())
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.SessionOpenErrors.Inc()
		}
		s.log.Error("failed to acquire database connection", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrConnectionUnavailable, err)
	}

	s.conn = conn
	s.state = stateBound
	if s.metrics != nil {
		s.metrics.SessionsOpened.Inc()
	}
	return nil
}

// Close returns the connection to the pool. Safe to call any number of
// times; the release happens exactly once.
func (s *Session) Close() {
	if s.state != stateBound {
		s.state = stateClosed
		return
	}
	if err := s.conn.Close(); err != nil {
		s.log.Warn("error releasing connection", zap.Error(err))
	}
	s.conn = nil
	s.state = stateClosed
}

// SetActorContext writes the connection-scoped user variable the audit
// triggers and procedures consume. The variable lives on the physical
// connection, so it must be re-set for every session before mutating work;
// a stale value on a reused pooled connection would misattribute audit rows.
//
// Failures are logged and swallowed: the operation proceeds without actor
// attribution. Degraded audit correctness is accepted here in favour of
// availability.
func (s *Session) SetActorContext(ctx context.Context, userID int64) {
	if s.state != stateBound {
		s.log.Error("set actor context on unbound session", zap.Int64("user_id", userID))
		return
	}
	if _, err := s.conn.ExecContext(ctx, "SET @current_user_id = ?", userID); err != nil {
		s.log.Error("error setting actor context", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// QueryContext runs a direct parameterized query on the session connection.
func (s *Session) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.state != stateBound {
		return nil, ErrNotBound
	}
	return s.conn.QueryContext(ctx, query, args...)
}

// ExecContext runs a direct parameterized statement on the session connection.
func (s *Session) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if s.state != stateBound {
		return nil, ErrNotBound
	}
	return s.conn.ExecContext(ctx, query, args...)
}

func (s *Session) stateName() string {
	switch s.state {
	case stateIdle:
		return "idle"
	case stateBound:
		return "bound"
	default:
		return "closed"
	}
}
