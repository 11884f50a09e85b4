package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/session"
)

// CatalogService serves the reference listings pickers need: doctors and
// medications. Purely read-only; produces no audit entries.
type CatalogService struct {
	sessions *session.Factory
	log      *zap.Logger
	timeout  time.Duration
}

func NewCatalogService(sessions *session.Factory, log *zap.Logger, timeout time.Duration) *CatalogService {
	return &CatalogService{sessions: sessions, log: log, timeout: timeout}
}

// Doctors lists the clinician roster. No actor guard: the login form needs
// the roster before anyone is signed in.
func (s *CatalogService) Doctors(ctx context.Context) (session.Result, error) {
	return s.query(ctx,
		`SELECT doctor_id, first_name, last_name, specialty FROM Doctor ORDER BY doctor_id ASC`)
}

func (s *CatalogService) Medications(ctx context.Context, userID int64) (session.Result, error) {
	if err := requireActor(userID); err != nil {
		return session.Result{}, err
	}
	return s.query(ctx,
		`SELECT medication_id, medication_name, dosage_form, strength FROM Medication ORDER BY medication_id ASC`)
}

func (s *CatalogService) query(ctx context.Context, query string) (session.Result, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	sess := s.sessions.Session()
	if err := sess.Open(ctx); err != nil {
		return session.Result{}, err
	}
	defer sess.Close()

	rows, err := sess.QueryContext(ctx, query)
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
