package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/domain/patient"
	"github.com/emr-platform/emr-api/internal/session"
)

// PatientMutationResult reports the business outcome of an add/update. The
// Success here comes from the procedure's returned row (numeric 1/0), not
// from the gateway's own success flag, which only means the call executed
// without a database exception.
type PatientMutationResult struct {
	Success   bool   `json:"success"`
	PatientID int64  `json:"patient_id,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

type PatientService struct {
	sessions *session.Factory
	log      *zap.Logger
	timeout  time.Duration
}

func NewPatientService(sessions *session.Factory, log *zap.Logger, timeout time.Duration) *PatientService {
	return &PatientService{sessions: sessions, log: log, timeout: timeout}
}

func (s *PatientService) List(ctx context.Context, userID int64, q patient.ListPatientsQuery) (session.Result, error) {
	if err := requireActor(userID); err != nil {
		return session.Result{}, err
	}
	q.Normalize()

	return s.call(ctx, session.Call{
		Name: "sp_list_patients",
		Args: []any{userID, q.Limit, q.Offset},
	})
}

func (s *PatientService) Get(ctx context.Context, userID, patientID int64) (session.Result, error) {
	if err := requireActor(userID); err != nil {
		return session.Result{}, err
	}

	return s.call(ctx, session.Call{
		Name: "sp_view_patient",
		Args: []any{userID, patientID},
	})
}

func (s *PatientService) Search(ctx context.Context, userID int64, term string) (session.Result, error) {
	if err := requireActor(userID); err != nil {
		return session.Result{}, err
	}
	if term == "" {
		return session.Result{}, patient.ErrSearchTermMissing
	}

	return s.call(ctx, session.Call{
		Name: "sp_search_patients",
		Args: []any{userID, term},
	})
}

// GetAll lists every patient in id order, bypassing the paged procedure.
// Used by pickers that need the full roster.
func (s *PatientService) GetAll(ctx context.Context, userID int64) (session.Result, error) {
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

	rows, err := sess.QueryContext(ctx,
		`SELECT
			patient_id,
			first_name,
			last_name,
			date_of_birth,
			gender,
			phone_number,
			email_address
		FROM Patient
		ORDER BY patient_id ASC`)
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

func (s *PatientService) Add(ctx context.Context, userID int64, cmd *patient.CreatePatientCommand) (PatientMutationResult, error) {
	if err := requireActor(userID); err != nil {
		return PatientMutationResult{}, err
	}

	res, err := s.mutate(ctx, userID, session.Call{
		Name: "sp_add_patient",
		Args: append([]any{userID}, cmd.Args()...),
	})
	if err != nil {
		return PatientMutationResult{}, err
	}
	if res.Success {
		s.log.Info("patient added",
			zap.Int64("patient_id", res.PatientID),
			zap.Int64("created_by", userID),
		)
	}
	return res, nil
}

func (s *PatientService) Update(ctx context.Context, userID int64, cmd *patient.UpdatePatientCommand) (PatientMutationResult, error) {
	if err := requireActor(userID); err != nil {
		return PatientMutationResult{}, err
	}

	return s.mutate(ctx, userID, session.Call{
		Name: "sp_update_patient",
		Args: append([]any{userID}, cmd.Args()...),
	})
}

// call runs one read procedure on a fresh session.
func (s *PatientService) call(ctx context.Context, call session.Call) (session.Result, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	sess := s.sessions.Session()
	if err := sess.Open(ctx); err != nil {
		return session.Result{}, err
	}
	defer sess.Close()

	return sess.Invoke(ctx, call), nil
}

// mutate runs one mutating procedure with actor context set first, then
// interprets the procedure's first returned row as the business outcome.
// Audit mode: auditByProcedure; sp_add_patient/sp_update_patient insert
// their own Audit_Log row.
func (s *PatientService) mutate(ctx context.Context, userID int64, call session.Call) (PatientMutationResult, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	sess := s.sessions.Session()
	if err := sess.Open(ctx); err != nil {
		return PatientMutationResult{}, err
	}
	defer sess.Close()

	sess.SetActorContext(ctx, userID)

	res := sess.Invoke(ctx, call)
	if !res.Success || len(res.Data) == 0 {
		return PatientMutationResult{Success: false, Message: res.Message, Error: res.Error}, nil
	}

	row := res.Data[0]
	flag, _ := row.Int64("success")
	out := PatientMutationResult{
		Success: flag == 1,
		Message: row.String("message"),
	}
	if id, ok := row.Int64("patient_id"); ok {
		out.PatientID = id
	}
	return out, nil
}
