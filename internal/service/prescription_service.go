package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/authz"
	"github.com/emr-platform/emr-api/internal/domain/prescription"
	"github.com/emr-platform/emr-api/internal/session"
)

// PrescriptionMutationResult is the envelope for the OUT-parameter flows.
// Success reflects the classified procedure message, not merely that the
// call executed.
type PrescriptionMutationResult struct {
	Success        bool          `json:"success"`
	PrescriptionID int64         `json:"prescription_id,omitempty"`
	Message        string        `json:"message,omitempty"`
	Error          string        `json:"error,omitempty"`
	Data           []session.Row `json:"data"`
}

type PrescriptionService struct {
	sessions *session.Factory
	authz    *authz.Resolver
	log      *zap.Logger
	timeout  time.Duration
}

func NewPrescriptionService(sessions *session.Factory, az *authz.Resolver, log *zap.Logger, timeout time.Duration) *PrescriptionService {
	return &PrescriptionService{sessions: sessions, authz: az, log: log, timeout: timeout}
}

// List returns the prescriptions of the doctor derived from the actor's
// username. A user with no doctor mapping gets an empty, successful result:
// not an error, just no prescriber scope.
func (s *PrescriptionService) List(ctx context.Context, userID int64) (session.Result, error) {
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

	doctorID, ok, err := s.authz.DoctorID(ctx, sess, userID)
	if err != nil {
		return session.Result{Success: false, Data: []session.Row{}, Error: err.Error()}, nil
	}
	if !ok {
		return session.Result{Success: true, Data: []session.Row{}}, nil
	}

	rows, err := sess.QueryContext(ctx,
		`SELECT
			p.prescription_id,
			p.patient_id,
			CONCAT(pat.first_name, ' ', pat.last_name) AS patient_name,
			p.doctor_id,
			CONCAT(d.first_name, ' ', d.last_name) AS doctor_name,
			p.medication_id,
			m.medication_name,
			p.dosage_instructions,
			p.start_date,
			p.end_date,
			p.refill_count
		FROM Prescription p
		JOIN Patient pat ON p.patient_id = pat.patient_id
		JOIN Doctor d ON p.doctor_id = d.doctor_id
		JOIN Medication m ON p.medication_id = m.medication_id
		WHERE p.doctor_id = ?
		ORDER BY p.prescription_id ASC
		LIMIT 100`, doctorID)
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

// Create issues a prescription through sp_add_prescription, which reports
// through OUT parameters: the new id and a result message. Audit mode:
// auditByProcedure.
func (s *PrescriptionService) Create(ctx context.Context, userID int64, cmd *prescription.CreatePrescriptionCommand) (PrescriptionMutationResult, error) {
	if err := requireActor(userID); err != nil {
		return PrescriptionMutationResult{}, err
	}

	res, err := s.outCall(ctx, userID, session.Call{
		Name:      "sp_add_prescription",
		Args:      append([]any{userID}, cmd.Args()...),
		OutParams: []string{"prescription_id", "result"},
	})
	if err != nil {
		return PrescriptionMutationResult{}, err
	}
	if res.Success {
		s.log.Info("prescription created",
			zap.Int64("prescription_id", res.PrescriptionID),
			zap.Int64("created_by", userID),
		)
	}
	return res, nil
}

func (s *PrescriptionService) Update(ctx context.Context, userID int64, cmd *prescription.UpdatePrescriptionCommand) (PrescriptionMutationResult, error) {
	if err := requireActor(userID); err != nil {
		return PrescriptionMutationResult{}, err
	}

	return s.outCall(ctx, userID, session.Call{
		Name:      "sp_update_prescription",
		Args:      append([]any{userID}, cmd.Args()...),
		OutParams: []string{"result"},
	})
}

func (s *PrescriptionService) Delete(ctx context.Context, userID, prescriptionID int64) (PrescriptionMutationResult, error) {
	if err := requireActor(userID); err != nil {
		return PrescriptionMutationResult{}, err
	}

	return s.outCall(ctx, userID, session.Call{
		Name:      "sp_delete_prescription",
		Args:      []any{userID, prescriptionID},
		OutParams: []string{"result"},
	})
}

// outCall runs one OUT-parameter procedure with actor context set first.
func (s *PrescriptionService) outCall(ctx context.Context, userID int64, call session.Call) (PrescriptionMutationResult, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	sess := s.sessions.Session()
	if err := sess.Open(ctx); err != nil {
		return PrescriptionMutationResult{}, err
	}
	defer sess.Close()

	sess.SetActorContext(ctx, userID)

	res := sess.Invoke(ctx, call)
	out := PrescriptionMutationResult{
		Success: res.Success,
		Message: res.Message,
		Error:   res.Error,
		Data:    res.Data,
	}
	if id, ok := session.Row(res.Out).Int64("prescription_id"); ok {
		out.PrescriptionID = id
	}
	return out, nil
}
