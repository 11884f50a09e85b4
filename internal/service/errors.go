package service

import (
	"context"
	"errors"
	"time"

	"github.com/emr-platform/emr-api/internal/session"
)

var (
	// ErrUnauthorized: no actor id was supplied at all. Raised before any
	// database access is attempted.
	ErrUnauthorized = errors.New("user ID required")

	// ErrForbidden: the actor's resolved role does not grant the operation.
	ErrForbidden = errors.New("forbidden: insufficient role")
)

// requireActor short-circuits workflows called without an actor identity.
func requireActor(userID int64) error {
	if userID <= 0 {
		return ErrUnauthorized
	}
	return nil
}

// withTimeout bounds one workflow call, session open included. Expiry during
// acquire surfaces as session.ErrConnectionUnavailable.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// emptyResult is the business-rejection envelope for flows whose procedure
// returned nothing usable.
func emptyResult(message string) session.Result {
	return session.Result{Success: false, Data: []session.Row{}, Message: message}
}
