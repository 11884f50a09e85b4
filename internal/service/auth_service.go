package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/emr-platform/emr-api/internal/authz"
	"github.com/emr-platform/emr-api/internal/domain"
	"github.com/emr-platform/emr-api/internal/session"
	"github.com/emr-platform/emr-api/pkg/auth"
)

// LoginResult is the login envelope. User and Token are present only on
// success; Message carries the procedure's own text either way.
type LoginResult struct {
	Success bool              `json:"success"`
	User    *domain.Actor     `json:"user,omitempty"`
	Token   *domain.TokenPair `json:"token,omitempty"`
	Message string            `json:"message,omitempty"`
}

type AuthService struct {
	sessions *session.Factory
	authz    *authz.Resolver
	jwt      *auth.JWTManager
	log      *zap.Logger
	timeout  time.Duration
}

func NewAuthService(sessions *session.Factory, az *authz.Resolver, jwt *auth.JWTManager, log *zap.Logger, timeout time.Duration) *AuthService {
	return &AuthService{sessions: sessions, authz: az, jwt: jwt, log: log, timeout: timeout}
}

// Login delegates the credential check entirely to sp_user_login; no local
// password handling happens here. On success the actor is assembled from the
// procedure row, a direct email lookup and the aggregated permissions view.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	sess := s.sessions.Session()
	if err := sess.Open(ctx); err != nil {
		return LoginResult{}, err
	}
	defer sess.Close()

	res := sess.Invoke(ctx, session.Call{
		Name: "sp_user_login",
		Args: []any{username, password},
	})
	if res.Error != "" {
		return LoginResult{Success: false, Message: res.Error}, nil
	}
	if len(res.Data) == 0 {
		return LoginResult{Success: false, Message: "Login failed"}, nil
	}

	row := res.Data[0]
	userID, ok := row.Int64("user_id")
	if !ok {
		message := row.String("message")
		if message == "" {
			message = "Login failed"
		}
		return LoginResult{Success: false, Message: message}, nil
	}

	actor := &domain.Actor{
		UserID:      userID,
		Username:    row.String("username"),
		Permissions: []string{},
		Role:        domain.RoleUnknown,
	}
	if v := row.String("specialty"); v != "" {
		actor.Specialty = &v
	}
	if v := row.String("doctor_name"); v != "" {
		actor.DoctorName = &v
	}

	if err := s.resolveEmail(ctx, sess, actor); err != nil {
		s.log.Warn("failed to resolve email at login", zap.Int64("user_id", userID), zap.Error(err))
	}

	role, perms, err := s.authz.Permissions(ctx, sess, userID)
	if err != nil {
		s.log.Warn("failed to resolve permissions at login", zap.Int64("user_id", userID), zap.Error(err))
	} else {
		actor.Role = role
		actor.Permissions = perms
	}

	token, err := s.jwt.GenerateTokenPair(&domain.Claims{
		UserID:   actor.UserID,
		Username: actor.Username,
		Role:     actor.Role,
	})
	if err != nil {
		// Clients can authenticate with the X-User-ID header alone, so a
		// failed token issuance degrades the login instead of failing it.
		s.log.Error("failed to issue token pair", zap.Int64("user_id", userID), zap.Error(err))
		token = nil
	}

	s.log.Info("user logged in",
		zap.Int64("user_id", actor.UserID),
		zap.String("role", string(actor.Role)),
	)

	return LoginResult{
		Success: true,
		User:    actor,
		Token:   token,
		Message: row.String("message"),
	}, nil
}

func (s *AuthService) resolveEmail(ctx context.Context, sess *session.Session, actor *domain.Actor) error {
	rows, err := sess.QueryContext(ctx, "SELECT email FROM User WHERE user_id = ?", actor.UserID)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		return rows.Err()
	}

	var email sql.NullString
	if err := rows.Scan(&email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	actor.Email = email.String
	return nil
}
