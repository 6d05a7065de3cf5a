package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
	"github.com/rockman-logistics/staffdesk/internal/domain/repository"
	"github.com/rockman-logistics/staffdesk/internal/infrastructure/backend"
	"github.com/rockman-logistics/staffdesk/pkg/apperror"
	"github.com/rockman-logistics/staffdesk/pkg/utils"
)

// AuthService handles staff sign-in against the logistics backend
type AuthService struct {
	backend     Backend
	sessionRepo repository.SessionRepository
	jwtManager  *utils.JWTManager
	sealer      *utils.Sealer
	guard       *SessionGuard
	now         func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	backend Backend,
	sessionRepo repository.SessionRepository,
	jwtManager *utils.JWTManager,
	sealer *utils.Sealer,
	guard *SessionGuard,
) *AuthService {
	return &AuthService{
		backend:     backend,
		sessionRepo: sessionRepo,
		jwtManager:  jwtManager,
		sealer:      sealer,
		guard:       guard,
		now:         time.Now,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Username string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User        *entity.StaffUser
	AccessToken string
	ExpiresAt   time.Time
}

// Login signs in with the backend and opens a desk session
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	token, user, err := s.backend.Login(ctx, input.Username, input.Password)
	if err != nil {
		return nil, loginError(ctx, s.guard, err)
	}

	sealed, err := s.sealer.Seal(token)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &entity.Session{
		Username:    user.Username,
		SealedToken: sealed,
		ExpiresAt:   now.Add(s.jwtManager.Expiry()),
	}
	if session.Username == "" {
		session.Username = input.Username
	}
	if err := session.SetStaff(user); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(session.ID, session.Username, user.Role())
	if err != nil {
		return nil, err
	}

	slog.Info("staff signed in", "username", session.Username, "session_id", session.ID)
	return &LoginOutput{
		User:        user,
		AccessToken: accessToken,
		ExpiresAt:   session.ExpiresAt,
	}, nil
}

// loginError keeps the backend's own answer for rejected credentials.
func loginError(ctx context.Context, guard *SessionGuard, err error) error {
	var serr *backend.StatusError
	if errors.As(err, &serr) {
		switch serr.StatusCode {
		case http.StatusBadRequest:
			msg := serr.Message
			if msg == "" {
				msg = "Username and password are required"
			}
			return apperror.NewBadRequestError(msg)
		case http.StatusUnauthorized:
			return apperror.ErrInvalidCredentials
		case http.StatusForbidden:
			msg := serr.Message
			if msg == "" {
				msg = "User does not have staff privileges"
			}
			return apperror.NewAppError(http.StatusForbidden, msg)
		}
	}
	return guard.Fail(ctx, nil, err, "Login failed. Please try again.")
}

// Authenticate resolves a desk access token to its live session
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*StaffSession, error) {
	claims, err := s.jwtManager.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	session, err := s.sessionRepo.GetByID(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.ErrSessionExpired
	}
	if session.IsExpired(s.now()) {
		if err := s.sessionRepo.Delete(ctx, session.ID); err != nil {
			slog.Error("failed to delete expired session", "session_id", session.ID, "error", err)
		}
		return nil, apperror.ErrSessionExpired
	}

	token, err := s.sealer.Open(session.SealedToken)
	if err != nil {
		slog.Error("failed to open session token", "session_id", session.ID, "error", err)
		return nil, apperror.ErrSessionExpired
	}

	return &StaffSession{
		ID:       session.ID,
		Username: session.Username,
		Role:     claims.Role,
		Token:    token,
	}, nil
}

// Logout revokes the backend token and ends the session
func (s *AuthService) Logout(ctx context.Context, sess *StaffSession) error {
	if err := s.backend.Logout(ctx, sess.Token); err != nil {
		slog.Warn("backend logout failed", "username", sess.Username, "error", err)
	}
	return s.sessionRepo.Delete(ctx, sess.ID)
}

// Profile returns the staff profile captured at sign-in
func (s *AuthService) Profile(ctx context.Context, sess *StaffSession) (*entity.StaffUser, error) {
	session, err := s.sessionRepo.GetByID(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.ErrSessionExpired
	}
	return session.Staff()
}

// PurgeExpired removes sessions past their expiry
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx, s.now())
}
