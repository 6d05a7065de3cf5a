package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
	"github.com/rockman-logistics/staffdesk/internal/domain/repository"
	"github.com/rockman-logistics/staffdesk/internal/infrastructure/backend"
	"github.com/rockman-logistics/staffdesk/pkg/apperror"
)

// Backend is the logistics backend as the services use it.
type Backend interface {
	Login(ctx context.Context, username, password string) (string, *entity.StaffUser, error)
	Logout(ctx context.Context, token string) error
	ListCategories(ctx context.Context, token string) ([]entity.GoodsCategory, error)
	SearchCustomers(ctx context.Context, token, query string) ([]entity.Customer, error)
	CreateOrGetCustomer(ctx context.Context, token, companyName string) (*entity.Customer, error)
	CreateReceipt(ctx context.Context, token string, s *entity.ReceiptSubmission) (*entity.PersistedReceipt, error)
	GetReceipt(ctx context.Context, token string, id int64) (*entity.PersistedReceipt, error)
	DashboardStats(ctx context.Context, token string) (*entity.DashboardStats, error)
}

// StaffSession identifies the signed-in staff member behind a request.
type StaffSession struct {
	ID       uuid.UUID
	Username string
	Role     string
	Token    string // backend token, opened
}

// SessionGuard turns backend failures into application errors. A rejected
// token ends the desk session along with its drafts.
type SessionGuard struct {
	sessionRepo repository.SessionRepository
}

// NewSessionGuard creates a new session guard
func NewSessionGuard(sessionRepo repository.SessionRepository) *SessionGuard {
	return &SessionGuard{sessionRepo: sessionRepo}
}

// Fail maps err from a backend call. message is what staff see when the
// call could not be completed.
func (g *SessionGuard) Fail(ctx context.Context, sess *StaffSession, err error, message string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, backend.ErrUnauthorized) {
		if sess != nil {
			if derr := g.sessionRepo.Delete(ctx, sess.ID); derr != nil {
				slog.Error("failed to tear down session", "session_id", sess.ID, "error", derr)
			} else {
				slog.Info("session ended by backend", "session_id", sess.ID, "username", sess.Username)
			}
		}
		return apperror.ErrSessionExpired
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperror.NewUnavailableError(message, err)
	}

	slog.Warn("backend call failed", "error", err)
	return apperror.NewBadGatewayError(message, err)
}

func isNotFound(err error) bool {
	var serr *backend.StatusError
	return errors.As(err, &serr) && serr.StatusCode == http.StatusNotFound
}
