package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
)

// SessionRepository stores signed-in staff sessions
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	// GetByID returns nil, nil when the session does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)
	// Delete removes the session together with its drafts
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
