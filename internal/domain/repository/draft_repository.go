package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
)

// DraftRepository stores receipt drafts, always scoped to the owning session
type DraftRepository interface {
	Create(ctx context.Context, draft *entity.DraftRecord) error
	// Get returns nil, nil when no draft with that id belongs to the session
	Get(ctx context.Context, sessionID, id uuid.UUID) (*entity.DraftRecord, error)
	Update(ctx context.Context, draft *entity.DraftRecord) error
	Delete(ctx context.Context, sessionID, id uuid.UUID) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]entity.DraftRecord, error)
}
