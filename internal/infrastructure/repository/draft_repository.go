package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
	domainRepo "github.com/rockman-logistics/staffdesk/internal/domain/repository"
	"gorm.io/gorm"
)

type draftRepository struct {
	db *gorm.DB
}

// NewDraftRepository creates a new receipt draft repository
func NewDraftRepository(db *gorm.DB) domainRepo.DraftRepository {
	return &draftRepository{db: db}
}

func (r *draftRepository) Create(ctx context.Context, draft *entity.DraftRecord) error {
	return r.db.WithContext(ctx).Create(draft).Error
}

func (r *draftRepository) Get(ctx context.Context, sessionID, id uuid.UUID) (*entity.DraftRecord, error) {
	var draft entity.DraftRecord
	err := r.db.WithContext(ctx).
		Scopes(SessionScope(sessionID)).
		First(&draft, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &draft, err
}

func (r *draftRepository) Update(ctx context.Context, draft *entity.DraftRecord) error {
	return r.db.WithContext(ctx).Save(draft).Error
}

func (r *draftRepository) Delete(ctx context.Context, sessionID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Scopes(SessionScope(sessionID)).
		Delete(&entity.DraftRecord{}, "id = ?", id).Error
}

func (r *draftRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]entity.DraftRecord, error) {
	var drafts []entity.DraftRecord
	err := r.db.WithContext(ctx).
		Scopes(SessionScope(sessionID)).
		Order("updated_at DESC").
		Find(&drafts).Error
	return drafts, err
}
