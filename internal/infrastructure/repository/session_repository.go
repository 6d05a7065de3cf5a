package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
	domainRepo "github.com/rockman-logistics/staffdesk/internal/domain/repository"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) domainRepo.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	var session entity.Session
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &session, err
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(SessionScope(id)).Delete(&entity.DraftRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Scopes(SessionScope(id)).Delete(&entity.IdempotencyKey{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Session{}, "id = ?", id).Error
	})
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var expired []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&entity.Session{}).
		Where("expires_at < ?", now).
		Pluck("id", &expired).Error; err != nil {
		return 0, err
	}

	for _, id := range expired {
		if err := r.Delete(ctx, id); err != nil {
			return 0, err
		}
	}
	return int64(len(expired)), nil
}
