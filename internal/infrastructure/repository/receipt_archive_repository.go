package repository

import (
	"context"
	"errors"

	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
	domainRepo "github.com/rockman-logistics/staffdesk/internal/domain/repository"
	"github.com/rockman-logistics/staffdesk/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type receiptArchiveRepository struct {
	db *gorm.DB
}

// NewReceiptArchiveRepository creates a new archived receipt repository
func NewReceiptArchiveRepository(db *gorm.DB) domainRepo.ReceiptArchiveRepository {
	return &receiptArchiveRepository{db: db}
}

func (r *receiptArchiveRepository) Save(ctx context.Context, receipt *entity.ArchivedReceipt) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "backend_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"receipt_number", "customer_name", "customer_code", "total_amount",
			"payment_status", "issued_at", "snapshot",
		}),
	}).Create(receipt).Error
}

func (r *receiptArchiveRepository) GetByBackendID(ctx context.Context, backendID int64) (*entity.ArchivedReceipt, error) {
	var receipt entity.ArchivedReceipt
	err := r.db.WithContext(ctx).First(&receipt, "backend_id = ?", backendID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receipt, err
}

func (r *receiptArchiveRepository) List(ctx context.Context, filter domainRepo.ReceiptFilter, params *pagination.PaginationParams) ([]entity.ArchivedReceipt, int64, error) {
	var receipts []entity.ArchivedReceipt
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ArchivedReceipt{}).Scopes(ReceiptFilterScope(filter))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("issued_at DESC, backend_id DESC").
		Offset(params.Offset()).
		Limit(params.PerPage).
		Find(&receipts).Error

	return receipts, total, err
}

func (r *receiptArchiveRepository) All(ctx context.Context, filter domainRepo.ReceiptFilter) ([]entity.ArchivedReceipt, error) {
	var receipts []entity.ArchivedReceipt
	err := r.db.WithContext(ctx).
		Scopes(ReceiptFilterScope(filter)).
		Order("issued_at DESC, backend_id DESC").
		Find(&receipts).Error
	return receipts, err
}

func (r *receiptArchiveRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.ArchivedReceipt{}).Count(&total).Error
	return total, err
}
