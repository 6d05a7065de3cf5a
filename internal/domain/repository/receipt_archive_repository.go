package repository

import (
	"context"

	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
	"github.com/rockman-logistics/staffdesk/pkg/pagination"
)

// ReceiptFilter narrows archive listings
type ReceiptFilter struct {
	Search   string // receipt number, company name or customer code
	IssuedBy string
}

// ReceiptArchiveRepository keeps local snapshots of issued receipts
type ReceiptArchiveRepository interface {
	// Save inserts the receipt, or refreshes it when the backend id is already archived
	Save(ctx context.Context, receipt *entity.ArchivedReceipt) error
	// GetByBackendID returns nil, nil when the receipt was not issued through the desk
	GetByBackendID(ctx context.Context, backendID int64) (*entity.ArchivedReceipt, error)
	List(ctx context.Context, filter ReceiptFilter, params *pagination.PaginationParams) ([]entity.ArchivedReceipt, int64, error)
	// All returns every archived receipt matching filter, newest first
	All(ctx context.Context, filter ReceiptFilter) ([]entity.ArchivedReceipt, error)
	Count(ctx context.Context) (int64, error)
}
