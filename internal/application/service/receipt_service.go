package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
	"github.com/rockman-logistics/staffdesk/internal/domain/repository"
	"github.com/rockman-logistics/staffdesk/pkg/apperror"
	"github.com/rockman-logistics/staffdesk/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ReceiptService edits receipt drafts, submits them to the backend and
// keeps the local archive of issued receipts
type ReceiptService struct {
	backend     Backend
	drafts      *DraftStore
	catalog     *CatalogService
	customers   *CustomerService
	archiveRepo repository.ReceiptArchiveRepository
	guard       *SessionGuard
}

// NewReceiptService creates a new receipt service
func NewReceiptService(
	backend Backend,
	drafts *DraftStore,
	catalog *CatalogService,
	customers *CustomerService,
	archiveRepo repository.ReceiptArchiveRepository,
	guard *SessionGuard,
) *ReceiptService {
	return &ReceiptService{
		backend:     backend,
		drafts:      drafts,
		catalog:     catalog,
		customers:   customers,
		archiveRepo: archiveRepo,
		guard:       guard,
	}
}

// CreateDraft starts a blank receipt
func (s *ReceiptService) CreateDraft(ctx context.Context, sess *StaffSession) (*DraftView, error) {
	return s.drafts.Create(ctx, sess.ID, entity.NewReceiptDraft())
}

// GetDraft returns a draft of the session
func (s *ReceiptService) GetDraft(ctx context.Context, sess *StaffSession, id uuid.UUID) (*DraftView, error) {
	return s.drafts.Get(ctx, sess.ID, id)
}

// ListDrafts returns the session's open drafts
func (s *ReceiptService) ListDrafts(ctx context.Context, sess *StaffSession) ([]DraftView, error) {
	return s.drafts.List(ctx, sess.ID)
}

// ResetDraft clears a draft back to a single blank row
func (s *ReceiptService) ResetDraft(ctx context.Context, sess *StaffSession, id uuid.UUID) (*DraftView, error) {
	return s.drafts.Update(ctx, sess.ID, id, func(d *entity.ReceiptDraft) error {
		// Searches dispatched before the reset are discarded.
		s.customers.Forget(id)
		*d = *entity.NewReceiptDraft()
		return nil
	})
}

// DeleteDraft discards a draft
func (s *ReceiptService) DeleteDraft(ctx context.Context, sess *StaffSession, id uuid.UUID) error {
	if err := s.drafts.Delete(ctx, sess.ID, id); err != nil {
		return err
	}
	s.customers.Forget(id)
	return nil
}

// ShipmentInput carries shipment metadata as entered, dates as YYYY-MM-DD
type ShipmentInput struct {
	LoadingDate     string
	ETA             string
	ContainerNumber string
}

// SetShipment replaces the shipment metadata of a draft
func (s *ReceiptService) SetShipment(ctx context.Context, sess *StaffSession, id uuid.UUID, input *ShipmentInput) (*DraftView, error) {
	var fieldErrors []apperror.FieldError
	loading, err := entity.ParseOptionalDate(strings.TrimSpace(input.LoadingDate))
	if err != nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "loading_date", Message: "must be a date in YYYY-MM-DD format"})
	}
	eta, err := entity.ParseOptionalDate(strings.TrimSpace(input.ETA))
	if err != nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "eta", Message: "must be a date in YYYY-MM-DD format"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	return s.drafts.Update(ctx, sess.ID, id, func(d *entity.ReceiptDraft) error {
		d.SetShipment(entity.Shipment{
			LoadingDate:     loading,
			ETA:             eta,
			ContainerNumber: input.ContainerNumber,
		})
		return nil
	})
}

// AddItem appends a blank row
func (s *ReceiptService) AddItem(ctx context.Context, sess *StaffSession, id uuid.UUID) (*DraftView, error) {
	return s.drafts.Update(ctx, sess.ID, id, func(d *entity.ReceiptDraft) error {
		d.AddRow()
		return nil
	})
}

// RemoveItem deletes a row; the last remaining row is kept
func (s *ReceiptService) RemoveItem(ctx context.Context, sess *StaffSession, id uuid.UUID, index int) (*DraftView, error) {
	return s.drafts.Update(ctx, sess.ID, id, func(d *entity.ReceiptDraft) error {
		return itemError(d.RemoveRow(index))
	})
}

// ItemInput is a partial edit of one row; nil fields are left alone
type ItemInput struct {
	Description *string
	CBM         *decimal.Decimal
	UnitPrice   *decimal.Decimal
}

// UpdateItem edits the free fields of a row
func (s *ReceiptService) UpdateItem(ctx context.Context, sess *StaffSession, id uuid.UUID, index int, input *ItemInput) (*DraftView, error) {
	return s.drafts.Update(ctx, sess.ID, id, func(d *entity.ReceiptDraft) error {
		if input.Description != nil {
			if err := d.SetDescription(index, *input.Description); err != nil {
				return itemError(err)
			}
		}
		if input.CBM != nil {
			if err := d.SetCBM(index, *input.CBM); err != nil {
				return itemError(err)
			}
		}
		if input.UnitPrice != nil {
			if err := d.SetUnitPrice(index, *input.UnitPrice); err != nil {
				return itemError(err)
			}
		}
		return nil
	})
}

// SetItemCategory picks a catalog category for a row, or clears it when
// categoryID is nil
func (s *ReceiptService) SetItemCategory(ctx context.Context, sess *StaffSession, id uuid.UUID, index int, categoryID *int64) (*DraftView, error) {
	var category *entity.GoodsCategory
	if categoryID != nil {
		c, err := s.catalog.Get(ctx, sess, *categoryID)
		if err != nil {
			return nil, err
		}
		category = c
	}

	return s.drafts.Update(ctx, sess.ID, id, func(d *entity.ReceiptDraft) error {
		return itemError(d.SetCategory(index, category))
	})
}

func itemError(err error) error {
	if errors.Is(err, entity.ErrItemIndex) {
		return apperror.NewBadRequestError("Receipt item not found")
	}
	return err
}

// Submit issues the draft as a receipt. The draft is deleted once the
// backend has accepted it; on any failure it is kept as it was.
func (s *ReceiptService) Submit(ctx context.Context, sess *StaffSession, id uuid.UUID) (*entity.PersistedReceipt, error) {
	unlock := s.drafts.lock(id)
	defer unlock()

	_, d, err := s.drafts.load(ctx, sess.ID, id)
	if err != nil {
		return nil, err
	}

	submission, err := d.Submission()
	if errors.Is(err, entity.ErrCustomerRequired) {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "customer", Message: "Please select a customer"},
		})
	}
	if err != nil {
		return nil, err
	}

	receipt, err := s.backend.CreateReceipt(ctx, sess.Token, submission)
	if err != nil {
		return nil, s.guard.Fail(ctx, sess, err, "Error creating receipt. Please try again.")
	}
	slog.Info("receipt issued",
		"receipt_id", receipt.ID,
		"receipt_number", receipt.ReceiptNumber,
		"customer_id", submission.CustomerID,
		"items", len(submission.Items),
		"username", sess.Username,
	)

	if err := s.archive(ctx, receipt, sess.Username); err != nil {
		slog.Error("failed to archive receipt", "receipt_id", receipt.ID, "error", err)
	}
	if err := s.drafts.draftRepo.Delete(ctx, sess.ID, id); err != nil {
		slog.Error("failed to delete submitted draft", "draft_id", id, "error", err)
	}
	s.customers.Forget(id)

	return receipt, nil
}

func (s *ReceiptService) archive(ctx context.Context, r *entity.PersistedReceipt, issuedBy string) error {
	archived, err := entity.NewArchivedReceipt(r, issuedBy)
	if err != nil {
		return err
	}
	return s.archiveRepo.Save(ctx, archived)
}

// ListReceipts pages through receipts issued at this desk
func (s *ReceiptService) ListReceipts(ctx context.Context, filter repository.ReceiptFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.ArchivedReceipt], error) {
	receipts, total, err := s.archiveRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	p := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(receipts, p), nil
}

// GetReceipt returns a receipt from the archive, or from the backend when it
// was issued elsewhere
func (s *ReceiptService) GetReceipt(ctx context.Context, sess *StaffSession, id int64) (*entity.PersistedReceipt, error) {
	archived, err := s.archiveRepo.GetByBackendID(ctx, id)
	if err != nil {
		return nil, err
	}
	if archived != nil {
		return archived.Receipt()
	}

	receipt, err := s.backend.GetReceipt(ctx, sess.Token, id)
	if isNotFound(err) {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	if err != nil {
		return nil, s.guard.Fail(ctx, sess, err, "Error loading receipt. Please try again.")
	}
	return receipt, nil
}
