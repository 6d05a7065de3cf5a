package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
	"github.com/rockman-logistics/staffdesk/pkg/apperror"
	"github.com/rockman-logistics/staffdesk/pkg/wakeup"
)

// SearchDebounce is how long a search waits for a newer one to replace it.
const SearchDebounce = 300 * time.Millisecond

// ErrSearchSuperseded reports that a newer search for the same draft
// was started; its results, if any, were discarded.
var ErrSearchSuperseded = &apperror.AppError{Code: http.StatusConflict, Message: "Search superseded by a newer query"}

// CustomerService resolves the customer of a draft: debounced search,
// find-or-create and selection
type CustomerService struct {
	backend  Backend
	drafts   *DraftStore
	guard    *SessionGuard
	debounce time.Duration
	clock    wakeup.Clock

	mu          sync.Mutex
	seq         uint64
	generations map[uuid.UUID]uint64 // latest search per draft, drawn from seq
}

// NewCustomerService creates a new customer service
func NewCustomerService(backend Backend, drafts *DraftStore, guard *SessionGuard, clock wakeup.Clock) *CustomerService {
	if clock == nil {
		clock = wakeup.SystemClock()
	}
	return &CustomerService{
		backend:     backend,
		drafts:      drafts,
		guard:       guard,
		debounce:    SearchDebounce,
		clock:       clock,
		generations: make(map[uuid.UUID]uint64),
	}
}

func (s *CustomerService) begin(draftID uuid.UUID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.generations[draftID] = s.seq
	return s.seq
}

func (s *CustomerService) current(draftID uuid.UUID, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[draftID] == gen
}

// Forget drops the search state of a draft. Searches still in flight for it
// are discarded, and generation numbers are never handed out twice.
func (s *CustomerService) Forget(draftID uuid.UUID) {
	s.mu.Lock()
	delete(s.generations, draftID)
	s.mu.Unlock()
}

// Search looks customers up by company name and makes the results the
// draft's candidates. Only the newest search of a draft is dispatched after
// the debounce, and only the newest answer is applied.
func (s *CustomerService) Search(ctx context.Context, sess *StaffSession, draftID uuid.UUID, query string) (*DraftView, error) {
	if _, err := s.drafts.Get(ctx, sess.ID, draftID); err != nil {
		return nil, err
	}

	gen := s.begin(draftID)
	if err := s.clock.Sleep(ctx, s.debounce); err != nil {
		return nil, err
	}
	if !s.current(draftID, gen) {
		return nil, ErrSearchSuperseded
	}

	customers, err := s.backend.SearchCustomers(ctx, sess.Token, strings.TrimSpace(query))
	if err != nil {
		return nil, s.guard.Fail(ctx, sess, err, "Error searching customers. Please try again.")
	}

	return s.drafts.Update(ctx, sess.ID, draftID, func(d *entity.ReceiptDraft) error {
		if !s.current(draftID, gen) {
			return ErrSearchSuperseded
		}
		d.SetCandidates(customers)
		return nil
	})
}

// Create finds or creates a customer named companyName and selects it. On
// failure the draft's selection is left as it was.
func (s *CustomerService) Create(ctx context.Context, sess *StaffSession, draftID uuid.UUID, companyName string) (*DraftView, error) {
	name := strings.TrimSpace(companyName)
	if name == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "company_name", Message: "Customer company name is required"},
		})
	}
	if _, err := s.drafts.Get(ctx, sess.ID, draftID); err != nil {
		return nil, err
	}

	customer, err := s.backend.CreateOrGetCustomer(ctx, sess.Token, name)
	if err != nil {
		return nil, s.guard.Fail(ctx, sess, err, "Error creating customer. Please try again.")
	}

	return s.drafts.Update(ctx, sess.ID, draftID, func(d *entity.ReceiptDraft) error {
		d.MergeCandidate(*customer)
		return nil
	})
}

// Select picks one of the draft's candidates, or clears the selection when
// customerID is nil.
func (s *CustomerService) Select(ctx context.Context, sess *StaffSession, draftID uuid.UUID, customerID *int64) (*DraftView, error) {
	return s.drafts.Update(ctx, sess.ID, draftID, func(d *entity.ReceiptDraft) error {
		if customerID == nil {
			d.ClearCustomer()
			return nil
		}
		if err := d.SelectCustomer(*customerID); err != nil {
			if errors.Is(err, entity.ErrUnknownCandidate) {
				return apperror.NewValidationError([]apperror.FieldError{
					{Field: "customer_id", Message: err.Error()},
				})
			}
			return err
		}
		return nil
	})
}
