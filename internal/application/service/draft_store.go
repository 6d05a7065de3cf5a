package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
	"github.com/rockman-logistics/staffdesk/internal/domain/repository"
	"github.com/rockman-logistics/staffdesk/pkg/apperror"
)

// DraftView is a draft as returned to staff.
type DraftView struct {
	ID uuid.UUID `json:"id"`
	*entity.ReceiptDraft
}

// DraftStore loads and saves drafts, serializing edits per draft.
type DraftStore struct {
	draftRepo repository.DraftRepository
	locks     sync.Map // uuid.UUID -> *sync.Mutex
}

// NewDraftStore creates a new draft store
func NewDraftStore(draftRepo repository.DraftRepository) *DraftStore {
	return &DraftStore{draftRepo: draftRepo}
}

func (s *DraftStore) lock(id uuid.UUID) func() {
	m, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *DraftStore) load(ctx context.Context, sessionID, id uuid.UUID) (*entity.DraftRecord, *entity.ReceiptDraft, error) {
	rec, err := s.draftRepo.Get(ctx, sessionID, id)
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		return nil, nil, apperror.NewNotFoundError("Draft")
	}
	d, err := rec.Draft()
	if err != nil {
		return nil, nil, err
	}
	return rec, d, nil
}

// Create stores a new draft for the session.
func (s *DraftStore) Create(ctx context.Context, sessionID uuid.UUID, d *entity.ReceiptDraft) (*DraftView, error) {
	rec := &entity.DraftRecord{SessionID: sessionID}
	if err := rec.SetDraft(d); err != nil {
		return nil, err
	}
	if err := s.draftRepo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return &DraftView{ID: rec.ID, ReceiptDraft: d}, nil
}

// Get returns the draft without locking it.
func (s *DraftStore) Get(ctx context.Context, sessionID, id uuid.UUID) (*DraftView, error) {
	_, d, err := s.load(ctx, sessionID, id)
	if err != nil {
		return nil, err
	}
	return &DraftView{ID: id, ReceiptDraft: d}, nil
}

// Update applies fn to the draft under its lock and saves the result. The
// draft is left untouched when fn fails.
func (s *DraftStore) Update(ctx context.Context, sessionID, id uuid.UUID, fn func(d *entity.ReceiptDraft) error) (*DraftView, error) {
	unlock := s.lock(id)
	defer unlock()

	rec, d, err := s.load(ctx, sessionID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		return nil, err
	}
	if err := rec.SetDraft(d); err != nil {
		return nil, err
	}
	if err := s.draftRepo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return &DraftView{ID: id, ReceiptDraft: d}, nil
}

// Delete removes the draft.
func (s *DraftStore) Delete(ctx context.Context, sessionID, id uuid.UUID) error {
	unlock := s.lock(id)
	defer unlock()

	if _, _, err := s.load(ctx, sessionID, id); err != nil {
		return err
	}
	if err := s.draftRepo.Delete(ctx, sessionID, id); err != nil {
		return err
	}
	s.locks.Delete(id)
	return nil
}

// List returns every draft of the session.
func (s *DraftStore) List(ctx context.Context, sessionID uuid.UUID) ([]DraftView, error) {
	recs, err := s.draftRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	views := make([]DraftView, 0, len(recs))
	for i := range recs {
		d, err := recs[i].Draft()
		if err != nil {
			return nil, err
		}
		views = append(views, DraftView{ID: recs[i].ID, ReceiptDraft: d})
	}
	return views, nil
}
