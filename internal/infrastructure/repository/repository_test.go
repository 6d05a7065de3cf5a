package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
	domainRepo "github.com/rockman-logistics/staffdesk/internal/domain/repository"
	"github.com/rockman-logistics/staffdesk/internal/infrastructure/database"
	"github.com/rockman-logistics/staffdesk/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:", nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newSession(t *testing.T, repo domainRepo.SessionRepository, expires time.Time) *entity.Session {
	t.Helper()
	s := &entity.Session{Username: "akosua", SealedToken: []byte("sealed"), ExpiresAt: expires}
	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return s
}

func TestSessionDeleteRemovesDrafts(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	sessions := NewSessionRepository(db)
	drafts := NewDraftRepository(db)

	s := newSession(t, sessions, time.Now().Add(time.Hour))
	rec := &entity.DraftRecord{SessionID: s.ID}
	if err := rec.SetDraft(entity.NewReceiptDraft()); err != nil {
		t.Fatal(err)
	}
	if err := drafts.Create(ctx, rec); err != nil {
		t.Fatal(err)
	}

	if err := sessions.Delete(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	got, err := sessions.GetByID(ctx, s.ID)
	if err != nil || got != nil {
		t.Fatalf("session after delete = %v, %v", got, err)
	}
	left, err := drafts.ListBySession(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("drafts left = %d", len(left))
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	sessions := NewSessionRepository(db)
	now := time.Now()

	old := newSession(t, sessions, now.Add(-time.Minute))
	live := newSession(t, sessions, now.Add(time.Hour))

	n, err := sessions.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if got, _ := sessions.GetByID(ctx, old.ID); got != nil {
		t.Error("expired session survived")
	}
	if got, _ := sessions.GetByID(ctx, live.ID); got == nil {
		t.Error("live session was deleted")
	}
}

func TestDraftsAreScopedToSession(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	sessions := NewSessionRepository(db)
	drafts := NewDraftRepository(db)

	owner := newSession(t, sessions, time.Now().Add(time.Hour))
	other := newSession(t, sessions, time.Now().Add(time.Hour))

	d := entity.NewReceiptDraft()
	d.SetCBM(0, decimal.NewFromInt(2))
	d.SetUnitPrice(0, decimal.NewFromInt(50))
	rec := &entity.DraftRecord{SessionID: owner.ID}
	if err := rec.SetDraft(d); err != nil {
		t.Fatal(err)
	}
	if err := drafts.Create(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := drafts.Get(ctx, other.ID, rec.ID)
	if err != nil || got != nil {
		t.Fatalf("foreign session read draft: %v, %v", got, err)
	}
	if err := drafts.Delete(ctx, other.ID, rec.ID); err != nil {
		t.Fatal(err)
	}

	got, err = drafts.Get(ctx, owner.ID, rec.ID)
	if err != nil || got == nil {
		t.Fatalf("owner lost draft: %v, %v", got, err)
	}
	state, err := got.Draft()
	if err != nil {
		t.Fatal(err)
	}
	if !state.GrandTotal.Equal(decimal.NewFromInt(100)) {
		t.Errorf("grand total = %s", state.GrandTotal)
	}
}

func archived(id int64, number, name, code string, issued time.Time) *entity.ArchivedReceipt {
	return &entity.ArchivedReceipt{
		BackendID:     id,
		ReceiptNumber: number,
		CustomerName:  name,
		CustomerCode:  code,
		TotalAmount:   decimal.NewFromInt(id * 100),
		PaymentStatus: entity.PaymentPending,
		IssuedBy:      "akosua",
		IssuedAt:      issued,
		Snapshot:      []byte(`{}`),
	}
}

func TestReceiptArchiveSaveUpserts(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewReceiptArchiveRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	if err := repo.Save(ctx, archived(7, "RCP-7", "Acme Ltd", "AC01", now)); err != nil {
		t.Fatal(err)
	}
	again := archived(7, "RCP-7", "Acme Limited", "AC01", now)
	again.PaymentStatus = "paid"
	if err := repo.Save(ctx, again); err != nil {
		t.Fatal(err)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
	got, err := repo.GetByBackendID(ctx, 7)
	if err != nil || got == nil {
		t.Fatalf("get: %v, %v", got, err)
	}
	if got.CustomerName != "Acme Limited" || got.PaymentStatus != "paid" {
		t.Errorf("archived = %+v", got)
	}
	if missing, err := repo.GetByBackendID(ctx, 99); err != nil || missing != nil {
		t.Errorf("missing = %v, %v", missing, err)
	}
}

func TestReceiptArchiveListFiltersAndPages(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewReceiptArchiveRepository(db)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	rows := []*entity.ArchivedReceipt{
		archived(1, "RCP-001", "Acme Ltd", "AC01", base),
		archived(2, "RCP-002", "Blue Harbour", "BH02", base.Add(time.Hour)),
		archived(3, "RCP-003", "Acme Freight", "AF03", base.Add(2*time.Hour)),
	}
	for _, r := range rows {
		if err := repo.Save(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		filter  domainRepo.ReceiptFilter
		params  *pagination.PaginationParams
		wantIDs []int64
		total   int64
	}{
		{"all newest first", domainRepo.ReceiptFilter{}, &pagination.PaginationParams{Page: 1, PerPage: 10}, []int64{3, 2, 1}, 3},
		{"search name", domainRepo.ReceiptFilter{Search: "acme"}, &pagination.PaginationParams{Page: 1, PerPage: 10}, []int64{3, 1}, 2},
		{"search code", domainRepo.ReceiptFilter{Search: "bh02"}, &pagination.PaginationParams{Page: 1, PerPage: 10}, []int64{2}, 1},
		{"second page", domainRepo.ReceiptFilter{}, &pagination.PaginationParams{Page: 2, PerPage: 2}, []int64{1}, 3},
		{"other issuer", domainRepo.ReceiptFilter{IssuedBy: "kwame"}, &pagination.PaginationParams{Page: 1, PerPage: 10}, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.List(ctx, tt.filter, tt.params)
			if err != nil {
				t.Fatal(err)
			}
			if total != tt.total {
				t.Errorf("total = %d, want %d", total, tt.total)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d rows, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].BackendID != id {
					t.Errorf("row %d = %d, want %d", i, got[i].BackendID, id)
				}
			}
		})
	}

	all, err := repo.All(ctx, domainRepo.ReceiptFilter{Search: "RCP"})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("all = %d", len(all))
	}
}

func TestIdempotencyKeys(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewIdempotencyRepository(db)
	now := time.Now()
	sid := uuid.New()

	live := &entity.IdempotencyKey{Key: "k1", SessionID: sid, Endpoint: "POST /submit", ResponseCode: 201, ExpiresAt: now.Add(time.Hour)}
	stale := &entity.IdempotencyKey{Key: "k2", SessionID: sid, Endpoint: "POST /submit", ResponseCode: 201, ExpiresAt: now.Add(-time.Hour)}
	for _, k := range []*entity.IdempotencyKey{live, stale} {
		if err := repo.Create(ctx, k); err != nil {
			t.Fatal(err)
		}
	}

	if got, err := repo.GetByKey(ctx, "k1", uuid.New()); err != nil || got != nil {
		t.Errorf("key leaked across sessions: %v, %v", got, err)
	}
	n, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("deleted = %d", n)
	}
	got, err := repo.GetByKey(ctx, "k1", sid)
	if err != nil || got == nil || got.ResponseCode != 201 {
		t.Errorf("live key = %v, %v", got, err)
	}
}
