package service

import (
	"context"

	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
	"github.com/rockman-logistics/staffdesk/internal/domain/repository"
	"github.com/rockman-logistics/staffdesk/pkg/pagination"
)

const recentReceiptsLimit = 5

// DashboardService provides dashboard statistics
type DashboardService struct {
	backend     Backend
	archiveRepo repository.ReceiptArchiveRepository
	guard       *SessionGuard
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(backend Backend, archiveRepo repository.ReceiptArchiveRepository, guard *SessionGuard) *DashboardService {
	return &DashboardService{
		backend:     backend,
		archiveRepo: archiveRepo,
		guard:       guard,
	}
}

// Dashboard is what staff see after signing in
type Dashboard struct {
	entity.DashboardStats
	RecentReceipts []entity.ArchivedReceipt `json:"recent_receipts"`
}

// GetDashboard combines the backend's counts with the desk's own archive
func (s *DashboardService) GetDashboard(ctx context.Context, sess *StaffSession) (*Dashboard, error) {
	stats, err := s.backend.DashboardStats(ctx, sess.Token)
	if err != nil {
		return nil, s.guard.Fail(ctx, sess, err, "Error loading dashboard. Please try again.")
	}

	archived, err := s.archiveRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.ArchivedReceipts = archived

	recent, _, err := s.archiveRepo.List(ctx, repository.ReceiptFilter{}, &pagination.PaginationParams{Page: 1, PerPage: recentReceiptsLimit})
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []entity.ArchivedReceipt{}
	}

	return &Dashboard{DashboardStats: *stats, RecentReceipts: recent}, nil
}
