package repository

import (
	"strings"

	"github.com/google/uuid"
	domainRepo "github.com/rockman-logistics/staffdesk/internal/domain/repository"
	"gorm.io/gorm"
)

// SessionScope restricts a query to rows owned by one staff session.
func SessionScope(sessionID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("session_id = ?", sessionID)
	}
}

// ReceiptFilterScope applies an archive filter.
func ReceiptFilterScope(filter domainRepo.ReceiptFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search := strings.TrimSpace(filter.Search); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			db = db.Where(
				"LOWER(receipt_number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_code) LIKE ?",
				like, like, like,
			)
		}
		if filter.IssuedBy != "" {
			db = db.Where("issued_by = ?", filter.IssuedBy)
		}
		return db
	}
}
