package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ArchivedReceipt is a local copy of a receipt issued through the desk. The
// snapshot holds the backend's persisted receipt as it was received.
type ArchivedReceipt struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BackendID     int64           `gorm:"uniqueIndex;not null" json:"backend_id"`
	ReceiptNumber string          `gorm:"size:50;index" json:"receipt_number"`
	CustomerName  string          `gorm:"size:255" json:"customer_name"`
	CustomerCode  string          `gorm:"size:50" json:"customer_code"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_amount"`
	PaymentStatus string          `gorm:"size:20" json:"payment_status"`
	IssuedBy      string          `gorm:"size:150;index" json:"issued_by"`
	IssuedAt      time.Time       `gorm:"index" json:"issued_at"`
	Snapshot      datatypes.JSON  `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TableName returns the table name for ArchivedReceipt
func (ArchivedReceipt) TableName() string {
	return "archived_receipts"
}

// BeforeCreate generates a UUID before archiving a receipt
func (a *ArchivedReceipt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// NewArchivedReceipt snapshots r as issued by the given staff username.
func NewArchivedReceipt(r *PersistedReceipt, issuedBy string) (*ArchivedReceipt, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return &ArchivedReceipt{
		BackendID:     r.ID,
		ReceiptNumber: r.ReceiptNumber,
		CustomerName:  r.CustomerName,
		CustomerCode:  r.CustomerCode,
		TotalAmount:   r.TotalAmount,
		PaymentStatus: r.PaymentStatus,
		IssuedBy:      issuedBy,
		IssuedAt:      r.CreatedAt,
		Snapshot:      datatypes.JSON(data),
	}, nil
}

// Receipt decodes the snapshot.
func (a *ArchivedReceipt) Receipt() (*PersistedReceipt, error) {
	var r PersistedReceipt
	if err := json.Unmarshal(a.Snapshot, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
