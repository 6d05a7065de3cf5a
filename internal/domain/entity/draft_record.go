package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DraftRecord persists a ReceiptDraft for the session that owns it.
type DraftRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID      `gorm:"type:uuid;not null;index" json:"session_id"`
	State     datatypes.JSON `gorm:"not null" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName returns the table name for DraftRecord
func (DraftRecord) TableName() string {
	return "receipt_drafts"
}

// BeforeCreate generates a UUID before creating a new draft
func (r *DraftRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Draft decodes the stored draft state.
func (r *DraftRecord) Draft() (*ReceiptDraft, error) {
	var d ReceiptDraft
	if err := json.Unmarshal(r.State, &d); err != nil {
		return nil, err
	}
	if len(d.Items) == 0 {
		d.Items = []ReceiptItem{{}}
	}
	d.Recompute()
	return &d, nil
}

// SetDraft encodes d as the stored state.
func (r *DraftRecord) SetDraft(d *ReceiptDraft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	r.State = datatypes.JSON(data)
	return nil
}
