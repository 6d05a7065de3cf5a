package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Session is a signed-in staff desk session. The backend token is kept
// sealed; only the session id travels in the desk's own JWT.
type Session struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Username    string         `gorm:"size:150;not null;index" json:"username"`
	Profile     datatypes.JSON `json:"profile"`
	SealedToken []byte         `gorm:"not null" json:"-"`
	ExpiresAt   time.Time      `gorm:"not null;index" json:"expires_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TableName returns the table name for Session
func (Session) TableName() string {
	return "staff_sessions"
}

// BeforeCreate generates a UUID before creating a new session
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// SetStaff stores the staff profile snapshot.
func (s *Session) SetStaff(u *StaffUser) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	s.Profile = datatypes.JSON(data)
	return nil
}

// Staff decodes the stored staff profile.
func (s *Session) Staff() (*StaffUser, error) {
	var u StaffUser
	if len(s.Profile) == 0 {
		return &StaffUser{Username: s.Username}, nil
	}
	if err := json.Unmarshal(s.Profile, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
