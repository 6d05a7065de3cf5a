package entity

import "strings"

// StaffUser is the signed-in staff member as returned by the backend login.
type StaffUser struct {
	ID          int64         `json:"id"`
	Username    string        `json:"username"`
	Email       string        `json:"email"`
	FirstName   string        `json:"first_name"`
	LastName    string        `json:"last_name"`
	IsStaff     bool          `json:"is_staff"`
	IsSuperuser bool          `json:"is_superuser"`
	Staff       *StaffProfile `json:"staff,omitempty"`
}

// StaffProfile carries the employment side of a staff account.
type StaffProfile struct {
	ID            int64  `json:"id"`
	Role          string `json:"role"`
	Department    string `json:"department"`
	Phone         string `json:"phone"`
	EmployeeID    string `json:"employee_id"`
	IsActiveStaff bool   `json:"is_active_staff"`
}

// DisplayName is "First Last", or the username when no name is set.
func (u StaffUser) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Role returns the staff role, "admin" for superusers without a profile.
func (u StaffUser) Role() string {
	if u.Staff != nil && u.Staff.Role != "" {
		return u.Staff.Role
	}
	if u.IsSuperuser {
		return "admin"
	}
	return "staff"
}
