package entity

import "fmt"

// Customer is a shipper company as known to the logistics backend. The desk
// never edits customers; it only searches them and find-or-creates by name.
type Customer struct {
	ID                  int64  `json:"id"`
	CompanyName         string `json:"company_name"`
	CustomerCode        string `json:"customer_code"`
	ContactPerson       string `json:"contact_person,omitempty"`
	Phone               string `json:"phone,omitempty"`
	Email               string `json:"email,omitempty"`
	Address             string `json:"address,omitempty"`
	CompanyRegistration string `json:"company_registration,omitempty"`
}

// Label renders the customer the way the receipt form lists it.
func (c Customer) Label() string {
	if c.CustomerCode == "" {
		return c.CompanyName
	}
	return fmt.Sprintf("%s (%s)", c.CompanyName, c.CustomerCode)
}
