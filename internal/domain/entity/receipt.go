package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PersistedReceipt is a receipt as issued by the backend. It is never edited
// here; it only feeds the archive and the invoice renderer.
type PersistedReceipt struct {
	ID                    int64                  `json:"id"`
	ReceiptNumber         string                 `json:"receipt_number"`
	CustomerID            int64                  `json:"customer"`
	CustomerName          string                 `json:"customer_name"`
	CustomerCode          string                 `json:"customer_code"`
	CustomerContactPerson string                 `json:"customer_contact_person"`
	CreatedByID           *int64                 `json:"created_by"`
	CreatedByName         string                 `json:"created_by_name"`
	TotalAmount           decimal.Decimal        `json:"total_amount"`
	PaymentStatus         string                 `json:"payment_status"`
	LoadingDate           *Date                  `json:"loading_date"`
	ETA                   *Date                  `json:"eta"`
	ContainerNumber       string                 `json:"container_number"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
	Items                 []PersistedReceiptItem `json:"items"`
}

// PersistedReceiptItem is an issued receipt line with its server identifiers.
type PersistedReceiptItem struct {
	ID                int64               `json:"id"`
	ReceiptID         int64               `json:"receipt"`
	CategoryID        *int64              `json:"category"`
	CategoryName      string              `json:"category_name,omitempty"`
	CategoryUnitPrice decimal.NullDecimal `json:"category_unit_price"`
	Description       string              `json:"description"`
	CBM               decimal.Decimal     `json:"cbm"`
	UnitPrice         decimal.Decimal     `json:"unit_price"`
	TotalPrice        decimal.Decimal     `json:"total_price"`
	ShipmentID        *int64              `json:"shipment"`
}

// Amount is the billed amount of the line, cbm × unit price.
func (i PersistedReceiptItem) Amount() decimal.Decimal {
	return i.CBM.Mul(i.UnitPrice)
}

// Product names the line for display, falling back to its category.
func (i PersistedReceiptItem) Product() string {
	if i.Description != "" {
		return i.Description
	}
	return i.CategoryName
}
