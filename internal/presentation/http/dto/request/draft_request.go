package request

import "github.com/shopspring/decimal"

// ShipmentRequest replaces the shipment block of a draft. Dates are YYYY-MM-DD
// or empty.
type ShipmentRequest struct {
	LoadingDate     string `json:"loading_date"`
	ETA             string `json:"eta"`
	ContainerNumber string `json:"container_number"`
}

// ItemRequest edits one row; absent fields are left unchanged
type ItemRequest struct {
	Description *string          `json:"description"`
	CBM         *decimal.Decimal `json:"cbm"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// ItemCategoryRequest picks a category for a row; null clears it
type ItemCategoryRequest struct {
	CategoryID *int64 `json:"category_id"`
}

// CreateCustomerRequest registers a company by name
type CreateCustomerRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
}

// SelectCustomerRequest picks one of the draft's candidates; null clears it
type SelectCustomerRequest struct {
	CustomerID *int64 `json:"customer_id"`
}
