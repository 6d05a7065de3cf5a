package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// page is a DRF paginated list.
type page[T any] struct {
	Count   int     `json:"count"`
	Next    *string `json:"next"`
	Results []T     `json:"results"`
}

// listOf accepts either a bare JSON array or a DRF page.
type listOf[T any] []T

func (l *listOf[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var p page[T]
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = p.Results
	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string               `json:"token"`
	User  entity.StaffUser     `json:"user"`
	Staff *entity.StaffProfile `json:"staff"`
}

type wireCategory struct {
	entity.GoodsCategory
	IsActive *bool `json:"is_active"`
}

type createCustomerRequest struct {
	CompanyName         string `json:"company_name"`
	ContactPerson       string `json:"contact_person"`
	Phone               string `json:"phone"`
	Email               string `json:"email"`
	Address             string `json:"address"`
	CompanyRegistration string `json:"company_registration"`
}

type receiptPayload struct {
	Customer        int64                `json:"customer"`
	TotalAmount     decimal.Decimal      `json:"total_amount"`
	PaymentStatus   string               `json:"payment_status"`
	LoadingDate     *entity.Date         `json:"loading_date"`
	ETA             *entity.Date         `json:"eta"`
	ContainerNumber string               `json:"container_number"`
	Items           []receiptItemPayload `json:"items"`
}

type receiptItemPayload struct {
	Category    *int64          `json:"category"`
	Description string          `json:"description"`
	CBM         decimal.Decimal `json:"cbm"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

const cbmPlaces = 3

func newReceiptPayload(s *entity.ReceiptSubmission) receiptPayload {
	items := make([]receiptItemPayload, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, receiptItemPayload{
			Category:    it.CategoryID,
			Description: it.Description,
			CBM:         it.CBM.Round(cbmPlaces),
			UnitPrice:   it.UnitPrice,
		})
	}
	return receiptPayload{
		Customer:        s.CustomerID,
		TotalAmount:     s.TotalAmount,
		PaymentStatus:   s.PaymentStatus,
		LoadingDate:     s.LoadingDate,
		ETA:             s.ETA,
		ContainerNumber: s.ContainerNumber,
		Items:           items,
	}
}

// categoryRef is an item's category as the backend may send it: a primary
// key, null, or an expanded object.
type categoryRef struct {
	ID        *int64
	Name      string
	UnitPrice decimal.NullDecimal
}

func (r *categoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = categoryRef{}
		return nil
	case len(data) > 0 && data[0] == '{':
		var obj struct {
			ID        int64               `json:"id"`
			Name      string              `json:"name"`
			UnitPrice decimal.NullDecimal `json:"unit_price"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*r = categoryRef{ID: &obj.ID, Name: obj.Name, UnitPrice: obj.UnitPrice}
		return nil
	default:
		var id int64
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("category: %w", err)
		}
		*r = categoryRef{ID: &id}
		return nil
	}
}

type wireReceiptItem struct {
	entity.PersistedReceiptItem
	Category categoryRef `json:"category"`
}

type wireReceipt struct {
	entity.PersistedReceipt
	Items []wireReceiptItem `json:"items"`
}

func (w wireReceipt) receipt() *entity.PersistedReceipt {
	r := w.PersistedReceipt
	r.Items = make([]entity.PersistedReceiptItem, 0, len(w.Items))
	for _, wi := range w.Items {
		it := wi.PersistedReceiptItem
		it.CategoryID = wi.Category.ID
		if it.CategoryName == "" {
			it.CategoryName = wi.Category.Name
		}
		if !it.CategoryUnitPrice.Valid {
			it.CategoryUnitPrice = wi.Category.UnitPrice
		}
		r.Items = append(r.Items, it)
	}
	return &r
}
