package entity

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// PaymentPending is the status every new receipt is issued with.
	PaymentPending = "pending"

	moneyPlaces = 2
)

var (
	ErrItemIndex        = errors.New("receipt item index out of range")
	ErrCustomerRequired = errors.New("please select a customer")
	ErrUnknownCandidate = errors.New("customer is not among the current search results")

	defaultCBM = decimal.NewFromInt(1)
)

// ReceiptItem is one line of a receipt. Items without a category are ad-hoc
// lines billed at a manually entered unit price.
type ReceiptItem struct {
	ID          *int64          `json:"id,omitempty"`
	Category    *GoodsCategory  `json:"category"`
	Description string          `json:"description"`
	CBM         decimal.Decimal `json:"cbm"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

func (i *ReceiptItem) recompute() {
	i.Total = i.CBM.Mul(i.UnitPrice)
}

// Shipment holds the optional shipping metadata of a receipt.
type Shipment struct {
	LoadingDate     *Date  `json:"loading_date"`
	ETA             *Date  `json:"eta"`
	ContainerNumber string `json:"container_number"`
}

// ReceiptDraft is a receipt being edited by staff before submission. It always
// holds at least one item and keeps every total in sync after each mutation.
type ReceiptDraft struct {
	Customer      *Customer       `json:"customer"`
	Candidates    []Customer      `json:"candidates"`
	Items         []ReceiptItem   `json:"items"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Shipment      Shipment        `json:"shipment"`
	PaymentStatus string          `json:"payment_status"`
}

// NewReceiptDraft returns a draft with a single blank row.
func NewReceiptDraft() *ReceiptDraft {
	d := &ReceiptDraft{
		Candidates:    []Customer{},
		Items:         []ReceiptItem{{}},
		PaymentStatus: PaymentPending,
	}
	d.Recompute()
	return d
}

func (d *ReceiptDraft) item(index int) (*ReceiptItem, error) {
	if index < 0 || index >= len(d.Items) {
		return nil, ErrItemIndex
	}
	return &d.Items[index], nil
}

// SetCategory assigns or clears (nil) the category of a line.
func (d *ReceiptDraft) SetCategory(index int, category *GoodsCategory) error {
	it, err := d.item(index)
	if err != nil {
		return err
	}

	if category == nil {
		it.Category = nil
		it.CBM = defaultCBM
		it.Description = ""
		d.Recompute()
		return nil
	}

	c := *category
	it.Category = &c
	it.UnitPrice = clamp(c.UnitPrice)
	if label, ok := c.CanonicalLabel(); ok {
		it.Description = label
	}
	if it.CBM.IsZero() {
		it.CBM = defaultCBM
	}
	d.Recompute()
	return nil
}

// SetCBM sets the billed volume of a line. Negative values clamp to zero.
func (d *ReceiptDraft) SetCBM(index int, cbm decimal.Decimal) error {
	it, err := d.item(index)
	if err != nil {
		return err
	}
	it.CBM = clamp(cbm)
	d.Recompute()
	return nil
}

// SetUnitPrice sets the price per CBM of a line. Ad-hoc lines with no volume
// yet are billed per unit.
func (d *ReceiptDraft) SetUnitPrice(index int, price decimal.Decimal) error {
	it, err := d.item(index)
	if err != nil {
		return err
	}
	it.UnitPrice = clamp(price)
	if it.Category == nil && it.CBM.IsZero() {
		it.CBM = defaultCBM
	}
	d.Recompute()
	return nil
}

func (d *ReceiptDraft) SetDescription(index int, description string) error {
	it, err := d.item(index)
	if err != nil {
		return err
	}
	it.Description = description
	return nil
}

// AddRow appends a blank line.
func (d *ReceiptDraft) AddRow() {
	d.Items = append(d.Items, ReceiptItem{})
	d.Recompute()
}

// RemoveRow deletes a line. The last remaining line is never removed.
func (d *ReceiptDraft) RemoveRow(index int) error {
	if _, err := d.item(index); err != nil {
		return err
	}
	if len(d.Items) == 1 {
		return nil
	}
	d.Items = append(d.Items[:index], d.Items[index+1:]...)
	d.Recompute()
	return nil
}

// Recompute refreshes every line total and the grand total at full precision.
func (d *ReceiptDraft) Recompute() {
	total := decimal.Zero
	for i := range d.Items {
		d.Items[i].recompute()
		total = total.Add(d.Items[i].Total)
	}
	d.GrandTotal = total
}

// RoundedTotal is the grand total as sent to the backend.
func (d *ReceiptDraft) RoundedTotal() decimal.Decimal {
	return d.GrandTotal.Round(moneyPlaces)
}

// SetShipment replaces the shipment metadata.
func (d *ReceiptDraft) SetShipment(s Shipment) {
	s.ContainerNumber = strings.TrimSpace(s.ContainerNumber)
	d.Shipment = s
}

// SetCandidates replaces the customer search results.
func (d *ReceiptDraft) SetCandidates(customers []Customer) {
	if customers == nil {
		customers = []Customer{}
	}
	d.Candidates = customers
}

// SelectCustomer picks one of the current candidates by id.
func (d *ReceiptDraft) SelectCustomer(id int64) error {
	for _, c := range d.Candidates {
		if c.ID == id {
			selected := c
			d.Customer = &selected
			return nil
		}
	}
	return ErrUnknownCandidate
}

func (d *ReceiptDraft) ClearCustomer() {
	d.Customer = nil
}

// MergeCandidate adds c to the candidates unless already listed, and selects it.
func (d *ReceiptDraft) MergeCandidate(c Customer) {
	found := false
	for i := range d.Candidates {
		if d.Candidates[i].ID == c.ID {
			d.Candidates[i] = c
			found = true
			break
		}
	}
	if !found {
		d.Candidates = append(d.Candidates, c)
	}
	selected := c
	d.Customer = &selected
}

// ReceiptSubmission is the canonical, validated form of a draft ready to be
// sent to the backend.
type ReceiptSubmission struct {
	CustomerID      int64
	TotalAmount     decimal.Decimal
	PaymentStatus   string
	LoadingDate     *Date
	ETA             *Date
	ContainerNumber string
	Items           []SubmissionItem
}

// SubmissionItem is a line reduced to what the backend accepts.
type SubmissionItem struct {
	CategoryID  *int64
	Description string
	CBM         decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Submission validates the draft and builds its submission. Lines with a
// blank description are incomplete and left out.
func (d *ReceiptDraft) Submission() (*ReceiptSubmission, error) {
	if d.Customer == nil {
		return nil, ErrCustomerRequired
	}

	items := make([]SubmissionItem, 0, len(d.Items))
	for _, it := range d.Items {
		desc := strings.TrimSpace(it.Description)
		if desc == "" {
			continue
		}

		var categoryID *int64
		if it.Category != nil {
			id := it.Category.ID
			categoryID = &id
		}

		cbm := it.CBM
		if cbm.IsZero() && categoryID == nil {
			cbm = defaultCBM
		}

		items = append(items, SubmissionItem{
			CategoryID:  categoryID,
			Description: desc,
			CBM:         cbm,
			UnitPrice:   it.UnitPrice.Round(moneyPlaces),
		})
	}

	status := d.PaymentStatus
	if status == "" {
		status = PaymentPending
	}

	return &ReceiptSubmission{
		CustomerID:      d.Customer.ID,
		TotalAmount:     d.RoundedTotal(),
		PaymentStatus:   status,
		LoadingDate:     d.Shipment.LoadingDate,
		ETA:             d.Shipment.ETA,
		ContainerNumber: d.Shipment.ContainerNumber,
		Items:           items,
	}, nil
}

func clamp(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
