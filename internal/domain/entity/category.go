package entity

import "github.com/shopspring/decimal"

// Well-known category names whose label doubles as the item description.
const (
	CategoryNormalGoods  = "Normal Goods"
	CategorySpecialGoods = "Special Goods"
)

// GoodsCategory is a billable goods class priced per CBM. Reference data
// owned by the backend.
type GoodsCategory struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Description string          `json:"description,omitempty"`
}

// CanonicalLabel returns the description a line takes when this category is
// picked, if the category has one.
func (c GoodsCategory) CanonicalLabel() (string, bool) {
	switch c.Name {
	case CategoryNormalGoods, CategorySpecialGoods:
		return c.Name, true
	}
	return "", false
}
