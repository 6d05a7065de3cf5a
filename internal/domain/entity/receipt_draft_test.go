package entity

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewReceiptDraftHasOneBlankRow(t *testing.T) {
	d := NewReceiptDraft()
	if len(d.Items) != 1 {
		t.Fatalf("expected 1 row, got %d", len(d.Items))
	}
	it := d.Items[0]
	if !it.CBM.IsZero() || !it.UnitPrice.IsZero() || it.Description != "" || it.Category != nil {
		t.Errorf("row not blank: %+v", it)
	}
	if d.PaymentStatus != PaymentPending {
		t.Errorf("payment status = %q", d.PaymentStatus)
	}
}

func TestSetCategoryOnEmptyRow(t *testing.T) {
	d := NewReceiptDraft()
	cat := &GoodsCategory{ID: 4, Name: "Electronics", UnitPrice: dec("30")}

	if err := d.SetCategory(0, cat); err != nil {
		t.Fatal(err)
	}

	it := d.Items[0]
	if !it.CBM.Equal(dec("1.000")) {
		t.Errorf("cbm = %s, want 1.000", it.CBM)
	}
	if !it.UnitPrice.Equal(dec("30")) {
		t.Errorf("unit price = %s", it.UnitPrice)
	}
	if got := it.Total.StringFixed(2); got != "30.00" {
		t.Errorf("total = %s, want 30.00", got)
	}
	if it.Description != "" {
		t.Errorf("description should be untouched for non-canonical category, got %q", it.Description)
	}
}

func TestSetCategoryKeepsExistingCBM(t *testing.T) {
	d := NewReceiptDraft()
	_ = d.SetCBM(0, dec("2.5"))
	_ = d.SetCategory(0, &GoodsCategory{ID: 1, Name: CategoryNormalGoods, UnitPrice: dec("120")})

	it := d.Items[0]
	if !it.CBM.Equal(dec("2.5")) {
		t.Errorf("cbm = %s, want 2.5", it.CBM)
	}
	if it.Description != CategoryNormalGoods {
		t.Errorf("description = %q", it.Description)
	}
	if !it.Total.Equal(dec("300")) {
		t.Errorf("total = %s", it.Total)
	}
}

func TestClearCategoryResetsRow(t *testing.T) {
	tests := []struct {
		name string
		cbm  string
		desc string
	}{
		{"from large volume", "7.25", "Special Goods"},
		{"from zero", "0", "custom"},
		{"from one", "1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewReceiptDraft()
			_ = d.SetCategory(0, &GoodsCategory{ID: 2, Name: CategorySpecialGoods, UnitPrice: dec("200")})
			_ = d.SetCBM(0, dec(tt.cbm))
			_ = d.SetDescription(0, tt.desc)

			if err := d.SetCategory(0, nil); err != nil {
				t.Fatal(err)
			}
			it := d.Items[0]
			if it.Category != nil {
				t.Error("category should be cleared")
			}
			if !it.CBM.Equal(dec("1.000")) {
				t.Errorf("cbm = %s", it.CBM)
			}
			if it.Description != "" {
				t.Errorf("description = %q", it.Description)
			}
		})
	}
}

func TestSetUnitPriceOnAdHocRowForcesUnitCBM(t *testing.T) {
	d := NewReceiptDraft()
	_ = d.SetUnitPrice(0, dec("45.5"))

	if !d.Items[0].CBM.Equal(dec("1")) {
		t.Errorf("cbm = %s, want 1", d.Items[0].CBM)
	}
	if !d.GrandTotal.Equal(dec("45.5")) {
		t.Errorf("grand total = %s", d.GrandTotal)
	}
}

func TestNegativeValuesClampToZero(t *testing.T) {
	d := NewReceiptDraft()
	_ = d.SetCBM(0, dec("-3"))
	if !d.Items[0].CBM.IsZero() {
		t.Errorf("cbm = %s", d.Items[0].CBM)
	}
	_ = d.SetCategory(0, &GoodsCategory{ID: 1, Name: "x", UnitPrice: dec("10")})
	_ = d.SetUnitPrice(0, dec("-1"))
	if !d.Items[0].UnitPrice.IsZero() {
		t.Errorf("unit price = %s", d.Items[0].UnitPrice)
	}
}

func TestGrandTotalIsRoundedSumOfLines(t *testing.T) {
	d := NewReceiptDraft()
	d.AddRow()
	d.AddRow()
	_ = d.SetCBM(0, dec("1.333"))
	_ = d.SetUnitPrice(0, dec("10.005"))
	_ = d.SetCBM(1, dec("2.5"))
	_ = d.SetUnitPrice(1, dec("99.99"))
	_ = d.SetCBM(2, dec("0.125"))
	_ = d.SetUnitPrice(2, dec("3.33"))

	want := dec("1.333").Mul(dec("10.005")).
		Add(dec("2.5").Mul(dec("99.99"))).
		Add(dec("0.125").Mul(dec("3.33")))

	if !d.GrandTotal.Equal(want) {
		t.Errorf("grand total = %s, want %s", d.GrandTotal, want)
	}
	if !d.RoundedTotal().Equal(want.Round(2)) {
		t.Errorf("rounded total = %s, want %s", d.RoundedTotal(), want.Round(2))
	}
}

func TestEditLeavesOtherLinesAlone(t *testing.T) {
	d := NewReceiptDraft()
	d.AddRow()
	_ = d.SetCBM(0, dec("2"))
	_ = d.SetUnitPrice(0, dec("50"))
	_ = d.SetCBM(1, dec("3"))
	_ = d.SetUnitPrice(1, dec("10"))

	before := d.Items[1].Total
	_ = d.SetCBM(0, dec("4"))

	if !d.Items[1].Total.Equal(before) {
		t.Errorf("line 1 total changed from %s to %s", before, d.Items[1].Total)
	}
	if !d.GrandTotal.Equal(dec("230")) {
		t.Errorf("grand total = %s, want 230", d.GrandTotal)
	}
}

func TestRemoveRow(t *testing.T) {
	d := NewReceiptDraft()
	_ = d.SetDescription(0, "only")

	if err := d.RemoveRow(0); err != nil {
		t.Fatal(err)
	}
	if len(d.Items) != 1 || d.Items[0].Description != "only" {
		t.Fatalf("single row must survive removal: %+v", d.Items)
	}

	d.AddRow()
	_ = d.SetDescription(1, "second")
	if err := d.RemoveRow(0); err != nil {
		t.Fatal(err)
	}
	if len(d.Items) != 1 || d.Items[0].Description != "second" {
		t.Errorf("unexpected rows after removal: %+v", d.Items)
	}
}

func TestIndexOutOfRange(t *testing.T) {
	d := NewReceiptDraft()
	checks := map[string]error{
		"category":    d.SetCategory(3, nil),
		"cbm":         d.SetCBM(-1, dec("1")),
		"unit price":  d.SetUnitPrice(1, dec("1")),
		"description": d.SetDescription(9, "x"),
		"remove":      d.RemoveRow(2),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrItemIndex) {
			t.Errorf("%s: err = %v, want ErrItemIndex", name, err)
		}
	}
}

func TestSubmissionRequiresCustomer(t *testing.T) {
	d := NewReceiptDraft()
	_ = d.SetDescription(0, "Boxes")
	if _, err := d.Submission(); !errors.Is(err, ErrCustomerRequired) {
		t.Fatalf("err = %v, want ErrCustomerRequired", err)
	}
}

func TestSubmissionFiltersBlankDescriptions(t *testing.T) {
	d := NewReceiptDraft()
	d.MergeCandidate(Customer{ID: 11, CompanyName: "Kofi Traders", CustomerCode: "CUST011"})

	_ = d.SetCategory(0, &GoodsCategory{ID: 1, Name: CategoryNormalGoods, UnitPrice: dec("120")})
	d.AddRow()
	_ = d.SetDescription(1, "   ")
	_ = d.SetCBM(1, dec("5"))
	_ = d.SetUnitPrice(1, dec("80"))
	d.AddRow()
	_ = d.SetDescription(2, "  Spare tyres ")
	_ = d.SetUnitPrice(2, dec("12.345"))

	sub, err := d.Submission()
	if err != nil {
		t.Fatal(err)
	}
	if sub.CustomerID != 11 {
		t.Errorf("customer = %d", sub.CustomerID)
	}
	if len(sub.Items) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(sub.Items), sub.Items)
	}
	if sub.Items[0].CategoryID == nil || *sub.Items[0].CategoryID != 1 {
		t.Errorf("first item category = %v", sub.Items[0].CategoryID)
	}
	adhoc := sub.Items[1]
	if adhoc.CategoryID != nil {
		t.Errorf("ad-hoc item should have no category")
	}
	if adhoc.Description != "Spare tyres" {
		t.Errorf("description = %q", adhoc.Description)
	}
	if !adhoc.UnitPrice.Equal(dec("12.35")) {
		t.Errorf("unit price = %s, want 12.35", adhoc.UnitPrice)
	}
	if sub.PaymentStatus != PaymentPending {
		t.Errorf("payment status = %q", sub.PaymentStatus)
	}
	// The blank row still counts toward the draft's grand total.
	if !sub.TotalAmount.Equal(d.RoundedTotal()) {
		t.Errorf("total = %s, want %s", sub.TotalAmount, d.RoundedTotal())
	}
}

func TestSubmissionDefaultsAdHocCBM(t *testing.T) {
	d := NewReceiptDraft()
	d.MergeCandidate(Customer{ID: 3})
	_ = d.SetDescription(0, "Handling fee")

	sub, err := d.Submission()
	if err != nil {
		t.Fatal(err)
	}
	if !sub.Items[0].CBM.Equal(dec("1")) {
		t.Errorf("cbm = %s, want 1", sub.Items[0].CBM)
	}
}

func TestCustomerSelection(t *testing.T) {
	d := NewReceiptDraft()
	d.SetCandidates([]Customer{{ID: 1, CompanyName: "A"}, {ID: 2, CompanyName: "B"}})

	if err := d.SelectCustomer(2); err != nil {
		t.Fatal(err)
	}
	if d.Customer == nil || d.Customer.CompanyName != "B" {
		t.Fatalf("customer = %+v", d.Customer)
	}
	if err := d.SelectCustomer(9); !errors.Is(err, ErrUnknownCandidate) {
		t.Errorf("err = %v", err)
	}
	if d.Customer.ID != 2 {
		t.Error("failed selection must keep the prior customer")
	}

	d.MergeCandidate(Customer{ID: 2, CompanyName: "B Ltd"})
	if len(d.Candidates) != 2 || d.Candidates[1].CompanyName != "B Ltd" {
		t.Errorf("merge should update in place: %+v", d.Candidates)
	}
	d.MergeCandidate(Customer{ID: 7, CompanyName: "New Co", CustomerCode: "CUST007"})
	if len(d.Candidates) != 3 || d.Customer.ID != 7 {
		t.Errorf("merge should append and select: %+v / %+v", d.Candidates, d.Customer)
	}

	d.ClearCustomer()
	if d.Customer != nil {
		t.Error("customer should be cleared")
	}
}

func TestDraftRecordRoundTrip(t *testing.T) {
	d := NewReceiptDraft()
	_ = d.SetCategory(0, &GoodsCategory{ID: 1, Name: CategoryNormalGoods, UnitPrice: dec("120")})
	loading := NewDate(2024, 5, 1)
	d.SetShipment(Shipment{LoadingDate: &loading, ContainerNumber: " MSKU1234567 "})

	var rec DraftRecord
	if err := rec.SetDraft(d); err != nil {
		t.Fatal(err)
	}
	got, err := rec.Draft()
	if err != nil {
		t.Fatal(err)
	}
	if !got.GrandTotal.Equal(dec("120")) {
		t.Errorf("grand total = %s", got.GrandTotal)
	}
	if got.Shipment.LoadingDate == nil || got.Shipment.LoadingDate.String() != "2024-05-01" {
		t.Errorf("loading date = %v", got.Shipment.LoadingDate)
	}
	if got.Shipment.ETA != nil {
		t.Errorf("eta should stay nil")
	}
	if got.Shipment.ContainerNumber != "MSKU1234567" {
		t.Errorf("container = %q", got.Shipment.ContainerNumber)
	}
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		A *Date `json:"a"`
		B *Date `json:"b"`
		C *Date `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"2024-06-30","b":null,"c":"2024-07-01T00:00:00Z"}`), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.A == nil || payload.A.String() != "2024-06-30" {
		t.Errorf("a = %v", payload.A)
	}
	if payload.B != nil {
		t.Errorf("b = %v", payload.B)
	}
	if payload.C == nil || payload.C.String() != "2024-07-01" {
		t.Errorf("c = %v", payload.C)
	}

	out, _ := json.Marshal(payload)
	if string(out) != `{"a":"2024-06-30","b":null,"c":"2024-07-01"}` {
		t.Errorf("marshal = %s", out)
	}
}
