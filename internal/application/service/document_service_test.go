package service

import (
	"bytes"
	"context"
	"image"
	"reflect"
	"testing"
	"time"

	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
	"github.com/rockman-logistics/staffdesk/internal/domain/repository"
	infraRepo "github.com/rockman-logistics/staffdesk/internal/infrastructure/repository"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func sampleReceipt() *entity.PersistedReceipt {
	cat := int64(1)
	loading := entity.NewDate(2026, time.March, 2)
	return &entity.PersistedReceipt{
		ID:            51,
		ReceiptNumber: "RCP-000051",
		CustomerName:  "Acme Ltd",
		CustomerCode:  "AC01",
		TotalAmount:   decimal.RequireFromString("100.00"),
		PaymentStatus: "pending",
		LoadingDate:   &loading,
		CreatedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Items: []entity.PersistedReceiptItem{
			{CategoryID: &cat, CategoryName: "Normal Goods", Description: "", CBM: decimal.RequireFromString("2.5"), UnitPrice: decimal.RequireFromString("30")},
			{Description: "Handling", CBM: decimal.RequireFromString("1"), UnitPrice: decimal.RequireFromString("25")},
		},
	}
}

func TestBuildInvoice(t *testing.T) {
	inv := BuildInvoice(sampleReceipt(), DefaultInvoiceOptions())

	if inv.Summary.TotalLine != "Total: $100.00 / 730.00 RMB" {
		t.Errorf("total line = %q", inv.Summary.TotalLine)
	}
	if inv.Summary.ExchangeRateLine != "Exchange Rate: 1 USD = 7.3 RMB" {
		t.Errorf("exchange line = %q", inv.Summary.ExchangeRateLine)
	}
	if inv.Summary.PaymentStatus != "PENDING" {
		t.Errorf("status = %q", inv.Summary.PaymentStatus)
	}

	wantLines := []entity.InvoiceLine{
		{Index: 1, Product: "Normal Goods", Quantity: "2.500", UnitPrice: "$30.00", Amount: "$75.00"},
		{Index: 2, Product: "Handling", Quantity: "1.000", UnitPrice: "$25.00", Amount: "$25.00"},
	}
	if !reflect.DeepEqual(inv.Lines, wantLines) {
		t.Errorf("lines = %+v", inv.Lines)
	}

	fields := map[string]string{}
	for _, f := range append(append(inv.Shipment, inv.Customer...), inv.Staff...) {
		fields[f.Label] = f.Value
	}
	for label, want := range map[string]string{
		"Container No":   "N/A",
		"ETA":            "N/A",
		"Loading Date":   "Mar 2, 2026",
		"Contact Person": "N/A",
		"Created By":     "System",
	} {
		if fields[label] != want {
			t.Errorf("%s = %q, want %q", label, fields[label], want)
		}
	}
	if len(inv.Remarks) != 4 || inv.Remarks[3].Title != "Storage Limit" {
		t.Errorf("remarks = %+v", inv.Remarks)
	}
}

func TestRenderInvoiceIsPure(t *testing.T) {
	r := sampleReceipt()
	before := *r
	inv := BuildInvoice(r, DefaultInvoiceOptions())

	a := RenderInvoice(inv).(*image.RGBA)
	b := RenderInvoice(BuildInvoice(r, DefaultInvoiceOptions())).(*image.RGBA)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("rendering should be deterministic")
	}
	if !reflect.DeepEqual(before, *r) {
		t.Error("receipt was modified")
	}
	if a.Bounds().Dx() != 1600 {
		t.Errorf("width = %d", a.Bounds().Dx())
	}
}

func TestPDFFilename(t *testing.T) {
	now := time.Date(2026, 10, 17, 23, 0, 0, 0, time.UTC)
	if got := PDFFilename(sampleReceipt(), now); got != "receipt_RCP-000051_2026-10-17.pdf" {
		t.Errorf("filename = %q", got)
	}
	if got := PDFFilename(&entity.PersistedReceipt{ID: 9}, now); got != "receipt_9_2026-10-17.pdf" {
		t.Errorf("filename = %q", got)
	}
}

func TestDocumentPDFFromArchive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	archive := infraRepo.NewReceiptArchiveRepository(f.db)

	a, err := entity.NewArchivedReceipt(sampleReceipt(), "akosua")
	if err != nil {
		t.Fatal(err)
	}
	if err := archive.Save(ctx, a); err != nil {
		t.Fatal(err)
	}

	docs := NewDocumentService(f.receipts, DefaultInvoiceOptions())
	docs.now = func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }

	data, name, err := docs.PDF(ctx, f.session, 51)
	if err != nil {
		t.Fatal(err)
	}
	if name != "receipt_RCP-000051_2026-10-17.pdf" || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("pdf %q, %d bytes", name, len(data))
	}

	if _, _, err := docs.PDF(ctx, f.session, 404); appCode(err) != 404 {
		t.Errorf("missing receipt: %v", err)
	}
}

func TestExportReceipts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	archive := infraRepo.NewReceiptArchiveRepository(f.db)
	a, _ := entity.NewArchivedReceipt(sampleReceipt(), "akosua")
	if err := archive.Save(ctx, a); err != nil {
		t.Fatal(err)
	}

	data, name, err := NewReportService(archive).ExportReceipts(ctx, repository.ReceiptFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(name) == 0 {
		t.Error("empty filename")
	}

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()

	if v, _ := wb.GetCellValue(receiptsSheet, "A2"); v != "RCP-000051" {
		t.Errorf("A2 = %q", v)
	}
	if v, _ := wb.GetCellValue(itemsSheet, "C3"); v != "Handling" {
		t.Errorf("items C3 = %q", v)
	}
	if v, _ := wb.GetCellValue(itemsSheet, "F2"); v != "75" {
		t.Errorf("items F2 = %q", v)
	}
}
