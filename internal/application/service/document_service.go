package service

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
	"github.com/rockman-logistics/staffdesk/pkg/invoice"
	"github.com/shopspring/decimal"
)

// InvoiceOptions are the fixed inputs of an invoice besides the receipt.
type InvoiceOptions struct {
	CompanyName       string
	ExchangeRate      decimal.Decimal // units of SecondaryCurrency per USD
	SecondaryCurrency string
}

// DefaultInvoiceOptions bills in USD with an RMB conversion at 7.3.
func DefaultInvoiceOptions() InvoiceOptions {
	return InvoiceOptions{
		CompanyName:       "ROCKMAN LOGISTICS",
		ExchangeRate:      decimal.RequireFromString("7.3"),
		SecondaryCurrency: "RMB",
	}
}

var invoiceAddresses = []entity.InvoiceAddress{
	{Label: "China (Delivery address)"},
	{Label: "Ghana", Lines: []string{"10 Dantu Avenue, North Kaneshie, Accra"}},
	{Label: "Turkey", Lines: []string{"Katip kasim Mah. Mermerciler Cad. No 5, Kat: 1 Yenikapi/Fatih-Istanbul"}},
}

var invoiceRemarks = []entity.InvoiceRemark{
	{
		Title: "Fragile Goods",
		Body:  "Rockman Logistics is not responsible for damage to fragile items during transit. All fragile goods must be properly packaged and clearly labeled.",
	},
	{
		Title: "Insurance",
		Body:  "Basic insurance coverage is included. Additional insurance coverage for high-value items must be requested and paid for separately before shipment.",
	},
	{
		Title: "Fake Goods",
		Body:  "Illegal items, counterfeit products, or any goods prohibited by customs regulations are strictly forbidden. Violators will face legal consequences.",
	},
	{
		Title: "Storage Limit",
		Body:  "All items must be collected within one week (7 days) of arrival. Storage fees of $5 per CBM per day will apply after this period.",
	},
}

const notAvailable = "N/A"

// DocumentService produces invoices for issued receipts.
type DocumentService struct {
	receipts *ReceiptService
	options  InvoiceOptions
	now      func() time.Time
}

// NewDocumentService creates a new document service.
func NewDocumentService(receipts *ReceiptService, options InvoiceOptions) *DocumentService {
	return &DocumentService{
		receipts: receipts,
		options:  options,
		now:      time.Now,
	}
}

// Invoice returns the structured invoice of a receipt.
func (s *DocumentService) Invoice(ctx context.Context, sess *StaffSession, receiptID int64) (*entity.Invoice, error) {
	r, err := s.receipts.GetReceipt(ctx, sess, receiptID)
	if err != nil {
		return nil, err
	}
	return BuildInvoice(r, s.options), nil
}

// PDF renders the invoice of a receipt and names the file after the receipt
// and today's date.
func (s *DocumentService) PDF(ctx context.Context, sess *StaffSession, receiptID int64) ([]byte, string, error) {
	r, err := s.receipts.GetReceipt(ctx, sess, receiptID)
	if err != nil {
		return nil, "", err
	}

	data, err := invoice.WritePDF(RenderInvoice(BuildInvoice(r, s.options)), invoice.A4)
	if err != nil {
		return nil, "", err
	}
	return data, PDFFilename(r, s.now()), nil
}

// PDFFilename is receipt_<number or id>_<YYYY-MM-DD>.pdf.
func PDFFilename(r *entity.PersistedReceipt, now time.Time) string {
	ref := r.ReceiptNumber
	if ref == "" {
		ref = fmt.Sprintf("%d", r.ID)
	}
	return fmt.Sprintf("receipt_%s_%s.pdf", ref, now.UTC().Format(entity.DateLayout))
}

// BuildInvoice composes the invoice view of r. It does not modify r.
func BuildInvoice(r *entity.PersistedReceipt, opts InvoiceOptions) *entity.Invoice {
	issued := r.CreatedAt.Format("Jan 2, 2006")

	inv := &entity.Invoice{
		Header: entity.InvoiceHeader{
			CompanyName:   opts.CompanyName,
			Addresses:     invoiceAddresses,
			Title:         "INVOICE",
			InvoiceNumber: r.ReceiptNumber,
			Date:          issued,
		},
		Shipment: []entity.InvoiceField{
			{Label: "Container No", Value: orNA(r.ContainerNumber)},
			{Label: "Loading Date", Value: dateOrNA(r.LoadingDate)},
			{Label: "ETA", Value: dateOrNA(r.ETA)},
		},
		Customer: []entity.InvoiceField{
			{Label: "Company", Value: orNA(r.CustomerName)},
			{Label: "Contact Person", Value: orNA(r.CustomerContactPerson)},
			{Label: "Code", Value: orNA(r.CustomerCode)},
		},
		Staff: []entity.InvoiceField{
			{Label: "Created By", Value: orDefault(r.CreatedByName, "System")},
			{Label: "Date", Value: issued},
		},
		Lines:   make([]entity.InvoiceLine, 0, len(r.Items)),
		Remarks: invoiceRemarks,
	}

	for i, it := range r.Items {
		inv.Lines = append(inv.Lines, entity.InvoiceLine{
			Index:     i + 1,
			Product:   it.Product(),
			Quantity:  it.CBM.StringFixed(3),
			UnitPrice: usd(it.UnitPrice),
			Amount:    usd(it.Amount()),
		})
	}

	secondary := r.TotalAmount.Mul(opts.ExchangeRate).StringFixed(2)
	inv.Summary = entity.InvoiceSummary{
		Total:            usd(r.TotalAmount),
		SecondaryTotal:   secondary,
		TotalLine:        fmt.Sprintf("Total: %s / %s %s", usd(r.TotalAmount), secondary, opts.SecondaryCurrency),
		ExchangeRateLine: fmt.Sprintf("Exchange Rate: 1 USD = %s %s", opts.ExchangeRate.String(), opts.SecondaryCurrency),
		PaymentStatus:    strings.ToUpper(r.PaymentStatus),
	}
	return inv
}

var invoiceColumns = []invoice.Column{
	{Width: 0.10, Align: invoice.AlignCenter},
	{Width: 0.42, Align: invoice.AlignLeft},
	{Width: 0.14, Align: invoice.AlignCenter},
	{Width: 0.17, Align: invoice.AlignRight},
	{Width: 0.17, Align: invoice.AlignRight},
}

// RenderInvoice rasterizes inv at twice its 800 px layout width.
func RenderInvoice(inv *entity.Invoice) image.Image {
	c := invoice.NewCanvas(800, 2)

	c.SetBold(true).SetFontSize(invoice.SizeLarge).Text(inv.Header.CompanyName)
	c.SetBold(false).SetFontSize(invoice.SizeSmall).SetColor(invoice.ColorMuted)
	for _, a := range inv.Header.Addresses {
		if len(a.Lines) == 0 {
			c.Text(a.Label)
			continue
		}
		for _, line := range a.Lines {
			c.TextF("%s: %s", a.Label, line)
		}
	}
	c.SetColor(invoice.ColorText).Gap(6)
	c.SetAlign(invoice.AlignRight).SetBold(true).SetFontSize(invoice.SizeTitle).Text(inv.Header.Title)
	c.SetBold(false).SetFontSize(invoice.SizeNormal).
		TextF("Invoice #: %s", inv.Header.InvoiceNumber).
		TextF("Date: %s", inv.Header.Date)
	c.SetAlign(invoice.AlignLeft).Separator()

	section(c, "Shipment Details")
	fields(c, inv.Shipment)
	c.Separator()

	section(c, "Customer Information")
	fields(c, inv.Customer)
	c.Gap(6)
	section(c, "Staff Information")
	fields(c, inv.Staff)
	c.Separator()

	section(c, "Item Details")
	c.Band(22, invoice.ColorBand).SetBold(true).
		Row(invoiceColumns, "Item #", "Product", "CBM/Qty", "Unit Price", "Amount").
		SetBold(false)
	for _, l := range inv.Lines {
		c.Row(invoiceColumns, fmt.Sprintf("%d", l.Index), l.Product, l.Quantity, l.UnitPrice, l.Amount)
	}
	c.Separator()

	c.SetAlign(invoice.AlignRight)
	section(c, "Payment Summary")
	c.SetBold(true).SetFontSize(invoice.SizeLarge).Text(inv.Summary.TotalLine)
	c.SetBold(false).SetFontSize(invoice.SizeNormal).SetColor(invoice.ColorMuted).
		Text(inv.Summary.ExchangeRateLine).
		TextF("Payment Status: %s", inv.Summary.PaymentStatus)
	c.SetColor(invoice.ColorText).SetAlign(invoice.AlignLeft).Separator()

	section(c, "IMPORTANT REMARKS")
	c.SetFontSize(invoice.SizeSmall)
	for i, r := range inv.Remarks {
		c.TextF("%d. %s: %s", i+1, r.Title, r.Body).Gap(4)
	}

	return c.Image()
}

func section(c *invoice.Canvas, title string) {
	c.SetBold(true).SetFontSize(invoice.SizeNormal).Text(title).SetBold(false).Gap(2)
}

func fields(c *invoice.Canvas, fs []entity.InvoiceField) {
	for _, f := range fs {
		c.KeyValue(f.Label+":", f.Value)
	}
}

func usd(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func orNA(s string) string {
	return orDefault(s, notAvailable)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func dateOrNA(d *entity.Date) string {
	if d == nil || d.IsZero() {
		return notAvailable
	}
	return d.Format("Jan 2, 2006")
}
