package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rockman-logistics/staffdesk/internal/domain/entity"
	"github.com/rockman-logistics/staffdesk/internal/domain/repository"
	"github.com/xuri/excelize/v2"
)

const (
	receiptsSheet = "Receipts"
	itemsSheet    = "Items"
)

var (
	receiptsHeader = []string{"Receipt #", "Issued", "Customer", "Code", "Total (USD)", "Status", "Issued By"}
	itemsHeader    = []string{"Receipt #", "Item #", "Product", "CBM", "Unit Price", "Amount"}
)

// ReportService exports the receipt archive as a spreadsheet
type ReportService struct {
	archiveRepo repository.ReceiptArchiveRepository
	now         func() time.Time
}

// NewReportService creates a new report service
func NewReportService(archiveRepo repository.ReceiptArchiveRepository) *ReportService {
	return &ReportService{archiveRepo: archiveRepo, now: time.Now}
}

// ExportReceipts writes matching archived receipts and their lines to an
// XLSX workbook.
func (s *ReportService) ExportReceipts(ctx context.Context, filter repository.ReceiptFilter) ([]byte, string, error) {
	receipts, err := s.archiveRepo.All(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", receiptsSheet); err != nil {
		return nil, "", err
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, "", err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, "", err
	}
	if err := writeHeader(f, receiptsSheet, receiptsHeader, bold); err != nil {
		return nil, "", err
	}
	if err := writeHeader(f, itemsSheet, itemsHeader, bold); err != nil {
		return nil, "", err
	}

	itemRow := 2
	for i, a := range receipts {
		total, _ := a.TotalAmount.Float64()
		row := []any{a.ReceiptNumber, a.IssuedAt.Format("2006-01-02 15:04"), a.CustomerName, a.CustomerCode, total, a.PaymentStatus, a.IssuedBy}
		if err := writeRow(f, receiptsSheet, i+2, row); err != nil {
			return nil, "", err
		}

		r, err := a.Receipt()
		if err != nil {
			return nil, "", fmt.Errorf("decode archived receipt %d: %w", a.BackendID, err)
		}
		for j, it := range r.Items {
			cbm, _ := it.CBM.Float64()
			price, _ := it.UnitPrice.Float64()
			amount, _ := it.Amount().Round(2).Float64()
			if err := writeRow(f, itemsSheet, itemRow, []any{a.ReceiptNumber, j + 1, it.Product(), cbm, price, amount}); err != nil {
				return nil, "", err
			}
			itemRow++
		}
	}

	if err := f.SetColWidth(receiptsSheet, "A", "G", 18); err != nil {
		return nil, "", err
	}
	if err := f.SetColWidth(itemsSheet, "C", "C", 40); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}
	name := fmt.Sprintf("receipts_%s.xlsx", s.now().UTC().Format(entity.DateLayout))
	return buf.Bytes(), name, nil
}

func writeHeader(f *excelize.File, sheet string, header []string, style int) error {
	values := make([]any, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := writeRow(f, sheet, 1, values); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
