package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rockman-logistics/staffdesk/internal/application/service"
	"github.com/rockman-logistics/staffdesk/internal/domain/repository"
	"github.com/rockman-logistics/staffdesk/internal/presentation/http/dto/response"
	"github.com/rockman-logistics/staffdesk/pkg/pagination"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReceiptHandler serves issued receipts and their documents
type ReceiptHandler struct {
	receiptService  *service.ReceiptService
	documentService *service.DocumentService
	reportService   *service.ReportService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService *service.ReceiptService, documentService *service.DocumentService, reportService *service.ReportService) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService:  receiptService,
		documentService: documentService,
		reportService:   reportService,
	}
}

func receiptFilter(c *gin.Context) repository.ReceiptFilter {
	return repository.ReceiptFilter{
		Search:   c.Query("search"),
		IssuedBy: c.Query("issued_by"),
	}
}

// ListReceipts pages through receipts issued at this desk
// @Summary List Receipts
// @Tags receipts
// @Security BearerAuth
// @Produce json
// @Param search query string false "Receipt number, company or customer code"
// @Param issued_by query string false "Staff username"
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Success 200 {object} response.APIResponse
// @Router /receipts [get]
func (h *ReceiptHandler) ListReceipts(c *gin.Context) {
	params := pagination.ParseParams(c.Query("page"), c.Query("per_page"))

	result, err := h.receiptService.ListReceipts(c.Request.Context(), receiptFilter(c), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Receipts retrieved successfully", result)
}

// ExportReceipts downloads the archive as an Excel workbook
// @Summary Export Receipts
// @Tags receipts
// @Security BearerAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /receipts/export [get]
func (h *ReceiptHandler) ExportReceipts(c *gin.Context) {
	data, filename, err := h.reportService.ExportReceipts(c.Request.Context(), receiptFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, xlsxContentType, filename, data)
}

// GetReceipt returns a persisted receipt
// @Summary Get Receipt
// @Tags receipts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Receipt ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /receipts/{id} [get]
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid receipt ID")
		return
	}

	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), GetSession(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt retrieved successfully", receipt)
}

// GetInvoice returns the invoice of a receipt for on-screen preview
// @Summary Get Invoice
// @Tags receipts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Receipt ID"
// @Success 200 {object} response.APIResponse
// @Router /receipts/{id}/invoice [get]
func (h *ReceiptHandler) GetInvoice(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid receipt ID")
		return
	}

	invoice, err := h.documentService.Invoice(c.Request.Context(), GetSession(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Invoice retrieved successfully", invoice)
}

// DownloadPDF renders the invoice of a receipt as an A4 PDF
// @Summary Download Invoice PDF
// @Tags receipts
// @Security BearerAuth
// @Produce application/pdf
// @Param id path int true "Receipt ID"
// @Router /receipts/{id}/pdf [get]
func (h *ReceiptHandler) DownloadPDF(c *gin.Context) {
	id, ok := parseInt64Param(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid receipt ID")
		return
	}

	data, filename, err := h.documentService.PDF(c.Request.Context(), GetSession(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "application/pdf", filename, data)
}
