package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rockman-logistics/staffdesk/internal/application/service"
	"github.com/rockman-logistics/staffdesk/internal/presentation/http/dto/request"
	"github.com/rockman-logistics/staffdesk/internal/presentation/http/dto/response"
)

// DraftHandler handles receipt drafts: rows, shipment and submission
type DraftHandler struct {
	receiptService *service.ReceiptService
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(receiptService *service.ReceiptService) *DraftHandler {
	return &DraftHandler{receiptService: receiptService}
}

// CreateDraft starts a blank receipt with one empty row
// @Summary Create Draft
// @Tags drafts
// @Security BearerAuth
// @Produce json
// @Success 201 {object} response.APIResponse
// @Router /drafts [post]
func (h *DraftHandler) CreateDraft(c *gin.Context) {
	draft, err := h.receiptService.CreateDraft(c.Request.Context(), GetSession(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Draft created successfully", draft)
}

// ListDrafts returns the open drafts of the session
// @Summary List Drafts
// @Tags drafts
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /drafts [get]
func (h *DraftHandler) ListDrafts(c *gin.Context) {
	drafts, err := h.receiptService.ListDrafts(c.Request.Context(), GetSession(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Drafts retrieved successfully", drafts)
}

// GetDraft returns one draft
// @Summary Get Draft
// @Tags drafts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /drafts/{id} [get]
func (h *DraftHandler) GetDraft(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid draft ID")
		return
	}

	draft, err := h.receiptService.GetDraft(c.Request.Context(), GetSession(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Draft retrieved successfully", draft)
}

// ResetDraft clears the draft back to one blank row
// @Summary Reset Draft
// @Tags drafts
// @Security BearerAuth
// @Param id path string true "Draft ID"
// @Success 200 {object} response.APIResponse
// @Router /drafts/{id}/reset [post]
func (h *DraftHandler) ResetDraft(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid draft ID")
		return
	}

	draft, err := h.receiptService.ResetDraft(c.Request.Context(), GetSession(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Draft reset successfully", draft)
}

// DeleteDraft discards a draft
// @Summary Delete Draft
// @Tags drafts
// @Security BearerAuth
// @Param id path string true "Draft ID"
// @Success 200 {object} response.APIResponse
// @Router /drafts/{id} [delete]
func (h *DraftHandler) DeleteDraft(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid draft ID")
		return
	}

	if err := h.receiptService.DeleteDraft(c.Request.Context(), GetSession(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Draft deleted successfully", nil)
}

// SetShipment replaces loading date, ETA and container number
// @Summary Set Shipment
// @Tags drafts
// @Security BearerAuth
// @Accept json
// @Param id path string true "Draft ID"
// @Param request body request.ShipmentRequest true "Shipment"
// @Success 200 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /drafts/{id}/shipment [put]
func (h *DraftHandler) SetShipment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid draft ID")
		return
	}

	var req request.ShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	draft, err := h.receiptService.SetShipment(c.Request.Context(), GetSession(c), id, &service.ShipmentInput{
		LoadingDate:     req.LoadingDate,
		ETA:             req.ETA,
		ContainerNumber: req.ContainerNumber,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Shipment updated successfully", draft)
}

// AddItem appends a blank row
// @Summary Add Item
// @Tags drafts
// @Security BearerAuth
// @Param id path string true "Draft ID"
// @Success 201 {object} response.APIResponse
// @Router /drafts/{id}/items [post]
func (h *DraftHandler) AddItem(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid draft ID")
		return
	}

	draft, err := h.receiptService.AddItem(c.Request.Context(), GetSession(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Item added successfully", draft)
}

// UpdateItem edits description, CBM or unit price of a row (0-based index)
// @Summary Update Item
// @Tags drafts
// @Security BearerAuth
// @Accept json
// @Param id path string true "Draft ID"
// @Param index path int true "Row index"
// @Param request body request.ItemRequest true "Row fields"
// @Success 200 {object} response.APIResponse
// @Router /drafts/{id}/items/{index} [patch]
func (h *DraftHandler) UpdateItem(c *gin.Context) {
	id, index, ok := h.itemParams(c)
	if !ok {
		return
	}

	var req request.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	draft, err := h.receiptService.UpdateItem(c.Request.Context(), GetSession(c), id, index, &service.ItemInput{
		Description: req.Description,
		CBM:         req.CBM,
		UnitPrice:   req.UnitPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item updated successfully", draft)
}

// SetItemCategory picks the category of a row and applies its default rate
// @Summary Set Item Category
// @Tags drafts
// @Security BearerAuth
// @Accept json
// @Param id path string true "Draft ID"
// @Param index path int true "Row index"
// @Param request body request.ItemCategoryRequest true "Category"
// @Success 200 {object} response.APIResponse
// @Router /drafts/{id}/items/{index}/category [put]
func (h *DraftHandler) SetItemCategory(c *gin.Context) {
	id, index, ok := h.itemParams(c)
	if !ok {
		return
	}

	var req request.ItemCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	draft, err := h.receiptService.SetItemCategory(c.Request.Context(), GetSession(c), id, index, req.CategoryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item updated successfully", draft)
}

// RemoveItem deletes a row; a draft always keeps at least one
// @Summary Remove Item
// @Tags drafts
// @Security BearerAuth
// @Param id path string true "Draft ID"
// @Param index path int true "Row index"
// @Success 200 {object} response.APIResponse
// @Router /drafts/{id}/items/{index} [delete]
func (h *DraftHandler) RemoveItem(c *gin.Context) {
	id, index, ok := h.itemParams(c)
	if !ok {
		return
	}

	draft, err := h.receiptService.RemoveItem(c.Request.Context(), GetSession(c), id, index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item removed successfully", draft)
}

// Submit issues the draft as a receipt on the backend
// @Summary Submit Draft
// @Tags drafts
// @Security BearerAuth
// @Param id path string true "Draft ID"
// @Param Idempotency-Key header string false "Replay protection"
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Failure 503 {object} response.APIResponse
// @Router /drafts/{id}/submit [post]
func (h *DraftHandler) Submit(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid draft ID")
		return
	}

	receipt, err := h.receiptService.Submit(c.Request.Context(), GetSession(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Receipt created successfully", receipt)
}

func (h *DraftHandler) itemParams(c *gin.Context) (draftID uuid.UUID, index int, ok bool) {
	draftID, ok = parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid draft ID")
		return
	}
	index, ok = parseIntParam(c, "index")
	if !ok {
		response.BadRequest(c, "Invalid item index")
	}
	return
}
