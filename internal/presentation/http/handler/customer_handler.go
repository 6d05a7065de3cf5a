package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rockman-logistics/staffdesk/internal/application/service"
	"github.com/rockman-logistics/staffdesk/internal/presentation/http/dto/request"
	"github.com/rockman-logistics/staffdesk/internal/presentation/http/dto/response"
)

// CustomerHandler resolves the customer of a draft
type CustomerHandler struct {
	customerService *service.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// SearchCustomers replaces the draft's candidates with companies matching ?search=
// @Summary Search Customers
// @Tags customers
// @Security BearerAuth
// @Produce json
// @Param id path string true "Draft ID"
// @Param search query string false "Company name fragment"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /drafts/{id}/customers [get]
func (h *CustomerHandler) SearchCustomers(c *gin.Context) {
	draftID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid draft ID")
		return
	}

	draft, err := h.customerService.Search(c.Request.Context(), GetSession(c), draftID, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Customers retrieved successfully", draft)
}

// CreateCustomer registers a company and selects it on the draft
// @Summary Create Customer
// @Tags customers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param request body request.CreateCustomerRequest true "Company"
// @Success 201 {object} response.APIResponse
// @Router /drafts/{id}/customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	draftID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid draft ID")
		return
	}

	var req request.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Company name is required")
		return
	}

	draft, err := h.customerService.Create(c.Request.Context(), GetSession(c), draftID, req.CompanyName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Customer created successfully", draft)
}

// SelectCustomer picks one of the draft's candidates
// @Summary Select Customer
// @Tags customers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param request body request.SelectCustomerRequest true "Customer"
// @Success 200 {object} response.APIResponse
// @Router /drafts/{id}/customer [put]
func (h *CustomerHandler) SelectCustomer(c *gin.Context) {
	draftID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid draft ID")
		return
	}

	var req request.SelectCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	draft, err := h.customerService.Select(c.Request.Context(), GetSession(c), draftID, req.CustomerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Customer updated successfully", draft)
}
