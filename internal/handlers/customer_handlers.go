package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/payrelay/payrelay-api/internal/client/billing"
)

// CustomerHandler handles customer-related operations
type CustomerHandler struct {
	common *CommonServices
}

// CreateCustomerRequest is the body for creating a customer.
type CreateCustomerRequest struct {
	Email    string            `json:"email" binding:"required,email"`
	Name     string            `json:"name"`
	Phone    string            `json:"phone"`
	Metadata map[string]string `json:"metadata"`
	Address  *billing.Address  `json:"billing_address"`
}

// UpdateCustomerRequest is the body for updating a customer. All fields are
// optional; empty fields are left unchanged by the platform.
type UpdateCustomerRequest struct {
	Email    string            `json:"email" binding:"omitempty,email"`
	Name     string            `json:"name"`
	Phone    string            `json:"phone"`
	Metadata map[string]string `json:"metadata"`
	Address  *billing.Address  `json:"billing_address"`
}

// NewCustomerHandler creates a handler with interface dependencies
func NewCustomerHandler(common *CommonServices) *CustomerHandler {
	return &CustomerHandler{common: common}
}

// CreateCustomer godoc
// @Summary Create customer
// @Description Creates a customer on the payment platform
// @Tags customers
// @Accept json
// @Produce json
// @Param request body CreateCustomerRequest true "Customer details"
// @Success 201 {object} billing.Customer
// @Failure 400 {object} ErrorResponse
// @Router /customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	customer, err := h.common.billing.CreateCustomer(c.Request.Context(), billing.Customer{
		Email:          req.Email,
		Name:           req.Name,
		Phone:          req.Phone,
		Metadata:       req.Metadata,
		BillingAddress: req.Address,
	})
	if err != nil {
		sendError(c, http.StatusBadGateway, "Failed to create customer", err)
		return
	}

	sendSuccess(c, http.StatusCreated, customer)
}

// GetCustomer godoc
// @Summary Get customer by ID
// @Description Retrieves a customer from the payment platform
// @Tags customers
// @Produce json
// @Param customer_id path string true "Customer ID"
// @Success 200 {object} billing.Customer
// @Failure 404 {object} ErrorResponse
// @Router /customers/{customer_id} [get]
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customerID := c.Param("customer_id")
	if customerID == "" {
		sendError(c, http.StatusBadRequest, "Customer ID is required", nil)
		return
	}

	customer, err := h.common.billing.GetCustomer(c.Request.Context(), customerID)
	if err != nil {
		sendError(c, http.StatusNotFound, "Customer not found", err)
		return
	}

	sendSuccess(c, http.StatusOK, customer)
}

// UpdateCustomer godoc
// @Summary Update customer
// @Description Updates a customer on the payment platform
// @Tags customers
// @Accept json
// @Produce json
// @Param customer_id path string true "Customer ID"
// @Param request body UpdateCustomerRequest true "Fields to update"
// @Success 200 {object} billing.Customer
// @Failure 400 {object} ErrorResponse
// @Router /customers/{customer_id} [put]
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	customerID := c.Param("customer_id")

	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	customer, err := h.common.billing.UpdateCustomer(c.Request.Context(), customerID, billing.Customer{
		Email:          req.Email,
		Name:           req.Name,
		Phone:          req.Phone,
		Metadata:       req.Metadata,
		BillingAddress: req.Address,
	})
	if err != nil {
		sendError(c, http.StatusBadGateway, "Failed to update customer", err)
		return
	}

	sendSuccess(c, http.StatusOK, customer)
}

// DeleteCustomer godoc
// @Summary Delete customer
// @Description Deletes a customer on the payment platform
// @Tags customers
// @Produce json
// @Param customer_id path string true "Customer ID"
// @Success 200 {object} SuccessResponse
// @Failure 502 {object} ErrorResponse
// @Router /customers/{customer_id} [delete]
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	customerID := c.Param("customer_id")

	if err := h.common.billing.DeleteCustomer(c.Request.Context(), customerID); err != nil {
		sendError(c, http.StatusBadGateway, "Failed to delete customer", err)
		return
	}

	sendSuccessMessage(c, http.StatusOK, "Customer deleted successfully")
}

// ListCustomers godoc
// @Summary List customers
// @Description Retrieves a page of customers from the payment platform
// @Tags customers
// @Produce json
// @Param limit query int false "Page size (default 10, max 100)"
// @Param starting_after query string false "Cursor: customer ID to start after"
// @Success 200 {object} ListResponse{data=[]billing.Customer}
// @Failure 400 {object} ErrorResponse
// @Router /customers [get]
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	params, err := parseListParams(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	customers, hasMore, err := h.common.billing.ListCustomers(c.Request.Context(), params)
	if err != nil {
		sendError(c, http.StatusBadGateway, "Failed to list customers", err)
		return
	}

	if customers == nil {
		customers = []billing.Customer{}
	}

	sendSuccess(c, http.StatusOK, ListResponse{Data: customers, HasMore: hasMore})
}
