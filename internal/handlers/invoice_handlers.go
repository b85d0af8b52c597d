package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/payrelay/payrelay-api/internal/client/billing"
)

// InvoiceHandler handles invoice-related operations
type InvoiceHandler struct {
	common *CommonServices
}

func NewInvoiceHandler(common *CommonServices) *InvoiceHandler {
	return &InvoiceHandler{common: common}
}

// GetInvoice godoc
// @Summary Get invoice by ID
// @Tags invoices
// @Produce json
// @Param invoice_id path string true "Invoice ID"
// @Success 200 {object} billing.Invoice
// @Failure 404 {object} ErrorResponse
// @Router /invoices/{invoice_id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoiceID := c.Param("invoice_id")

	invoice, err := h.common.billing.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		sendError(c, http.StatusNotFound, "Invoice not found", err)
		return
	}

	sendSuccess(c, http.StatusOK, invoice)
}

// ListInvoices godoc
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Param customer_id query string false "Filter by customer ID"
// @Param status query string false "Filter by status"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} ListResponse{data=[]billing.Invoice}
// @Failure 400 {object} ErrorResponse
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	params, err := parseListParams(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	invoices, hasMore, err := h.common.billing.ListInvoices(c.Request.Context(), params)
	if err != nil {
		sendError(c, http.StatusBadGateway, "Failed to list invoices", err)
		return
	}

	if invoices == nil {
		invoices = []billing.Invoice{}
	}

	sendSuccess(c, http.StatusOK, ListResponse{Data: invoices, HasMore: hasMore})
}

// PayInvoice godoc
// @Summary Attempt payment of an open invoice
// @Tags invoices
// @Produce json
// @Param invoice_id path string true "Invoice ID"
// @Success 200 {object} billing.Invoice
// @Failure 502 {object} ErrorResponse
// @Router /invoices/{invoice_id}/pay [post]
func (h *InvoiceHandler) PayInvoice(c *gin.Context) {
	invoiceID := c.Param("invoice_id")

	invoice, err := h.common.billing.PayInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		sendError(c, http.StatusBadGateway, "Failed to pay invoice", err)
		return
	}

	sendSuccess(c, http.StatusOK, invoice)
}

// VoidInvoice godoc
// @Summary Void an open invoice
// @Tags invoices
// @Produce json
// @Param invoice_id path string true "Invoice ID"
// @Success 200 {object} billing.Invoice
// @Failure 502 {object} ErrorResponse
// @Router /invoices/{invoice_id}/void [post]
func (h *InvoiceHandler) VoidInvoice(c *gin.Context) {
	invoiceID := c.Param("invoice_id")

	invoice, err := h.common.billing.VoidInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		sendError(c, http.StatusBadGateway, "Failed to void invoice", err)
		return
	}

	sendSuccess(c, http.StatusOK, invoice)
}
