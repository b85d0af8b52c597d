package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/payrelay/payrelay-api/internal/client/billing"
	"github.com/payrelay/payrelay-api/internal/logger"
)

// CommonServices holds common dependencies used across handlers
type CommonServices struct {
	billing billing.BillingService
	logger  *zap.Logger
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ListResponse is the envelope for paginated list endpoints.
type ListResponse struct {
	Data    interface{} `json:"data"`
	HasMore bool        `json:"has_more"`
}

// NewCommonServices creates a new instance of CommonServices
func NewCommonServices(billingService billing.BillingService, log *zap.Logger) *CommonServices {
	if log == nil {
		log = logger.Log
	}

	return &CommonServices{
		billing: billingService,
		logger:  log,
	}
}

// GetBilling returns the billing service the handlers relay to
func (s *CommonServices) GetBilling() billing.BillingService {
	return s.billing
}

// sendError logs and writes a standard error response
func sendError(c *gin.Context, statusCode int, message string, err error) {
	correlationID := ""
	if id, exists := c.Get("correlationID"); exists {
		correlationID, _ = id.(string)
	}

	if logger.Log != nil {
		logger.Error(message,
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.String("correlation_id", correlationID),
		)
	}

	response := struct {
		Error         string `json:"error"`
		CorrelationID string `json:"correlation_id,omitempty"`
	}{
		Error:         message,
		CorrelationID: correlationID,
	}

	c.JSON(statusCode, response)
}

// sendSuccess writes a success response with the given payload
func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// sendSuccessMessage writes a success response with a plain message
func sendSuccessMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, SuccessResponse{Message: message})
}

// parseListParams extracts common pagination and filter query parameters.
func parseListParams(c *gin.Context) (billing.ListParams, error) {
	params := billing.ListParams{
		StartingAfter: c.Query("starting_after"),
		EndingBefore:  c.Query("ending_before"),
		CustomerID:    c.Query("customer_id"),
		Status:        c.Query("status"),
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 100 {
			return billing.ListParams{}, errInvalidLimit
		}
		params.Limit = limit
	}

	return params, nil
}

var errInvalidLimit = errors.New("limit must be an integer between 1 and 100")
