package server

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/payrelay/payrelay-api/internal/client/billing"
	stripeclient "github.com/payrelay/payrelay-api/internal/client/billing/stripe"
	"github.com/payrelay/payrelay-api/internal/handlers"
	"github.com/payrelay/payrelay-api/internal/helpers"
	"github.com/payrelay/payrelay-api/internal/logger"
	"github.com/payrelay/payrelay-api/internal/middleware"
	"github.com/payrelay/payrelay-api/internal/services"
)

// Handler Definitions
var (
	customerHandler      *handlers.CustomerHandler
	paymentMethodHandler *handlers.PaymentMethodHandler
	subscriptionHandler  *handlers.SubscriptionHandler
	invoiceHandler       *handlers.InvoiceHandler
	webhookHandler       *handlers.WebhookHandler
	healthHandler        *handlers.HealthHandler

	// Services
	commonServices  *handlers.CommonServices
	billingService  billing.BillingService
	eventDispatcher *services.EventDispatcher
)

const (
	dispatcherWorkers = 3
	dispatcherBuffer  = 100
)

func InitializeHandlers() {
	// Load environment variables from .env file for local development
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err) // Use basic log before logger init
	}

	// --- Determine and Validate Stage ---
	stage := os.Getenv("STAGE")
	if stage == "" {
		stage = helpers.StageLocal
		log.Printf("Warning: STAGE environment variable not set, defaulting to '%s'", stage)
	}
	if !helpers.IsValidStage(stage) {
		log.Fatalf("Invalid STAGE environment variable: '%s'. Must be one of: %s, %s, %s",
			stage, helpers.StageProd, helpers.StageDev, helpers.StageLocal)
	}

	// --- Initialize Logger (AFTER stage validation) ---
	logger.InitLogger(stage)
	logger.Info("Initializing handlers for stage", zap.String("stage", stage))

	// --- Billing Platform Client ---
	apiKey := os.Getenv("BILLING_API_KEY")
	if apiKey == "" {
		logger.Fatal("BILLING_API_KEY is required")
	}

	webhookSecret := os.Getenv("WEBHOOK_SIGNING_SECRET")
	if webhookSecret == "" {
		logger.Warn("WEBHOOK_SIGNING_SECRET not set, webhook endpoint will reject all deliveries")
	}

	tolerance := stripeclient.DefaultWebhookTolerance
	if toleranceEnv := os.Getenv("WEBHOOK_TOLERANCE_SECONDS"); toleranceEnv != "" {
		seconds, err := strconv.Atoi(toleranceEnv)
		if err != nil || seconds <= 0 {
			logger.Fatal("Invalid WEBHOOK_TOLERANCE_SECONDS", zap.String("value", toleranceEnv))
		}
		tolerance = time.Duration(seconds) * time.Second
	}

	stripeService := stripeclient.NewStripeService(logger.Log)
	if err := stripeService.Configure(stripeclient.Config{
		APIKey:           apiKey,
		WebhookSecret:    webhookSecret,
		WebhookTolerance: tolerance,
	}); err != nil {
		logger.Fatal("Failed to configure billing client", zap.Error(err))
	}
	billingService = stripeService

	// --- Customer Notifications ---
	resendAPIKey := os.Getenv("RESEND_API_KEY")
	fromAddress := os.Getenv("EMAIL_FROM_ADDRESS")
	if fromAddress == "" {
		fromAddress = "billing@payrelay.io"
	}
	fromName := os.Getenv("EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "PayRelay"
	}
	emailService := services.NewEmailService(resendAPIKey, fromAddress, fromName, logger.Log)

	// --- Event Processing Pipeline ---
	stateStore := services.NewLogStateStore(logger.Log)
	eventRouter := services.NewEventRouter(emailService, stateStore, stateStore, logger.Log)
	eventDispatcher = services.NewEventDispatcher(eventRouter, dispatcherWorkers, dispatcherBuffer, logger.Log)

	// --- Handlers ---
	commonServices = handlers.NewCommonServices(billingService, logger.Log)
	customerHandler = handlers.NewCustomerHandler(commonServices)
	paymentMethodHandler = handlers.NewPaymentMethodHandler(commonServices)
	subscriptionHandler = handlers.NewSubscriptionHandler(commonServices)
	invoiceHandler = handlers.NewInvoiceHandler(commonServices)
	webhookHandler = handlers.NewWebhookHandler(commonServices, eventDispatcher)
	healthHandler = handlers.NewHealthHandler(commonServices)
}

func InitializeRoutes(router *gin.Engine) {
	// Configure and apply CORS middleware
	router.Use(configureCORS())

	// Add correlation ID middleware for request tracing
	router.Use(middleware.CorrelationIDMiddleware())

	// Add enhanced logging in development mode
	isDevelopment := os.Getenv("GIN_MODE") != "release"
	router.Use(middleware.EnhancedLoggingMiddleware(isDevelopment))

	// Add basic request logging for production
	if !isDevelopment {
		router.Use(middleware.RequestLoggingMiddleware())
	}

	router.GET("/health", healthHandler.CheckHealth)
	router.GET("/ready", healthHandler.CheckReadiness)

	// Start the webhook event pipeline before any delivery can arrive
	eventDispatcher.Start()

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Webhook receiver. Signature verification needs the raw body, so
		// this route must never gain body-parsing middleware.
		v1.POST("/webhook", webhookHandler.HandleWebhook)

		customers := v1.Group("/customers")
		{
			customers.POST("", customerHandler.CreateCustomer)
			customers.GET("", customerHandler.ListCustomers)
			customers.GET("/:customer_id", customerHandler.GetCustomer)
			customers.PUT("/:customer_id", customerHandler.UpdateCustomer)
			customers.DELETE("/:customer_id", customerHandler.DeleteCustomer)
		}

		paymentMethods := v1.Group("/payment_methods")
		{
			paymentMethods.GET("", paymentMethodHandler.ListPaymentMethods)
			paymentMethods.GET("/:payment_method_id", paymentMethodHandler.GetPaymentMethod)
			paymentMethods.POST("/:payment_method_id/attach", paymentMethodHandler.AttachPaymentMethod)
			paymentMethods.POST("/:payment_method_id/detach", paymentMethodHandler.DetachPaymentMethod)
		}

		subscriptions := v1.Group("/subscriptions")
		{
			subscriptions.POST("", subscriptionHandler.CreateSubscription)
			subscriptions.GET("", subscriptionHandler.ListSubscriptions)
			subscriptions.GET("/:subscription_id", subscriptionHandler.GetSubscription)
			subscriptions.PUT("/:subscription_id", subscriptionHandler.UpdateSubscription)
			subscriptions.DELETE("/:subscription_id", subscriptionHandler.CancelSubscription)
		}

		invoices := v1.Group("/invoices")
		{
			invoices.GET("", invoiceHandler.ListInvoices)
			invoices.GET("/:invoice_id", invoiceHandler.GetInvoice)
			invoices.POST("/:invoice_id/pay", invoiceHandler.PayInvoice)
			invoices.POST("/:invoice_id/void", invoiceHandler.VoidInvoice)
		}
	}
}

// Shutdown drains the webhook event pipeline. Safe to call once after the
// HTTP listener has stopped accepting requests.
func Shutdown() {
	if eventDispatcher != nil {
		eventDispatcher.Stop()
	}
	logger.Info("Server is shutting down...")
}

// configureCORS returns a configured CORS middleware
func configureCORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		origins := strings.Split(originsEnv, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		corsConfig.AllowOrigins = origins
	}

	methodsEnv := os.Getenv("CORS_ALLOWED_METHODS")
	if methodsEnv == "" {
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	} else {
		methods := strings.Split(methodsEnv, ",")
		for i, method := range methods {
			methods[i] = strings.TrimSpace(method)
		}
		corsConfig.AllowMethods = methods
	}

	headersEnv := os.Getenv("CORS_ALLOWED_HEADERS")
	if headersEnv == "" {
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Stripe-Signature", "X-Correlation-ID"}
	} else {
		headers := strings.Split(headersEnv, ",")
		for i, header := range headers {
			headers[i] = strings.TrimSpace(header)
		}
		corsConfig.AllowHeaders = headers
	}

	corsConfig.ExposeHeaders = []string{"X-Correlation-ID"}
	corsConfig.AllowCredentials = os.Getenv("CORS_ALLOW_CREDENTIALS") == "true"

	return cors.New(corsConfig)
}
