package constants

// Common string constants used throughout the codebase
const (
	// Log levels
	ErrorLevel = "error"

	// Environments
	ProdEnvironment = "prod"

	// Payment providers
	StripeProvider = "stripe"

	// Notification kinds passed to the customer notifier
	NotifySubscriptionStarted  = "subscription_started"
	NotifySubscriptionUpdated  = "subscription_updated"
	NotifySubscriptionCanceled = "subscription_canceled"
	NotifyTrialEnding          = "trial_ending"
	NotifyPaymentSucceeded     = "payment_succeeded"
	NotifyPaymentFailed        = "payment_failed"
	NotifyPaymentMethodAdded   = "payment_method_added"
	NotifyPaymentMethodRemoved = "payment_method_removed"
)
