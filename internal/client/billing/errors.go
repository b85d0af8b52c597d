package billing

import (
	"errors"
	"fmt"
)

// SignatureError indicates that webhook signature verification failed:
// missing or malformed header, signature mismatch, or stale timestamp.
// The HTTP boundary must translate it into a 400 response; it must never
// be swallowed, since that would let forged events through.
type SignatureError struct {
	Reason string
	Err    error
}

func (e *SignatureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("webhook signature verification failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("webhook signature verification failed: %s", e.Reason)
}

func (e *SignatureError) Unwrap() error {
	return e.Err
}

// ConfigError indicates a required configuration value is missing. The
// webhook route must fail closed when this is returned.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Missing)
}

// IsSignatureError reports whether err is (or wraps) a SignatureError.
func IsSignatureError(err error) bool {
	var sigErr *SignatureError
	return errors.As(err, &sigErr)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}
