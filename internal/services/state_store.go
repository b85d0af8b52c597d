package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// LogStateStore is a log-only implementation of the subscription and invoice
// state store collaborators. The relay keeps no local persistence; this
// records what a durable store would receive so operators can audit the
// stream, and a real store can be swapped in behind the same interfaces.
type LogStateStore struct {
	logger *zap.Logger
}

func NewLogStateStore(logger *zap.Logger) *LogStateStore {
	return &LogStateStore{logger: logger}
}

// PersistSubscriptionState logs the latest observed subscription state.
func (s *LogStateStore) PersistSubscriptionState(ctx context.Context, payload json.RawMessage) error {
	s.logger.Info("Subscription state observed",
		zap.String("object_id", objectID(payload)),
		zap.Int("payload_size", len(payload)))
	return nil
}

// PersistInvoiceState logs the latest observed invoice state.
func (s *LogStateStore) PersistInvoiceState(ctx context.Context, payload json.RawMessage) error {
	s.logger.Info("Invoice state observed",
		zap.String("object_id", objectID(payload)),
		zap.Int("payload_size", len(payload)))
	return nil
}

func objectID(payload json.RawMessage) string {
	var object struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &object); err != nil {
		return ""
	}
	return object.ID
}
