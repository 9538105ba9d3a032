package services

import (
	"context"
	"sync"
	"time"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PaymentLogStore persists payment attempt records. It is append-only.
type PaymentLogStore interface {
	Append(ctx context.Context, entry *models.PaymentAttemptLog) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.PaymentAttemptLog, error)
}

// PaymentAuditLogger records every checkout stage. Entries always go to the
// structured log; they are also appended to the store when one is configured.
type PaymentAuditLogger struct {
	serviceName string
	store       PaymentLogStore
	now         func() time.Time
}

// NewPaymentAuditLogger creates an audit logger; store may be nil
func NewPaymentAuditLogger(store PaymentLogStore) *PaymentAuditLogger {
	return &PaymentAuditLogger{
		serviceName: "payment-service",
		store:       store,
		now:         time.Now,
	}
}

// Record logs one stage of an attempt. Store failures are logged, never returned,
// so auditing cannot break a checkout.
func (a *PaymentAuditLogger) Record(ctx context.Context, attemptID uuid.UUID, userID, productID, orderID string, stage models.PaymentStage, success bool, message string) models.PaymentAttemptLog {
	entry := models.PaymentAttemptLog{
		ID:        uuid.New(),
		AttemptID: attemptID,
		UserID:    userID,
		ProductID: productID,
		OrderID:   orderID,
		Stage:     stage,
		Success:   success,
		Message:   message,
		Timestamp: a.now(),
	}

	logFields := logrus.Fields{
		"audit_timestamp": entry.Timestamp,
		"service_name":    a.serviceName,
		"attempt_id":      entry.AttemptID,
		"user_id":         entry.UserID,
		"product_id":      entry.ProductID,
		"stage":           entry.Stage,
		"success":         entry.Success,
	}
	if entry.OrderID != "" {
		logFields["order_id"] = entry.OrderID
	}
	if entry.Message != "" {
		logFields["message"] = entry.Message
	}

	if success {
		logrus.WithFields(logFields).Info("Payment audit entry")
	} else {
		logrus.WithFields(logFields).Warn("Payment audit entry")
	}

	if a.store != nil {
		if err := a.store.Append(ctx, &entry); err != nil {
			logrus.WithFields(logrus.Fields{
				"component":  "PaymentAuditLogger",
				"attempt_id": entry.AttemptID,
				"error":      err,
			}).Error("Failed to persist payment audit entry")
		}
	}
	return entry
}

// History returns the most recent entries for a user, newest first
func (a *PaymentAuditLogger) History(ctx context.Context, userID string, limit int) ([]models.PaymentAttemptLog, error) {
	if a.store == nil {
		return []models.PaymentAttemptLog{}, nil
	}
	return a.store.ListByUser(ctx, userID, limit)
}

// MemoryPaymentLogStore keeps audit entries in process memory
type MemoryPaymentLogStore struct {
	mutex   sync.RWMutex
	entries []models.PaymentAttemptLog
}

// NewMemoryPaymentLogStore creates an empty in-memory store
func NewMemoryPaymentLogStore() *MemoryPaymentLogStore {
	return &MemoryPaymentLogStore{}
}

// Append implements PaymentLogStore
func (s *MemoryPaymentLogStore) Append(_ context.Context, entry *models.PaymentAttemptLog) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

// ListByUser implements PaymentLogStore
func (s *MemoryPaymentLogStore) ListByUser(_ context.Context, userID string, limit int) ([]models.PaymentAttemptLog, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := []models.PaymentAttemptLog{}
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].UserID != userID {
			continue
		}
		out = append(out, s.entries[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
