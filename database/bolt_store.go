package database

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/fenilmodi00/counsel-backend/shared"
)

const paymentLogBucket = "payment_attempt_logs"

// BoltPaymentLogStore keeps the payment attempt log in a local BoltDB file.
// It is used when no Postgres URL is configured. Entries live in one nested
// bucket per user, keyed by timestamp then entry id, so a reverse cursor walk
// yields the newest first.
type BoltPaymentLogStore struct {
	db *bolt.DB
}

// OpenBoltPaymentLogStore opens (or creates) the log file at path
func OpenBoltPaymentLogStore(path string) (*BoltPaymentLogStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, "BOLT_OPEN_FAILED", repoServiceName, "open_payment_log", false)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(paymentLogBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, "BOLT_OPEN_FAILED", repoServiceName, "open_payment_log", false)
	}

	return &BoltPaymentLogStore{db: db}, nil
}

// Close releases the file lock
func (s *BoltPaymentLogStore) Close() error {
	return s.db.Close()
}

func paymentLogKey(entry *models.PaymentAttemptLog) []byte {
	key := make([]byte, 8, 8+len(entry.ID))
	binary.BigEndian.PutUint64(key, uint64(entry.Timestamp.UnixNano()))
	return append(key, entry.ID[:]...)
}

// Append stores one entry. Re-appending the same entry is a no-op.
func (s *BoltPaymentLogStore) Append(_ context.Context, entry *models.PaymentAttemptLog) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		user, err := tx.Bucket([]byte(paymentLogBucket)).CreateBucketIfNotExists([]byte(entry.UserID))
		if err != nil {
			return err
		}

		key := paymentLogKey(entry)
		if user.Get(key) != nil {
			return nil
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return user.Put(key, data)
	})
}

// ListByUser returns up to limit entries for userID, newest first
func (s *BoltPaymentLogStore) ListByUser(_ context.Context, userID string, limit int) ([]models.PaymentAttemptLog, error) {
	if limit <= 0 {
		limit = 50
	}

	entries := []models.PaymentAttemptLog{}
	err := s.db.View(func(tx *bolt.Tx) error {
		user := tx.Bucket([]byte(paymentLogBucket)).Bucket([]byte(userID))
		if user == nil {
			return nil
		}

		c := user.Cursor()
		for k, v := c.Last(); k != nil && len(entries) < limit; k, v = c.Prev() {
			var e models.PaymentAttemptLog
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
