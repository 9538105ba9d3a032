package services

import (
	"context"
	"crypto/sha256"
	"sync"
	"time"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/sirupsen/logrus"
)

// OrderHistorySource is the authoritative order history
type OrderHistorySource interface {
	ListOrders(ctx context.Context, token string) ([]models.Order, error)
}

// DefaultOrderHistoryMaxAge bounds how long a loaded history is reused before
// EnsureOrders re-reads it
const DefaultOrderHistoryMaxAge = 2 * time.Minute

type accountState struct {
	account      models.Account
	orders       []models.Order
	ordersLoaded bool
	refreshedAt  time.Time
	// digest of the bearer token the history was fetched with
	loadedWith [sha256.Size]byte
}

func credentialDigest(token string) [sha256.Size]byte {
	return sha256.Sum256([]byte(token))
}

// AccountStore is the process-wide user and order state. Reads go through
// selectors; writes are the Login, OrderAdded and ReplaceOrdersFromServer actions.
//
// The user id comes from an unauthenticated header, so a cached history is
// only served back to a caller presenting the token that fetched it.
type AccountStore struct {
	mutex        sync.RWMutex
	accounts     map[string]*accountState
	ordersMaxAge time.Duration
	now          func() time.Time
	logger       *logrus.Entry
}

// NewAccountStore creates an empty store
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts:     make(map[string]*accountState),
		ordersMaxAge: DefaultOrderHistoryMaxAge,
		now:          time.Now,
		logger:       logrus.WithField("component", "AccountStore"),
	}
}

func (s *AccountStore) stateLocked(userID string) *accountState {
	st, ok := s.accounts[userID]
	if !ok {
		st = &accountState{account: models.Account{ID: userID}, orders: []models.Order{}}
		s.accounts[userID] = st
	}
	return st
}

// Login records the user's profile
func (s *AccountStore) Login(account models.Account) models.Account {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	st := s.stateLocked(account.ID)
	if account.LoggedIn.IsZero() {
		account.LoggedIn = time.Now()
	}
	st.account = account
	s.logger.WithField("user_id", account.ID).Debug("User logged in")
	return account
}

// OrderAdded appends an order to the user's local history
func (s *AccountStore) OrderAdded(userID string, order models.Order) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	st := s.stateLocked(userID)
	st.orders = append(st.orders, order)
}

// ReplaceOrdersFromServer swaps in the authoritative history fetched with token
func (s *AccountStore) ReplaceOrdersFromServer(userID, token string, orders []models.Order) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	st := s.stateLocked(userID)
	st.orders = append([]models.Order{}, orders...)
	st.ordersLoaded = true
	st.refreshedAt = s.now()
	st.loadedWith = credentialDigest(token)
}

// User returns the stored account
func (s *AccountStore) User(userID string) (models.Account, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	st, ok := s.accounts[userID]
	if !ok {
		return models.Account{}, false
	}
	return st.account, true
}

// Orders returns a copy of the user's order history and whether it was loaded from the server
func (s *AccountStore) Orders(userID string) ([]models.Order, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	st, ok := s.accounts[userID]
	if !ok {
		return []models.Order{}, false
	}
	return append([]models.Order{}, st.orders...), st.ordersLoaded
}

// IsUnlocked applies the reconciliation rule to the stored history
func (s *AccountStore) IsUnlocked(userID, productID string, basePrice float64) bool {
	orders, _ := s.Orders(userID)
	return IsUnlocked(productID, orders, basePrice)
}

// Refresh re-reads the order history from source and stores it
func (s *AccountStore) Refresh(ctx context.Context, userID, token string, source OrderHistorySource) ([]models.Order, error) {
	orders, err := source.ListOrders(ctx, token)
	if err != nil {
		return nil, err
	}
	s.ReplaceOrdersFromServer(userID, token, orders)
	return orders, nil
}

// EnsureOrders returns the stored history when it was loaded with the same
// token and is younger than the max age; otherwise it re-reads it from source.
func (s *AccountStore) EnsureOrders(ctx context.Context, userID, token string, source OrderHistorySource) ([]models.Order, error) {
	if orders, ok := s.reusableOrders(userID, token); ok {
		return orders, nil
	}
	return s.Refresh(ctx, userID, token, source)
}

func (s *AccountStore) reusableOrders(userID, token string) ([]models.Order, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	st, ok := s.accounts[userID]
	if !ok || !st.ordersLoaded {
		return nil, false
	}
	if st.loadedWith != credentialDigest(token) {
		s.logger.WithField("user_id", userID).Debug("Order history loaded with another credential, re-fetching")
		return nil, false
	}
	if s.ordersMaxAge > 0 && s.now().Sub(st.refreshedAt) >= s.ordersMaxAge {
		return nil, false
	}
	return append([]models.Order{}, st.orders...), true
}
