package services

import (
	"context"
	"testing"
	"time"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/fenilmodi00/counsel-backend/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountStoreActionsAndSelectors(t *testing.T) {
	store := NewAccountStore()

	account := store.Login(models.Account{ID: "u1", Name: "Asha", Gender: "Female"})
	assert.False(t, account.LoggedIn.IsZero())

	got, ok := store.User("u1")
	require.True(t, ok)
	assert.Equal(t, "Asha", got.Name)

	orders, loaded := store.Orders("u1")
	assert.Empty(t, orders)
	assert.False(t, loaded)

	store.OrderAdded("u1", models.Order{ID: "o1", ProductID: "rank-predictor", Status: models.OrderPending})
	assert.False(t, store.IsUnlocked("u1", "rank-predictor", 499))

	store.ReplaceOrdersFromServer("u1", "tok", []models.Order{{ID: "o1", ProductID: "rank-predictor", Status: models.OrderCompleted}})
	orders, loaded = store.Orders("u1")
	assert.True(t, loaded)
	require.Len(t, orders, 1)
	assert.True(t, store.IsUnlocked("u1", "rank-predictor", 499))

	// selectors hand out copies
	orders[0].Status = models.OrderFailed
	assert.True(t, store.IsUnlocked("u1", "rank-predictor", 499))
}

func TestEnsureOrdersFetchesOnce(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.setOrders(models.Order{ProductID: "rank-predictor", Status: models.OrderCompleted})
	store := NewAccountStore()
	ctx := context.Background()

	_, err := store.EnsureOrders(ctx, "u1", "tok", upstream)
	require.NoError(t, err)
	_, err = store.EnsureOrders(ctx, "u1", "tok", upstream)
	require.NoError(t, err)
	assert.Equal(t, 1, upstream.listCalls)

	_, err = store.Refresh(ctx, "u1", "tok", upstream)
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.listCalls)
}

// tokenHistory returns the paid order only to the token that bought it
type tokenHistory struct {
	paidToken string
	calls     int
}

func (h *tokenHistory) ListOrders(_ context.Context, token string) ([]models.Order, error) {
	h.calls++
	if token == h.paidToken {
		return []models.Order{{ID: "o1", ProductID: "rank-predictor", Status: models.OrderCompleted}}, nil
	}
	return []models.Order{}, nil
}

func TestEntitlementIgnoresHistoryLoadedWithAnotherToken(t *testing.T) {
	history := &tokenHistory{paidToken: "paid-token"}
	service := NewEntitlementService(testCatalog(), NewAccountStore(), history)
	ctx := context.Background()

	unlock, err := service.Check(ctx, "alice", "paid-token", "rank-predictor")
	require.NoError(t, err)
	assert.True(t, unlock.Unlocked)

	unlock, err = service.Check(ctx, "alice", "other-token", "rank-predictor")
	require.NoError(t, err)
	assert.False(t, unlock.Unlocked, "same user id with a different token must not reuse the paid history")

	unlock, err = service.Check(ctx, "alice", "", "rank-predictor")
	require.NoError(t, err)
	assert.False(t, unlock.Unlocked)
	assert.Equal(t, 3, history.calls)
}

func TestEnsureOrdersRefetchesAfterMaxAge(t *testing.T) {
	upstream := newFakeUpstream()
	store := NewAccountStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	orders, err := store.EnsureOrders(ctx, "u1", "tok", upstream)
	require.NoError(t, err)
	assert.Empty(t, orders)

	// bought on another surface
	upstream.setOrders(models.Order{ProductID: "rank-predictor", Status: models.OrderCompleted})

	now = now.Add(DefaultOrderHistoryMaxAge / 2)
	orders, err = store.EnsureOrders(ctx, "u1", "tok", upstream)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, 1, upstream.listCalls)

	now = now.Add(DefaultOrderHistoryMaxAge)
	orders, err = store.EnsureOrders(ctx, "u1", "tok", upstream)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 2, upstream.listCalls)
	assert.True(t, store.IsUnlocked("u1", "rank-predictor", 499))
}

func TestEntitlementService(t *testing.T) {
	upstream := newFakeUpstream()
	service := NewEntitlementService(testCatalog(), NewAccountStore(), upstream)
	ctx := context.Background()

	unlock, err := service.Check(ctx, "u1", "tok", "exam-guide")
	require.NoError(t, err)
	assert.True(t, unlock.Unlocked)
	assert.Zero(t, upstream.listCalls)

	unlock, err = service.Check(ctx, "u1", "tok", "rank-predictor")
	require.NoError(t, err)
	assert.False(t, unlock.Unlocked)
	assert.Equal(t, 499.0, unlock.Product.Price)

	_, err = service.Check(ctx, "u1", "tok", "nope")
	assert.True(t, shared.IsCategory(err, shared.ErrorCategoryNotFound))
}

func TestParseProductCatalog(t *testing.T) {
	products := ParseProductCatalog(" rank-predictor:Rank Predictor:499 ; guide:Guide:0;broken;bad:Bad:-1;x:X:abc")

	require.Len(t, products, 2)
	assert.Equal(t, models.Product{ID: "rank-predictor", Name: "Rank Predictor", Price: 499}, products[0])
	assert.Equal(t, 0.0, products[1].Price)

	catalog := NewStaticCatalog(products)
	catalog.Put(models.Product{ID: "new", Price: 10})
	product, err := catalog.GetProduct(context.Background(), "new")
	require.NoError(t, err)
	assert.Equal(t, 10.0, product.Price)
}

func TestPaymentAuditLoggerHistory(t *testing.T) {
	ctx := context.Background()
	logs := NewMemoryPaymentLogStore()
	audit := NewPaymentAuditLogger(logs)
	attempt := uuid.New()

	audit.Record(ctx, attempt, "u1", "rank-predictor", "", models.StageStarted, true, "")
	audit.Record(ctx, attempt, "u1", "rank-predictor", "order_1", models.StageOrderCreated, true, "")
	audit.Record(ctx, uuid.New(), "u2", "rank-predictor", "", models.StageStarted, true, "")

	history, err := audit.History(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.StageOrderCreated, history[0].Stage, "newest first")

	limited, err := audit.History(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	empty, err := NewPaymentAuditLogger(nil).History(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
