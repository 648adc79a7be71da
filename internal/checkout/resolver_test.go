package checkout

import (
	"context"
	"net/url"
	"testing"
	"time"

	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/session"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedOrder struct {
	order *models.Order
	items []models.OrderItem
}

type fakeRecorder struct {
	orders []recordedOrder
	err    error
}

func (f *fakeRecorder) RecordOrder(_ context.Context, order *models.Order, items []models.OrderItem) error {
	if f.err != nil {
		return f.err
	}
	f.orders = append(f.orders, recordedOrder{order: order, items: items})
	return nil
}

type fakePublisher struct {
	initiated []*models.CheckoutInitiatedEvent
	completed []*models.OrderCompletedEvent
	failed    []*models.OrderFailedEvent
}

func (f *fakePublisher) PublishCheckoutInitiated(_ context.Context, event *models.CheckoutInitiatedEvent) error {
	f.initiated = append(f.initiated, event)
	return nil
}

func (f *fakePublisher) PublishOrderCompleted(_ context.Context, event *models.OrderCompletedEvent) error {
	f.completed = append(f.completed, event)
	return nil
}

func (f *fakePublisher) PublishOrderFailed(_ context.Context, event *models.OrderFailedEvent) error {
	f.failed = append(f.failed, event)
	return nil
}

var resolverNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newResolverFixture() (*Resolver, *session.MemoryStore, *fakeRecorder, *fakePublisher) {
	mem := session.NewMemoryStore()
	recorder := &fakeRecorder{}
	publisher := &fakePublisher{}

	resolver := NewResolver(mem, cart.NewStore(mem, nil), recorder, publisher)
	resolver.now = func() time.Time { return resolverNow }
	return resolver, mem, recorder, publisher
}

func seedResolverCart(t *testing.T, mem *session.MemoryStore, sessionID string) models.OrderTotals {
	t.Helper()
	items := []models.CartItem{
		{ProductID: 1, Name: "Wireless Headphones", UnitPrice: decimal.NewFromInt(2500), Quantity: 2},
	}
	require.NoError(t, mem.SaveCart(context.Background(), sessionID, items))
	return cart.Totals(items)
}

func TestResolveNoSignalNoSessionIsAbandoned(t *testing.T) {
	resolver, mem, recorder, _ := newResolverFixture()
	ctx := context.Background()
	seedResolverCart(t, mem, "sess-1")

	outcome, err := resolver.Resolve(ctx, "sess-1", url.Values{})
	require.NoError(t, err)

	assert.Equal(t, OutcomeAbandoned, outcome.Kind)
	assert.Empty(t, outcome.OrderID)
	assert.Empty(t, recorder.orders)

	// A bare navigation must not disturb the cart.
	items, err := mem.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestResolveNoSignalWithPendingIsAwaiting(t *testing.T) {
	resolver, mem, recorder, _ := newResolverFixture()
	ctx := context.Background()

	require.NoError(t, mem.SavePendingOrder(ctx, "sess-1", &models.PendingOrder{
		OrderID:   "ORD111111",
		CreatedAt: resolverNow.Add(-time.Minute),
	}))

	outcome, err := resolver.Resolve(ctx, "sess-1", url.Values{})
	require.NoError(t, err)

	assert.Equal(t, OutcomeAwaiting, outcome.Kind)
	assert.Equal(t, "ORD111111", outcome.OrderID)
	assert.Empty(t, recorder.orders)
}

func TestResolveNoSignalCompletedPendingIsSuccess(t *testing.T) {
	resolver, mem, recorder, _ := newResolverFixture()
	ctx := context.Background()

	completedAt := resolverNow.Add(-time.Hour)
	require.NoError(t, mem.SavePendingOrder(ctx, "sess-1", &models.PendingOrder{
		OrderID:   "ORD111111",
		CreatedAt: completedAt,
		Completed: true,
	}))

	outcome, err := resolver.Resolve(ctx, "sess-1", url.Values{})
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, outcome.Kind)
	assert.Equal(t, "ORD111111", outcome.OrderID)
	assert.True(t, outcome.CompletedAt.Equal(completedAt))
	// Already finalized: no second recording.
	assert.Empty(t, recorder.orders)
}

func TestResolveSuccessSignalWithURLOrderID(t *testing.T) {
	resolver, mem, recorder, publisher := newResolverFixture()
	ctx := context.Background()
	totals := seedResolverCart(t, mem, "sess-1")
	require.NoError(t, mem.SaveProfile(ctx, "sess-1", &models.CustomerProfile{
		Name:  "A Buyer",
		Email: "buyer@example.com",
	}))

	query := url.Values{"status": {"success"}, "orderId": {"ORD222222"}}
	outcome, err := resolver.Resolve(ctx, "sess-1", query)
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, outcome.Kind)
	assert.Equal(t, "ORD222222", outcome.OrderID)
	assert.True(t, outcome.CompletedAt.Equal(resolverNow))

	require.Len(t, recorder.orders, 1)
	recorded := recorder.orders[0]
	assert.Equal(t, "ORD222222", recorded.order.OrderRef)
	assert.Equal(t, models.OrderStatusCompleted, recorded.order.Status)
	assert.Equal(t, "A Buyer", recorded.order.CustomerName)
	assert.True(t, recorded.order.GrandTotal.Equal(totals.GrandTotal))
	require.Len(t, recorded.items, 1)
	assert.Equal(t, int64(1), recorded.items[0].ProductID)
	assert.Equal(t, 2, recorded.items[0].Quantity)

	require.Len(t, publisher.completed, 1)
	assert.Equal(t, "ORD222222", publisher.completed[0].OrderID)

	// The cart dies with the completed order.
	items, err := mem.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, items)

	// The session now remembers the completed order.
	pending, err := mem.GetPendingOrder(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.True(t, pending.Completed)
	assert.Equal(t, "ORD222222", pending.OrderID)

	// The checkout lock is released, so a fresh checkout is possible.
	acquired, err := mem.AcquireCheckoutLock(ctx, "sess-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestResolveSuccessURLOrderIDWinsOverSession(t *testing.T) {
	resolver, mem, recorder, _ := newResolverFixture()
	ctx := context.Background()
	seedResolverCart(t, mem, "sess-1")

	require.NoError(t, mem.SavePendingOrder(ctx, "sess-1", &models.PendingOrder{
		OrderID:   "ORD111111",
		CreatedAt: resolverNow.Add(-time.Minute),
	}))

	query := url.Values{"status": {"success"}, "orderId": {"ORD333333"}}
	outcome, err := resolver.Resolve(ctx, "sess-1", query)
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, outcome.Kind)
	assert.Equal(t, "ORD333333", outcome.OrderID)
	require.Len(t, recorder.orders, 1)
	assert.Equal(t, "ORD333333", recorder.orders[0].order.OrderRef)
}

func TestResolveSuccessFallsBackToSessionOrderID(t *testing.T) {
	resolver, mem, recorder, _ := newResolverFixture()
	ctx := context.Background()
	seedResolverCart(t, mem, "sess-1")

	require.NoError(t, mem.SavePendingOrder(ctx, "sess-1", &models.PendingOrder{
		OrderID:   "ORD111111",
		CreatedAt: resolverNow.Add(-time.Minute),
	}))

	outcome, err := resolver.Resolve(ctx, "sess-1", url.Values{"status": {"success"}})
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, outcome.Kind)
	assert.Equal(t, "ORD111111", outcome.OrderID)
	require.Len(t, recorder.orders, 1)
}

func TestResolveSuccessWithNoOrderIDAnywhereIsAbandoned(t *testing.T) {
	resolver, mem, recorder, _ := newResolverFixture()
	ctx := context.Background()
	seedResolverCart(t, mem, "sess-1")

	outcome, err := resolver.Resolve(ctx, "sess-1", url.Values{"status": {"success"}})
	require.NoError(t, err)

	assert.Equal(t, OutcomeAbandoned, outcome.Kind)
	assert.Empty(t, recorder.orders)
}

func TestResolveSuccessReloadIsIdempotent(t *testing.T) {
	resolver, _, recorder, publisher := newResolverFixture()
	ctx := context.Background()

	query := url.Values{"status": {"success"}, "orderId": {"ORD444444"}}

	first, err := resolver.Resolve(ctx, "sess-1", query)
	require.NoError(t, err)
	second, err := resolver.Resolve(ctx, "sess-1", query)
	require.NoError(t, err)

	assert.Equal(t, first.Kind, second.Kind)
	assert.Equal(t, first.OrderID, second.OrderID)
	// The reload reports the same outcome without repeating side effects.
	assert.Len(t, recorder.orders, 1)
	assert.Len(t, publisher.completed, 1)
}

func TestResolveFailedPreservesCart(t *testing.T) {
	resolver, mem, recorder, publisher := newResolverFixture()
	ctx := context.Background()
	seedResolverCart(t, mem, "sess-1")

	require.NoError(t, mem.SavePendingOrder(ctx, "sess-1", &models.PendingOrder{
		OrderID:   "ORD555555",
		CreatedAt: resolverNow.Add(-time.Minute),
	}))
	acquired, err := mem.AcquireCheckoutLock(ctx, "sess-1", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	outcome, err := resolver.Resolve(ctx, "sess-1", url.Values{"status": {"failed"}})
	require.NoError(t, err)

	assert.Equal(t, OutcomeFailed, outcome.Kind)
	assert.Equal(t, "ORD555555", outcome.OrderID)
	assert.Empty(t, recorder.orders)

	require.Len(t, publisher.failed, 1)
	assert.Equal(t, "ORD555555", publisher.failed[0].OrderID)

	// The buyer can retry with the same cart.
	items, err := mem.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	// The failed attempt no longer holds the checkout lock.
	acquired, err = mem.AcquireCheckoutLock(ctx, "sess-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestResolveSignalWinsOverSessionState(t *testing.T) {
	resolver, mem, _, _ := newResolverFixture()
	ctx := context.Background()

	// The session says in-flight, but the gateway says declined.
	require.NoError(t, mem.SavePendingOrder(ctx, "sess-1", &models.PendingOrder{
		OrderID:   "ORD666666",
		CreatedAt: resolverNow.Add(-time.Minute),
	}))

	outcome, err := resolver.Resolve(ctx, "sess-1", url.Values{"status": {"failed"}})
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, outcome.Kind)
}

func TestResolveSignalParsingIsCaseInsensitive(t *testing.T) {
	resolver, mem, _, _ := newResolverFixture()
	ctx := context.Background()
	seedResolverCart(t, mem, "sess-1")

	outcome, err := resolver.Resolve(ctx, "sess-1", url.Values{
		"status":  {"SUCCESS"},
		"orderId": {"ORD777777"},
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome.Kind)
	assert.Equal(t, "ORD777777", outcome.OrderID)
}
