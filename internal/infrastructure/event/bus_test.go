package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "order", uuid.New(), uuid.New()),
	}
}

type recordingHandler struct {
	mu     sync.Mutex
	types  []string
	events []shared.DomainEvent
	err    error
	panics bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func (h *recordingHandler) seen() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func TestInMemoryEventBus_PublishRoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	created := &recordingHandler{types: []string{"order.created"}}
	fulfilled := &recordingHandler{types: []string{"order.fulfilled"}}
	all := &recordingHandler{}

	bus.Subscribe(created)
	bus.Subscribe(fulfilled)
	bus.Subscribe(all)

	err := bus.Publish(context.Background(), newTestEvent("order.created"))
	require.NoError(t, err)

	assert.Equal(t, 1, created.seen())
	assert.Equal(t, 0, fulfilled.seen())
	assert.Equal(t, 1, all.seen())
}

func TestInMemoryEventBus_FailingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := &recordingHandler{types: []string{"order.created"}, err: assert.AnError}
	healthy := &recordingHandler{types: []string{"order.created"}}

	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("order.created"))
	require.NoError(t, err)
	assert.Equal(t, 1, healthy.seen())
}

func TestInMemoryEventBus_PanickingHandlerIsRecovered(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	panicking := &recordingHandler{types: []string{"order.created"}, panics: true}
	healthy := &recordingHandler{types: []string{"order.created"}}

	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newTestEvent("order.created"))
	})
	assert.Equal(t, 1, healthy.seen())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := &recordingHandler{types: []string{"order.created"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.created")))
	assert.Equal(t, 0, handler.seen())
}

func TestIdempotentHandler_SkipsDuplicates(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := &recordingHandler{types: []string{"order.fulfilled"}}
	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	event := newTestEvent("order.fulfilled")

	require.NoError(t, handler.Handle(context.Background(), event))
	require.NoError(t, handler.Handle(context.Background(), event))
	assert.Equal(t, 1, inner.seen())

	require.NoError(t, handler.Handle(context.Background(), newTestEvent("order.fulfilled")))
	assert.Equal(t, 2, inner.seen())
}

func TestIdempotentHandler_KeepsKeyOnFailure(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := &recordingHandler{types: []string{"order.fulfilled"}, err: assert.AnError}
	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	event := newTestEvent("order.fulfilled")

	assert.Error(t, handler.Handle(context.Background(), event))

	// The failed key is still claimed, so an immediate retry is suppressed
	processed, err := store.IsProcessed(context.Background(), event.EventID().String())
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Stop(ctx))
}
