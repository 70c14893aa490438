package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	orderapp "github.com/stockflow/backend/internal/application/order"
	"github.com/stockflow/backend/internal/domain/order"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memoryOrderRepository is an in-memory order store for handler tests
type memoryOrderRepository struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*order.Order
	seq    int
}

func newMemoryOrderRepository() *memoryOrderRepository {
	return &memoryOrderRepository{orders: make(map[uuid.UUID]*order.Order)}
}

func (r *memoryOrderRepository) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *memoryOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	o, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (r *memoryOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	return r.FindByIDForTenant(ctx, tenantID, id)
}

func (r *memoryOrderRepository) FindByOrderNumber(_ context.Context, tenantID uuid.UUID, orderNumber string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.TenantID == tenantID && o.OrderNumber == orderNumber {
			clone := *o
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryOrderRepository) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []order.Order
	for _, o := range r.orders {
		if o.TenantID == tenantID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memoryOrderRepository) FindByCounterparty(ctx context.Context, tenantID, counterpartyID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	all, _ := r.FindAllForTenant(ctx, tenantID, filter)
	var out []order.Order
	for _, o := range all {
		if o.CounterpartyID == counterpartyID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memoryOrderRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status order.OrderStatus, filter shared.Filter) ([]order.Order, error) {
	all, _ := r.FindAllForTenant(ctx, tenantID, filter)
	var out []order.Order
	for _, o := range all {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memoryOrderRepository) Save(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *o
	r.orders[o.ID] = &clone
	return nil
}

func (r *memoryOrderRepository) SaveWithLock(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.orders[o.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if current.Version != o.Version {
		return shared.ErrConcurrencyConflict
	}
	o.Version++
	clone := *o
	r.orders[o.ID] = &clone
	return nil
}

func (r *memoryOrderRepository) DeleteForTenant(_ context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.TenantID != tenantID {
		return shared.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *memoryOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	all, _ := r.FindAllForTenant(ctx, tenantID, filter)
	return int64(len(all)), nil
}

func (r *memoryOrderRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status order.OrderStatus) (int64, error) {
	matched, _ := r.FindByStatus(ctx, tenantID, status, shared.Filter{})
	return int64(len(matched)), nil
}

func (r *memoryOrderRepository) ExistsByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (bool, error) {
	_, err := r.FindByOrderNumber(ctx, tenantID, orderNumber)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *memoryOrderRepository) GenerateOrderNumber(_ context.Context, _ uuid.UUID, orderType order.OrderType) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	prefix := "SO"
	if orderType == order.OrderTypePurchase {
		prefix = "PO"
	}
	return fmt.Sprintf("%s-2026-%05d", prefix, r.seq), nil
}

var _ order.Repository = (*memoryOrderRepository)(nil)

// stubNotifier records notifications and optionally fails
type stubNotifier struct {
	err  error
	sent []orderapp.Notification
}

func (n *stubNotifier) Send(_ context.Context, notification orderapp.Notification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

type orderTestEnv struct {
	router   *gin.Engine
	repo     *memoryOrderRepository
	notifier *stubNotifier
	tenantID uuid.UUID
}

func newOrderTestEnv(t *testing.T) *orderTestEnv {
	t.Helper()

	repo := newMemoryOrderRepository()
	notifier := &stubNotifier{}
	service := orderapp.NewService(repo, zap.NewNop())
	h := NewOrderHandler(service, notifier, zap.NewNop())

	router := gin.New()
	router.Use(middleware.TenantResolver(true))
	router.POST("/orders", h.Create)
	router.GET("/orders", h.List)
	router.GET("/orders/summary", h.StatusSummary)
	router.GET("/orders/:id", h.Get)
	router.PUT("/orders/:id", h.Update)
	router.DELETE("/orders/:id", h.Delete)
	router.POST("/orders/:id/submit", h.Submit)
	router.POST("/orders/:id/cancel", h.Cancel)

	return &orderTestEnv{
		router:   router,
		repo:     repo,
		notifier: notifier,
		tenantID: uuid.New(),
	}
}

func (e *orderTestEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", e.tenantID.String())

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func createOrderBody(asDraft bool) map[string]interface{} {
	return map[string]interface{}{
		"type":              "SALES",
		"counterparty_id":   uuid.New().String(),
		"counterparty_name": "Acme Retail",
		"as_draft":          asDraft,
		"items": []map[string]interface{}{
			{
				"product_id":   uuid.New().String(),
				"product_name": "Blue Widget",
				"product_sku":  "WGT-BLUE",
				"quantity":     3,
				"unit_price":   "19.99",
			},
			{
				"product_id":   uuid.New().String(),
				"product_name": "Red Widget",
				"product_sku":  "WGT-RED",
				"quantity":     2,
				"unit_price":   "5.00",
			},
		},
	}
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestOrderHandler_Create(t *testing.T) {
	env := newOrderTestEnv(t)

	w := env.do(t, http.MethodPost, "/orders", createOrderBody(false))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decodeData(t, w)
	assert.Equal(t, "PENDING", data["status"])
	assert.Equal(t, "69.97", data["total_amount"])
	assert.Regexp(t, `^SO-\d{4}-\d{5}$`, data["order_number"])
}

func TestOrderHandler_Create_AsDraft(t *testing.T) {
	env := newOrderTestEnv(t)

	w := env.do(t, http.MethodPost, "/orders", createOrderBody(true))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decodeData(t, w)
	assert.Equal(t, "DRAFT", data["status"])
}

func TestOrderHandler_Create_WithNotification(t *testing.T) {
	env := newOrderTestEnv(t)

	body := createOrderBody(false)
	body["notify"] = true
	body["notify_recipient"] = "buyer@acme.example"
	w := env.do(t, http.MethodPost, "/orders", body)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "warning")
	require.Len(t, env.notifier.sent, 1)
	assert.Equal(t, "buyer@acme.example", env.notifier.sent[0].Recipient)
}

func TestOrderHandler_Create_NotificationFailureIsWarning(t *testing.T) {
	env := newOrderTestEnv(t)
	env.notifier.err = fmt.Errorf("smtp unreachable")

	body := createOrderBody(false)
	body["notify"] = true
	body["notify_recipient"] = "buyer@acme.example"
	w := env.do(t, http.MethodPost, "/orders", body)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var envelope struct {
		Success bool   `json:"success"`
		Warning string `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Contains(t, envelope.Warning, "notification failed")
}

func TestOrderHandler_Create_EmptyItems(t *testing.T) {
	env := newOrderTestEnv(t)

	body := createOrderBody(false)
	body["items"] = []map[string]interface{}{}
	w := env.do(t, http.MethodPost, "/orders", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
}

func TestOrderHandler_Get_NotFound(t *testing.T) {
	env := newOrderTestEnv(t)

	w := env.do(t, http.MethodGet, "/orders/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_NOT_FOUND")
}

func TestOrderHandler_Get_InvalidID(t *testing.T) {
	env := newOrderTestEnv(t)

	w := env.do(t, http.MethodGet, "/orders/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_SubmitAndCancel(t *testing.T) {
	env := newOrderTestEnv(t)

	created := decodeData(t, env.do(t, http.MethodPost, "/orders", createOrderBody(true)))
	orderID := created["id"].(string)

	w := env.do(t, http.MethodPost, "/orders/"+orderID+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "PENDING", decodeData(t, w)["status"])

	w = env.do(t, http.MethodPost, "/orders/"+orderID+"/cancel", map[string]string{"reason": "customer changed their mind"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "CANCELLED", decodeData(t, w)["status"])
}

func TestOrderHandler_Cancel_AlreadyCancelled(t *testing.T) {
	env := newOrderTestEnv(t)

	created := decodeData(t, env.do(t, http.MethodPost, "/orders", createOrderBody(true)))
	orderID := created["id"].(string)

	body := map[string]string{"reason": "duplicate order"}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/orders/"+orderID+"/cancel", body).Code)

	w := env.do(t, http.MethodPost, "/orders/"+orderID+"/cancel", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_CONFLICT")
}

func TestOrderHandler_Delete_PendingRejected(t *testing.T) {
	env := newOrderTestEnv(t)

	created := decodeData(t, env.do(t, http.MethodPost, "/orders", createOrderBody(false)))
	orderID := created["id"].(string)

	w := env.do(t, http.MethodDelete, "/orders/"+orderID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOrderHandler_Delete_Draft(t *testing.T) {
	env := newOrderTestEnv(t)

	created := decodeData(t, env.do(t, http.MethodPost, "/orders", createOrderBody(true)))
	orderID := created["id"].(string)

	w := env.do(t, http.MethodDelete, "/orders/"+orderID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/orders/"+orderID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderHandler_List(t *testing.T) {
	env := newOrderTestEnv(t)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/orders", createOrderBody(false)).Code)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/orders", createOrderBody(true)).Code)

	w := env.do(t, http.MethodGet, "/orders?page=1&page_size=10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var envelope struct {
		Data []map[string]interface{} `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 2)
	assert.Equal(t, int64(2), envelope.Meta.Total)
}

func TestOrderHandler_StatusSummary(t *testing.T) {
	env := newOrderTestEnv(t)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/orders", createOrderBody(false)).Code)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/orders", createOrderBody(true)).Code)

	w := env.do(t, http.MethodGet, "/orders/summary", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeData(t, w)
	assert.Equal(t, float64(1), data["draft"])
	assert.Equal(t, float64(1), data["pending"])
	assert.Equal(t, float64(0), data["fulfilled"])
}

func TestOrderHandler_MissingTenant(t *testing.T) {
	env := newOrderTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
