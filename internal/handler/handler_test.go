package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehoangvu/techstore/internal/domain/auth"
	"github.com/lehoangvu/techstore/internal/domain/catalog"
	"github.com/lehoangvu/techstore/internal/domain/discount"
	"github.com/lehoangvu/techstore/internal/domain/order"
)

var testSecret = []byte("test-secret")

// stubService implements OrderService with overridable function fields.
type stubService struct {
	createOrder         func(ctx context.Context, req order.CreateRequest) (*order.Order, error)
	createOrderFromCart func(ctx context.Context, userID uuid.UUID, paymentMethod string) (*order.Order, error)
	getOrder     func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	listAll      func(ctx context.Context) ([]order.Order, error)
	listByUser   func(ctx context.Context, userID uuid.UUID) ([]order.Order, error)
	listCurrent  func(ctx context.Context, userID uuid.UUID) ([]order.Order, error)
	updateStatus func(ctx context.Context, id uuid.UUID, to order.Status, deliveryDate *time.Time) (*order.Order, error)
	cancel       func(ctx context.Context, id, userID uuid.UUID) (*order.Order, error)
}

func (s *stubService) CreateOrder(ctx context.Context, req order.CreateRequest) (*order.Order, error) {
	return s.createOrder(ctx, req)
}

func (s *stubService) CreateOrderFromCart(ctx context.Context, userID uuid.UUID, paymentMethod string) (*order.Order, error) {
	return s.createOrderFromCart(ctx, userID, paymentMethod)
}

func (s *stubService) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return s.getOrder(ctx, id)
}

func (s *stubService) ListAll(ctx context.Context) ([]order.Order, error) {
	return s.listAll(ctx)
}

func (s *stubService) ListByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	return s.listByUser(ctx, userID)
}

func (s *stubService) ListCurrentByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	return s.listCurrent(ctx, userID)
}

func (s *stubService) UpdateStatus(ctx context.Context, id uuid.UUID, to order.Status, deliveryDate *time.Time) (*order.Order, error) {
	return s.updateStatus(ctx, id, to, deliveryDate)
}

func (s *stubService) Cancel(ctx context.Context, id, userID uuid.UUID) (*order.Order, error) {
	return s.cancel(ctx, id, userID)
}

// stubCatalog implements catalog.Repository over a fixed product set.
type stubCatalog struct {
	products []catalog.Product
}

func (s *stubCatalog) List(context.Context) ([]catalog.Product, error) {
	return s.products, nil
}

func (s *stubCatalog) GetByID(_ context.Context, id int64) (*catalog.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (s *stubCatalog) IncrementSold(context.Context, int64, int) error { return nil }

func newTestServer(t *testing.T, svc OrderService, products catalog.Repository) *echo.Echo {
	t.Helper()
	e := echo.New()
	h := NewHandler(svc, products, nil)
	h.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	h.Register(e, testSecret)
	return e
}

func bearer(t *testing.T, userID uuid.UUID, role auth.Role) string {
	t.Helper()
	token, err := auth.SignToken(testSecret, userID, role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(e *echo.Echo, method, path, authz string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sampleOrder(userID uuid.UUID) *order.Order {
	return &order.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        order.StatusPending,
		PaymentMethod: "cod",
		ShippingFee:   decimal.NewFromInt(30_000),
		TotalAmount:   decimal.NewFromInt(1_830_000),
		OrderDate:     time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		Items: []order.Item{{
			ID:            uuid.New(),
			ProductID:     1,
			ColorID:       2,
			Quantity:      2,
			UnitPrice:     decimal.NewFromInt(900_000),
			DiscountLabel: "-10%",
		}},
	}
}

func TestCreateOrder(t *testing.T) {
	userID := uuid.New()
	svc := &stubService{
		createOrder: func(_ context.Context, req order.CreateRequest) (*order.Order, error) {
			assert.Equal(t, userID, req.UserID)
			assert.Equal(t, "cod", req.PaymentMethod)
			require.Len(t, req.Items, 1)
			assert.Equal(t, int64(1), req.Items[0].ProductID)
			return sampleOrder(userID), nil
		},
	}
	e := newTestServer(t, svc, &stubCatalog{})

	rec := doJSON(e, http.MethodPost, "/api/orders", bearer(t, userID, auth.RoleUser), createOrderRequest{
		PaymentMethod: "cod",
		Items:         []orderItemRequest{{ProductID: 1, ColorID: 2, Quantity: 2}},
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	var view orderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, order.StatusPending, view.Status)
	assert.Equal(t, float64(1_830_000), view.TotalAmount)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "-10%", view.Items[0].DiscountLabel)
}

func TestCreateOrderFromCart(t *testing.T) {
	userID := uuid.New()
	svc := &stubService{
		createOrderFromCart: func(_ context.Context, caller uuid.UUID, paymentMethod string) (*order.Order, error) {
			assert.Equal(t, userID, caller)
			assert.Equal(t, "card", paymentMethod)
			return sampleOrder(userID), nil
		},
	}
	e := newTestServer(t, svc, &stubCatalog{})

	rec := doJSON(e, http.MethodPost, "/api/orders/from-cart", bearer(t, userID, auth.RoleUser),
		createOrderFromCartRequest{PaymentMethod: "card"})

	require.Equal(t, http.StatusCreated, rec.Code)
	var view orderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, order.StatusPending, view.Status)
}

func TestCreateOrderFromCartEmpty(t *testing.T) {
	svc := &stubService{
		createOrderFromCart: func(context.Context, uuid.UUID, string) (*order.Order, error) {
			return nil, order.ErrEmptyItems
		},
	}
	e := newTestServer(t, svc, &stubCatalog{})

	rec := doJSON(e, http.MethodPost, "/api/orders/from-cart", bearer(t, uuid.New(), auth.RoleUser),
		createOrderFromCartRequest{PaymentMethod: "cod"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderRequiresAuth(t *testing.T) {
	e := newTestServer(t, &stubService{}, &stubCatalog{})

	rec := doJSON(e, http.MethodPost, "/api/orders", "", createOrderRequest{})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	userID := uuid.New()
	svc := &stubService{
		createOrder: func(context.Context, order.CreateRequest) (*order.Order, error) {
			return nil, &order.InsufficientStockError{ProductName: "Phone X"}
		},
	}
	e := newTestServer(t, svc, &stubCatalog{})

	rec := doJSON(e, http.MethodPost, "/api/orders", bearer(t, userID, auth.RoleUser), createOrderRequest{
		PaymentMethod: "cod",
		Items:         []orderItemRequest{{ProductID: 1, ColorID: 2, Quantity: 99}},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "Phone X")
}

func TestCreateOrderVariantNotFound(t *testing.T) {
	userID := uuid.New()
	svc := &stubService{
		createOrder: func(context.Context, order.CreateRequest) (*order.Order, error) {
			return nil, &catalog.VariantNotFoundError{ColorID: 42, ProductName: "Phone X"}
		},
	}
	e := newTestServer(t, svc, &stubCatalog{})

	rec := doJSON(e, http.MethodPost, "/api/orders", bearer(t, userID, auth.RoleUser), createOrderRequest{
		PaymentMethod: "cod",
		Items:         []orderItemRequest{{ProductID: 1, ColorID: 42, Quantity: 1}},
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "Phone X")
}

func TestCreateOrderEmptyItems(t *testing.T) {
	userID := uuid.New()
	svc := &stubService{
		createOrder: func(context.Context, order.CreateRequest) (*order.Order, error) {
			return nil, order.ErrEmptyItems
		},
	}
	e := newTestServer(t, svc, &stubCatalog{})

	rec := doJSON(e, http.MethodPost, "/api/orders", bearer(t, userID, auth.RoleUser), createOrderRequest{PaymentMethod: "cod"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderOwnership(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	o := sampleOrder(owner)
	svc := &stubService{
		getOrder: func(_ context.Context, id uuid.UUID) (*order.Order, error) {
			require.Equal(t, o.ID, id)
			return o, nil
		},
	}
	e := newTestServer(t, svc, &stubCatalog{})

	rec := doJSON(e, http.MethodGet, "/api/orders/"+o.ID.String(), bearer(t, owner, auth.RoleUser), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/orders/"+o.ID.String(), bearer(t, stranger, auth.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/orders/"+o.ID.String(), bearer(t, stranger, auth.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetOrderNotFound(t *testing.T) {
	svc := &stubService{
		getOrder: func(context.Context, uuid.UUID) (*order.Order, error) {
			return nil, order.ErrNotFound
		},
	}
	e := newTestServer(t, svc, &stubCatalog{})

	rec := doJSON(e, http.MethodGet, "/api/orders/"+uuid.NewString(), bearer(t, uuid.New(), auth.RoleUser), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelOrder(t *testing.T) {
	userID := uuid.New()
	o := sampleOrder(userID)
	o.Status = order.StatusCancelled
	svc := &stubService{
		cancel: func(_ context.Context, id, cancelledBy uuid.UUID) (*order.Order, error) {
			assert.Equal(t, o.ID, id)
			assert.Equal(t, userID, cancelledBy)
			return o, nil
		},
	}
	e := newTestServer(t, svc, &stubCatalog{})

	rec := doJSON(e, http.MethodPost, "/api/orders/"+o.ID.String()+"/cancel", bearer(t, userID, auth.RoleUser), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var view orderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, order.StatusCancelled, view.Status)
}

func TestCancelForeignOrderForbidden(t *testing.T) {
	svc := &stubService{
		cancel: func(context.Context, uuid.UUID, uuid.UUID) (*order.Order, error) {
			return nil, order.ErrForbidden
		},
	}
	e := newTestServer(t, svc, &stubCatalog{})

	rec := doJSON(e, http.MethodPost, "/api/orders/"+uuid.NewString()+"/cancel", bearer(t, uuid.New(), auth.RoleUser), nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminEndpointsRequireAdminRole(t *testing.T) {
	svc := &stubService{
		listAll: func(context.Context) ([]order.Order, error) { return nil, nil },
	}
	e := newTestServer(t, svc, &stubCatalog{})

	rec := doJSON(e, http.MethodGet, "/api/admin/orders", bearer(t, uuid.New(), auth.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/admin/orders", bearer(t, uuid.New(), auth.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	userID := uuid.New()
	o := sampleOrder(userID)
	o.Status = order.StatusConfirmed
	svc := &stubService{
		updateStatus: func(_ context.Context, id uuid.UUID, to order.Status, deliveryDate *time.Time) (*order.Order, error) {
			assert.Equal(t, o.ID, id)
			assert.Equal(t, order.StatusConfirmed, to)
			assert.Nil(t, deliveryDate)
			return o, nil
		},
	}
	e := newTestServer(t, svc, &stubCatalog{})

	rec := doJSON(e, http.MethodPatch, "/api/admin/orders/"+o.ID.String()+"/status",
		bearer(t, uuid.New(), auth.RoleAdmin), updateStatusRequest{Status: "confirmed"})

	require.Equal(t, http.StatusOK, rec.Code)
	var view orderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, order.StatusConfirmed, view.Status)
}

func TestUpdateOrderStatusUnknownStatus(t *testing.T) {
	e := newTestServer(t, &stubService{}, &stubCatalog{})

	rec := doJSON(e, http.MethodPatch, "/api/admin/orders/"+uuid.NewString()+"/status",
		bearer(t, uuid.New(), auth.RoleAdmin), updateStatusRequest{Status: "teleported"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateOrderStatusInvalidTransition(t *testing.T) {
	svc := &stubService{
		updateStatus: func(context.Context, uuid.UUID, order.Status, *time.Time) (*order.Order, error) {
			return nil, &order.InvalidTransitionError{From: order.StatusCompleted, To: order.StatusShipping}
		},
	}
	e := newTestServer(t, svc, &stubCatalog{})

	rec := doJSON(e, http.MethodPatch, "/api/admin/orders/"+uuid.NewString()+"/status",
		bearer(t, uuid.New(), auth.RoleAdmin), updateStatusRequest{Status: "shipping"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "invalid status transition")
}

func TestListProducts(t *testing.T) {
	products := &stubCatalog{products: []catalog.Product{{
		ID:        1,
		Name:      "Phone X",
		BasePrice: decimal.NewFromInt(1_000_000),
		IsActive:  true,
		Colors:    []catalog.ColorVariant{{ID: 2, Name: "Black", Quantity: 10}},
		Discounts: []discount.Discount{{
			ID:         1,
			Percentage: decimal.NewFromInt(10),
			StartDate:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		}},
	}}}
	e := newTestServer(t, &stubService{}, products)

	rec := doJSON(e, http.MethodGet, "/api/products", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var views []productView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, float64(900_000), views[0].Price)
	assert.Equal(t, float64(1_000_000), views[0].BasePrice)
	assert.Equal(t, "-10%", views[0].DiscountLabel)
}

func TestGetProductNotFound(t *testing.T) {
	e := newTestServer(t, &stubService{}, &stubCatalog{})

	rec := doJSON(e, http.MethodGet, "/api/products/404", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProductUsesCache(t *testing.T) {
	products := &stubCatalog{products: []catalog.Product{{
		ID:        1,
		Name:      "Phone X",
		BasePrice: decimal.NewFromInt(1_000_000),
		IsActive:  true,
	}}}
	cache := &memViewCache{views: map[int64][]byte{}}
	e := echo.New()
	h := NewHandler(&stubService{}, products, cache)
	h.Register(e, testSecret)

	rec := doJSON(e, http.MethodGet, "/api/products/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, cache.views, int64(1))

	// Swap the cached payload to prove the second read skips the catalog.
	cache.views[1] = []byte(`{"id":1,"name":"cached"}`)
	rec = doJSON(e, http.MethodGet, "/api/products/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cached"`)
}

type memViewCache struct {
	views map[int64][]byte
}

func (m *memViewCache) GetView(_ context.Context, id int64) ([]byte, bool) {
	payload, ok := m.views[id]
	return payload, ok
}

func (m *memViewCache) SetView(_ context.Context, id int64, payload []byte) error {
	m.views[id] = payload
	return nil
}
