package shophttp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartapp "github.com/tasoula/intershop-sub000/internal/cart/app"
	cartdomain "github.com/tasoula/intershop-sub000/internal/cart/domain"
	catalogapp "github.com/tasoula/intershop-sub000/internal/catalog/app"
	catalogdomain "github.com/tasoula/intershop-sub000/internal/catalog/domain"
	checkoutapp "github.com/tasoula/intershop-sub000/internal/checkout/app"
	checkoutadapter "github.com/tasoula/intershop-sub000/internal/checkout/infra/adapter"
	"github.com/tasoula/intershop-sub000/internal/checkout/infra/payhttp"
	orderapp "github.com/tasoula/intershop-sub000/internal/order/app"
	orderdomain "github.com/tasoula/intershop-sub000/internal/order/domain"
	"github.com/tasoula/intershop-sub000/pkg/metrics"
)

var testMetrics = metrics.NewServerMetrics("shop_test")

// memProductRepo backs the catalog service in place of Postgres.
type memProductRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]catalogdomain.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{byID: make(map[uuid.UUID]catalogdomain.Product)}
}

func (r *memProductRepo) Create(_ context.Context, p catalogdomain.Product) (catalogdomain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.byID[p.ID] = p
	return p, nil
}

func (r *memProductRepo) Get(_ context.Context, id uuid.UUID) (catalogdomain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return catalogdomain.Product{}, catalogapp.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) List(context.Context, string, int, string) ([]catalogdomain.Product, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalogdomain.Product
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, "", nil
}

func (r *memProductRepo) Update(_ context.Context, p catalogdomain.Product) (catalogdomain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; !ok {
		return catalogdomain.Product{}, catalogapp.ErrNotFound
	}
	r.byID[p.ID] = p
	return p, nil
}

func (r *memProductRepo) DecrementStock(_ context.Context, id uuid.UUID, qty int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok || p.StockQuantity < qty {
		return false, nil
	}
	p.StockQuantity -= qty
	r.byID[id] = p
	return true, nil
}

func (r *memProductRepo) IncrementStock(_ context.Context, id uuid.UUID, qty int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.byID[id]
	p.StockQuantity += qty
	r.byID[id] = p
	return nil
}

// memCartRepo backs the cart service.
type memCartRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]map[uuid.UUID]int64
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{items: make(map[uuid.UUID]map[uuid.UUID]int64)}
}

func (r *memCartRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]cartdomain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []cartdomain.CartItem
	for pid, qty := range r.items[userID] {
		out = append(out, cartdomain.CartItem{UserID: userID, ProductID: pid, Quantity: qty})
	}
	return out, nil
}

func (r *memCartRepo) AddItem(_ context.Context, item cartdomain.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items[item.UserID] == nil {
		r.items[item.UserID] = make(map[uuid.UUID]int64)
	}
	r.items[item.UserID][item.ProductID] += item.Quantity
	return nil
}

func (r *memCartRepo) SetQuantity(_ context.Context, userID, productID uuid.UUID, quantity int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if quantity <= 0 {
		delete(r.items[userID], productID)
		return nil
	}
	if r.items[userID] == nil {
		r.items[userID] = make(map[uuid.UUID]int64)
	}
	r.items[userID][productID] = quantity
	return nil
}

func (r *memCartRepo) RemoveItem(_ context.Context, userID, productID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items[userID], productID)
	return nil
}

func (r *memCartRepo) DeleteAllByUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, userID)
	return nil
}

// memOrderRepo backs the order service.
type memOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]orderdomain.Order
	items  map[uuid.UUID][]orderdomain.OrderItem
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		orders: make(map[uuid.UUID]orderdomain.Order),
		items:  make(map[uuid.UUID][]orderdomain.OrderItem),
	}
}

func (r *memOrderRepo) CreateHeader(_ context.Context, userID uuid.UUID) (orderdomain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := orderdomain.Order{ID: uuid.New(), UserID: userID, TotalAmount: decimal.Zero, CreatedAt: time.Now()}
	r.orders[o.ID] = o
	return o, nil
}

func (r *memOrderRepo) SetTotal(_ context.Context, order orderdomain.Order) (orderdomain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[order.ID]
	if !ok {
		return orderdomain.Order{}, orderapp.ErrNotFound
	}
	o.TotalAmount = order.TotalAmount
	r.orders[o.ID] = o
	return o, nil
}

func (r *memOrderRepo) SaveItem(_ context.Context, item orderdomain.OrderItem) (orderdomain.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.ID = uuid.New()
	r.items[item.OrderID] = append(r.items[item.OrderID], item)
	return item, nil
}

func (r *memOrderRepo) Delete(_ context.Context, orderID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, orderID)
	delete(r.items, orderID)
	return nil
}

func (r *memOrderRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]orderdomain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []orderdomain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) FindByID(_ context.Context, orderID uuid.UUID) (orderdomain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return orderdomain.Order{}, orderapp.ErrNotFound
	}
	return o, nil
}

func (r *memOrderRepo) FindItemsByOrderID(_ context.Context, orderID uuid.UUID) ([]orderdomain.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[orderID], nil
}

type testShop struct {
	mux     *http.ServeMux
	catalog *catalogapp.Service
	cart    *cartapp.Service
}

// newTestShop wires the whole shop surface over in-memory stores and a
// fake balance service answering with the given payment status.
func newTestShop(t *testing.T, paymentStatus int) *testShop {
	t.Helper()

	balanceSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/balance/") {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"amount": 1000.00}`))
			return
		}
		w.WriteHeader(paymentStatus)
	}))
	t.Cleanup(balanceSrv.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	catalogSvc := catalogapp.NewService(newMemProductRepo())
	cartSvc := cartapp.NewService(newMemCartRepo())
	orderRepo := newMemOrderRepo()
	orderSvc := orderapp.NewService(orderRepo)

	payments := payhttp.NewClient(balanceSrv.URL, time.Second)
	checkoutSvc := checkoutapp.NewService(
		checkoutadapter.NewCartServiceStore(cartSvc),
		checkoutadapter.NewProductServiceStore(catalogSvc),
		checkoutadapter.NewOrderRepoStore(orderRepo),
		payments,
		log,
		4,
	)

	mux := http.NewServeMux()
	NewHandler(catalogSvc, cartSvc, orderSvc, checkoutSvc, payments, log, testMetrics).Register(mux)

	return &testShop{mux: mux, catalog: catalogSvc, cart: cartSvc}
}

func (s *testShop) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func (s *testShop) seed(t *testing.T, userID uuid.UUID, price string, stock, qty int64) catalogdomain.Product {
	t.Helper()
	p, err := s.catalog.CreateProduct(context.Background(), "widget", "", decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	require.NoError(t, s.cart.AddItem(context.Background(), userID, p.ID, qty))
	return p
}

func TestCheckoutEndpoint(t *testing.T) {
	t.Run("empty cart -> 400 EMPTY_CART", func(t *testing.T) {
		s := newTestShop(t, http.StatusOK)
		rec := s.do(t, http.MethodPost, "/checkout/"+uuid.NewString(), "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "EMPTY_CART")
	})

	t.Run("success -> 201 with order id", func(t *testing.T) {
		s := newTestShop(t, http.StatusOK)
		userID := uuid.New()
		s.seed(t, userID, "10.00", 10, 2)

		rec := s.do(t, http.MethodPost, "/checkout/"+userID.String(), "")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var body struct {
			OrderID string `json:"order_id"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		orderID, err := uuid.Parse(body.OrderID)
		require.NoError(t, err)

		// The order is readable through the API afterwards.
		rec = s.do(t, http.MethodGet, "/orders/"+userID.String()+"/"+orderID.String(), "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), body.OrderID)
	})

	t.Run("insufficient funds -> 402", func(t *testing.T) {
		s := newTestShop(t, http.StatusPaymentRequired)
		userID := uuid.New()
		s.seed(t, userID, "10.00", 10, 2)

		rec := s.do(t, http.MethodPost, "/checkout/"+userID.String(), "")
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
		assert.Contains(t, rec.Body.String(), "INSUFFICIENT_FUNDS")
	})

	t.Run("unknown account -> 404", func(t *testing.T) {
		s := newTestShop(t, http.StatusNotFound)
		userID := uuid.New()
		s.seed(t, userID, "10.00", 10, 2)

		rec := s.do(t, http.MethodPost, "/checkout/"+userID.String(), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "ACCOUNT_NOT_FOUND")
	})

	t.Run("payment boundary failure -> 502", func(t *testing.T) {
		s := newTestShop(t, http.StatusInternalServerError)
		userID := uuid.New()
		s.seed(t, userID, "10.00", 10, 2)

		rec := s.do(t, http.MethodPost, "/checkout/"+userID.String(), "")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "PAYMENT_SYSTEM_ERROR")
	})

	t.Run("bad user id -> 400", func(t *testing.T) {
		s := newTestShop(t, http.StatusOK)
		rec := s.do(t, http.MethodPost, "/checkout/oops", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProductEndpoints(t *testing.T) {
	s := newTestShop(t, http.StatusOK)

	rec := s.do(t, http.MethodPost, "/products", `{"title":"keyboard","price":"10.00","stock_quantity":5}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = s.do(t, http.MethodGet, "/products/"+created.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/products/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/products", `{"title":"","price":"10.00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/products/"+created.ID,
		`{"title":"keyboard v2","price":"12.00","stock_quantity":7}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "keyboard v2")

	rec = s.do(t, http.MethodPut, "/products/"+uuid.NewString(),
		`{"title":"ghost","price":"1.00","stock_quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartEndpoints(t *testing.T) {
	s := newTestShop(t, http.StatusOK)
	userID := uuid.New()
	productID := uuid.New()

	rec := s.do(t, http.MethodPost, "/cart/"+userID.String()+"/items",
		`{"product_id":"`+productID.String()+`","quantity":2}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/cart/"+userID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), productID.String())

	rec = s.do(t, http.MethodPut, "/cart/"+userID.String()+"/items/"+productID.String(), `{"quantity":0}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/cart/"+userID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), productID.String())
}

func TestBalanceProxyEndpoint(t *testing.T) {
	s := newTestShop(t, http.StatusOK)

	rec := s.do(t, http.MethodGet, "/balance/"+uuid.NewString(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	// The proxy must emit the amount as a bare JSON number, exactly as
	// the balance service does.
	var body struct {
		Amount json.RawMessage `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Amount)
	assert.NotEqual(t, byte('"'), body.Amount[0], "amount must not be a JSON string")

	amount, err := decimal.NewFromString(string(body.Amount))
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("1000.00")))
}
