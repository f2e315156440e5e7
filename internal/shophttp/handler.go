package shophttp

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartapp "github.com/tasoula/intershop-sub000/internal/cart/app"
	catalogapp "github.com/tasoula/intershop-sub000/internal/catalog/app"
	catalogdomain "github.com/tasoula/intershop-sub000/internal/catalog/domain"
	checkoutapp "github.com/tasoula/intershop-sub000/internal/checkout/app"
	"github.com/tasoula/intershop-sub000/internal/checkout/infra/payhttp"
	orderapp "github.com/tasoula/intershop-sub000/internal/order/app"
	orderdomain "github.com/tasoula/intershop-sub000/internal/order/domain"
	"github.com/tasoula/intershop-sub000/pkg/metrics"
)

// Handler maps the shop's JSON API onto the application services.
type Handler struct {
	catalog  *catalogapp.Service
	cart     *cartapp.Service
	orders   *orderapp.Service
	checkout *checkoutapp.Service
	balance  *payhttp.Client

	log *slog.Logger
	m   *metrics.ServerMetrics
}

func NewHandler(
	catalog *catalogapp.Service,
	cart *cartapp.Service,
	orders *orderapp.Service,
	checkout *checkoutapp.Service,
	balance *payhttp.Client,
	log *slog.Logger,
	m *metrics.ServerMetrics,
) *Handler {
	return &Handler{
		catalog:  catalog,
		cart:     cart,
		orders:   orders,
		checkout: checkout,
		balance:  balance,
		log:      log,
		m:        m,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /products", h.createProduct)
	mux.HandleFunc("GET /products", h.listProducts)
	mux.HandleFunc("GET /products/{id}", h.getProduct)
	mux.HandleFunc("PUT /products/{id}", h.updateProduct)

	mux.HandleFunc("GET /cart/{userId}", h.getCart)
	mux.HandleFunc("POST /cart/{userId}/items", h.addCartItem)
	mux.HandleFunc("PUT /cart/{userId}/items/{productId}", h.setCartItem)
	mux.HandleFunc("DELETE /cart/{userId}/items/{productId}", h.removeCartItem)

	mux.HandleFunc("POST /checkout/{userId}", h.postCheckout)

	mux.HandleFunc("GET /orders/{userId}", h.listOrders)
	mux.HandleFunc("GET /orders/{userId}/{orderId}", h.getOrder)

	mux.HandleFunc("GET /balance/{userId}", h.getBalance)
}

type productDTO struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int64           `json:"stock_quantity"`
}

func toProductDTO(p catalogdomain.Product) productDTO {
	return productDTO{
		ID:            p.ID.String(),
		Title:         p.Title,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
	}
}

type orderDTO struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []orderItemDTO  `json:"items,omitempty"`
}

type orderItemDTO struct {
	ProductID          string          `json:"product_id"`
	Quantity           int64           `json:"quantity"`
	PriceAtTimeOfOrder decimal.Decimal `json:"price_at_time_of_order"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		Title         string          `json:"title"`
		Description   string          `json:"description"`
		Price         decimal.Decimal `json:"price"`
		StockQuantity int64           `json:"stock_quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "create_product", start, http.StatusBadRequest, "INVALID_JSON")
		return
	}

	p, err := h.catalog.CreateProduct(r.Context(), req.Title, req.Description, req.Price, req.StockQuantity)
	if errors.Is(err, catalogapp.ErrInvalidInput) {
		h.writeError(w, "create_product", start, http.StatusBadRequest, "INVALID_ARGUMENT")
		return
	}
	if err != nil {
		h.internal(w, "create_product", start, err)
		return
	}
	h.writeJSON(w, "create_product", start, http.StatusCreated, toProductDTO(p))
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	products, next, err := h.catalog.ListProducts(r.Context(), r.URL.Query().Get("query"), limit, r.URL.Query().Get("cursor"))
	if errors.Is(err, catalogapp.ErrInvalidInput) {
		h.writeError(w, "list_products", start, http.StatusBadRequest, "INVALID_ARGUMENT")
		return
	}
	if err != nil {
		h.internal(w, "list_products", start, err)
		return
	}

	out := make([]productDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toProductDTO(p))
	}
	h.writeJSON(w, "list_products", start, http.StatusOK, map[string]any{
		"products":    out,
		"next_cursor": next,
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, "get_product", start, http.StatusBadRequest, "INVALID_ARGUMENT")
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), id)
	if errors.Is(err, catalogapp.ErrNotFound) {
		h.writeError(w, "get_product", start, http.StatusNotFound, "NOT_FOUND")
		return
	}
	if err != nil {
		h.internal(w, "get_product", start, err)
		return
	}
	h.writeJSON(w, "get_product", start, http.StatusOK, toProductDTO(p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, "update_product", start, http.StatusBadRequest, "INVALID_ARGUMENT")
		return
	}

	var req struct {
		Title         string          `json:"title"`
		Description   string          `json:"description"`
		Price         decimal.Decimal `json:"price"`
		StockQuantity int64           `json:"stock_quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "update_product", start, http.StatusBadRequest, "INVALID_JSON")
		return
	}

	p, err := h.catalog.UpdateProduct(r.Context(), catalogdomain.Product{
		ID:            id,
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	})
	switch {
	case errors.Is(err, catalogapp.ErrInvalidInput):
		h.writeError(w, "update_product", start, http.StatusBadRequest, "INVALID_ARGUMENT")
	case errors.Is(err, catalogapp.ErrNotFound):
		h.writeError(w, "update_product", start, http.StatusNotFound, "NOT_FOUND")
	case err != nil:
		h.internal(w, "update_product", start, err)
	default:
		h.writeJSON(w, "update_product", start, http.StatusOK, toProductDTO(p))
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		h.writeError(w, "get_cart", start, http.StatusBadRequest, "INVALID_ARGUMENT")
		return
	}

	items, err := h.cart.ListItems(r.Context(), userID)
	if err != nil {
		h.internal(w, "get_cart", start, err)
		return
	}

	type cartItemDTO struct {
		ProductID string `json:"product_id"`
		Quantity  int64  `json:"quantity"`
	}
	out := make([]cartItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, cartItemDTO{ProductID: it.ProductID.String(), Quantity: it.Quantity})
	}
	h.writeJSON(w, "get_cart", start, http.StatusOK, map[string]any{"items": out})
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		h.writeError(w, "add_cart_item", start, http.StatusBadRequest, "INVALID_ARGUMENT")
		return
	}

	var req struct {
		ProductID uuid.UUID `json:"product_id"`
		Quantity  int64     `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "add_cart_item", start, http.StatusBadRequest, "INVALID_JSON")
		return
	}

	err = h.cart.AddItem(r.Context(), userID, req.ProductID, req.Quantity)
	if errors.Is(err, cartapp.ErrInvalidInput) {
		h.writeError(w, "add_cart_item", start, http.StatusBadRequest, "INVALID_ARGUMENT")
		return
	}
	if err != nil {
		h.internal(w, "add_cart_item", start, err)
		return
	}
	h.noContent(w, "add_cart_item", start)
}

func (h *Handler) setCartItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		h.writeError(w, "set_cart_item", start, http.StatusBadRequest, "INVALID_ARGUMENT")
		return
	}
	productID, err := uuid.Parse(r.PathValue("productId"))
	if err != nil {
		h.writeError(w, "set_cart_item", start, http.StatusBadRequest, "INVALID_ARGUMENT")
		return
	}

	var req struct {
		Quantity int64 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "set_cart_item", start, http.StatusBadRequest, "INVALID_JSON")
		return
	}

	err = h.cart.SetQuantity(r.Context(), userID, productID, req.Quantity)
	if errors.Is(err, cartapp.ErrInvalidInput) {
		h.writeError(w, "set_cart_item", start, http.StatusBadRequest, "INVALID_ARGUMENT")
		return
	}
	if err != nil {
		h.internal(w, "set_cart_item", start, err)
		return
	}
	h.noContent(w, "set_cart_item", start)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		h.writeError(w, "remove_cart_item", start, http.StatusBadRequest, "INVALID_ARGUMENT")
		return
	}
	productID, err := uuid.Parse(r.PathValue("productId"))
	if err != nil {
		h.writeError(w, "remove_cart_item", start, http.StatusBadRequest, "INVALID_ARGUMENT")
		return
	}

	if err := h.cart.RemoveItem(r.Context(), userID, productID); err != nil {
		h.internal(w, "remove_cart_item", start, err)
		return
	}
	h.noContent(w, "remove_cart_item", start)
}

// postCheckout translates the orchestrator's error kinds one-to-one
// onto distinguishable responses; everything unexpected collapses to a
// generic failure.
func (h *Handler) postCheckout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		h.writeError(w, "checkout", start, http.StatusBadRequest, "INVALID_ARGUMENT")
		return
	}

	orderID, err := h.checkout.CreateOrder(r.Context(), userID)
	switch {
	case err == nil:
		h.writeJSON(w, "checkout", start, http.StatusCreated, map[string]any{"order_id": orderID.String()})
	case errors.Is(err, checkoutapp.ErrEmptyCart):
		h.writeError(w, "checkout", start, http.StatusBadRequest, "EMPTY_CART")
	case errors.Is(err, checkoutapp.ErrInsufficientFunds):
		h.writeError(w, "checkout", start, http.StatusPaymentRequired, "INSUFFICIENT_FUNDS")
	case errors.Is(err, checkoutapp.ErrAccountNotFound):
		h.writeError(w, "checkout", start, http.StatusNotFound, "ACCOUNT_NOT_FOUND")
	case errors.Is(err, checkoutapp.ErrPaymentSystem):
		h.log.Error("checkout payment boundary failed", slog.String("user_id", userID.String()), slog.Any("err", err))
		h.writeError(w, "checkout", start, http.StatusBadGateway, "PAYMENT_SYSTEM_ERROR")
	default:
		h.internal(w, "checkout", start, err)
	}
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		h.writeError(w, "list_orders", start, http.StatusBadRequest, "INVALID_ARGUMENT")
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), userID)
	if err != nil {
		h.internal(w, "list_orders", start, err)
		return
	}

	out := make([]orderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderDTO{
			ID:          o.ID.String(),
			UserID:      o.UserID.String(),
			TotalAmount: o.TotalAmount,
			CreatedAt:   o.CreatedAt,
		})
	}
	h.writeJSON(w, "list_orders", start, http.StatusOK, map[string]any{"orders": out})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		h.writeError(w, "get_order", start, http.StatusBadRequest, "INVALID_ARGUMENT")
		return
	}
	orderID, err := uuid.Parse(r.PathValue("orderId"))
	if err != nil {
		h.writeError(w, "get_order", start, http.StatusBadRequest, "INVALID_ARGUMENT")
		return
	}

	order, items, err := h.orders.GetOrder(r.Context(), userID, orderID)
	if errors.Is(err, orderapp.ErrNotFound) {
		h.writeError(w, "get_order", start, http.StatusNotFound, "NOT_FOUND")
		return
	}
	if err != nil {
		h.internal(w, "get_order", start, err)
		return
	}

	h.writeJSON(w, "get_order", start, http.StatusOK, toOrderDTO(order, items))
}

func toOrderDTO(order orderdomain.Order, items []orderdomain.OrderItem) orderDTO {
	dto := orderDTO{
		ID:          order.ID.String(),
		UserID:      order.UserID.String(),
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt,
	}
	for _, it := range items {
		dto.Items = append(dto.Items, orderItemDTO{
			ProductID:          it.ProductID.String(),
			Quantity:           it.Quantity,
			PriceAtTimeOfOrder: it.PriceAtTimeOfOrder,
		})
	}
	return dto
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		h.writeError(w, "get_balance", start, http.StatusBadRequest, "INVALID_ARGUMENT")
		return
	}

	amount, err := h.balance.Balance(r.Context(), userID)
	if err != nil {
		h.log.Error("balance read failed", slog.String("user_id", userID.String()), slog.Any("err", err))
		h.writeError(w, "get_balance", start, http.StatusBadGateway, "PAYMENT_SYSTEM_ERROR")
		return
	}
	// Same unquoted number the balance service itself emits.
	h.writeJSON(w, "get_balance", start, http.StatusOK, map[string]any{"amount": json.Number(amount.String())})
}

func (h *Handler) writeJSON(w http.ResponseWriter, handler string, start time.Time, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
	h.m.Observe(handler, status, start)
}

func (h *Handler) writeError(w http.ResponseWriter, handler string, start time.Time, status int, code string) {
	h.writeJSON(w, handler, start, status, map[string]any{"error": code})
}

func (h *Handler) noContent(w http.ResponseWriter, handler string, start time.Time) {
	w.WriteHeader(http.StatusNoContent)
	h.m.Observe(handler, http.StatusNoContent, start)
}

func (h *Handler) internal(w http.ResponseWriter, handler string, start time.Time, err error) {
	h.log.Error("request failed", slog.String("handler", handler), slog.Any("err", err))
	h.writeError(w, handler, start, http.StatusInternalServerError, "INTERNAL")
}
