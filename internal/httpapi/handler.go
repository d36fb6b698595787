package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/cart"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/catalog"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/order"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/promo"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/stock"
)

const requestTimeout = 3 * time.Second

// CartManager is the mini-app facing surface of the cart engine.
type CartManager interface {
	GetCart(ctx context.Context, ownerID string) (*cart.Cart, error)
	AddItem(ctx context.Context, ownerID string, in cart.AddItemInput) (*cart.Cart, error)
	UpdateItemQuantity(ctx context.Context, ownerID, productID string, quantity, availableStock int) (*cart.Cart, error)
	RemoveItem(ctx context.Context, ownerID, productID string) (*cart.Cart, error)
	ClearCart(ctx context.Context, ownerID string) error
	ApplyPromoCode(ctx context.Context, ownerID, code string) (*cart.Cart, error)
}

type StockQuery interface {
	GetAvailableStock(ctx context.Context, productID string) (stock.Availability, error)
}

type Catalog interface {
	GetByID(ctx context.Context, productID string) (catalog.Product, error)
	List(ctx context.Context) ([]catalog.Product, error)
}

type CheckoutService interface {
	Checkout(ctx context.Context, userID int64) (*order.Order, error)
}

type OrderReader interface {
	GetByID(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]order.Order, error)
}

type Handler struct {
	carts    CartManager
	stock    StockQuery
	catalog  Catalog
	checkout CheckoutService
	orders   OrderReader
}

func NewHandler(carts CartManager, stockQuery StockQuery, cat Catalog, checkout CheckoutService, orders OrderReader) *Handler {
	return &Handler{carts: carts, stock: stockQuery, catalog: cat, checkout: checkout, orders: orders}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	a, err := h.stock.GetAvailableStock(r.Context(), productID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load availability")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, err := h.carts.GetCart(ctx, chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// AddItem looks up the live price and availability, then hands both to the
// cart manager so the split and discount reflect the numbers the user saw.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	product, err := h.catalog.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load product")
		return
	}

	avail, err := h.stock.GetAvailableStock(ctx, req.ProductID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load availability")
		return
	}

	c, err := h.carts.AddItem(ctx, userID, cart.AddItemInput{
		ProductID:       product.ID,
		ProductName:     product.Name,
		Quantity:        req.Quantity,
		UnitPrice:       product.Price,
		AvailableStock:  avail.Count,
		DiscountPercent: avail.DiscountPercent,
	})
	if err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			writeError(w, http.StatusBadRequest, "quantity must be at least 1")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}

	writeJSON(w, http.StatusOK, c)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	productID := chi.URLParam(r, "productId")

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	avail, err := h.stock.GetAvailableStock(ctx, productID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load availability")
		return
	}

	c, err := h.carts.UpdateItemQuantity(ctx, userID, productID, req.Quantity, avail.Count)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrInvalidQuantity):
			writeError(w, http.StatusBadRequest, "quantity must not be negative")
		case errors.Is(err, cart.ErrItemNotFound):
			writeError(w, http.StatusNotFound, "item not in cart")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update cart")
		}
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, err := h.carts.RemoveItem(ctx, chi.URLParam(r, "userId"), chi.URLParam(r, "productId"))
	if err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "item not in cart")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.carts.ClearCart(ctx, chi.URLParam(r, "userId")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cart cleared"})
}

type applyPromoRequest struct {
	Code string `json:"code"`
}

func (h *Handler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req applyPromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "missing promo code")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, err := h.carts.ApplyPromoCode(ctx, userID, req.Code)
	if err != nil {
		if errors.Is(err, promo.ErrInvalidCode) {
			writeError(w, http.StatusUnprocessableEntity, "invalid or expired promo code")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to apply promo code")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	ord, err := h.checkout.Checkout(ctx, userID)
	if err != nil {
		if errors.Is(err, order.ErrEmptyCart) {
			writeError(w, http.StatusConflict, "cart is empty")
			return
		}
		writeError(w, http.StatusInternalServerError, "checkout failed")
		return
	}
	writeJSON(w, http.StatusOK, ord)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId")
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
