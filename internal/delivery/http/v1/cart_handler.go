package v1

import (
	"net/http"

	"storefront-backend/internal/delivery/http/middleware"
	"storefront-backend/internal/domain"
	"storefront-backend/internal/usecase"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/utils"

	"github.com/shopspring/decimal"
)

type CartHandler struct {
	maxCartQuantity int
}

func NewCartHandler(maxCartQuantity int) *CartHandler {
	return &CartHandler{maxCartQuantity: maxCartQuantity}
}

// --- Cart Handlers ---

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cartFrom(w, r)
	if !ok {
		return
	}
	writeCart(w, http.StatusOK, cart)
}

type addItemReq struct {
	ID       int64           `json:"id" validate:"min=1"`
	Name     string          `json:"name" validate:"required,max=200"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
	Quantity int             `json:"quantity" validate:"gte=0"`
}

// AddItem adds a product line; quantity defaults to one.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cartFrom(w, r)
	if !ok {
		return
	}

	var req addItemReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteRequestError(w, err)
		return
	}

	logger.WithContext(r.Context()).Debug().
		Int64("product_id", req.ID).
		Int("quantity", req.Quantity).
		Msg("Handler: AddItem request")

	product := domain.Product{ID: req.ID, Name: req.Name, Price: req.Price}
	if !cart.AddItemCapped(product, req.Quantity, h.maxCartQuantity) {
		writeQuantityExceeded(w)
		return
	}
	writeCart(w, http.StatusOK, cart)
}

type updateItemReq struct {
	Quantity int `json:"quantity"`
}

// UpdateItem sets the absolute quantity of a line; zero or less removes it.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cartFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateItemReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteRequestError(w, err)
		return
	}
	if h.maxCartQuantity > 0 && req.Quantity > h.maxCartQuantity {
		writeQuantityExceeded(w)
		return
	}

	cart.UpdateQuantity(id, req.Quantity)
	writeCart(w, http.StatusOK, cart)
}

func (h *CartHandler) IncreaseItem(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cartFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !cart.IncreaseCapped(id, h.maxCartQuantity) {
		writeQuantityExceeded(w)
		return
	}
	writeCart(w, http.StatusOK, cart)
}

func (h *CartHandler) DecreaseItem(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cartFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	cart.Decrease(id)
	writeCart(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cartFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	cart.RemoveItem(id)
	writeCart(w, http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cartFrom(w, r)
	if !ok {
		return
	}

	cart.ClearCart()
	writeCart(w, http.StatusOK, cart)
}

func (h *CartHandler) cartFrom(w http.ResponseWriter, r *http.Request) (*usecase.CartStore, bool) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return sess.Cart, true
}

func writeQuantityExceeded(w http.ResponseWriter) {
	utils.WriteError(w, http.StatusBadRequest, "Quantity exceeds maximum limit")
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := utils.ParseID(r.PathValue("id"))
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid item id")
	}
	return id, ok
}

func writeCart(w http.ResponseWriter, status int, cart *usecase.CartStore) {
	utils.WriteJSON(w, status, domain.Response{
		Success: true,
		Data:    cart.State(),
	})
}
