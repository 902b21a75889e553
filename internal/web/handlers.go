// Package web exposes the storefront over HTTP: the cart views as
// rendered fragments, the cart and checkout operations as form/JSON
// endpoints.
package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/velvetvogue/storefront/internal/auth"
	"github.com/velvetvogue/storefront/internal/cart"
	"github.com/velvetvogue/storefront/internal/checkout"
	"github.com/velvetvogue/storefront/internal/domain"
	"github.com/velvetvogue/storefront/internal/forms"
	"github.com/velvetvogue/storefront/internal/notify"
	"github.com/velvetvogue/storefront/internal/pricing"
	"github.com/velvetvogue/storefront/internal/views"
)

const sessionCookie = "vv_session"

type Handler struct {
	bag      *cart.Manager
	drawer   *views.Drawer
	page     *views.Page
	sidebar  *views.Sidebar
	ctrl     *checkout.Controller
	sessions *auth.Service
	hub      *notify.Hub
	log      *slog.Logger
}

func NewHandler(bag *cart.Manager, drawer *views.Drawer, page *views.Page, sidebar *views.Sidebar,
	ctrl *checkout.Controller, sessions *auth.Service, hub *notify.Hub, log *slog.Logger) *Handler {
	return &Handler{
		bag:      bag,
		drawer:   drawer,
		page:     page,
		sidebar:  sidebar,
		ctrl:     ctrl,
		sessions: sessions,
		hub:      hub,
		log:      log,
	}
}

type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, code, message string) {
	h.respondJSON(w, status, errorResponse{Error: message, Code: code})
}

// --- cart ---

type addItemRequest struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
	Size  string  `json:"size"`
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ID == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "id is required")
		return
	}
	if req.Price < 0 {
		h.respondError(w, http.StatusBadRequest, "invalid_price", "price must not be negative")
		return
	}

	h.bag.Add(r.Context(), domain.Product{
		ID:    req.ID,
		Name:  req.Name,
		Price: req.Price,
		Image: req.Image,
		Size:  req.Size,
	})
	h.respondJSON(w, http.StatusCreated, h.bag.Get(r.Context()))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.bag.Get(r.Context()))
}

type updateQtyRequest struct {
	Size string `json:"size"`
	Qty  int    `json:"qty"`
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "product_id")
	var req updateQtyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	h.bag.UpdateQty(r.Context(), id, sizeOrDefault(req.Size), req.Qty)
	h.respondJSON(w, http.StatusOK, h.bag.Get(r.Context()))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "product_id")
	size := sizeOrDefault(r.URL.Query().Get("size"))
	h.bag.Remove(r.Context(), id, size)
	h.respondJSON(w, http.StatusOK, h.bag.Get(r.Context()))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.bag.Clear(r.Context())
	h.respondJSON(w, http.StatusOK, h.bag.Get(r.Context()))
}

func sizeOrDefault(size string) string {
	if size == "" {
		return domain.DefaultSize
	}
	return size
}

type promoRequest struct {
	Code string `json:"code"`
}

func (h *Handler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	var req promoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.page.ApplyPromo(r.Context(), req.Code); err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "invalid_promo", "that promo code is not valid")
		return
	}
	h.respondJSON(w, http.StatusOK, pricing.NewQuote(h.bag.Get(r.Context()), true))
}

// --- rendered fragments ---

func (h *Handler) CartPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.page.Render(w); err != nil {
		h.log.Error("cart page render failed", "error", err)
	}
}

func (h *Handler) DrawerOpen(w http.ResponseWriter, r *http.Request) {
	h.drawer.Open(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.drawer.Render(w); err != nil {
		h.log.Error("drawer render failed", "error", err)
	}
}

func (h *Handler) DrawerClose(w http.ResponseWriter, r *http.Request) {
	h.drawer.Close()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CheckoutSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.sidebar.Render(w); err != nil {
		h.log.Error("checkout sidebar render failed", "error", err)
	}
}

func (h *Handler) Toasts(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.hub.Active())
}

// --- checkout ---

type checkoutState struct {
	Step            checkout.Step `json:"step"`
	PaymentMethod   string        `json:"payment_method"`
	CardFormVisible bool          `json:"card_form_visible"`
	OrderID         string        `json:"order_id,omitempty"`
}

func (h *Handler) CheckoutState(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, checkoutState{
		Step:            h.ctrl.Step(),
		PaymentMethod:   h.ctrl.PaymentMethod(),
		CardFormVisible: h.ctrl.CardFormVisible(),
		OrderID:         h.ctrl.OrderID(),
	})
}

func (h *Handler) GoToStep(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_step", "step must be a number")
		return
	}
	h.ctrl.GoToStep(checkout.Step(n))
	h.respondJSON(w, http.StatusOK, map[string]checkout.Step{"step": h.ctrl.Step()})
}

func (h *Handler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid form body")
		return
	}
	values := make(map[string]string)
	for name := range checkout.ShippingFields() {
		values[name] = r.PostFormValue(name)
	}
	if invalid, err := h.ctrl.SubmitShipping(values); err != nil {
		h.respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "please fill in all required fields",
			Code:   "required_fields_blank",
			Fields: invalid,
		})
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]checkout.Step{"step": h.ctrl.Step()})
}

type paymentMethodRequest struct {
	Method string `json:"method"`
}

func (h *Handler) SelectPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Method == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_method", "method is required")
		return
	}
	h.ctrl.SelectPayment(req.Method)
	h.respondJSON(w, http.StatusOK, map[string]bool{"card_form_visible": h.ctrl.CardFormVisible()})
}

type placeOrderRequest struct {
	CardNumber string `json:"card_number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	orderID, err := h.ctrl.PlaceOrder(r.Context(), checkout.Card{
		Number: req.CardNumber,
		Expiry: req.Expiry,
		CVV:    req.CVV,
	})
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		h.respondError(w, http.StatusConflict, "empty_cart", "your bag is empty")
	case errors.Is(err, checkout.ErrInFlight):
		h.respondError(w, http.StatusConflict, "in_flight", "an order submission is already in progress")
	case err != nil:
		h.respondError(w, http.StatusUnprocessableEntity, "invalid_payment", err.Error())
	default:
		h.respondJSON(w, http.StatusOK, map[string]string{"order_id": orderID})
	}
}

// --- session ---

type loginRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if !forms.EmailPattern.MatchString(req.Email) {
		h.respondError(w, http.StatusBadRequest, "invalid_email", "please enter a valid email")
		return
	}

	token, err := h.sessions.Login(r.Context(), domain.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.log.Error("login failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "internal_error", "could not sign in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.respondJSON(w, http.StatusOK, map[string]string{"email": req.Email})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		h.log.Error("logout failed", "error", err)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessions.Current(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "logged_out", "not signed in")
		return
	}
	h.respondJSON(w, http.StatusOK, user)
}

// --- contact form ---

func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid form body")
		return
	}
	rules := forms.ContactRules()
	values := make(map[string]string)
	for name := range rules {
		values[name] = r.PostFormValue(name)
	}
	if invalid := forms.Validate(rules, values); len(invalid) > 0 {
		h.respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "please correct the highlighted fields",
			Code:   "validation_failed",
			Fields: invalid,
		})
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
