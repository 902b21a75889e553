package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velvetvogue/storefront/internal/auth"
	"github.com/velvetvogue/storefront/internal/cart"
	"github.com/velvetvogue/storefront/internal/checkout"
	"github.com/velvetvogue/storefront/internal/domain"
	"github.com/velvetvogue/storefront/internal/events"
	"github.com/velvetvogue/storefront/internal/notify"
	"github.com/velvetvogue/storefront/internal/store"
	"github.com/velvetvogue/storefront/internal/views"
)

type testApp struct {
	router http.Handler
	bag    *cart.Manager
	ctrl   *checkout.Controller
	hub    *notify.Hub
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	kv := store.NewMemory()
	hub := notify.NewHub()

	bag := cart.NewManager(kv, hub, log)
	drawer := views.NewDrawer(ctx, bag)
	page := views.NewPage(ctx, bag, hub)
	sidebar := views.NewSidebar(ctx, bag)
	t.Cleanup(drawer.Unmount)
	t.Cleanup(page.Unmount)
	t.Cleanup(sidebar.Unmount)

	ctrl := checkout.NewController(bag, hub, events.Nop{}, log)
	sessions := auth.NewService(kv, []byte("test-secret"), log)

	handler := NewHandler(bag, drawer, page, sidebar, ctrl, sessions, hub, log)
	return &testApp{
		router: NewRouter(handler, 30*time.Second),
		bag:    bag,
		ctrl:   ctrl,
		hub:    hub,
	}
}

func (a *testApp) doJSON(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) doForm(t *testing.T, path string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func addCoat(t *testing.T, a *testApp) {
	t.Helper()
	rec := a.doJSON(t, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"id": "P1", "name": "Coat", "price": 80, "size": "M",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)
	rec := a.doJSON(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAddItem_AndGetCart(t *testing.T) {
	a := newTestApp(t)
	addCoat(t, a)

	rec := a.doJSON(t, http.MethodGet, "/api/v1/cart/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []domain.LineItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "P1", items[0].ID)
	assert.Equal(t, 1, items[0].Qty)
}

func TestAddItem_Validation(t *testing.T) {
	a := newTestApp(t)

	rec := a.doJSON(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"name": "Coat", "price": 80})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.doJSON(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"id": "P1", "price": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader("{broken"))
	rec = httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAndRemoveItem(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	addCoat(t, a)

	rec := a.doJSON(t, http.MethodPut, "/api/v1/cart/items/P1", map[string]any{"size": "M", "qty": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, a.bag.Get(ctx)[0].Qty)

	rec = a.doJSON(t, http.MethodDelete, "/api/v1/cart/items/P1?size=M", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, a.bag.Get(ctx))
}

func TestClearCart(t *testing.T) {
	a := newTestApp(t)
	addCoat(t, a)

	rec := a.doJSON(t, http.MethodPost, "/api/v1/cart/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, a.bag.Get(context.Background()))
}

func TestApplyPromo(t *testing.T) {
	a := newTestApp(t)
	addCoat(t, a)

	rec := a.doJSON(t, http.MethodPost, "/api/v1/cart/promo", map[string]any{"code": "WRONG"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = a.doJSON(t, http.MethodPost, "/api/v1/cart/promo", map[string]any{"code": "vogue15"})
	require.Equal(t, http.StatusOK, rec.Code)

	var quote struct {
		Subtotal float64 `json:"Subtotal"`
		Discount float64 `json:"Discount"`
		Total    float64 `json:"Total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, 80.0, quote.Subtotal)
	assert.Equal(t, 12.0, quote.Discount)
	assert.Equal(t, 68.0, quote.Total)
}

func TestCartFragmentRenders(t *testing.T) {
	a := newTestApp(t)
	addCoat(t, a)

	rec := a.doJSON(t, http.MethodGet, "/fragments/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Coat")
	assert.Contains(t, rec.Body.String(), "$80.00")
}

func TestDrawerOpenAndClose(t *testing.T) {
	a := newTestApp(t)
	addCoat(t, a)

	rec := a.doJSON(t, http.MethodPost, "/fragments/drawer/open", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your Bag (1)")

	rec = a.doJSON(t, http.MethodPost, "/fragments/drawer/close", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCheckoutShipping_BlankFieldsFlagged(t *testing.T) {
	a := newTestApp(t)

	rec := a.doForm(t, "/api/v1/checkout/shipping", url.Values{
		"firstName": {"Ada"},
		"email":     {"ada@example.com"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "lastName")
	assert.Contains(t, resp.Fields, "address")
	assert.NotContains(t, resp.Fields, "firstName")
	assert.Equal(t, checkout.StepShipping, a.ctrl.Step())
}

func TestCheckoutShipping_Advances(t *testing.T) {
	a := newTestApp(t)

	rec := a.doForm(t, "/api/v1/checkout/shipping", url.Values{
		"firstName": {"Ada"},
		"lastName":  {"Lovelace"},
		"email":     {"ada@example.com"},
		"address":   {"12 Rua Augusta"},
		"city":      {"Lisbon"},
		"zip":       {"1100-053"},
		"country":   {"Portugal"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, checkout.StepPayment, a.ctrl.Step())
}

func TestCheckoutPaymentMethodToggle(t *testing.T) {
	a := newTestApp(t)

	rec := a.doJSON(t, http.MethodPost, "/api/v1/checkout/payment-method", map[string]any{"method": "paypal"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"card_form_visible":false}`, rec.Body.String())

	rec = a.doJSON(t, http.MethodGet, "/api/v1/checkout/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"payment_method":"paypal"`)
}

func TestPlaceOrder_EmptyCartConflict(t *testing.T) {
	a := newTestApp(t)

	rec := a.doJSON(t, http.MethodPost, "/api/v1/checkout/order", map[string]any{
		"card_number": "4111111111111111", "expiry": "12/27", "cvv": "123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "empty_cart")
}

func TestPlaceOrder_BadCardRejected(t *testing.T) {
	a := newTestApp(t)
	addCoat(t, a)

	rec := a.doJSON(t, http.MethodPost, "/api/v1/checkout/order", map[string]any{
		"card_number": "4111", "expiry": "12/27", "cvv": "123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.NotEmpty(t, a.bag.Get(context.Background()))
}

func TestGoToStep(t *testing.T) {
	a := newTestApp(t)

	rec := a.doJSON(t, http.MethodPost, "/api/v1/checkout/steps/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, checkout.StepReview, a.ctrl.Step())

	rec = a.doJSON(t, http.MethodPost, "/api/v1/checkout/steps/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginSessionLogout(t *testing.T) {
	a := newTestApp(t)

	rec := a.doJSON(t, http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.doJSON(t, http.MethodPost, "/api/v1/login", map[string]any{
		"email": "ada@example.com", "firstName": "Ada", "lastName": "Lovelace",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, sessionCookie, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)

	rec = a.doJSON(t, http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"firstName":"Ada"`)

	rec = a.doJSON(t, http.MethodPost, "/api/v1/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.doJSON(t, http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_RejectsBadEmail(t *testing.T) {
	a := newTestApp(t)

	rec := a.doJSON(t, http.MethodPost, "/api/v1/login", map[string]any{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactForm(t *testing.T) {
	a := newTestApp(t)

	rec := a.doForm(t, "/api/v1/contact", url.Values{
		"firstName": {"Ada"},
		"lastName":  {"Lovelace"},
		"email":     {"ada@example.com"},
		"subject":   {"Sizing"},
		"message":   {"Does the wool coat run small or true to size?"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.doForm(t, "/api/v1/contact", url.Values{"firstName": {"A"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields["firstName"], "at least 2 characters")
	assert.Contains(t, resp.Fields, "message")
}

func TestToastsSurface(t *testing.T) {
	a := newTestApp(t)
	addCoat(t, a)

	rec := a.doJSON(t, http.MethodGet, "/api/v1/toasts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "added to your bag")
}
