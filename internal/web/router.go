package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewRouter wires the storefront routes behind the shared middleware
// stack and the otel http wrapper.
func NewRouter(h *Handler, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/items", h.AddItem)
			r.Put("/items/{product_id}", h.UpdateQuantity)
			r.Delete("/items/{product_id}", h.RemoveItem)
			r.Post("/clear", h.ClearCart)
			r.Post("/promo", h.ApplyPromo)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", h.CheckoutState)
			r.Post("/steps/{step}", h.GoToStep)
			r.Post("/shipping", h.SubmitShipping)
			r.Post("/payment-method", h.SelectPayment)
			r.Post("/order", h.PlaceOrder)
		})
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/session", h.Session)
		r.Post("/contact", h.Contact)
		r.Get("/toasts", h.Toasts)
	})

	// Rendered fragments consumed by the pages.
	r.Get("/fragments/cart", h.CartPage)
	r.Post("/fragments/drawer/open", h.DrawerOpen)
	r.Post("/fragments/drawer/close", h.DrawerClose)
	r.Get("/fragments/checkout-summary", h.CheckoutSummary)

	return otelhttp.NewHandler(r, "storefront")
}
