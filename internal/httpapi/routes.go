package httpapi

import "net/http"

// Middleware wraps a handler func; the zero value means no wrapping.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// NewMux registers the full storefront surface. Every route goes through
// wrap, which mains use to attach the http.route span attribute.
func NewMux(
	products *ProductHandler,
	users *UserHandler,
	orders *OrderHandler,
	approvals *ApprovalHandler,
	settings *SettingsHandler,
	wrap Middleware,
) *http.ServeMux {
	if wrap == nil {
		wrap = func(h http.HandlerFunc) http.HandlerFunc { return h }
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /products", wrap(products.HandleList))
	mux.HandleFunc("POST /products", wrap(products.HandleCreate))
	mux.HandleFunc("GET /products/{id}", wrap(products.HandleGet))
	mux.HandleFunc("PATCH /products/{id}", wrap(products.HandleUpdate))
	mux.HandleFunc("DELETE /products/{id}", wrap(products.HandleDelete))
	mux.HandleFunc("POST /products/{id}/toggle", wrap(products.HandleToggleStatus))
	mux.HandleFunc("PUT /products/{id}/stock", wrap(products.HandleUpdateStock))

	mux.HandleFunc("POST /users", wrap(users.HandleRegister))
	mux.HandleFunc("GET /users", wrap(users.HandleList))
	mux.HandleFunc("GET /users/{id}", wrap(users.HandleGet))
	mux.HandleFunc("PATCH /users/{id}", wrap(users.HandleUpdate))
	mux.HandleFunc("DELETE /users/{id}", wrap(users.HandleDelete))
	mux.HandleFunc("POST /session", wrap(users.HandleLogin))
	mux.HandleFunc("DELETE /session", wrap(users.HandleLogout))
	mux.HandleFunc("GET /session", wrap(users.HandleSession))

	mux.HandleFunc("POST /orders", wrap(orders.HandleCreate))
	mux.HandleFunc("GET /orders", wrap(orders.HandleList))
	mux.HandleFunc("GET /orders/stats", wrap(orders.HandleStats))
	mux.HandleFunc("GET /orders/{id}", wrap(orders.HandleGet))
	mux.HandleFunc("PATCH /orders/{id}/status", wrap(orders.HandleUpdateStatus))
	mux.HandleFunc("POST /orders/{id}/payment", wrap(orders.HandlePayment))
	mux.HandleFunc("POST /orders/{id}/cancel", wrap(orders.HandleCancel))

	mux.HandleFunc("POST /applications", wrap(approvals.HandleSubmit))
	mux.HandleFunc("GET /applications", wrap(approvals.HandleList))
	mux.HandleFunc("GET /applications/{id}", wrap(approvals.HandleGet))
	mux.HandleFunc("POST /applications/{id}/review", wrap(approvals.HandleReview))

	mux.HandleFunc("GET /settings", wrap(settings.HandleGet))
	mux.HandleFunc("PUT /settings", wrap(settings.HandleUpdate))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}
