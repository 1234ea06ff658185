package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"plowmarket/internal/config"
	"plowmarket/internal/notify"
	"plowmarket/internal/reconcile"
)

// ApiDependencies содержит зависимости для обработчиков API.
type ApiDependencies struct {
	Config     *config.Config
	SecretKey  string
	Reconciler *reconcile.Reconciler
	Notifier   *notify.Notifier
}

// SetupRoutes настраивает все маршруты для API.
func SetupRoutes(r *chi.Mux, deps ApiDependencies) {
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), ConfigContextKey, deps.Config)
			ctx = context.WithValue(ctx, ReconcilerContextKey, deps.Reconciler)
			ctx = context.WithValue(ctx, NotifierContextKey, deps.Notifier)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(deps.SecretKey))

		// --- Регистрация ---
		r.Post("/api/shovelers/register", RegisterShoveler)
		r.Post("/api/customers/register", RegisterCustomer)
		r.Get("/api/customers/{phone}/profile", GetCustomerProfile)

		// --- Маршруты подрядчика ---
		r.Get("/api/shovelers/{phone}/profile", GetShovelerProfile)
		r.Post("/api/shovelers/{phone}/profile", UpdateShovelerProfile)
		r.Post("/api/shovelers/{phone}/status", SetShovelerStatus)
		r.Get("/api/shovelers/{phone}/earnings", GetShovelerEarnings)
		r.Get("/api/shovelers/{phone}/payout-requests", GetPayoutRequests)
		r.Post("/api/shovelers/{phone}/payout-request", CreatePayoutRequest)

		// --- Запись в леджер (вызывается при завершении задания) ---
		r.Post("/api/earnings", AddEarning)

		// --- Маршруты для админов/бухгалтерии ---
		r.Route("/api/admin", func(r chi.Router) {
			r.Get("/ledger", GetLedger)
			r.Get("/ledger/export", ExportLedgerExcel)
			r.Get("/unpaid-jobs/{phone}", GetUnpaidJobs)
			r.Get("/payout-request/{id}", GetPayoutRequest)
			r.Post("/settle-payout", SettlePayout)
			r.Get("/payout-qr/{phone}", GetPayoutQR)
		})
	})
}
