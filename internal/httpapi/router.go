package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router assembles the full HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Welcome to Bebsa API"})
	})
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(requireJSON)
		api.Use(s.auth)

		api.Route("/credit", func(cr chi.Router) {
			cr.Post("/", s.handleCreateCredit)
			cr.Get("/personal", s.handleListPersonal)
			cr.Get("/download-pdf", s.handleDownloadPersonal)
			cr.Get("/account-datas", s.handleCreditAccountDatas)
			cr.Put("/{id}", s.handleUpdateCredit)
			cr.Delete("/{id}", s.handleDeleteCredit)
		})

		api.Route("/debit", func(dr chi.Router) {
			dr.Post("/", s.handleCreateDebit)
			dr.Put("/{id}", s.handleUpdateDebit)
			dr.Delete("/{id}", s.handleDeleteDebit)
		})

		api.Route("/mobileAccounts", func(mr chi.Router) {
			mr.Post("/", s.handleCreateAccount)
			mr.Get("/", s.handleListAccounts)
			mr.Get("/today-log", s.handleTodayLog)
			mr.Get("/company", s.handleAccountsByCompany)
			mr.Get("/download-pdf", s.handleDownloadAccounts)
			mr.Get("/account-datas", s.handleAccountDatas)
			mr.Put("/{id}", s.handleUpdateAccount)
			mr.Delete("/{id}", s.handleDeleteAccount)
		})

		api.Route("/transactions", func(tr chi.Router) {
			tr.Post("/", s.handleCreateDueCustomer)
			tr.Post("/give/{phone}", s.handleGive)
			tr.Post("/take/{phone}", s.handleTake)
			tr.Put("/users/{id}", s.handleUpdateDueCustomer)
			tr.Delete("/users/{id}", s.handleDeleteDueCustomer)
			tr.Get("/{id}", s.handleCustomerHistory)
			tr.Put("/{id}", s.handleUpdateTransaction)
			tr.Delete("/{id}", s.handleDeleteTransaction)
		})
		api.Get("/get-transactions", s.handleListDueCustomers)
		api.Get("/due-history", s.handleDueHistory)
		api.Get("/customers/search", s.handleSearchCustomers)

		api.Route("/user", func(ur chi.Router) {
			ur.Post("/register", s.handleRegister)
			ur.Post("/login", s.handleLogin)
			ur.Post("/verify", s.handleVerify)
			ur.Post("/decode", s.handleDecode)
			ur.Post("/reset-password", s.handleResetPassword)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: "Route not found"})
	})

	return r
}
