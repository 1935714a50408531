package api

import (
	"log/slog"
	"net/http"
	"time"

	"minibank/internal/api/handler"
	mw "minibank/internal/api/middleware"
	"minibank/internal/config"
	"minibank/internal/domain/account"
	"minibank/internal/domain/customer"
	"minibank/internal/domain/loan"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Services struct {
	Customers customer.CustomerService
	Accounts  account.AccountService
	Loans     loan.LoanService
}

func SetupRouter(svcs Services, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupAuthRoutes(router, cfg, logger)
	setupCustomerRoutes(router, cfg, svcs, logger)
	setupAccountRoutes(router, cfg, svcs, logger)
	setupLoanRoutes(router, cfg, svcs, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAuthRoutes(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	authHandler := handler.NewAuthHandler(*cfg, logger)
	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})
}

func setupCustomerRoutes(router *chi.Mux, cfg *config.Config, svcs Services, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svcs.Customers, logger)
	accountHandler := handler.NewAccountHandler(svcs.Accounts, logger)
	loanHandler := handler.NewLoanHandler(svcs.Loans, logger)

	router.Route("/customers", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.RegisterCustomer)
		r.Get("/", h.ListCustomerNames)
		r.Get("/ssn/{ssn}", h.FindCustomerBySSN)
		r.Get("/phone/{phone}", h.FindCustomerByPhone)
		r.Get("/name", h.FindCustomerByName)
		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", h.GetCustomer)
			r.Get("/accounts", accountHandler.ListByCustomer)
			r.Get("/accounts/count", accountHandler.CountByCustomer)
			r.Get("/loans", loanHandler.ListByCustomer)
			r.Get("/loans/total", loanHandler.TotalBorrowed)
			r.Get("/loans/count", loanHandler.CountByCustomer)
		})
	})
}

func setupAccountRoutes(router *chi.Mux, cfg *config.Config, svcs Services, logger *slog.Logger) {
	h := handler.NewAccountHandler(svcs.Accounts, logger)
	loanHandler := handler.NewLoanHandler(svcs.Loans, logger)

	router.Route("/accounts", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.OpenAccount)
		r.Route("/{accountID}", func(r chi.Router) {
			r.Post("/inquiry", h.GetAccount)
			r.Post("/deposits", h.Deposit)
			r.Post("/withdrawals", h.Withdraw)
			r.Post("/loans", loanHandler.IssueLoan)
			r.Post("/loans/list", loanHandler.ListByAccount)
		})
	})
}

func setupLoanRoutes(router *chi.Mux, cfg *config.Config, svcs Services, logger *slog.Logger) {
	h := handler.NewLoanHandler(svcs.Loans, logger)

	router.Route("/loans", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Get("/{loanID}", h.GetLoan)
	})
}
