// Package http serves the aggregated finance views as JSON.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"gastos/internal/api"
	"gastos/internal/cache"
	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/services"
)

// DashboardLoader is implemented by *services.DashboardService.
type DashboardLoader interface {
	Load(ctx context.Context, tenantID int64, now time.Time) (services.Dashboard, error)
}

// ReportsProvider is implemented by *services.ReportsService.
type ReportsProvider interface {
	Cards(ctx context.Context, tenantID int64) (services.CardsView, error)
	Settle(ctx context.Context, tenantID, currentUserID int64, selected []core.PeriodRef) (core.CardSettlement, bool, error)
	PairSettlement(ctx context.Context, tenantID int64, start, end string) (core.PairSettlement, bool, error)
	Debit(ctx context.Context, tenantID int64, f services.DebitFilters) (services.DebitView, error)
	MSI(ctx context.Context, tenantID int64, months int) (services.MSIView, error)
	MarkPaid(ctx context.Context, tenantID int64, ref core.PeriodRef) error
}

// TransactionsProvider is implemented by *services.TransactionsService.
type TransactionsProvider interface {
	List(ctx context.Context, tenantID int64, f services.TransactionListFilters) ([]core.Transaction, error)
	Create(ctx context.Context, tenantID int64, req api.TransactionRequest) (core.Transaction, error)
	Update(ctx context.Context, tenantID, id int64, req api.TransactionRequest) (core.Transaction, error)
	Delete(ctx context.Context, tenantID, id int64) error
}

// SettingsProvider is implemented by *services.SettingsService.
type SettingsProvider interface {
	PaymentMethods(ctx context.Context, tenantID int64, page, size int) (api.Page[core.PaymentMethod], error)
	CreatePaymentMethod(ctx context.Context, req api.PaymentMethodRequest) (core.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, id int64, req api.PaymentMethodRequest) (core.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, id int64) error
	Users(ctx context.Context, tenantID int64) ([]core.User, error)
}

type Server struct {
	http.Server
	dashboards      DashboardLoader
	reports         ReportsProvider
	transactions    TransactionsProvider
	settings        SettingsProvider
	defaultTenantID int64
	rateLimiter     *rateLimiter

	// View caches; flushed whenever a mutation invalidates the views.
	dashCache  *cache.LRUCache[services.Dashboard]
	cardsCache *cache.LRUCache[services.CardsView]
	debitCache *cache.LRUCache[services.DebitView]
	msiCache   *cache.LRUCache[services.MSIView]

	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes and view caches, returning a ready-to-run
// http.Server.
func NewServer(addr string, dashboards DashboardLoader, reports ReportsProvider, transactions TransactionsProvider, settings SettingsProvider, defaultTenantID int64, cacheTTL time.Duration) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		dashboards:      dashboards,
		reports:         reports,
		transactions:    transactions,
		settings:        settings,
		defaultTenantID: defaultTenantID,
		rateLimiter:     newRateLimiter(),
		dashCache:       cache.NewLRUCache[services.Dashboard](50, cacheTTL),
		cardsCache:      cache.NewLRUCache[services.CardsView](50, cacheTTL),
		debitCache:      cache.NewLRUCache[services.DebitView](100, cacheTTL),
		msiCache:        cache.NewLRUCache[services.MSIView](50, cacheTTL),
		cacheManager:    cache.NewManager(),
	}

	s.cacheManager.Register(s.dashCache)
	s.cacheManager.Register(s.cardsCache)
	s.cacheManager.Register(s.debitCache)
	s.cacheManager.Register(s.msiCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/dashboard", s.withMiddleware(s.handleDashboard))
	mux.HandleFunc("/api/reports/cards", s.withMiddleware(s.handleCards))
	mux.HandleFunc("/api/reports/settlement", s.withMiddleware(s.handleSettlement))
	mux.HandleFunc("/api/reports/pair-settlement", s.withMiddleware(s.handlePairSettlement))
	mux.HandleFunc("/api/reports/debit", s.withMiddleware(s.handleDebit))
	mux.HandleFunc("/api/reports/msi", s.withMiddleware(s.handleMSI))
	mux.HandleFunc("/api/cards/", s.withMiddleware(s.handleMarkPaid))
	mux.HandleFunc("/api/transactions", s.withMiddleware(s.handleTransactions))
	mux.HandleFunc("/api/transactions/", s.withMiddleware(s.handleTransactionByID))
	mux.HandleFunc("/api/payment-methods", s.withMiddleware(s.handlePaymentMethods))
	mux.HandleFunc("/api/payment-methods/", s.withMiddleware(s.handlePaymentMethodByID))
	mux.HandleFunc("/api/users", s.withMiddleware(s.handleUsers))

	return s
}

// flushViewCaches drops every cached view after a mutation.
func (s *Server) flushViewCaches() {
	s.dashCache.Flush()
	s.cardsCache.Flush()
	s.debitCache.Flush()
	s.msiCache.Flush()
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds security headers, rate limiting on mutations, and
// request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP,
			applog.FieldComponent, applog.ComponentHTTP)

		mutating := r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodDelete
		if mutating && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldComponent, applog.ComponentRateLimit)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Demasiadas peticiones, intenta más tarde")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP,
			applog.FieldComponent, applog.ComponentHTTP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
