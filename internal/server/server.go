package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"banking-ledger/internal/audit"
	"banking-ledger/internal/config"
	"banking-ledger/internal/domain"
	"banking-ledger/internal/handler"
	"banking-ledger/internal/idempotency"
	"banking-ledger/internal/service"
	"banking-ledger/internal/store"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
)

// Server is the thin HTTP adapter over the banking service.
type Server struct {
	router *mux.Router
	server *http.Server
	db     *sql.DB
	logger *slog.Logger
	port   string
}

// NewServer wires the banking service and its handlers. The account store
// is Postgres when a database is configured, in-memory otherwise.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	var accounts domain.AccountStore
	var db *sql.DB

	if cfg.DatabaseConfigured() {
		var err error
		db, err = sql.Open("postgres", cfg.GetDBConnectionString())
		if err != nil {
			return nil, err
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.Ping(); err != nil {
			db.Close()
			return nil, err
		}

		logger.Info("Successfully connected to database")
		accounts = store.NewPostgresAccountStore(db, logger)
	} else {
		logger.Info("No database configured, using in-memory account store")
		accounts = store.NewMemoryAccountStore(logger)
	}

	banking := service.NewBankingService(
		accounts,
		idempotency.NewLedger(logger),
		audit.NewChain(),
		logger,
	)

	accountHandler := handler.NewAccountHandler(banking)
	transferHandler := handler.NewTransferHandler(banking)
	auditHandler := handler.NewAuditHandler(banking)

	router := mux.NewRouter()
	router.Use(loggingMiddleware(logger))

	// Account routes
	router.HandleFunc("/accounts", accountHandler.CreateAccount).Methods("POST")
	router.HandleFunc("/accounts/{account_id}/balance", accountHandler.GetBalance).Methods("GET")
	router.HandleFunc("/accounts/{account_id}/deposit", accountHandler.Deposit).Methods("POST")
	router.HandleFunc("/accounts/{account_id}/withdraw", accountHandler.Withdraw).Methods("POST")

	// Transfer route
	router.HandleFunc("/transfers", transferHandler.Transfer).Methods("POST")

	// Audit routes
	router.HandleFunc("/audit/entries", auditHandler.ListEntries).Methods("GET")
	router.HandleFunc("/audit/verify", auditHandler.Verify).Methods("GET")

	// Health check
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": "database unavailable"})
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods("GET")

	return &Server{
		router: router,
		db:     db,
		logger: logger,
	}, nil
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration", time.Since(start),
				"user_agent", r.UserAgent(),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port string) (string, error) {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return "", err
	}

	addr := listener.Addr().(*net.TCPAddr)
	s.port = strconv.Itoa(addr.Port)

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server", "port", s.port)

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Server failed", "error", err)
		}
	}()

	return s.port, nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	if s.db != nil {
		s.db.Close()
	}

	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// GetPort returns the port the server is listening on
func (s *Server) GetPort() string {
	return s.port
}

// GetBaseURL returns the base URL for the server
func (s *Server) GetBaseURL() string {
	return "http://localhost:" + s.port
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *mux.Router {
	return s.router
}

// StartServer starts the server with the given configuration
func StartServer(cfg *config.Config) (*Server, string, error) {
	var logger *slog.Logger
	if cfg.ServerPort == "0" {
		// Test environment - keep output quiet
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	server, err := NewServer(cfg, logger)
	if err != nil {
		return nil, "", err
	}

	port, err := server.Start(cfg.ServerPort)
	if err != nil {
		return nil, "", err
	}

	return server, port, nil
}
