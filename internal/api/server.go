package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/traderview/journal-backend/internal/analytics"
	"github.com/traderview/journal-backend/internal/importer"
	"github.com/traderview/journal-backend/pkg/types"
	"go.uber.org/zap"
)

// JournalStore is the store surface the HTTP handlers need.
type JournalStore interface {
	ListTrades(ctx context.Context, accountID int64) ([]types.Trade, error)
	DeleteTrades(ctx context.Context, accountID int64) (int64, error)
	GetAccount(ctx context.Context, id int64) (*types.TradingAccount, error)
	CreateAccount(ctx context.Context, account *types.TradingAccount) (int64, error)
}

// Server is the HTTP/WebSocket API server.
type Server struct {
	logger     *zap.Logger
	config     *types.ServerConfig
	router     *mux.Router
	httpServer *http.Server
	upgrader   websocket.Upgrader
	hub        *Hub
	store      JournalStore
	analytics  *analytics.Service
	importer   *importer.Importer
}

// NewServer creates a new API server.
func NewServer(
	logger *zap.Logger,
	config *types.ServerConfig,
	store JournalStore,
	analyticsService *analytics.Service,
	tradeImporter *importer.Importer,
	hub *Hub,
) *Server {
	server := &Server{
		logger:    logger,
		config:    config,
		router:    mux.NewRouter(),
		hub:       hub,
		store:     store,
		analytics: analyticsService,
		importer:  tradeImporter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Origin checks belong to the fronting proxy
			},
		},
	}

	server.setupRoutes()
	return server
}

// Router exposes the underlying router for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

// setupRoutes configures HTTP routes.
func (s *Server) setupRoutes() {
	if s.config.EnableMetrics {
		s.router.Use(metricsMiddleware)
		s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	s.router.HandleFunc("/api/v1/health", s.handleHealth).Methods("GET")

	// Accounts and trades
	s.router.HandleFunc("/api/v1/accounts", s.handleCreateAccount).Methods("POST")
	s.router.HandleFunc("/api/v1/trades/{accountId}", s.handleListTrades).Methods("GET")
	s.router.HandleFunc("/api/v1/trades/{accountId}", s.handleDeleteTrades).Methods("DELETE")
	s.router.HandleFunc("/api/v1/import/{accountId}", s.handleImport).Methods("POST")

	// Analytics views
	s.router.HandleFunc("/api/v1/analytics/stats/{accountId}", s.handleTradeStats).Methods("GET")
	s.router.HandleFunc("/api/v1/analytics/stats/filtered", s.handleFilteredStats).Methods("POST")
	s.router.HandleFunc("/api/v1/analytics/win-loss-days/{accountId}", s.handleWinLossDays).Methods("GET")
	s.router.HandleFunc("/api/v1/analytics/drawdown/{accountId}", s.handleDrawdown).Methods("GET")
	s.router.HandleFunc("/api/v1/analytics/intraday/{accountId}", s.handleIntraday).Methods("GET")
	s.router.HandleFunc("/api/v1/analytics/summary/{accountId}", s.handleDashboardSummary).Methods("GET")
	s.router.HandleFunc("/api/v1/analytics/symbols/{accountId}", s.handleSymbolPerformance).Methods("GET")

	// WebSocket
	s.router.HandleFunc(s.config.WebSocketPath, s.handleWebSocket)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	handler := cors.New(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.router)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting API server", zap.String("addr", addr))

	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// handleWebSocket upgrades the connection and hands it to the hub.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(uuid.New().String(), s.hub, conn)
	s.hub.register <- client

	go client.ReadPump()
	go client.WritePump()
}
