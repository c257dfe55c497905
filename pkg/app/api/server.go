// Package api implements app.Runner for the gateway server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vortexpump/wallet-middleware/pkg/access"
	apphttp "github.com/vortexpump/wallet-middleware/pkg/app/http"
	"github.com/vortexpump/wallet-middleware/pkg/auth"
	"github.com/vortexpump/wallet-middleware/pkg/config"
	"github.com/vortexpump/wallet-middleware/pkg/courier"
	"github.com/vortexpump/wallet-middleware/pkg/gate"
	"github.com/vortexpump/wallet-middleware/pkg/keys"
	"github.com/vortexpump/wallet-middleware/pkg/oracle"
	"github.com/vortexpump/wallet-middleware/pkg/pgutil"
	reconcilerpkg "github.com/vortexpump/wallet-middleware/pkg/reconciler"
	walletservice "github.com/vortexpump/wallet-middleware/pkg/wallet/service"
	"github.com/vortexpump/wallet-middleware/pkg/walletstore"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 60

// masterKeyInfo scopes HKDF derivation when the master key comes from a
// server seed rather than an explicit key.
const masterKeyInfo = "wallet-secrets"

// Server holds cfg to init the gateway server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new gateway server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("gateway server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting gateway server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer db.Close()

	logger.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	cipher, err := s.buildCipher()
	if err != nil {
		return err
	}

	store := walletstore.NewStore(db)

	balanceOracle := oracle.NewSolanaOracle(cfg.Solana.RPCURL, cfg.Solana.RequestTimeout)
	logger.Info("Using Solana RPC endpoint", zap.String("rpc_url", cfg.Solana.RPCURL))

	threshold, err := decimal.NewFromString(cfg.Gate.UnlockThreshold)
	if err != nil {
		return fmt.Errorf("invalid unlock threshold %q: %w", cfg.Gate.UnlockThreshold, err)
	}

	controller := access.NewController(store, balanceOracle, threshold, logger)

	rec := reconcilerpkg.New(store, balanceOracle, logger)
	s.runInitialReconcile(ctx, rec, logger)

	stopReconcile := s.startPeriodicReconcile(rec, logger)
	// We will call stopReconcile explicitly after ServeAndWait returns for deterministic shutdown order.
	// Keep this defer as a safety net.
	defer stopReconcile()

	secretCourier := courier.NewWebhookCourier(
		cfg.Courier.Endpoint,
		[]byte(cfg.Courier.SigningSecret),
		cfg.Courier.Issuer,
	)

	provisionService := walletservice.NewService(
		store,
		walletservice.GeneratorFunc(keys.Generate),
		cipher,
		secretCourier,
		logger,
	)

	gateService := gate.NewService(store, controller, logger)

	router := s.setupRouter(
		walletservice.NewLog(provisionService, logger),
		gate.NewLog(gateService, logger),
		logger,
	)

	err = apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)

	// Stop background work before deferred DB close kicks in.
	stopReconcile()

	return err
}

func (s *Server) buildCipher() (keys.KeyCipher, error) {
	km := s.cfg.KeyManagement

	if km.MasterKey != "" {
		masterKey, err := keys.MasterKeyFromBase64(km.MasterKey)
		if err != nil {
			return nil, fmt.Errorf("invalid master key: %w", err)
		}
		return keys.NewMasterKeyCipher(masterKey)
	}

	masterKey, err := keys.DeriveMasterKey([]byte(km.ServerSeed), masterKeyInfo)
	if err != nil {
		return nil, fmt.Errorf("derive master key: %w", err)
	}
	return keys.NewMasterKeyCipher(masterKey)
}

func (s *Server) runInitialReconcile(
	ctx context.Context,
	reconciler *reconcilerpkg.Reconciler,
	logger *zap.Logger,
) {
	if !s.cfg.Reconciliation.Enabled || s.cfg.Reconciliation.InitialTimeout <= 0 {
		return
	}

	logger.Info("Running initial balance reconciliation",
		zap.Duration("timeout", s.cfg.Reconciliation.InitialTimeout),
	)

	startupCtx, cancel := context.WithTimeout(ctx, s.cfg.Reconciliation.InitialTimeout)
	defer cancel()

	if err := reconciler.ReconcileAll(startupCtx); err != nil {
		logger.Warn("Initial reconciliation failed (will retry periodically)", zap.Error(err))
		return
	}

	logger.Info("Initial balance reconciliation completed")
}

func (s *Server) startPeriodicReconcile(
	reconciler *reconcilerpkg.Reconciler,
	logger *zap.Logger,
) func() {
	if !s.cfg.Reconciliation.Enabled || s.cfg.Reconciliation.Interval <= 0 {
		return func() {}
	}

	logger.Info("Starting periodic reconciliation", zap.Duration("interval", s.cfg.Reconciliation.Interval))
	reconciler.StartPeriodicReconciliation(s.cfg.Reconciliation.Interval)

	// Return stopper for deterministic shutdown ordering.
	return func() { reconciler.Stop() }
}

func (s *Server) setupRouter(
	provisionService walletservice.Service,
	gateService gate.Service,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Second * defaultRequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if s.cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Group(func(r chi.Router) {
		if s.cfg.Auth.JWTSecret != "" {
			verifier := auth.NewTokenVerifier([]byte(s.cfg.Auth.JWTSecret), s.cfg.Auth.Issuer)
			r.Use(verifier.Middleware(logger))
		} else {
			logger.Warn("Request authentication disabled, all callers are anonymous")
		}

		walletservice.RegisterRoutes(r, provisionService, logger)
		gate.RegisterRoutes(r, gateService, logger)
	})

	return r
}
