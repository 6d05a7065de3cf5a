package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rockman-logistics/staffdesk/internal/application/service"
	"github.com/rockman-logistics/staffdesk/internal/config"
	domainRepo "github.com/rockman-logistics/staffdesk/internal/domain/repository"
	"github.com/rockman-logistics/staffdesk/internal/infrastructure/backend"
	"github.com/rockman-logistics/staffdesk/internal/infrastructure/database"
	"github.com/rockman-logistics/staffdesk/internal/infrastructure/repository"
	"github.com/rockman-logistics/staffdesk/internal/logging"
	"github.com/rockman-logistics/staffdesk/internal/presentation/http/handler"
	"github.com/rockman-logistics/staffdesk/internal/presentation/http/routes"
	"github.com/rockman-logistics/staffdesk/internal/websocket"
	"github.com/rockman-logistics/staffdesk/pkg/utils"
	"github.com/rockman-logistics/staffdesk/pkg/wakeup"
	"github.com/shopspring/decimal"
)

const janitorInterval = 15 * time.Minute

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.Log.Level)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(&cfg.Database, cfg.App.Debug)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	sealer, err := utils.NewSealer(cfg.Session.Secret, cfg.Session.Salt)
	if err != nil {
		logger.Error("failed to set up token sealing", "error", err)
		os.Exit(1)
	}

	// Backend access: every call goes through the wake-up caller
	hub := websocket.NewHub(logger)
	caller := newCaller(cfg)
	caller.Observe(wakeup.LogObserver(logger))
	caller.Observe(hub)
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, caller)

	// Repositories
	sessionRepo := repository.NewSessionRepository(db)
	draftRepo := repository.NewDraftRepository(db)
	archiveRepo := repository.NewReceiptArchiveRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Services
	guard := service.NewSessionGuard(sessionRepo)
	authService := service.NewAuthService(client, sessionRepo, jwtManager, sealer, guard)
	drafts := service.NewDraftStore(draftRepo)
	catalog := service.NewCatalogService(client, guard, cfg.Backend.CatalogTTL)
	customerService := service.NewCustomerService(client, drafts, guard, wakeup.SystemClock())
	receiptService := service.NewReceiptService(client, drafts, catalog, customerService, archiveRepo, guard)
	dashboardService := service.NewDashboardService(client, archiveRepo, guard)
	documentService := service.NewDocumentService(receiptService, invoiceOptions(cfg, logger))
	reportService := service.NewReportService(archiveRepo)

	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Category:  handler.NewCategoryHandler(catalog),
		Draft:     handler.NewDraftHandler(receiptService),
		Customer:  handler.NewCustomerHandler(customerService),
		Receipt:   handler.NewReceiptHandler(receiptService, documentService, reportService),
		Status:    handler.NewStatusHandler(cfg.App.Name, caller),
	}

	router := routes.Setup(handlers, &routes.Deps{
		AuthService:     authService,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Hub:             hub,
		Logger:          logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wake the backend while staff are still opening the login screen
	go func() {
		res := caller.Warm(ctx)
		logger.Info("backend warm-up", "result", res.String())
	}()
	go runJanitor(ctx, logger, authService, idempotencyRepo)

	httpServer := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting server", "app", cfg.App.Name, "port", cfg.App.Port, "env", cfg.App.Env, "backend", cfg.Backend.BaseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func newCaller(cfg *config.Config) *wakeup.Caller {
	policy := wakeup.Policy{
		Grace:       cfg.WakeUp.Grace,
		BackoffStep: cfg.WakeUp.BackoffStep,
		MaxRetries:  cfg.WakeUp.MaxRetries,
	}
	if !cfg.WakeUp.Enabled {
		return wakeup.NewCaller(nil, policy, nil)
	}

	prober := &wakeup.HTTPProber{
		Client: &http.Client{},
		URL:    cfg.Backend.BaseURL + cfg.Backend.HealthPath,
	}
	waker := wakeup.NewWaker(prober, nil, wakeup.WakerConfig{
		Cooldown:     cfg.WakeUp.Cooldown,
		ProbeTimeout: cfg.WakeUp.ProbeTimeout,
		CheckTimeout: cfg.WakeUp.CheckTimeout,
	})
	return wakeup.NewCaller(waker, policy, nil)
}

func invoiceOptions(cfg *config.Config, logger *slog.Logger) service.InvoiceOptions {
	opts := service.DefaultInvoiceOptions()
	if cfg.Invoice.CompanyName != "" {
		opts.CompanyName = cfg.Invoice.CompanyName
	}
	if cfg.Invoice.SecondaryCurrency != "" {
		opts.SecondaryCurrency = cfg.Invoice.SecondaryCurrency
	}
	if cfg.Invoice.ExchangeRate != "" {
		rate, err := decimal.NewFromString(cfg.Invoice.ExchangeRate)
		if err != nil || !rate.IsPositive() {
			logger.Warn("ignoring invalid exchange rate", "value", cfg.Invoice.ExchangeRate)
		} else {
			opts.ExchangeRate = rate
		}
	}
	return opts
}

// runJanitor drops expired sessions (with their drafts) and idempotency keys.
func runJanitor(ctx context.Context, logger *slog.Logger, auth *service.AuthService, keys domainRepo.IdempotencyRepository) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n, err := auth.PurgeExpired(ctx); err != nil {
				logger.Error("failed to purge sessions", "error", err)
			} else if n > 0 {
				logger.Info("purged expired sessions", "count", n)
			}
			if n, err := keys.DeleteExpired(ctx, now); err != nil {
				logger.Error("failed to purge idempotency keys", "error", err)
			} else if n > 0 {
				logger.Info("purged idempotency keys", "count", n)
			}
		}
	}
}
