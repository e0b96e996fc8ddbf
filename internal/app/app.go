package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-item-recovery/internal/client"
	"go-item-recovery/internal/config"
	"go-item-recovery/internal/database"
	"go-item-recovery/internal/event"
	"go-item-recovery/internal/handler"
	"go-item-recovery/internal/item"
	"go-item-recovery/internal/middleware"
	"go-item-recovery/internal/repository"
	"go-item-recovery/internal/router"
	"go-item-recovery/internal/service"
	"go-item-recovery/internal/suppression"
	"go-item-recovery/internal/websocket"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, int32(cfg.DBMaxConns), int32(cfg.DBMinConns))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	ledgerRepo := repository.NewLedgerRepository(pool)
	mirrorRepo := repository.NewMirrorRepository(pool)
	eventRepo := repository.NewRecoveryEventRepository(pool)
	slog.Info("database ready")

	tokenService, err := service.NewTokenService(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	bus := event.NewBus()
	hub := websocket.NewHub(bus)
	go hub.Run()

	balanceClient := client.NewBalanceClient(cfg.BalanceServiceURL, serviceToken(tokenService), cfg.CollaboratorTimeout)
	holdingsClient := client.NewHoldingsClient(cfg.HoldingsServiceURL, serviceToken(tokenService), cfg.CollaboratorTimeout)

	calculator := item.NewCalculator(item.CostConfig{
		BaseCost:          cfg.BaseCost,
		AdvancedCost:      cfg.AdvancedCost,
		TierCosts:         cfg.TierCosts,
		Multipliers:       cfg.Multipliers,
		MultiplierOrder:   cfg.MultiplierOrder,
		AdvancedTag:       cfg.AdvancedTag,
		ProtectionEnchant: cfg.ProtectionEnchant,
	})

	ledgerService := service.NewLedgerService(ledgerRepo, service.LedgerConfig{
		AdvancedTag:         cfg.AdvancedTag,
		CostLoreFormat:      cfg.CostLoreFormat,
		BlacklistLore:       cfg.BlacklistLore,
		BlacklistCustomData: cfg.BlacklistCustomData,
		DuplicateWindow:     cfg.DuplicateWindow,
	})

	var mirrorSink service.MirrorSink
	var mirrorPruner service.MirrorPruner
	if cfg.MirrorEnabled {
		mirrorSink = mirrorRepo
		mirrorPruner = mirrorRepo
	}

	recorder := service.NewDestructionRecorder(ledgerService, mirrorSink, bus)
	engine := suppression.NewEngine(suppression.Config{
		Whitelist:        cfg.ItemWhitelist,
		AdvancedTag:      cfg.AdvancedTag,
		CostLoreFormat:   cfg.CostLoreFormat,
		ReplayWindow:     cfg.ReplayWindow,
		HashWindow:       cfg.HashWindow,
		SettleDelay:      cfg.SettleDelay,
		RepairOnRecovery: cfg.RepairOnRecovery,
	}, holdingsClient, recorder)

	recoveryService := service.NewRecoveryService(
		ledgerService, calculator, balanceClient, holdingsClient, eventRepo, bus, cfg.CostLoreFormat)

	sweeper := service.NewSweeperService(
		ledgerRepo, mirrorPruner, bus, cfg.RetentionDays, cfg.SweepInitialDelay, cfg.SweepInterval)
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	go sweeper.Start(sweepCtx)

	healthHandler := handler.NewHealthHandler(db)
	eventsHandler := handler.NewEventsHandler(engine)
	recoveryHandler := handler.NewRecoveryHandler(recoveryService)
	auditHandler := handler.NewAuditHandler(eventRepo)
	docsHandler := handler.NewDocsHandler("./docs/openapi.yaml")

	appRouter := router.New(cfg, authMiddleware,
		healthHandler, eventsHandler, recoveryHandler, auditHandler, docsHandler, hub)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			func() {
				sweepCancel()
			},
			func() {
				db.Close()
			},
		},
	}, nil
}

// serviceToken mints the bearer token this service presents to the
// balance and holdings collaborators.
func serviceToken(tokens *service.TokenService) string {
	token, err := tokens.IssueServiceToken("item-recovery", "server", 365*24*time.Hour)
	if err != nil {
		slog.Error("failed to mint service token", "error", err)
		return ""
	}
	return token
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Run cleanup functions
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
