package app

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"restaurant-pos/app/controller"
	"restaurant-pos/app/router"
	"restaurant-pos/config"
	"restaurant-pos/db"
	"restaurant-pos/printer"
	"restaurant-pos/repository"
	"restaurant-pos/service"
	"restaurant-pos/session"
	"restaurant-pos/storage"
)

const sessionSweepInterval = time.Minute

// App is the wired POS API
type App struct {
	Handler  http.Handler
	Sessions *session.Store
	Printer  *printer.Manager

	cfg *config.Config
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database connection
	if err := db.InitDB(ctx, cfg.Database); err != nil {
		return nil, errors.Wrap(err, "failed to initialize database")
	}

	store, err := storage.FromConfig(ctx, cfg.Storage)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize image storage")
	}

	// Initialize repositories
	itemRepo := repository.NewItemRepository()
	orderRepo := repository.NewOrderRepository()
	partyRepo := repository.NewPartyRepository()
	userRepo := repository.NewUserRepository()

	pm := printer.NewManager(printer.DefaultDialer)
	if cfg.PrinterAddress != "" {
		// A missing printer must not keep the till from starting.
		if err := pm.Connect(ctx, cfg.PrinterAddress); err != nil {
			log.Printf("⚠️  Printer %s not connected at startup: %v", cfg.PrinterAddress, err)
		}
	}

	// Initialize services
	sessions := session.NewStore()
	orderSvc := service.NewOrderService(orderRepo, partyRepo, service.OrderOptions{
		MaxIDAttempts:   cfg.OrderIDMaxAttempts,
		RestockOnCancel: cfg.RestockOnCancel,
	})
	sessionSvc := service.NewSessionService(sessions, itemRepo, orderSvc, pm)
	ledgerSvc := service.NewLedgerService(partyRepo, orderRepo)
	receiptSvc := service.NewReceiptService(orderRepo, pm, service.NewChromePDF(cfg.ChromePath))
	imageSvc := service.NewImageService(itemRepo, store)
	authSvc := service.NewAuthService(userRepo, cfg.AuthTokenTTL)

	// Create controllers
	controllers := &router.Controllers{
		Auth:    controller.NewAuthController(authSvc),
		Session: controller.NewSessionController(sessionSvc),
		Item:    controller.NewItemController(itemRepo, imageSvc),
		Order:   controller.NewOrderController(orderSvc, receiptSvc),
		Party:   controller.NewPartyController(ledgerSvc),
		Printer: controller.NewPrinterController(pm),
	}
	if cfg.Storage.Driver == "" || cfg.Storage.Driver == "local" {
		controllers.Uploads = &router.StaticDir{Prefix: cfg.Storage.PublicURLPrefix, Dir: cfg.Storage.LocalDir}
	}

	log.Printf("✓ Application initialized: storage=%v printer=%q", store, pm.Address())

	return &App{
		Handler:  router.SetupRoutes(controllers),
		Sessions: sessions,
		Printer:  pm,
		cfg:      cfg,
	}, nil
}

// Serve runs the HTTP server until ctx is canceled, then drains in-flight requests.
func (a *App) Serve(ctx context.Context) error {
	go a.Sessions.RunJanitor(ctx, sessionSweepInterval, a.cfg.SessionTTL)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + a.cfg.Port,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return ListenAndShutdown(ctx, srv)
}

// Close releases the printer and the database pool.
func (a *App) Close() {
	if a.Printer.Connected() {
		_ = a.Printer.Disconnect()
	}
	if err := db.CloseDB(); err != nil {
		log.Printf("⚠️  Error closing database: %v", err)
	}
}

// ListenAndShutdown serves srv and shuts it down gracefully once ctx is done.
func ListenAndShutdown(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("🛑 Shutting down %s", srv.Addr)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	return nil
}
