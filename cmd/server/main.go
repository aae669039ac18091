package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/billing/internal/backend"
	"github.com/mamadbah2/billing/internal/config"
	"github.com/mamadbah2/billing/internal/repository/sheets"
	"github.com/mamadbah2/billing/internal/scheduler"
	"github.com/mamadbah2/billing/internal/server/handlers"
	"github.com/mamadbah2/billing/internal/server/router"
	cashsvc "github.com/mamadbah2/billing/internal/service/cash"
	companysvc "github.com/mamadbah2/billing/internal/service/company"
	customersvc "github.com/mamadbah2/billing/internal/service/customers"
	dashboardsvc "github.com/mamadbah2/billing/internal/service/dashboard"
	inventorysvc "github.com/mamadbah2/billing/internal/service/inventory"
	invoicingsvc "github.com/mamadbah2/billing/internal/service/invoicing"
	productsvc "github.com/mamadbah2/billing/internal/service/products"
	reportingsvc "github.com/mamadbah2/billing/internal/service/reporting"
	userssvc "github.com/mamadbah2/billing/internal/service/users"
	whatsappsvc "github.com/mamadbah2/billing/internal/service/whatsapp"
	"github.com/mamadbah2/billing/pkg/clients/oauth"
	whatsappclient "github.com/mamadbah2/billing/pkg/clients/whatsapp"
	"github.com/mamadbah2/billing/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Reporting.Location()
	if err != nil {
		baseLogger.Fatal("invalid report timezone", zap.Error(err))
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := backend.Open(startCtx, cfg, loc, baseLogger.Named("backend"))
	cancelStart()
	if err != nil {
		baseLogger.Fatal("failed to open data backend", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close data backend", zap.Error(err))
		}
	}()

	var exporter reportingsvc.Exporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = sheetsRepo
	} else {
		baseLogger.Warn("google sheets not configured, report export disabled")
	}

	var notifier invoicingsvc.Notifier
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		notifier = whatsappsvc.NewInvoiceNotifier(whatsClient, loc, logger.Named(baseLogger, "svc.whatsapp"))
	} else {
		baseLogger.Warn("whatsapp not configured, invoice notices disabled")
	}

	tokens := userssvc.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	usersSvc := userssvc.NewService(store.Users, tokens, oauth.NewClient(cfg.OAuth), baseLogger.Named("svc.users"))
	invoicesSvc := invoicingsvc.NewService(store.Invoices, store.Customers, store.Products, notifier, loc, baseLogger.Named("svc.invoices"))
	reportingSvc := reportingsvc.NewService(store.Reports, exporter, loc, baseLogger.Named("svc.reporting"))
	dashboardSvc := dashboardsvc.NewService(store.Invoices, store.Products, store.Customers, baseLogger.Named("svc.dashboard"))

	gin.SetMode(gin.ReleaseMode)
	handlerLogger := baseLogger.Named("handlers")
	engine := router.New(router.Handlers{
		Auth:      handlers.NewAuthHandler(usersSvc, handlerLogger),
		Cash:      handlers.NewCashHandler(cashsvc.NewService(store.Cash, loc, baseLogger.Named("svc.cash")), handlerLogger),
		Inventory: handlers.NewInventoryHandler(inventorysvc.NewService(store.Inventory, baseLogger.Named("svc.inventory")), handlerLogger),
		Customers: handlers.NewCustomerHandler(customersvc.NewService(store.Customers, baseLogger.Named("svc.customers")), handlerLogger),
		Products:  handlers.NewProductHandler(productsvc.NewService(store.Products, baseLogger.Named("svc.products")), handlerLogger),
		Invoices:  handlers.NewInvoiceHandler(invoicesSvc, handlerLogger),
		Company:   handlers.NewCompanyHandler(companysvc.NewService(store.Companies, baseLogger.Named("svc.company")), handlerLogger),
		Reports:   handlers.NewReportHandler(reportingSvc, dashboardSvc, handlerLogger),
	}, usersSvc, cfg.Server.AllowedOrigins, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting.OverdueCronSchedule, loc, invoicesSvc, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("backend", cfg.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
