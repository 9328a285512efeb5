package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"giftcard-store/internal/checkout"
	"giftcard-store/internal/config"
	"giftcard-store/internal/db"
	"giftcard-store/internal/httpserver"
	"giftcard-store/internal/paypal"
	"giftcard-store/internal/repository/cartsession"
	giftcardrepo "giftcard-store/internal/repository/giftcard"
	cartsvc "giftcard-store/internal/service/cart"
	catalogsvc "giftcard-store/internal/service/catalog"
	ordersvc "giftcard-store/internal/service/order"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	giftCardRepo := giftcardrepo.NewPostgres(dbpool, logger)
	catalogService := catalogsvc.New(giftCardRepo, cfg.Currency)
	cartService := cartsvc.New(cartsession.NewMemory())

	provider := paypal.New(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalClientSecret, logger)
	orderService := ordersvc.New(provider, cfg.Currency, logger)

	checkoutManager := checkout.NewManager(orderService)
	bootstrap := checkout.NewBootstrap(func() (checkout.ScriptConfig, error) {
		if cfg.PayPalPublicClientID == "" {
			return checkout.ScriptConfig{}, errors.New("paypal public client id not configured")
		}
		return checkout.ScriptConfig{
			ClientID:   cfg.PayPalPublicClientID,
			Currency:   cfg.Currency,
			Components: "buttons",
			Intent:     "capture",
		}, nil
	})

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CatalogSvc: catalogService,
		CartSvc:    cartService,
		OrderSvc:   orderService,
		Checkout:   checkoutManager,
		Bootstrap:  bootstrap,
	}, cfg.CORSOrigins)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
