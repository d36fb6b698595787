package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/cart"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/catalog"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/config"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/db"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/httpapi"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/notify"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/order"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/promo"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/referral"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/sequence"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/stock"
	"github.com/GVMBT/PVNDORA-AI-SHOP-sub002/internal/user"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Postgres ---
	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			logger.Fatalf("db migrate: %v", err)
		}
	}

	// --- Redis ---
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	// --- RabbitMQ ---
	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		logger.Fatalf("rabbitmq connect: %v", err)
	}
	defer conn.Close()

	publisher, err := notify.NewPublisher(conn, sequence.NewRepository(pool), "storefront")
	if err != nil {
		logger.Fatalf("notify publisher: %v", err)
	}
	defer publisher.Close()

	// --- Wiring ---
	promoRepo := promo.NewRepository(pool)
	userRepo := user.NewRepository(pool)
	catalogRepo := catalog.NewRepository(pool)
	orderRepo := order.NewRepository(pool)

	cartStore := cart.NewRedisStore(redisClient, cfg.CartTTL)
	cartManager := cart.NewManager(cartStore, promoRepo)

	stockQuery := stock.NewQueryService(pool)
	reserver := stock.NewReservationService(pool)

	referrals := referral.NewService(userRepo, cfg.ReferralTiers)
	orchestrator := order.NewOrchestrator(cartManager, reserver, orderRepo, userRepo, promoRepo, referrals, publisher, logger)

	h := httpapi.NewHandler(cartManager, stockQuery, catalogRepo, orchestrator, orderRepo)
	r := httpapi.NewRouter(h)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("shutdown signal: %s", sig)
	case err := <-errCh:
		logger.Printf("fatal error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)
	cancel()

	logger.Printf("shutdown complete")
}
