package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/casaphe/coffee_shop/internal/config"
	"github.com/casaphe/coffee_shop/internal/httpserver"
	"github.com/casaphe/coffee_shop/internal/logging"
	"github.com/casaphe/coffee_shop/internal/mykafka"
	"github.com/casaphe/coffee_shop/internal/notify"
	"github.com/casaphe/coffee_shop/internal/repo"
	"github.com/casaphe/coffee_shop/internal/service"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(context.Background(), cfg)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = mykafka.NewProducer(cfg.KafkaBrokers)
	}

	r := repo.NewGormRepo(db)
	notifier := &notify.Notifier{Repo: r, Producer: producer, Topic: cfg.KafkaTopic}

	cartSvc := &service.CartService{Repo: r}
	loyaltySvc := &service.LoyaltyService{Repo: r, Rate: cfg.PointsRate}
	orderSvc := &service.OrderService{
		Repo:       r,
		Cart:       cartSvc,
		Loyalty:    loyaltySvc,
		Notifier:   notifier,
		DeliveryKM: cfg.DefaultDeliveryKM,
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), httpserver.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		JWTSecret:           cfg.JWTSecret,
		CartHandler:         &httpserver.CartHTTP{Svc: cartSvc, Orders: orderSvc},
		VoucherHandler:      &httpserver.VoucherHTTP{Svc: &service.VoucherService{Repo: r}},
		OrderHandler:        &httpserver.OrderHTTP{Svc: orderSvc},
		LoyaltyHandler:      &httpserver.LoyaltyHTTP{Svc: loyaltySvc},
		NotificationHandler: &httpserver.NotificationHTTP{Svc: &service.NotificationService{Repo: r}},
		StoreHandler:        &httpserver.StoreHTTP{Svc: &service.StoreService{Repo: r}},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
