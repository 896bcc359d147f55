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

	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/audit"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/config"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/db"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/es"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/handlers"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/handlers/admin"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/handlers/cart"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/handlers/order"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/httpserver"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/logging"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/middleware/loggingmw"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/mykafka"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/token"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(cfg.JWT_SECRET, "JWT_SECRET")
	config.MustNonEmpty(cfg.REFRESH_SECRET, "REFRESH_SECRET")

	logger := logging.New(cfg.LogLevel)

	database, err := db.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	producer := mykafka.NewProducer([]string{cfg.KAFKA_ADDRESS})
	recorder := &audit.Recorder{Producer: producer}

	jwtSecret := []byte(cfg.JWT_SECRET)
	tokens := &token.Service{
		DB:            database,
		JWTSecret:     jwtSecret,
		RefreshSecret: []byte(cfg.REFRESH_SECRET),
	}

	var searchHandler *handlers.SearchHandler
	if cfg.ES_URL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init: %v", err)
		}
		searchHandler = handlers.NewSearchHandler(esClient, "products")
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowCredentials: true,
	}))
	e.Use(loggingmw.RequestLogger(logger))
	e.Static("/images", cfg.ImagesDir)

	deps := httpserver.Deps{
		JWTSecret:       jwtSecret,
		AuthHandler:     &handlers.AuthHandler{DB: database, Tokens: tokens, Audit: recorder},
		UserHandler:     &handlers.UserHandler{DB: database, Audit: recorder},
		ProductHandler:  &handlers.ProductHandler{DB: database, Audit: recorder},
		CategoryHandler: &handlers.CategoryHandler{DB: database, Audit: recorder},
		AddressHandler:  &handlers.AddressHandler{DB: database, Audit: recorder},
		SearchHandler:   searchHandler,
		CartHandler:     &cart.CartHandler{DB: database, Audit: recorder},
		OrderHandler:    &order.OrderHandler{DB: database, Audit: recorder},
		AdminHandler:    &admin.AdminHandler{DB: database, Audit: recorder},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
