package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kart_back_end/internal/cache"
	"kart_back_end/internal/config"
	"kart_back_end/internal/database"
	"kart_back_end/internal/handlers/product"
	"kart_back_end/internal/handlers/user"
	"kart_back_end/internal/logger"
	"kart_back_end/internal/middleware"
	"kart_back_end/internal/repository"
	"kart_back_end/internal/routes"
	"kart_back_end/internal/services"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conns, err := database.Connect(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	defer conns.Close()

	// Stores
	catalog := repository.NewProductCatalog(conns.Scylla)
	users := repository.NewUserStore(conns.Scylla)
	carts := repository.NewCartStore(conns.Redis)
	products := cache.NewProductCache(conns.Redis, catalog, cache.ProductCacheTTL, zlog)

	// Services
	var search services.ProductSearcher
	if conns.Elastic != nil {
		search = services.NewProductSearch(conns.Elastic, cfg.ElasticIndex, zlog)
	}
	var images services.ImageSigner
	if conns.MinIO != nil {
		images = services.NewImageURLs(conns.MinIO, cfg.MinIOBucket, cfg.ImageURLTTL)
	}

	cartOpts := []services.CartOption{services.WithPaymentOption(cfg.DefaultPaymentOption)}
	if cfg.SMTPHost != "" {
		cartOpts = append(cartOpts, services.WithReceipts(services.NewMailer(services.MailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}, zlog)))
	}

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.AccessTokenLifetime)
	authSvc := services.NewAuthService(users, tokens, zlog)
	userSvc := services.NewUserService(users, cfg.DefaultWalletMoney, zlog)
	cartSvc := services.NewCartService(products, carts, users, zlog, cartOpts...)
	productSvc := services.NewProductService(products, search, images, zlog)

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.Gin(zlog))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Dependencies{
		Auth:          user.NewAuthHandler(userSvc, authSvc),
		Users:         user.NewUserHandler(userSvc),
		Cart:          user.NewCartHandler(cartSvc, carts, cfg.CORSOrigins, zlog),
		Products:      product.NewHandler(productSvc),
		Authenticator: authSvc,
		Limiter:       middleware.NewRateLimiter(cache.NewCounter(conns.Redis), zlog),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("🚀 kart server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
