package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"ticketdesk/application/auth"
	"ticketdesk/application/health"
	"ticketdesk/application/tickets/domain"
	tickethandler "ticketdesk/application/tickets/handler"
	ticketservice "ticketdesk/application/tickets/service"
	ticketstore "ticketdesk/application/tickets/store"
	"ticketdesk/internal/kvstore"
	"ticketdesk/middleware"
)

func main() {
	z := NewLogger()
	defer z.Sync()

	if err := godotenv.Load(); err != nil {
		z.Info("no .env file found, using environment variables")
	}

	// Storage is best-effort: if the backend cannot be opened the
	// service still runs, memory-only, and says so in /health.
	var persister domain.Persister
	if kv, err := kvstore.Open(z); err != nil {
		z.Warn("durable storage unavailable, running memory-only", zap.Error(err))
	} else {
		persister = kv
	}

	store := ticketstore.New(persister, z)
	store.Load()

	r := SetupRouter(store, persister, z)

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  55 * time.Second,
		WriteTimeout: 55 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		z.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			z.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	z.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		z.Warn("shutdown incomplete", zap.Error(err))
	}
}

func NewLogger() *zap.Logger {
	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return zapLogger
}

// SetupRouter wires the middleware and feature handlers onto a gin
// engine. The store is constructed by the caller so tests can inject
// their own persister and clock.
func SetupRouter(store domain.Store, persister domain.Persister, z *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestInit())
	r.Use(middleware.ResponseInit(z))

	healthRepo := health.NewRepository(persister)
	healthSvc := health.NewService(healthRepo)
	healthHandler := health.NewHandler(healthSvc)

	authSvc := auth.NewService(persister, z)
	authHandler := auth.NewHandler(authSvc)

	ticketsSvc := ticketservice.NewService(store)
	ticketsHandler := tickethandler.NewHandler(store, ticketsSvc, authSvc)

	api := r.Group("")
	healthHandler.RegisterRoutes(api)
	authHandler.RegisterRoutes(api)
	ticketsHandler.RegisterRoutes(api)

	return r
}
