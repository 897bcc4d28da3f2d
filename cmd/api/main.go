package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"spincrm/internal/app"
	"spincrm/internal/config"
	"spincrm/internal/domain/feed"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.AppEnv == "prod" || cfg.AppEnv == "production" || cfg.AppEnv == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := feed.NewHub()
	a, err := app.Open(ctx, cfg, hub, nil)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	if err := a.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := a.Warm(ctx); err != nil {
		log.Fatalf("warm: %v", err)
	}

	unsubscribe := a.Sessions.OnAuthStateChange(hub.HandleAuthChange)
	defer unsubscribe()

	r := app.NewRouter(a, hub)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("listening addr=%s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown_failed error=%q", err.Error())
	}
	a.Close(shutdownCtx)
	log.Println("server stopped")
}
