package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/aniparty/server/internal/config"
	"github.com/aniparty/server/internal/handler"
	"github.com/aniparty/server/internal/hub"
	"github.com/aniparty/server/internal/registry"
	"github.com/aniparty/server/internal/service"
	pkglog "github.com/aniparty/server/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "aniparty",
	})
	logger := pkglog.L()

	// Registry and hub hold all room state for the process lifetime.
	reg := registry.New()
	wsHub := hub.NewHub(cfg.WebSocket)

	partySvc := service.NewPartyService(reg, wsHub)

	wsHandler := handler.NewWSHandler(wsHub, partySvc, cfg.WebSocket)
	httpHandler := handler.NewHTTPHandler(partySvc)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	httpHandler.RegisterRoutes(r)
	wsHandler.RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return wsHub.Run(gCtx)
	})

	g.Go(func() error {
		logger.Info().Str("addr", addr).Msg("aniparty server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("server error")
	}

	logger.Info().Msg("aniparty server stopped")
}
