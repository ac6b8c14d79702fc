package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/formworks/formworks/internal/config"
	"github.com/formworks/formworks/internal/http/api"
	"github.com/formworks/formworks/internal/mail"
	"github.com/formworks/formworks/internal/ratelimit"
	"github.com/formworks/formworks/internal/store"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// RunServer opens the backing store, wires the API surface, and serves until
// the context is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	storeCfg, err := config.LoadStoreConfig(configPath)
	if err != nil {
		return err
	}
	jwtCfg, err := config.LoadJWTConfig(configPath)
	if err != nil {
		return err
	}
	mailCfg, err := config.LoadMailConfig(configPath)
	if err != nil {
		return err
	}

	st, err := store.Open(ctx, storeCfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if errClose := st.Close(context.Background()); errClose != nil {
			log.WithError(errClose).Warn("store close failed")
		}
	}()

	limiter, err := ratelimit.New()
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())

	api.RegisterRoutes(engine, st, jwtCfg, mail.New(mailCfg), limiter)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()
	log.WithField("port", port).Info("server started")

	select {
	case errServe := <-serveErr:
		if errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			return errServe
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
		return errShutdown
	}
	log.Info("server stopped")
	return nil
}

// requestLogger logs each request with method, path, status, and latency.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request")
	}
}
