package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cashloan/internal/backend"
	"cashloan/internal/cache"
	intconfig "cashloan/internal/config"
	router "cashloan/internal/http"
	"cashloan/internal/http/handlers"
	"cashloan/internal/repositories"
	"cashloan/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	log, err := utils.NewLogger(env.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	utils.SetDefaultCurrency(env.Locale, env.Currency)

	ctx := context.Background()

	audit := repositories.AuditRepository{}
	if db, err := intconfig.ConnectDB(env.DBDSN); err != nil {
		log.Warn("audit database unavailable, audit trail disabled", zap.Error(err))
	} else if db != nil {
		audit.DB = db
		if err := audit.EnsureSchema(ctx); err != nil {
			log.Warn("audit schema check failed", zap.Error(err))
		}
	}
	defer intconfig.CloseDB()

	var store cache.Cache = cache.NewMemory()
	if env.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, env.RedisAddr, env.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		} else {
			store = rc
			defer func() { _ = rc.Close() }()
		}
	}

	client := backend.New(backend.Options{
		BaseURL:  env.BackendURL,
		Timeout:  env.BackendTimeout,
		RetryMax: env.BackendRetryMax,
		Logger:   log,
	})

	r := router.NewRouter(env, &handlers.Gateway{
		Client:       client,
		Cache:        store,
		CacheTTL:     env.CacheTTL,
		Audit:        audit,
		Log:          log,
		TokenCookie:  env.TokenCookie,
		SecureCookie: env.CookieSecure,
		ExportLimit:  env.ExportLimit,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      env.BackendTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("gateway listening", zap.String("addr", env.AppAddr), zap.String("backend", env.BackendURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
		return
	}

	log.Info("server stopped")
}
