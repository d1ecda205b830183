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

	"agora/internal/config"
	"agora/internal/db"
	"agora/internal/logger"
	"agora/internal/router"
	"agora/internal/services"
	"agora/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	gin.SetMode(cfg.GinMode)

	gdb, err := db.Open(cfg, zl)
	if err != nil {
		zl.Fatal("open database", zap.Error(err))
	}
	if cfg.SeedDemo {
		if err := db.Seed(gdb, zl); err != nil {
			zl.Fatal("seed demo data", zap.Error(err))
		}
	}

	images, err := services.NewImageStore(cfg.UploadDir, cfg.MaxUploadBytes())
	if err != nil {
		zl.Fatal("prepare upload dir", zap.Error(err))
	}
	md, err := utils.NewMarkdownRenderer(1024, 30*time.Minute)
	if err != nil {
		zl.Fatal("init markdown cache", zap.Error(err))
	}

	r := router.New(router.Deps{
		Config:   cfg,
		Log:      zl,
		Auth:     services.NewAuthService(gdb, zl),
		Content:  services.NewContentService(gdb, images, zl),
		Listings: services.NewListingService(gdb, zl),
		Markdown: md,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zl.Info("agora server starting", zap.String("addr", srv.Addr), zap.String("db", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("forced shutdown", zap.Error(err))
	}
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
	zl.Info("server exited")
}
