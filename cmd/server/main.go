package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"talking_menu/internal/database"
	"talking_menu/internal/global"
	"talking_menu/internal/logger"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	// Logger tự đọc environment variables để cấu hình
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// Hàm main
func main() {
	initLogger()
	defer logger.Shutdown()
	log := logger.GetAppLogger()

	// Config, validator, MongoDB, registry, index
	InitGlobal()
	cfg := global.MongoDB_ServerConfig

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := initIdentityVerifier(rootCtx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize identity verifier: %v", err)
	}

	stores, err := buildMongoStores()
	if err != nil {
		log.Fatalf("Failed to initialize stores: %v", err)
	}
	app := BuildApplication(cfg, stores, verifier)

	InitDefaultData(cfg, app)

	// Background: email queue và subscription worker
	if app.Queue != nil {
		app.Queue.Start(rootCtx)
		log.Info("📦 [DELIVERY] Notification queue started")
	}
	if app.Worker != nil {
		if err := app.Worker.Start(rootCtx); err != nil {
			log.Fatalf("Failed to start subscription worker: %v", err)
		}
	}

	server := InitFiberApp(cfg, app.Metrics, app.Handlers)

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(map[string]interface{}{
			"address":  cfg.Address,
			"protocol": "HTTP",
		}).Info("Starting Fiber server...")
		errCh <- server.Listen(cfg.Address, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("Error in Fiber Listen")
		}
	case <-rootCtx.Done():
		log.Info("Shutdown signal received")
	}

	shutdown(app, server)
}

// shutdown dừng server rồi tới các thành phần nền, MongoDB đóng sau cùng
func shutdown(app *Application, server *fiber.App) {
	log := logger.GetAppLogger()

	// Stream chat đang chạy được tối đa 30s để kết thúc
	if err := server.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.WithError(err).Warn("Fiber shutdown did not complete cleanly")
	}
	if app.Worker != nil {
		app.Worker.Stop()
	}
	if app.Queue != nil {
		app.Queue.Stop()
	}
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			log.WithError(err).Warn("Failed to close Redis client")
		}
	}
	if err := database.CloseInstance(global.MongoDB_Session); err != nil {
		log.WithError(err).Warn("Failed to close MongoDB connection")
	}
	log.Info("Server stopped")
}
