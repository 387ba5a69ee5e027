package main

import (
	"context"
	"time"

	"talking_menu/config"
	"talking_menu/internal/logger"

	subsvc "talking_menu/internal/api/subscription/service"
)

// InitDefaultData seed gói dịch vụ và gán quyền platform admin (nếu có cấu hình)
func InitDefaultData(cfg *config.Configuration, app *Application) {
	log := logger.GetAppLogger()
	log.Info("🔄 [INIT] Starting InitDefaultData...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. Gói dịch vụ: chỉ tạo gói chưa có, không ghi đè gói admin đã sửa
	log.Info("🔄 [INIT] Step 1: Seeding subscription packages...")
	pkgs, err := subsvc.LoadPackagesFile(cfg.SubscriptionPackagesFile)
	if err != nil {
		log.Fatalf("Failed to load subscription packages: %v", err)
	}
	ready, err := app.Catalog.Seed(ctx, pkgs)
	if err != nil {
		log.Fatalf("Failed to seed subscription packages: %v", err)
	}
	log.Infof("✅ [INIT] Step 1: %d package(s) ready", len(ready))

	// 2. Platform admin
	if cfg.PlatformAdminUID == "" {
		log.Info("PLATFORM_ADMIN_UID not set, skip platform admin bootstrap")
	} else {
		log.Info("🔄 [INIT] Step 2: Promoting platform admin...")
		if err := app.Auth.PromotePlatformAdmin(ctx, cfg.PlatformAdminUID); err != nil {
			log.WithError(err).Error("❌ [INIT] Step 2: Failed to promote platform admin")
		} else {
			log.Info("✅ [INIT] Step 2: Platform admin ready")
		}
	}

	log.Info("✅ [INIT] InitDefaultData completed successfully")
}
