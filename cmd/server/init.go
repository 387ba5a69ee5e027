package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"talking_menu/config"
	"talking_menu/internal/database"
	"talking_menu/internal/global"
	"talking_menu/internal/utility"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
}

// Hàm khởi tạo validator (đăng ký custom validators: no_xss, object_id, role, ...)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("Failed to initialize config: %v", err)
	}
	global.MongoDB_ServerConfig = cfg
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối database, đăng ký collection và tạo index
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	InitRegistry()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db := global.MongoDB_Session.Database(global.MongoDB_ServerConfig.MongoDB_DBName)
	if err := database.EnsureSchema(ctx, db); err != nil {
		logrus.Fatalf("Failed to ensure collections and indexes: %v", err)
	}
	logrus.Info("Ensured collections and indexes")
}

// initIdentityVerifier chọn verifier theo AUTH_PROVIDER
func initIdentityVerifier(ctx context.Context, cfg *config.Configuration) (utility.IdentityVerifier, error) {
	switch cfg.AuthProvider {
	case "local":
		logrus.Warn("AUTH_PROVIDER=local: token được ký bằng JWT_SECRET, chỉ dùng cho môi trường dev/test")
		return utility.NewLocalJWTVerifier(cfg.JwtSecret), nil
	default:
		if cfg.FirebaseProjectID == "" || cfg.FirebaseCredentialsPath == "" {
			return nil, fmt.Errorf("FIREBASE_PROJECT_ID và FIREBASE_CREDENTIALS_PATH là bắt buộc khi AUTH_PROVIDER=firebase")
		}
		verifier, err := utility.InitFirebase(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, err
		}
		logrus.Info("Firebase initialized successfully")
		return verifier, nil
	}
}
