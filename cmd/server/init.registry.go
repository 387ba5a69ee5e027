package main

import (
	"github.com/sirupsen/logrus"

	"talking_menu/internal/global"
)

// InitRegistry đăng ký các collection MongoDB vào registry để các service lấy ra dùng
func InitRegistry() {
	db := global.MongoDB_Session.Database(global.MongoDB_ServerConfig.MongoDB_DBName)
	if err := global.RegisterCollections(db); err != nil {
		logrus.Fatalf("Failed to initialize collections: %v", err)
	}
	logrus.Info("Initialized collection registry")
}
