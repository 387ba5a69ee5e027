package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"talking_menu/config"
	authsvc "talking_menu/internal/api/auth/service"
	dashboardsvc "talking_menu/internal/api/dashboard/service"
	subsvc "talking_menu/internal/api/subscription/service"
	"talking_menu/internal/database"
	"talking_menu/internal/global"
	"talking_menu/internal/store"
)

// session là kết nối MongoDB dùng chung cho một lệnh
type session struct {
	cfg    *config.Configuration
	client *mongo.Client
}

func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if envFile != "" {
		return config.NewConfig(envFile)
	}
	return config.NewConfig()
}

// connect đọc config, kết nối MongoDB và đăng ký collection
func connect(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	global.InitValidator()
	global.MongoDB_ServerConfig = cfg

	client, err := database.GetInstance(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	global.MongoDB_Session = client
	if err := global.RegisterCollections(client.Database(cfg.MongoDB_DBName)); err != nil {
		_ = database.CloseInstance(client)
		return nil, err
	}
	return &session{cfg: cfg, client: client}, nil
}

func (s *session) Close() {
	_ = database.CloseInstance(s.client)
}

func (s *session) packageStore() (store.SubscriptionPackageStore, error) {
	return subsvc.NewPackageService()
}

func (s *session) userStore() (store.UserStore, error) {
	return authsvc.NewUserService()
}

func (s *session) billing() (*subsvc.BillingService, error) {
	packages, err := subsvc.NewPackageService()
	if err != nil {
		return nil, err
	}
	subscriptions, err := subsvc.NewCustomerSubscriptionService()
	if err != nil {
		return nil, err
	}
	dashboards, err := dashboardsvc.NewDashboardService()
	if err != nil {
		return nil, err
	}
	return subsvc.NewBillingService(&store.Stores{
		Dashboards:            dashboards,
		Packages:              packages,
		CustomerSubscriptions: subscriptions,
	}), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
