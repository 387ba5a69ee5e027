package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"talking_menu/config"
	authhdl "talking_menu/internal/api/auth/handler"
	authsvc "talking_menu/internal/api/auth/service"
	"talking_menu/internal/api/authz"
	basehdl "talking_menu/internal/api/base/handler"
	chathdl "talking_menu/internal/api/chat/handler"
	chatsvc "talking_menu/internal/api/chat/service"
	dashboardhdl "talking_menu/internal/api/dashboard/handler"
	dashboardsvc "talking_menu/internal/api/dashboard/service"
	employeehdl "talking_menu/internal/api/employee/handler"
	employeesvc "talking_menu/internal/api/employee/service"
	"talking_menu/internal/api/middleware"
	restauranthdl "talking_menu/internal/api/restaurant/handler"
	restaurantsvc "talking_menu/internal/api/restaurant/service"
	"talking_menu/internal/api/router"
	subscriptionhdl "talking_menu/internal/api/subscription/handler"
	subsvc "talking_menu/internal/api/subscription/service"
	"talking_menu/internal/delivery"
	"talking_menu/internal/delivery/channels"
	"talking_menu/internal/global"
	"talking_menu/internal/llm"
	"talking_menu/internal/logger"
	"talking_menu/internal/metrics"
	"talking_menu/internal/store"
	"talking_menu/internal/utility"
	"talking_menu/internal/worker"
)

// Application gom các thành phần đã khởi tạo để main có thể start/stop
type Application struct {
	Stores   *store.Stores
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	Handlers *router.Handlers

	Auth    *authsvc.AuthService
	Catalog *subsvc.CatalogService
	Billing *subsvc.BillingService

	Queue  *delivery.Queue // nil khi chưa cấu hình SMTP
	Redis  redis.UniversalClient
	Worker *worker.SubscriptionWorker // nil khi worker bị tắt
}

// buildMongoStores tạo các store dựa trên collection đã đăng ký trong registry
func buildMongoStores() (*store.Stores, error) {
	users, err := authsvc.NewUserService()
	if err != nil {
		return nil, err
	}
	dashboards, err := dashboardsvc.NewDashboardService()
	if err != nil {
		return nil, err
	}
	restaurants, err := restaurantsvc.NewRestaurantService()
	if err != nil {
		return nil, err
	}
	chatbots, err := restaurantsvc.NewChatbotService()
	if err != nil {
		return nil, err
	}
	menus, err := restaurantsvc.NewMenuService()
	if err != nil {
		return nil, err
	}
	analytics, err := restaurantsvc.NewAnalyticsService()
	if err != nil {
		return nil, err
	}
	chats, err := chatsvc.NewChatService()
	if err != nil {
		return nil, err
	}
	userChats, err := chatsvc.NewUserChatsService()
	if err != nil {
		return nil, err
	}
	packages, err := subsvc.NewPackageService()
	if err != nil {
		return nil, err
	}
	subscriptions, err := subsvc.NewCustomerSubscriptionService()
	if err != nil {
		return nil, err
	}
	usages, err := subsvc.NewTokenUsageService()
	if err != nil {
		return nil, err
	}

	return &store.Stores{
		Users:                 users,
		Dashboards:            dashboards,
		Restaurants:           restaurants,
		Chatbots:              chatbots,
		Menus:                 menus,
		Chats:                 chats,
		UserChats:             userChats,
		Analytics:             analytics,
		Packages:              packages,
		CustomerSubscriptions: subscriptions,
		TokenUsages:           usages,
	}, nil
}

// initChatLocker dùng Redis khi có REDIS_ADDR, ngược lại không khóa (chỉ hợp với một instance)
func initChatLocker(cfg *config.Configuration) (chatsvc.ChatLocker, redis.UniversalClient) {
	log := logger.GetAppLogger()
	if cfg.RedisAddr == "" {
		log.Warn("🔒 [CHAT] REDIS_ADDR chưa cấu hình, bỏ qua khóa theo chat")
		return chatsvc.NoopLocker{}, nil
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.RedisAddr},
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("🔒 [CHAT] Không ping được Redis, khóa sẽ được thử lại ở mỗi request")
	} else {
		log.Infof("🔒 [CHAT] Redis chat lock enabled (%s)", cfg.RedisAddr)
	}
	return chatsvc.NewRedisChatLocker(client, time.Duration(cfg.ChatLockTTLSeconds)*time.Second), client
}

// initNotificationQueue tạo hàng đợi email, nil khi chưa cấu hình SMTP
func initNotificationQueue(cfg *config.Configuration) *delivery.Queue {
	sender := channels.NewEmailSender(channels.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	if sender == nil {
		logger.GetAppLogger().Info("📦 [DELIVERY] SMTP_HOST chưa cấu hình, tắt email thông báo")
		return nil
	}
	return delivery.NewQueue(sender, 100)
}

// BuildApplication nối stores, services và handlers lại với nhau
func BuildApplication(cfg *config.Configuration, stores *store.Stores, verifier utility.IdentityVerifier) *Application {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)

	// Subscription
	catalog := subsvc.NewCatalogService(stores.Packages)
	billing := subsvc.NewBillingService(stores)
	accounting := subsvc.NewAccountingService(stores)

	// Dashboard / restaurant
	dashboards := dashboardsvc.NewLifecycleService(stores, catalog, billing)
	restaurants := restaurantsvc.NewLifecycleService(stores, dashboards)
	configSvc := restaurantsvc.NewConfigService(stores)
	analytics := restaurantsvc.NewAnalyticsReader(stores)

	// Employee access, email gửi qua queue nếu có
	queue := initNotificationQueue(cfg)
	var notifier employeesvc.Notifier
	if queue != nil {
		notifier = queue
	}
	access := employeesvc.NewAccessService(stores, notifier, cfg.FrontendURL)

	// Chat relay
	locker, redisClient := initChatLocker(cfg)
	if cfg.OpenAI_APIKey == "" {
		logger.GetAppLogger().Warn("🤖 [CHAT] OPENAI_API_KEY chưa cấu hình, send-message sẽ trả lỗi upstream")
	}
	streamer := llm.NewOpenAIClient(cfg.OpenAI_BaseURL, cfg.OpenAI_APIKey, cfg.OpenAI_Model, time.Duration(cfg.OpenAI_TimeoutSeconds)*time.Second)
	relay := chatsvc.NewRelayService(stores, accounting, streamer, locker, m, cfg.OpenAI_HistoryLimit)
	query := chatsvc.NewQueryService(stores)

	auth := authsvc.NewAuthService(stores.Users)
	authorizer := authz.NewAuthorizer(stores.Dashboards, stores.Restaurants)

	app := &Application{
		Stores:   stores,
		Metrics:  m,
		Registry: registry,
		Auth:     auth,
		Catalog:  catalog,
		Billing:  billing,
		Queue:    queue,
		Redis:    redisClient,
		Handlers: &router.Handlers{
			Auth:         middleware.NewAuthenticator(verifier, stores.Users),
			Authorizer:   authorizer,
			System:       basehdl.NewSystemHandler(global.MongoDB_Session),
			User:         authhdl.NewAuthHandler(auth),
			Dashboard:    dashboardhdl.NewDashboardHandler(dashboards),
			Restaurant:   restauranthdl.NewRestaurantHandler(restaurants, analytics),
			Config:       restauranthdl.NewConfigHandler(configSvc),
			Employee:     employeehdl.NewEmployeeHandler(access, authorizer),
			Subscription: subscriptionhdl.NewSubscriptionHandler(catalog, billing, accounting),
			Chat:         chathdl.NewChatHandler(relay, query),
			Metrics:      metricsHandler(registry),
		},
	}

	if cfg.SubscriptionWorkerEnabled {
		app.Worker = worker.NewSubscriptionWorker(billing, cfg.SubscriptionWorkerCron, m)
	}
	return app
}
