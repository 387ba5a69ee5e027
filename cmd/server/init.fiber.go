package main

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"talking_menu/config"
	basehdl "talking_menu/internal/api/base/handler"
	chathdl "talking_menu/internal/api/chat/handler"
	"talking_menu/internal/api/router"
	"talking_menu/internal/common"
	"talking_menu/internal/logger"
	"talking_menu/internal/metrics"
)

// fiberErrorToCommon chuyển *fiber.Error (route không tồn tại, body quá lớn, ...) sang lỗi chuẩn
func fiberErrorToCommon(err error) error {
	e, ok := err.(*fiber.Error)
	if !ok {
		return err
	}
	code := common.ErrCodeInternalServer
	switch e.Code {
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge:
		code = common.ErrCodeValidationInput
	case fiber.StatusUnauthorized:
		code = common.ErrCodeAuthToken
	case fiber.StatusForbidden:
		code = common.ErrCodeAuthRole
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		code = common.ErrCodeDatabaseQuery
	}
	return common.NewError(code, e.Message, e.Code, nil)
}

// InitFiberApp khởi tạo ứng dụng Fiber với các middleware cần thiết
func InitFiberApp(cfg *config.Configuration, m *metrics.Metrics, handlers *router.Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		// =========================================
		// 1. CẤU HÌNH CƠ BẢN
		// =========================================
		AppName:       "Talking Menu API",
		ServerHeader:  "Talking Menu API",
		StrictRouting: false,
		CaseSensitive: true,
		UnescapePath:  true,

		// =========================================
		// 2. CẤU HÌNH PERFORMANCE
		// =========================================
		BodyLimit:       4 * 1024 * 1024, // Menu lớn nhất vài trăm món
		Concurrency:     256 * 1024,
		ReadBufferSize:  8192,
		WriteBufferSize: 4096,

		// =========================================
		// 3. CẤU HÌNH TIMEOUT
		// =========================================
		// WriteTimeout phải dài hơn thời gian stream của LLM
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.OpenAI_TimeoutSeconds+30) * time.Second,
		IdleTimeout:  120 * time.Second,

		// =========================================
		// 4. CẤU HÌNH ERROR HANDLING
		// =========================================
		ErrorHandler: func(c fiber.Ctx, err error) error {
			mapped := fiberErrorToCommon(err)
			status := common.StatusOf(mapped)
			if status >= common.StatusInternalServerError {
				logger.WithRequest(c).WithError(err).Error("Request error")
			}
			return basehdl.WriteError(c, mapped)
		},
	})

	// =========================================
	// MIDDLEWARE STACK
	// =========================================

	// 1. Request ID Middleware
	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return fmt.Sprintf("%d", time.Now().UnixNano())
		},
	}))

	// 2. Metrics Middleware (đếm theo route pattern)
	if m != nil {
		app.Use(m.Middleware())
	}

	// 3. CORS Middleware - đặt sớm để xử lý preflight
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins(),
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Request-ID",
			"X-Requested-With",
			chathdl.HeaderChatID,
			chathdl.HeaderSessionToken,
		},
		AllowCredentials: cfg.CORS_AllowCredentials,
		// Client cần đọc chat id/session token từ response của send-message
		ExposeHeaders: []string{"Content-Length", "X-Request-ID", chathdl.HeaderChatID, chathdl.HeaderSessionToken},
		MaxAge:        24 * 60 * 60,
	}))

	// 4. Security Headers Middleware
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	})

	// 5. Rate Limiting Middleware
	log := logger.GetAppLogger()
	if cfg.RateLimit_Enabled && cfg.RateLimit_Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit_Max,
			Expiration: time.Duration(cfg.RateLimit_Window) * time.Second,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				return basehdl.WriteError(c, common.NewError(
					common.ErrCodeBusinessOperation,
					"Too many requests, please try again later",
					common.StatusTooManyRequests,
					nil,
				))
			},
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/health" || c.Path() == "/metrics" || c.Method() == fiber.MethodOptions
			},
		}))
		log.Infof("Rate limiting enabled: %d requests per %d seconds", cfg.RateLimit_Max, cfg.RateLimit_Window)
	} else {
		log.Info("Rate limiting disabled")
	}

	// 6. Recover Middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			logger.WithRequest(c).WithField("panic", e).Error("Panic recovered")
		},
	}))

	router.SetupRoutes(app, handlers)

	return app
}
