// Package router đăng ký toàn bộ route của API.
package router

import (
	"github.com/gofiber/fiber/v3"

	authhdl "talking_menu/internal/api/auth/handler"
	authmodels "talking_menu/internal/api/auth/models"
	"talking_menu/internal/api/authz"
	basehdl "talking_menu/internal/api/base/handler"
	chathdl "talking_menu/internal/api/chat/handler"
	dashboardhdl "talking_menu/internal/api/dashboard/handler"
	employeehdl "talking_menu/internal/api/employee/handler"
	"talking_menu/internal/api/middleware"
	restauranthdl "talking_menu/internal/api/restaurant/handler"
	subscriptionhdl "talking_menu/internal/api/subscription/handler"
)

// ============================================================================
// CÁCH GẮN MIDDLEWARE CHO ROUTE
// ============================================================================
//
// Fiber v3 đổi thứ tự tham số của router.Get(path, handler, middleware...), nên
// router.Get(path, authMiddleware, handler) không chạy middleware như mong đợi.
// group.Use() thì khớp theo prefix và lan sang route khác cùng prefix
// (ví dụ /restaurants và /restaurants/:id/menu).
//
// Vì vậy mỗi route dùng một fiber.Handler duy nhất: middleware.Guarded(handler, guards...)
// chạy các guard theo thứ tự rồi mới tới handler.
//
// ============================================================================

// RoutePrefix chứa prefix của API
type RoutePrefix struct {
	Base string // Prefix cơ bản (/api)
}

// NewRoutePrefix tạo RoutePrefix mặc định
func NewRoutePrefix() RoutePrefix {
	return RoutePrefix{Base: "/api"}
}

// Handlers gom các handler và guard dùng để đăng ký route
type Handlers struct {
	Auth       *middleware.Authenticator
	Authorizer *authz.Authorizer

	System       *basehdl.SystemHandler
	User         *authhdl.AuthHandler
	Dashboard    *dashboardhdl.DashboardHandler
	Restaurant   *restauranthdl.RestaurantHandler
	Config       *restauranthdl.ConfigHandler
	Employee     *employeehdl.EmployeeHandler
	Subscription *subscriptionhdl.SubscriptionHandler
	Chat         *chathdl.ChatHandler

	// Metrics là handler /metrics (Prometheus), nil thì không đăng ký
	Metrics fiber.Handler
}

// Router quản lý việc định tuyến cho API
type Router struct {
	api fiber.Router
	h   *Handlers
}

// RegisterRoute đăng ký route với các guard chạy trước handler
func RegisterRoute(router fiber.Router, method, path string, handler fiber.Handler, guards ...middleware.Guard) {
	h := middleware.Guarded(handler, guards...)
	switch method {
	case fiber.MethodGet:
		router.Get(path, h)
	case fiber.MethodPost:
		router.Post(path, h)
	case fiber.MethodPut:
		router.Put(path, h)
	case fiber.MethodPatch:
		router.Patch(path, h)
	case fiber.MethodDelete:
		router.Delete(path, h)
	}
}

// SetupRoutes đăng ký /health, /metrics và toàn bộ route dưới /api
func SetupRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", h.System.HandleHealth)
	if h.Metrics != nil {
		app.Get("/metrics", h.Metrics)
	}

	prefix := NewRoutePrefix()
	api := app.Group(prefix.Base)
	api.Get("/health", h.System.HandleHealth)

	r := &Router{api: api, h: h}
	r.registerAuthRoutes()
	r.registerDashboardRoutes()
	r.registerRestaurantRoutes()
	r.registerMenuRoutes()
	r.registerChatbotRoutes()
	r.registerEmployeeRoutes()
	r.registerSubscriptionRoutes()
	r.registerChatRoutes()
}

func (r *Router) registerAuthRoutes() {
	verify := r.h.Auth.VerifyIdentity()
	auth := r.h.Auth.RequireAuth()

	RegisterRoute(r.api, fiber.MethodPost, "/auth/signup", r.h.User.HandleSignUp, verify)
	RegisterRoute(r.api, fiber.MethodPost, "/auth/signin", r.h.User.HandleSignIn, verify)
	RegisterRoute(r.api, fiber.MethodPost, "/auth/google", r.h.User.HandleGoogleSignIn, verify)
	RegisterRoute(r.api, fiber.MethodGet, "/auth/user-access/:userId", r.h.User.HandleGetUserAccess, auth)

	RegisterRoute(r.api, fiber.MethodGet, "/user", r.h.User.HandleGetProfile, auth)
	RegisterRoute(r.api, fiber.MethodPut, "/user", r.h.User.HandleUpdateProfile, auth)
	RegisterRoute(r.api, fiber.MethodPut, "/user/:userId/role", r.h.User.HandleAssignRole, auth, middleware.RequirePlatformAdmin())
}

func (r *Router) registerDashboardRoutes() {
	auth := r.h.Auth.RequireAuth()

	RegisterRoute(r.api, fiber.MethodPost, "/dashboards", r.h.Dashboard.HandleCreate, auth)
	RegisterRoute(r.api, fiber.MethodGet, "/dashboards", r.h.Dashboard.HandleList, auth)
	RegisterRoute(r.api, fiber.MethodPost, "/dashboards/:dashboardId/restaurants", r.h.Restaurant.HandleCreate,
		auth, middleware.Authorize(r.h.Authorizer, authz.ResourceDashboard, "dashboardId"))
}

func (r *Router) registerRestaurantRoutes() {
	auth := r.h.Auth.RequireAuth()
	canAccess := middleware.Authorize(r.h.Authorizer, authz.ResourceRestaurant, "restaurantId")
	isOwner := middleware.Authorize(r.h.Authorizer, authz.ResourceRestaurantOwner, "restaurantId")

	RegisterRoute(r.api, fiber.MethodGet, "/restaurants", r.h.Restaurant.HandleList, auth, middleware.RequirePlatformAdmin())

	RegisterRoute(r.api, fiber.MethodGet, "/restaurant/:restaurantId", r.h.Restaurant.HandleGet, auth, canAccess)
	RegisterRoute(r.api, fiber.MethodPut, "/restaurant/:restaurantId", r.h.Restaurant.HandleUpdate, auth, canAccess)
	RegisterRoute(r.api, fiber.MethodDelete, "/restaurant/:restaurantId", r.h.Restaurant.HandleDelete, auth, isOwner)
	RegisterRoute(r.api, fiber.MethodPut, "/restaurant/:restaurantId/transfer", r.h.Restaurant.HandleTransfer, auth, isOwner)
	RegisterRoute(r.api, fiber.MethodGet, "/restaurant/:restaurantId/analytics", r.h.Restaurant.HandleAnalytics, auth, canAccess)
	RegisterRoute(r.api, fiber.MethodGet, "/restaurant/:restaurantId/chats", r.h.Chat.HandleListByRestaurant, auth, canAccess)

	RegisterRoute(r.api, fiber.MethodGet, "/token-usage/:restaurantId", r.h.Subscription.HandleTokenUsage, auth, canAccess)
}

// Menu được đọc công khai (trang chat của thực khách), ghi cần quyền trên nhà hàng
func (r *Router) registerMenuRoutes() {
	auth := r.h.Auth.RequireAuth()
	canAccess := middleware.Authorize(r.h.Authorizer, authz.ResourceRestaurant, "restaurantId")

	RegisterRoute(r.api, fiber.MethodGet, "/restaurants/:restaurantId/menu", r.h.Config.HandleGetMenu)
	RegisterRoute(r.api, fiber.MethodPost, "/restaurants/:restaurantId/menu", r.h.Config.HandleAddMenuItems, auth, canAccess)
	RegisterRoute(r.api, fiber.MethodDelete, "/restaurants/:restaurantId/menu", r.h.Config.HandleBulkDeleteMenuItems, auth, canAccess)
	RegisterRoute(r.api, fiber.MethodPut, "/restaurants/:restaurantId/menu/:menuItemId", r.h.Config.HandleUpdateMenuItem, auth, canAccess)
	RegisterRoute(r.api, fiber.MethodDelete, "/restaurants/:restaurantId/menu/:menuItemId", r.h.Config.HandleDeleteMenuItem, auth, canAccess)
}

// Chatbot được đọc công khai (câu hỏi gợi ý, trạng thái), ghi cần quyền trên nhà hàng
func (r *Router) registerChatbotRoutes() {
	auth := r.h.Auth.RequireAuth()
	canAccess := middleware.Authorize(r.h.Authorizer, authz.ResourceRestaurant, "restaurantId")

	RegisterRoute(r.api, fiber.MethodGet, "/chatbot/:restaurantId", r.h.Config.HandleGetChatbot)
	RegisterRoute(r.api, fiber.MethodPatch, "/chatbot/:restaurantId", r.h.Config.HandleUpdateChatbot, auth, canAccess)
	RegisterRoute(r.api, fiber.MethodPatch, "/chatbot/:restaurantId/suggested-questions", r.h.Config.HandleSetSuggestedQuestions, auth, canAccess)
	RegisterRoute(r.api, fiber.MethodPatch, "/chatbot/:restaurantId/status", r.h.Config.HandleSetChatbotStatus, auth, canAccess)
}

// Quyền trên dashboard được kiểm tra trong handler vì dashboardId nằm trong body
func (r *Router) registerEmployeeRoutes() {
	auth := r.h.Auth.RequireAuth()
	managers := middleware.RequireRole(authmodels.RoleRestaurantMainAdmin)

	RegisterRoute(r.api, fiber.MethodPost, "/employee-access", r.h.Employee.HandleGrant, auth, managers)
	RegisterRoute(r.api, fiber.MethodDelete, "/employee-access/revoke", r.h.Employee.HandleRevoke, auth, managers)
}

func (r *Router) registerSubscriptionRoutes() {
	auth := r.h.Auth.RequireAuth()
	admin := middleware.RequirePlatformAdmin()

	RegisterRoute(r.api, fiber.MethodGet, "/subscription-package", r.h.Subscription.HandleListPackages, auth)
	RegisterRoute(r.api, fiber.MethodGet, "/subscription-package/:id", r.h.Subscription.HandleGetPackage, auth)
	RegisterRoute(r.api, fiber.MethodPost, "/subscription-package", r.h.Subscription.HandleCreatePackage, auth, admin)
	RegisterRoute(r.api, fiber.MethodPut, "/subscription-package/:id", r.h.Subscription.HandleUpdatePackage, auth, admin)
	RegisterRoute(r.api, fiber.MethodDelete, "/subscription-package/:id", r.h.Subscription.HandleDeletePackage, auth, admin)

	RegisterRoute(r.api, fiber.MethodGet, "/subscriptions", r.h.Subscription.HandleListSubscriptions, auth, admin)
	RegisterRoute(r.api, fiber.MethodGet, "/subscriptions/:id", r.h.Subscription.HandleGetSubscription, auth, admin)
	RegisterRoute(r.api, fiber.MethodPost, "/subscriptions", r.h.Subscription.HandleCreateSubscription, auth, admin)
	RegisterRoute(r.api, fiber.MethodPut, "/subscriptions/:id", r.h.Subscription.HandleUpdateSubscription, auth, admin)
	RegisterRoute(r.api, fiber.MethodDelete, "/subscriptions/:id", r.h.Subscription.HandleDeleteSubscription, auth, admin)
}

// Thực khách có thể chat ẩn danh; seen/star dành cho người quản lý nhà hàng
func (r *Router) registerChatRoutes() {
	optional := r.h.Auth.OptionalAuth()
	auth := r.h.Auth.RequireAuth()

	RegisterRoute(r.api, fiber.MethodPost, "/chat/send-message", r.h.Chat.HandleSendMessage, optional)
	RegisterRoute(r.api, fiber.MethodGet, "/chat/:chatId", r.h.Chat.HandleGetChat, optional)
	RegisterRoute(r.api, fiber.MethodPost, "/chat/:chatId/seen", r.h.Chat.HandleMarkSeen, auth)
	RegisterRoute(r.api, fiber.MethodPost, "/chat/:chatId/star", r.h.Chat.HandleStar, auth)
}
