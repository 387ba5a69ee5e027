package global

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"

	"talking_menu/config"
	"talking_menu/internal/registry"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	Users                 string // Người dùng (map từ Firebase UID)
	Dashboards            string // Dashboard: ranh giới sở hữu/billing
	Restaurants           string // Nhà hàng
	Chatbots              string // Cấu hình chatbot, 1:1 với nhà hàng
	Menus                 string // Menu, 1:1 với nhà hàng
	Chats                 string // Hội thoại của thực khách
	UserChats             string // Danh sách chat theo user
	CustomerSubscriptions string // Gói đăng ký của dashboard
	SubscriptionPackages  string // Gói dịch vụ (dữ liệu tham chiếu)
	TokenUsages           string // Token đã dùng theo tháng
	RestaurantAnalytics   string // Thống kê theo tháng của nhà hàng
}

// DefaultCollectionNames trả về tên collection mặc định
func DefaultCollectionNames() MongoDB_CollectionName {
	return MongoDB_CollectionName{
		Users:                 "users",
		Dashboards:            "dashboards",
		Restaurants:           "restaurants",
		Chatbots:              "chatbots",
		Menus:                 "menus",
		Chats:                 "chats",
		UserChats:             "user_chats",
		CustomerSubscriptions: "customer_subscriptions",
		SubscriptionPackages:  "subscription_packages",
		TokenUsages:           "token_usages",
		RestaurantAnalytics:   "restaurant_analytics",
	}
}

// Các biến toàn cục
var Validate *validator.Validate                                 // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                                // Phiên kết nối tới MongoDB
var MongoDB_ServerConfig *config.Configuration                   // Cấu hình của server
var MongoDB_ColNames MongoDB_CollectionName = DefaultCollectionNames() // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
