// Package store định nghĩa các interface truy cập dữ liệu mà tầng nghiệp vụ phụ thuộc vào.
// Bản MongoDB nằm ở các package service của từng domain; bản in-memory ở memstore (dùng cho test).
package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "talking_menu/internal/api/auth/models"
	basemodels "talking_menu/internal/api/base/models"
	chatmodels "talking_menu/internal/api/chat/models"
	dashmodels "talking_menu/internal/api/dashboard/models"
	restmodels "talking_menu/internal/api/restaurant/models"
	submodels "talking_menu/internal/api/subscription/models"
)

// UserProfile là các field hồ sơ lấy từ identity provider
type UserProfile struct {
	Name      string
	Email     string
	AvatarURL string
}

// UserStore quản lý collection users. Mọi uid là Firebase UID.
type UserStore interface {
	FindByUID(ctx context.Context, uid string) (*authmodels.User, error)
	FindByEmail(ctx context.Context, email string) (*authmodels.User, error)
	FindByUIDs(ctx context.Context, uids []string) ([]authmodels.User, error)
	// FindUIDsByEmailLike tìm uid của các user có email chứa chuỗi con (không phân biệt hoa thường)
	FindUIDsByEmailLike(ctx context.Context, substr string) ([]string, error)
	FindByAccessibleRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]authmodels.User, error)
	// Upsert tạo user (role diner) nếu chưa có, ngược lại cập nhật hồ sơ
	Upsert(ctx context.Context, uid string, profile UserProfile) (*authmodels.User, error)
	UpdateProfile(ctx context.Context, uid string, name, avatarURL *string) (*authmodels.User, error)

	AddRole(ctx context.Context, uid, role string) error
	RemoveRoleIfNoRestaurants(ctx context.Context, uids []string, role string) (int64, error)
	AddAccessibleDashboard(ctx context.Context, uid string, dashboardID primitive.ObjectID) error
	RemoveAccessibleDashboard(ctx context.Context, uid string, dashboardID primitive.ObjectID) error
	AddAccessibleRestaurant(ctx context.Context, uid string, restaurantID primitive.ObjectID) error
	RemoveAccessibleRestaurant(ctx context.Context, uid string, restaurantID primitive.ObjectID) error
	PullAccessibleRestaurantFromAll(ctx context.Context, restaurantID primitive.ObjectID) error
	SetStarredChat(ctx context.Context, uid string, chatID primitive.ObjectID, starred bool) error
	PullStarredChats(ctx context.Context, chatIDs []primitive.ObjectID) error
}

// DashboardStore quản lý collection dashboards
type DashboardStore interface {
	Create(ctx context.Context, d dashmodels.Dashboard) (*dashmodels.Dashboard, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*dashmodels.Dashboard, error)
	FindByOwner(ctx context.Context, ownerUID string) (*dashmodels.Dashboard, error)
	FindByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) (*dashmodels.Dashboard, error)
	// FindForPrincipal trả về các dashboard mà uid là owner hoặc có trong userAccess
	FindForPrincipal(ctx context.Context, uid string) ([]dashmodels.Dashboard, error)
	SetSubscription(ctx context.Context, id, subscriptionID primitive.ObjectID) error
	AddRestaurant(ctx context.Context, id, restaurantID primitive.ObjectID) error
	RemoveRestaurant(ctx context.Context, id, restaurantID primitive.ObjectID) error
	PullRestaurantFromAll(ctx context.Context, restaurantID primitive.ObjectID) error
	// AddUserAccess thêm entry nếu userId chưa có trong roster
	AddUserAccess(ctx context.Context, id primitive.ObjectID, access authmodels.UserAccess) error
	RemoveUserAccess(ctx context.Context, id primitive.ObjectID, uid string) error
}

// RestaurantFilter lọc danh sách nhà hàng: Search khớp name/location, hoặc ownerId thuộc OwnerIDs
type RestaurantFilter struct {
	Search   string
	OwnerIDs []string
}

// RestaurantStore quản lý collection restaurants
type RestaurantStore interface {
	Create(ctx context.Context, r restmodels.Restaurant) (*restmodels.Restaurant, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*restmodels.Restaurant, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]restmodels.Restaurant, error)
	List(ctx context.Context, filter RestaurantFilter, page, limit int64) (*basemodels.PaginateResult[restmodels.Restaurant], error)
	Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*restmodels.Restaurant, error)
	SetMenu(ctx context.Context, id, menuID primitive.ObjectID) error
	AddChat(ctx context.Context, id, chatID primitive.ObjectID) error
	AddUserAccess(ctx context.Context, id primitive.ObjectID, access authmodels.UserAccess) error
	RemoveUserAccess(ctx context.Context, id primitive.ObjectID, uid string) error
	// TransferOwnership đổi ownerId và thay entry main admin bằng newOwner trong một lần ghi
	TransferOwnership(ctx context.Context, id primitive.ObjectID, newOwner authmodels.UserAccess) (*restmodels.Restaurant, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ChatbotStore quản lý collection chatbots (1:1 với restaurant)
type ChatbotStore interface {
	Create(ctx context.Context, c restmodels.Chatbot) (*restmodels.Chatbot, error)
	FindByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) (*restmodels.Chatbot, error)
	Update(ctx context.Context, restaurantID primitive.ObjectID, fields map[string]interface{}) (*restmodels.Chatbot, error)
	DeleteByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) error
}

// MenuStore quản lý collection menus (1:1 với restaurant)
type MenuStore interface {
	Create(ctx context.Context, m restmodels.Menu) (*restmodels.Menu, error)
	FindByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) (*restmodels.Menu, error)
	AddItems(ctx context.Context, restaurantID primitive.ObjectID, items []restmodels.MenuItem) (*restmodels.Menu, error)
	UpdateItem(ctx context.Context, restaurantID, itemID primitive.ObjectID, fields map[string]interface{}) (*restmodels.Menu, error)
	DeleteItems(ctx context.Context, restaurantID primitive.ObjectID, itemIDs []primitive.ObjectID) (*restmodels.Menu, error)
	DeleteByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) error
}

// ChatStore quản lý collection chats
type ChatStore interface {
	Create(ctx context.Context, c chatmodels.Chat) (*chatmodels.Chat, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*chatmodels.Chat, error)
	FindBySession(ctx context.Context, restaurantID primitive.ObjectID, sessionToken string) (*chatmodels.Chat, error)
	// FindLatestByUser trả chat cập nhật gần nhất của user tại nhà hàng
	FindLatestByUser(ctx context.Context, restaurantID primitive.ObjectID, uid string) (*chatmodels.Chat, error)
	ListByRestaurant(ctx context.Context, restaurantID primitive.ObjectID, page, limit int64) (*basemodels.PaginateResult[chatmodels.Chat], error)
	FindIDsByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]primitive.ObjectID, error)
	// AppendMessage thêm message vào cuối transcript, cộng usage (nếu có) vào tổng của chat
	AppendMessage(ctx context.Context, id primitive.ObjectID, msg chatmodels.ChatMessage, model string) error
	MarkSeen(ctx context.Context, id primitive.ObjectID, uid string) error
	DeleteByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) (int64, error)
}

// UserChatsStore quản lý collection user_chats
type UserChatsStore interface {
	FindByUser(ctx context.Context, uid string) (*chatmodels.UserChats, error)
	AddChat(ctx context.Context, uid string, chatID primitive.ObjectID) error
	PullChats(ctx context.Context, chatIDs []primitive.ObjectID) error
}

// AnalyticsStore quản lý collection restaurant_analytics
type AnalyticsStore interface {
	Create(ctx context.Context, restaurantID primitive.ObjectID) (*restmodels.RestaurantAnalytics, error)
	FindByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) (*restmodels.RestaurantAnalytics, error)
	// Record cộng delta vào tháng (delta.Year, delta.Month), tạo entry tháng nếu chưa có
	Record(ctx context.Context, restaurantID primitive.ObjectID, delta restmodels.MonthlyStat) error
	DeleteByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) error
}

// SubscriptionPackageStore quản lý collection subscription_packages
type SubscriptionPackageStore interface {
	Create(ctx context.Context, p submodels.SubscriptionPackage) (*submodels.SubscriptionPackage, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*submodels.SubscriptionPackage, error)
	FindByName(ctx context.Context, name string) (*submodels.SubscriptionPackage, error)
	List(ctx context.Context) ([]submodels.SubscriptionPackage, error)
	Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*submodels.SubscriptionPackage, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// EnsureByName tạo gói nếu chưa có gói cùng tên, trả về bản đang lưu
	EnsureByName(ctx context.Context, p submodels.SubscriptionPackage) (*submodels.SubscriptionPackage, error)
}

// CustomerSubscriptionStore quản lý collection customer_subscriptions
type CustomerSubscriptionStore interface {
	Create(ctx context.Context, s submodels.CustomerSubscription) (*submodels.CustomerSubscription, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*submodels.CustomerSubscription, error)
	FindByDashboard(ctx context.Context, dashboardID primitive.ObjectID) (*submodels.CustomerSubscription, error)
	List(ctx context.Context, page, limit int64) (*basemodels.PaginateResult[submodels.CustomerSubscription], error)
	Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*submodels.CustomerSubscription, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// FindDue trả về subscription active có endDate <= now
	FindDue(ctx context.Context, now time.Time) ([]submodels.CustomerSubscription, error)
}

// TokenUsageStore quản lý collection token_usages
type TokenUsageStore interface {
	// GetOrCreate trả về record của kỳ, tạo mới với tokenLimit nếu chưa có (tokenLimit chỉ ghi khi tạo)
	GetOrCreate(ctx context.Context, key submodels.TokenUsageKey, tokenLimit int64) (*submodels.TokenUsage, error)
	// Increment cộng usage vào record của kỳ (tạo mới nếu chưa có)
	Increment(ctx context.Context, key submodels.TokenUsageKey, tokenLimit int64, usage submodels.TokenUsageDetails) (*submodels.TokenUsage, error)
	ListByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]submodels.TokenUsage, error)
}

// Stores gom tất cả store để truyền vào các service nghiệp vụ
type Stores struct {
	Users                 UserStore
	Dashboards            DashboardStore
	Restaurants           RestaurantStore
	Chatbots              ChatbotStore
	Menus                 MenuStore
	Chats                 ChatStore
	UserChats             UserChatsStore
	Analytics             AnalyticsStore
	Packages              SubscriptionPackageStore
	CustomerSubscriptions CustomerSubscriptionStore
	TokenUsages           TokenUsageStore
}
