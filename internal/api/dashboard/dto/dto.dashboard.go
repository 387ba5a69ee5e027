package dashdto

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "talking_menu/internal/api/auth/models"
	restmodels "talking_menu/internal/api/restaurant/models"
	submodels "talking_menu/internal/api/subscription/models"
)

// DashboardCreateInput là body (tùy chọn) của POST /dashboards
type DashboardCreateInput struct {
	PackageName string `json:"packageName" validate:"omitempty,package_name"`
}

// DashboardOutput là dashboard kèm email owner, gói đăng ký và các nhà hàng principal được thấy
type DashboardOutput struct {
	ID                     primitive.ObjectID              `json:"id"`
	OwnerID                string                          `json:"ownerId"`
	OwnerEmail             string                          `json:"ownerEmail"`
	UserAccess             []authmodels.UserAccess         `json:"userAccess"`
	CustomerSubscriptionID *primitive.ObjectID             `json:"customerSubscriptionId,omitempty"`
	Subscription           *submodels.CustomerSubscription `json:"subscription,omitempty"`
	Package                *submodels.SubscriptionPackage  `json:"subscriptionPackage,omitempty"`
	Restaurants            []restmodels.Restaurant         `json:"restaurants"`
	CreatedAt              int64                           `json:"createdAt"`
	UpdatedAt              int64                           `json:"updatedAt"`
}
