// Package authz quyết định principal có được thao tác trên dashboard/restaurant hay không.
// Quyết định được tính lại ở mỗi request, không cache.
package authz

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "talking_menu/internal/api/auth/models"
	"talking_menu/internal/common"
	"talking_menu/internal/store"
)

// Loại tài nguyên được kiểm tra quyền
const (
	ResourceDashboard  = "dashboard"
	ResourceRestaurant = "restaurant"
	// ResourceRestaurantOwner chỉ cho phép chủ nhà hàng (xóa, chuyển quyền sở hữu)
	ResourceRestaurantOwner = "restaurant_owner"
)

// Authorizer kiểm tra quyền trên dashboard/restaurant
type Authorizer struct {
	dashboards  store.DashboardStore
	restaurants store.RestaurantStore
}

// NewAuthorizer tạo Authorizer
func NewAuthorizer(dashboards store.DashboardStore, restaurants store.RestaurantStore) *Authorizer {
	return &Authorizer{dashboards: dashboards, restaurants: restaurants}
}

// Authorize trả về nil nếu được phép.
//   - talking_menu_admin: luôn được phép
//   - id không hợp lệ hoặc không tồn tại: 404 (kiểm tra trước quyền)
//   - dashboard: chỉ owner
//   - restaurant: owner hoặc có trong userAccess
//   - restaurant_owner: chỉ owner
//   - còn lại: 403
func (a *Authorizer) Authorize(ctx context.Context, resourceType, resourceID string, principal *authmodels.User) error {
	if principal == nil {
		return common.ErrUnauthorized
	}
	if principal.IsPlatformAdmin() {
		return nil
	}

	id, err := primitive.ObjectIDFromHex(resourceID)
	if err != nil {
		return common.NewNotFoundError(resourceType + " not found")
	}

	switch resourceType {
	case ResourceDashboard:
		dashboard, err := a.dashboards.FindByID(ctx, id)
		if err != nil {
			return notFound(resourceType, err)
		}
		if dashboard.OwnerID == principal.FirebaseUID {
			return nil
		}
	case ResourceRestaurant:
		restaurant, err := a.restaurants.FindByID(ctx, id)
		if err != nil {
			return notFound(resourceType, err)
		}
		if restaurant.CanAccess(principal.FirebaseUID) {
			return nil
		}
	case ResourceRestaurantOwner:
		restaurant, err := a.restaurants.FindByID(ctx, id)
		if err != nil {
			return notFound(ResourceRestaurant, err)
		}
		if restaurant.OwnerID == principal.FirebaseUID {
			return nil
		}
	}
	return common.ErrForbidden
}

func notFound(resourceType string, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewNotFoundError(resourceType + " not found")
	}
	return err
}
