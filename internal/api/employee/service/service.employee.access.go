package employeesvc

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "talking_menu/internal/api/auth/models"
	employeedto "talking_menu/internal/api/employee/dto"
	"talking_menu/internal/common"
	"talking_menu/internal/delivery"
	"talking_menu/internal/delivery/channels"
	"talking_menu/internal/logger"
	"talking_menu/internal/store"
)

// Lỗi nghiệp vụ của employee access
var (
	ErrRestaurantNotInDashboard = common.NewError(common.ErrCodeValidationInput, "Restaurant does not belong to this dashboard", common.StatusBadRequest, nil)
	ErrMainAdminSelfRevoke      = common.NewConflictError("The restaurant main admin cannot revoke their own access")
	ErrMainAdminNotGrantable    = common.NewError(common.ErrCodeValidationInput, "restaurant_main_admin is assigned through ownership transfer", common.StatusBadRequest, nil)
)

// Notifier nhận thông báo cần gửi ở background
type Notifier interface {
	Enqueue(recipient string, template *channels.RenderedTemplate) bool
}

// AccessService cấp/thu hồi quyền nhân viên trên một cặp (dashboard, restaurant)
type AccessService struct {
	stores      *store.Stores
	notifier    Notifier
	frontendURL string
}

// NewAccessService tạo AccessService. notifier có thể nil (không gửi email).
func NewAccessService(stores *store.Stores, notifier Notifier, frontendURL string) *AccessService {
	return &AccessService{stores: stores, notifier: notifier, frontendURL: strings.TrimRight(frontendURL, "/")}
}

func parseIDs(restaurantID, dashboardID string) (primitive.ObjectID, primitive.ObjectID, error) {
	rid, err := primitive.ObjectIDFromHex(restaurantID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, common.ErrInvalidID
	}
	did, err := primitive.ObjectIDFromHex(dashboardID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, common.ErrInvalidID
	}
	return rid, did, nil
}

// Grant cấp quyền cho user có email trong input. Gọi lại nhiều lần không tạo entry trùng.
func (s *AccessService) Grant(ctx context.Context, principal *authmodels.User, input *employeedto.GrantInput) (*employeedto.AccessOutput, error) {
	restaurantID, dashboardID, err := parseIDs(input.RestaurantID, input.DashboardID)
	if err != nil {
		return nil, err
	}
	role := input.Role
	if role == "" {
		role = authmodels.RoleRestaurantAdmin
	}
	if role == authmodels.RoleRestaurantMainAdmin {
		return nil, ErrMainAdminNotGrantable
	}

	dashboard, err := s.stores.Dashboards.FindByID(ctx, dashboardID)
	if err != nil {
		return nil, err
	}
	if !dashboard.HasRestaurant(restaurantID) {
		return nil, ErrRestaurantNotInDashboard
	}
	restaurant, err := s.stores.Restaurants.FindByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	user, err := s.stores.Users.FindByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}

	access := authmodels.UserAccess{UserID: user.FirebaseUID, UserEmail: user.Email, Role: role}
	if err := s.stores.Restaurants.AddUserAccess(ctx, restaurantID, access); err != nil {
		return nil, err
	}
	if err := s.stores.Dashboards.AddUserAccess(ctx, dashboardID, access); err != nil {
		return nil, err
	}
	if err := s.stores.Users.AddAccessibleDashboard(ctx, user.FirebaseUID, dashboardID); err != nil {
		return nil, err
	}
	if err := s.stores.Users.AddAccessibleRestaurant(ctx, user.FirebaseUID, restaurantID); err != nil {
		return nil, err
	}
	if err := s.stores.Users.AddRole(ctx, user.FirebaseUID, role); err != nil {
		return nil, err
	}

	logger.LogAction(ctx, logger.AuditAccessGrant, principal.FirebaseUID, "restaurant", restaurantID.Hex(), map[string]interface{}{
		"target_user_id": user.FirebaseUID,
		"role":           role,
		"dashboard_id":   dashboardID.Hex(),
	})
	s.notifyGranted(user.Email, restaurant.Name, role)

	return &employeedto.AccessOutput{
		UserID:       user.FirebaseUID,
		UserEmail:    user.Email,
		Role:         role,
		RestaurantID: restaurantID.Hex(),
		DashboardID:  dashboardID.Hex(),
	}, nil
}

// Revoke thu hồi quyền của userId. Role của user được giữ nguyên.
func (s *AccessService) Revoke(ctx context.Context, principal *authmodels.User, input *employeedto.RevokeInput) (*employeedto.AccessOutput, error) {
	restaurantID, dashboardID, err := parseIDs(input.RestaurantID, input.DashboardID)
	if err != nil {
		return nil, err
	}

	restaurant, err := s.stores.Restaurants.FindByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if input.UserID == restaurant.OwnerID {
		return nil, ErrMainAdminSelfRevoke
	}
	dashboard, err := s.stores.Dashboards.FindByID(ctx, dashboardID)
	if err != nil {
		return nil, err
	}
	if !dashboard.HasRestaurant(restaurantID) {
		return nil, ErrRestaurantNotInDashboard
	}

	if err := s.stores.Restaurants.RemoveUserAccess(ctx, restaurantID, input.UserID); err != nil {
		return nil, err
	}
	if err := s.stores.Dashboards.RemoveUserAccess(ctx, dashboardID, input.UserID); err != nil {
		return nil, err
	}
	if err := s.stores.Users.RemoveAccessibleDashboard(ctx, input.UserID, dashboardID); err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	if err := s.stores.Users.RemoveAccessibleRestaurant(ctx, input.UserID, restaurantID); err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	logger.LogAction(ctx, logger.AuditAccessRevoke, principal.FirebaseUID, "restaurant", restaurantID.Hex(), map[string]interface{}{
		"target_user_id": input.UserID,
		"dashboard_id":   dashboardID.Hex(),
	})
	s.notifyRevoked(ctx, input.UserID, restaurant.Name)
	return &employeedto.AccessOutput{
		UserID:       input.UserID,
		RestaurantID: restaurantID.Hex(),
		DashboardID:  dashboardID.Hex(),
	}, nil
}

func (s *AccessService) notifyGranted(email, restaurantName, role string) {
	if s.notifier == nil || email == "" {
		return
	}
	s.notifier.Enqueue(email, delivery.EmployeeAccessGranted.Render(map[string]interface{}{
		"restaurantName": restaurantName,
		"role":           role,
		"baseUrl":        s.frontendURL,
	}))
}

// notifyRevoked gửi email cho user bị thu hồi quyền (user đã bị xóa thì bỏ qua)
func (s *AccessService) notifyRevoked(ctx context.Context, uid, restaurantName string) {
	if s.notifier == nil {
		return
	}
	user, err := s.stores.Users.FindByUID(ctx, uid)
	if err != nil || user.Email == "" {
		return
	}
	s.notifier.Enqueue(user.Email, delivery.EmployeeAccessRevoked.Render(map[string]interface{}{
		"restaurantName": restaurantName,
	}))
}
