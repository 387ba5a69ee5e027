package authsvc

import (
	"context"
	"errors"
	"strings"

	authdto "talking_menu/internal/api/auth/dto"
	models "talking_menu/internal/api/auth/models"
	"talking_menu/internal/common"
	"talking_menu/internal/logger"
	"talking_menu/internal/store"
	"talking_menu/internal/utility"
)

// AuthService xử lý đăng ký/đăng nhập và hồ sơ người dùng.
// Việc xác thực token do IdentityVerifier làm ở middleware; service chỉ làm việc với identity đã xác thực.
type AuthService struct {
	users store.UserStore
}

// NewAuthService tạo AuthService
func NewAuthService(users store.UserStore) *AuthService {
	return &AuthService{users: users}
}

// SignIn tạo user (role diner) ở lần đăng nhập đầu tiên, các lần sau đồng bộ email/name/avatar
func (s *AuthService) SignIn(ctx context.Context, identity *utility.VerifiedIdentity) (*models.User, error) {
	if identity == nil || identity.UID == "" {
		return nil, common.ErrUnauthorized
	}
	return s.users.Upsert(ctx, identity.UID, store.UserProfile{
		Name:      identity.Name,
		Email:     strings.ToLower(identity.Email),
		AvatarURL: identity.Picture,
	})
}

// SignUp giống SignIn nhưng cho phép client gửi kèm tên hiển thị và avatar
func (s *AuthService) SignUp(ctx context.Context, identity *utility.VerifiedIdentity, input *authdto.SignUpInput) (*models.User, error) {
	if identity == nil || identity.UID == "" {
		return nil, common.ErrUnauthorized
	}
	profile := store.UserProfile{
		Name:      identity.Name,
		Email:     strings.ToLower(identity.Email),
		AvatarURL: identity.Picture,
	}
	if input != nil {
		if input.Name != "" {
			profile.Name = input.Name
		}
		if input.AvatarURL != "" {
			profile.AvatarURL = input.AvatarURL
		}
	}
	return s.users.Upsert(ctx, identity.UID, profile)
}

// GetProfile trả về hồ sơ của uid
func (s *AuthService) GetProfile(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.users.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile cập nhật name/avatarUrl
func (s *AuthService) UpdateProfile(ctx context.Context, uid string, input *authdto.UpdateProfileInput) (*models.User, error) {
	return s.users.UpdateProfile(ctx, uid, input.Name, input.AvatarURL)
}

// GetUserAccess trả về roles và danh sách dashboard/restaurant mà targetUID truy cập được.
// Chỉ chính user đó hoặc platform admin được xem.
func (s *AuthService) GetUserAccess(ctx context.Context, principal *models.User, targetUID string) (*authdto.UserAccessOutput, error) {
	if principal == nil {
		return nil, common.ErrUnauthorized
	}
	if principal.FirebaseUID != targetUID && !principal.IsPlatformAdmin() {
		return nil, common.ErrForbidden
	}
	user, err := s.GetProfile(ctx, targetUID)
	if err != nil {
		return nil, err
	}
	user.EnsureSlices()
	return &authdto.UserAccessOutput{
		UserID:                user.FirebaseUID,
		Roles:                 user.Roles,
		AccessibleDashboards:  user.AccessibleDashboards,
		AccessibleRestaurants: user.AccessibleRestaurants,
	}, nil
}

// PromotePlatformAdmin gán role talking_menu_admin cho uid (dùng khi khởi động và trong tmctl)
func (s *AuthService) PromotePlatformAdmin(ctx context.Context, uid string) error {
	if uid == "" {
		return common.NewValidationError("uid is required")
	}
	if _, err := s.users.Upsert(ctx, uid, store.UserProfile{}); err != nil {
		return err
	}
	if err := s.users.AddRole(ctx, uid, models.RoleTalkingMenuAdmin); err != nil {
		return err
	}
	logger.LogAction(ctx, logger.AuditRolePromote, "system", "user", uid, map[string]interface{}{
		"role": models.RoleTalkingMenuAdmin,
	})
	return nil
}

// AssignRole thêm role cho user (chỉ platform admin). Dùng để mở quyền restaurant_main_admin cho chủ nhà hàng mới.
func (s *AuthService) AssignRole(ctx context.Context, principal *models.User, targetUID, role string) (*authdto.UserAccessOutput, error) {
	if principal == nil {
		return nil, common.ErrUnauthorized
	}
	if !principal.IsPlatformAdmin() {
		return nil, common.ErrAdminRequired
	}
	if _, err := s.GetProfile(ctx, targetUID); err != nil {
		return nil, err
	}
	if err := s.users.AddRole(ctx, targetUID, role); err != nil {
		return nil, err
	}
	logger.LogAction(ctx, logger.AuditRolePromote, principal.FirebaseUID, "user", targetUID, map[string]interface{}{
		"role": role,
	})
	return s.GetUserAccess(ctx, principal, targetUID)
}
