// Package middleware chứa các middleware xác thực và phân quyền cho Fiber.
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	authmodels "talking_menu/internal/api/auth/models"
	"talking_menu/internal/api/authz"
	"talking_menu/internal/common"
	"talking_menu/internal/logger"
	"talking_menu/internal/store"
	"talking_menu/internal/utility"
)

// Các key lưu trong c.Locals
const (
	LocalUserID   = "user_id"
	LocalUser     = "user"
	LocalClaims   = "claims"
	LocalIdentity = "identity"
)

// Authenticator xác thực bearer token qua IdentityVerifier và nạp hồ sơ user
type Authenticator struct {
	verifier utility.IdentityVerifier
	users    store.UserStore
}

// NewAuthenticator tạo Authenticator
func NewAuthenticator(verifier utility.IdentityVerifier, users store.UserStore) *Authenticator {
	return &Authenticator{verifier: verifier, users: users}
}

func bearerToken(c fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", common.ErrTokenMissing
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", common.ErrTokenInvalid
	}
	return strings.TrimSpace(parts[1]), nil
}

// verify xác thực token và gắn identity vào Locals
func (a *Authenticator) verify(c fiber.Ctx, token string) (*utility.VerifiedIdentity, error) {
	identity, err := a.verifier.VerifyToken(c.Context(), token)
	if err != nil {
		logger.GetAppLogger().WithFields(logrus.Fields{
			"path":   c.Path(),
			"method": c.Method(),
		}).WithError(err).Warn("❌ [AUTH] Token verification failed")
		var customErr *common.Error
		if errors.As(err, &customErr) && customErr.StatusCode == common.StatusUnauthorized {
			return nil, err
		}
		return nil, common.ErrTokenInvalid
	}
	c.Locals(LocalIdentity, identity)
	c.Locals(LocalClaims, identity.Claims)
	c.Locals(LocalUserID, identity.UID)
	return identity, nil
}

// loadUser nạp user theo UID, tạo mới (role diner) nếu đây là lần đầu UID xuất hiện
func (a *Authenticator) loadUser(c fiber.Ctx, identity *utility.VerifiedIdentity) (*authmodels.User, error) {
	ctx := c.Context()
	user, err := a.users.FindByUID(ctx, identity.UID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	return a.users.Upsert(ctx, identity.UID, store.UserProfile{
		Name:      identity.Name,
		Email:     strings.ToLower(identity.Email),
		AvatarURL: identity.Picture,
	})
}

func (a *Authenticator) authenticate(c fiber.Ctx, token string) error {
	identity, err := a.verify(c, token)
	if err != nil {
		return err
	}
	user, err := a.loadUser(c, identity)
	if err != nil {
		return err
	}
	c.Locals(LocalUser, user)
	return nil
}

// Guard kiểm tra một điều kiện của request, trả lỗi để chặn request
type Guard func(c fiber.Ctx) error

// Guarded chạy lần lượt các guard rồi tới handler trong cùng một fiber.Handler.
// Guard đầu tiên trả lỗi sẽ ghi envelope lỗi và dừng chuỗi.
func Guarded(handler fiber.Handler, guards ...Guard) fiber.Handler {
	return func(c fiber.Ctx) error {
		for _, guard := range guards {
			if err := guard(c); err != nil {
				return HandleErrorResponse(c, err)
			}
		}
		return handler(c)
	}
}

// AsMiddleware chuyển guard thành middleware kiểu c.Next() để dùng với app.Use
func AsMiddleware(guard Guard) fiber.Handler {
	return func(c fiber.Ctx) error {
		if err := guard(c); err != nil {
			return HandleErrorResponse(c, err)
		}
		return c.Next()
	}
}

// RequireAuth bắt buộc bearer token hợp lệ; thiếu hoặc sai token trả 401
func (a *Authenticator) RequireAuth() Guard {
	return func(c fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("❌ [AUTH] Missing or malformed Authorization header")
			return err
		}
		return a.authenticate(c, token)
	}
}

// OptionalAuth cho phép request ẩn danh; nếu có token thì token phải hợp lệ
func (a *Authenticator) OptionalAuth() Guard {
	return func(c fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return nil
		}
		token, err := bearerToken(c)
		if err != nil {
			return err
		}
		return a.authenticate(c, token)
	}
}

// VerifyIdentity chỉ xác thực token, không nạp user. Dùng cho signin/signup.
func (a *Authenticator) VerifyIdentity() Guard {
	return func(c fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}
		_, err = a.verify(c, token)
		return err
	}
}

// RequireRole yêu cầu user có ít nhất một trong các role. talking_menu_admin luôn qua.
func RequireRole(roles ...string) Guard {
	return func(c fiber.Ctx) error {
		user := UserFrom(c)
		if user == nil {
			return common.ErrUnauthorized
		}
		if user.IsPlatformAdmin() {
			return nil
		}
		for _, role := range roles {
			if user.HasRole(role) {
				return nil
			}
		}
		return common.ErrForbidden
	}
}

// RequirePlatformAdmin yêu cầu role talking_menu_admin
func RequirePlatformAdmin() Guard {
	return func(c fiber.Ctx) error {
		user := UserFrom(c)
		if user == nil {
			return common.ErrUnauthorized
		}
		if !user.IsPlatformAdmin() {
			return common.ErrAdminRequired
		}
		return nil
	}
}

// Authorize kiểm tra quyền trên tài nguyên có id nằm ở URI param paramName
func Authorize(authorizer *authz.Authorizer, resourceType, paramName string) Guard {
	return func(c fiber.Ctx) error {
		user := UserFrom(c)
		if user == nil {
			return common.ErrUnauthorized
		}
		err := authorizer.Authorize(c.Context(), resourceType, c.Params(paramName), user)
		if err != nil && errors.Is(err, common.ErrForbidden) {
			logger.WithRequest(c).WithFields(logrus.Fields{
				"resource_type": resourceType,
				"resource_id":   c.Params(paramName),
			}).Warn("❌ [AUTH] Access denied")
		}
		return err
	}
}

// UserFrom trả về user đã xác thực hoặc nil nếu request ẩn danh
func UserFrom(c fiber.Ctx) *authmodels.User {
	user, _ := c.Locals(LocalUser).(*authmodels.User)
	return user
}

// IdentityFrom trả về identity đã xác thực (có cả khi chưa nạp user)
func IdentityFrom(c fiber.Ctx) *utility.VerifiedIdentity {
	identity, _ := c.Locals(LocalIdentity).(*utility.VerifiedIdentity)
	return identity
}
