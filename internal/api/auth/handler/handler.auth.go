// Package authhdl chứa các handler đăng ký/đăng nhập và hồ sơ người dùng
package authhdl

import (
	"bytes"

	"github.com/gofiber/fiber/v3"

	authdto "talking_menu/internal/api/auth/dto"
	authsvc "talking_menu/internal/api/auth/service"
	basehdl "talking_menu/internal/api/base/handler"
	"talking_menu/internal/api/middleware"
	"talking_menu/internal/common"
	"talking_menu/internal/logger"
)

// AuthHandler xử lý /auth/* và /user
type AuthHandler struct {
	*basehdl.BaseHandler
	service *authsvc.AuthService
}

// NewAuthHandler tạo AuthHandler
func NewAuthHandler(service *authsvc.AuthService) *AuthHandler {
	return &AuthHandler{BaseHandler: basehdl.NewBaseHandler(), service: service}
}

// HandleSignUp tạo user ở lần đầu. Body là tùy chọn (name, avatarUrl).
func (h *AuthHandler) HandleSignUp(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.SignUpInput
		if len(bytes.TrimSpace(c.Body())) > 0 {
			if err := h.ParseRequestBody(c, &input); err != nil {
				return basehdl.WriteError(c, err)
			}
		}
		user, err := h.service.SignUp(logger.ContextFromRequest(c), middleware.IdentityFrom(c), &input)
		return h.HandleCreated(c, user, err)
	})
}

// HandleSignIn đồng bộ hồ sơ từ identity provider và trả về user
func (h *AuthHandler) HandleSignIn(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		user, err := h.service.SignIn(logger.ContextFromRequest(c), middleware.IdentityFrom(c))
		return h.HandleResponse(c, user, err)
	})
}

// HandleGoogleSignIn: Google sign-in đi qua Firebase nên chung luồng với signin
func (h *AuthHandler) HandleGoogleSignIn(c fiber.Ctx) error {
	return h.HandleSignIn(c)
}

// HandleGetUserAccess trả về roles và danh sách dashboard/restaurant của :userId
func (h *AuthHandler) HandleGetUserAccess(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		out, err := h.service.GetUserAccess(logger.ContextFromRequest(c), middleware.UserFrom(c), c.Params("userId"))
		return h.HandleResponse(c, out, err)
	})
}

// HandleGetProfile trả về hồ sơ của người gọi
func (h *AuthHandler) HandleGetProfile(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		user := middleware.UserFrom(c)
		if user == nil {
			return basehdl.WriteError(c, common.ErrUnauthorized)
		}
		profile, err := h.service.GetProfile(logger.ContextFromRequest(c), user.FirebaseUID)
		return h.HandleResponse(c, profile, err)
	})
}

// HandleUpdateProfile cập nhật name/avatarUrl của người gọi
func (h *AuthHandler) HandleUpdateProfile(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		user := middleware.UserFrom(c)
		if user == nil {
			return basehdl.WriteError(c, common.ErrUnauthorized)
		}
		var input authdto.UpdateProfileInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		profile, err := h.service.UpdateProfile(logger.ContextFromRequest(c), user.FirebaseUID, &input)
		return h.HandleResponse(c, profile, err)
	})
}

// HandleAssignRole thêm role cho :userId (platform admin)
func (h *AuthHandler) HandleAssignRole(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input authdto.AssignRoleInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		out, err := h.service.AssignRole(logger.ContextFromRequest(c), middleware.UserFrom(c), c.Params("userId"), input.Role)
		return h.HandleResponse(c, out, err)
	})
}
