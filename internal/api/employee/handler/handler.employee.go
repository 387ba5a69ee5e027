// Package employeehdl chứa handler cấp/thu hồi quyền nhân viên
package employeehdl

import (
	"github.com/gofiber/fiber/v3"

	"talking_menu/internal/api/authz"
	basehdl "talking_menu/internal/api/base/handler"
	employeedto "talking_menu/internal/api/employee/dto"
	employeesvc "talking_menu/internal/api/employee/service"
	"talking_menu/internal/api/middleware"
	"talking_menu/internal/logger"
)

// EmployeeHandler xử lý /employee-access
type EmployeeHandler struct {
	*basehdl.BaseHandler
	service    *employeesvc.AccessService
	authorizer *authz.Authorizer
}

// NewEmployeeHandler tạo EmployeeHandler
func NewEmployeeHandler(service *employeesvc.AccessService, authorizer *authz.Authorizer) *EmployeeHandler {
	return &EmployeeHandler{BaseHandler: basehdl.NewBaseHandler(), service: service, authorizer: authorizer}
}

// HandleGrant cấp quyền cho user có email trong body. Người gọi phải sở hữu dashboard.
func (h *EmployeeHandler) HandleGrant(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input employeedto.GrantInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		ctx := logger.ContextFromRequest(c)
		principal := middleware.UserFrom(c)
		if err := h.authorizer.Authorize(ctx, authz.ResourceDashboard, input.DashboardID, principal); err != nil {
			return basehdl.WriteError(c, err)
		}
		out, err := h.service.Grant(ctx, principal, &input)
		return h.HandleResponse(c, out, err)
	})
}

// HandleRevoke thu hồi quyền của userId trên nhà hàng và dashboard
func (h *EmployeeHandler) HandleRevoke(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input employeedto.RevokeInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		ctx := logger.ContextFromRequest(c)
		principal := middleware.UserFrom(c)
		if err := h.authorizer.Authorize(ctx, authz.ResourceDashboard, input.DashboardID, principal); err != nil {
			return basehdl.WriteError(c, err)
		}
		out, err := h.service.Revoke(ctx, principal, &input)
		return h.HandleResponse(c, out, err)
	})
}
