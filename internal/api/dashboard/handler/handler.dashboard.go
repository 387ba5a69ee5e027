// Package dashboardhdl chứa handler của /dashboards
package dashboardhdl

import (
	"bytes"

	"github.com/gofiber/fiber/v3"

	basehdl "talking_menu/internal/api/base/handler"
	dashdto "talking_menu/internal/api/dashboard/dto"
	dashboardsvc "talking_menu/internal/api/dashboard/service"
	"talking_menu/internal/api/middleware"
	"talking_menu/internal/logger"
)

// DashboardHandler xử lý tạo và liệt kê dashboard
type DashboardHandler struct {
	*basehdl.BaseHandler
	service *dashboardsvc.LifecycleService
}

// NewDashboardHandler tạo DashboardHandler
func NewDashboardHandler(service *dashboardsvc.LifecycleService) *DashboardHandler {
	return &DashboardHandler{BaseHandler: basehdl.NewBaseHandler(), service: service}
}

// HandleCreate tạo dashboard cho người gọi (yêu cầu restaurant_main_admin).
// Body tùy chọn {packageName}, mặc định gói basic.
func (h *DashboardHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dashdto.DashboardCreateInput
		if len(bytes.TrimSpace(c.Body())) > 0 {
			if err := h.ParseRequestBody(c, &input); err != nil {
				return basehdl.WriteError(c, err)
			}
		}
		dashboard, err := h.service.CreateDashboard(logger.ContextFromRequest(c), middleware.UserFrom(c), input.PackageName)
		return h.HandleCreated(c, dashboard, err)
	})
}

// HandleList trả về các dashboard người gọi sở hữu hoặc được cấp quyền
func (h *DashboardHandler) HandleList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		dashboards, err := h.service.ListForPrincipal(logger.ContextFromRequest(c), middleware.UserFrom(c))
		return h.HandleResponse(c, dashboards, err)
	})
}
