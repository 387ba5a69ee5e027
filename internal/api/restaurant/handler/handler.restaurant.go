// Package restauranthdl chứa handler của nhà hàng, menu, chatbot và analytics
package restauranthdl

import (
	"github.com/gofiber/fiber/v3"

	basehdl "talking_menu/internal/api/base/handler"
	"talking_menu/internal/api/middleware"
	restdto "talking_menu/internal/api/restaurant/dto"
	restaurantsvc "talking_menu/internal/api/restaurant/service"
	"talking_menu/internal/logger"
)

// RestaurantHandler xử lý vòng đời nhà hàng và analytics
type RestaurantHandler struct {
	*basehdl.BaseHandler
	lifecycle *restaurantsvc.LifecycleService
	analytics *restaurantsvc.AnalyticsReader
}

// NewRestaurantHandler tạo RestaurantHandler
func NewRestaurantHandler(lifecycle *restaurantsvc.LifecycleService, analytics *restaurantsvc.AnalyticsReader) *RestaurantHandler {
	return &RestaurantHandler{
		BaseHandler: basehdl.NewBaseHandler(),
		lifecycle:   lifecycle,
		analytics:   analytics,
	}
}

// HandleCreate tạo nhà hàng dưới :dashboardId
func (h *RestaurantHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		dashboardID, err := h.ParseObjectIDParam(c, "dashboardId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		var input restdto.RestaurantCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		out, err := h.lifecycle.Create(logger.ContextFromRequest(c), middleware.UserFrom(c), dashboardID, &input)
		return h.HandleCreated(c, out, err)
	})
}

// HandleGet trả về nhà hàng kèm menu và chats
func (h *RestaurantHandler) HandleGet(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "restaurantId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		out, err := h.lifecycle.Get(logger.ContextFromRequest(c), id)
		return h.HandleResponse(c, out, err)
	})
}

// HandleList liệt kê nhà hàng cho platform admin (page, limit, search)
func (h *RestaurantHandler) HandleList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var query restdto.RestaurantListQuery
		if err := h.ParseRequestQuery(c, &query); err != nil {
			return basehdl.WriteError(c, err)
		}
		out, err := h.lifecycle.List(logger.ContextFromRequest(c), middleware.UserFrom(c), query.Search, query.Page, query.Limit)
		return h.HandleResponse(c, out, err)
	})
}

// HandleUpdate cập nhật một phần thông tin nhà hàng
func (h *RestaurantHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "restaurantId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		var input restdto.RestaurantUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		out, err := h.lifecycle.Update(logger.ContextFromRequest(c), id, &input)
		return h.HandleResponse(c, out, err)
	})
}

// HandleDelete xóa nhà hàng cùng dữ liệu phụ thuộc
func (h *RestaurantHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "restaurantId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		err = h.lifecycle.Delete(logger.ContextFromRequest(c), middleware.UserFrom(c), id)
		return h.HandleResponse(c, fiber.Map{"id": id.Hex()}, err)
	})
}

// HandleTransfer chuyển quyền sở hữu cho user có email trong body
func (h *RestaurantHandler) HandleTransfer(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "restaurantId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		var input restdto.TransferInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		out, err := h.lifecycle.Transfer(logger.ContextFromRequest(c), middleware.UserFrom(c), id, input.Email)
		return h.HandleResponse(c, out, err)
	})
}

// HandleAnalytics trả về thống kê theo tháng, mới nhất trước, đã lấp tháng trống
func (h *RestaurantHandler) HandleAnalytics(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "restaurantId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		out, err := h.analytics.GetRestaurantAnalytics(logger.ContextFromRequest(c), id)
		return h.HandleResponse(c, out, err)
	})
}
