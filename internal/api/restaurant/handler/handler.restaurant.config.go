package restauranthdl

import (
	"github.com/gofiber/fiber/v3"

	basehdl "talking_menu/internal/api/base/handler"
	restdto "talking_menu/internal/api/restaurant/dto"
	restaurantsvc "talking_menu/internal/api/restaurant/service"
	"talking_menu/internal/logger"
)

// ConfigHandler xử lý menu và chatbot của nhà hàng
type ConfigHandler struct {
	*basehdl.BaseHandler
	service *restaurantsvc.ConfigService
}

// NewConfigHandler tạo ConfigHandler
func NewConfigHandler(service *restaurantsvc.ConfigService) *ConfigHandler {
	return &ConfigHandler{BaseHandler: basehdl.NewBaseHandler(), service: service}
}

// --------------------------------
// Menu
// --------------------------------

func (h *ConfigHandler) HandleGetMenu(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "restaurantId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		menu, err := h.service.GetMenu(logger.ContextFromRequest(c), id)
		return h.HandleResponse(c, menu, err)
	})
}

// HandleAddMenuItems thêm một hoặc nhiều món
func (h *ConfigHandler) HandleAddMenuItems(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "restaurantId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		var input restdto.MenuItemsInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		menu, err := h.service.AddMenuItems(logger.ContextFromRequest(c), id, &input)
		return h.HandleCreated(c, menu, err)
	})
}

func (h *ConfigHandler) HandleUpdateMenuItem(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "restaurantId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		itemID, err := h.ParseObjectIDParam(c, "menuItemId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		var input restdto.MenuItemUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		menu, err := h.service.UpdateMenuItem(logger.ContextFromRequest(c), id, itemID, &input)
		return h.HandleResponse(c, menu, err)
	})
}

func (h *ConfigHandler) HandleDeleteMenuItem(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "restaurantId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		menu, err := h.service.DeleteMenuItems(logger.ContextFromRequest(c), id, []string{c.Params("menuItemId")})
		return h.HandleResponse(c, menu, err)
	})
}

// HandleBulkDeleteMenuItems xóa các món có id trong body
func (h *ConfigHandler) HandleBulkDeleteMenuItems(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "restaurantId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		var input restdto.MenuBulkDeleteInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		menu, err := h.service.DeleteMenuItems(logger.ContextFromRequest(c), id, input.MenuItemIDs)
		return h.HandleResponse(c, menu, err)
	})
}

// --------------------------------
// Chatbot
// --------------------------------

func (h *ConfigHandler) HandleGetChatbot(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "restaurantId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		chatbot, err := h.service.GetChatbot(logger.ContextFromRequest(c), id)
		return h.HandleResponse(c, chatbot, err)
	})
}

// HandleUpdateChatbot cập nhật systemPrompt và/hoặc qrScanOnly
func (h *ConfigHandler) HandleUpdateChatbot(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "restaurantId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		var input restdto.ChatbotUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		chatbot, err := h.service.UpdateChatbot(logger.ContextFromRequest(c), id, &input)
		return h.HandleResponse(c, chatbot, err)
	})
}

func (h *ConfigHandler) HandleSetSuggestedQuestions(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "restaurantId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		var input restdto.SuggestedQuestionsInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		chatbot, err := h.service.SetSuggestedQuestions(logger.ContextFromRequest(c), id, input.SuggestedQuestions)
		return h.HandleResponse(c, chatbot, err)
	})
}

// HandleSetChatbotStatus bật/tắt chatbot (on|off)
func (h *ConfigHandler) HandleSetChatbotStatus(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "restaurantId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		var input restdto.ChatbotStatusInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		chatbot, err := h.service.SetChatbotStatus(logger.ContextFromRequest(c), id, input.Status)
		return h.HandleResponse(c, chatbot, err)
	})
}
