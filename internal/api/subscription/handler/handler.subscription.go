// Package subscriptionhdl chứa handler của gói dịch vụ, subscription và token usage
package subscriptionhdl

import (
	"github.com/gofiber/fiber/v3"

	basehdl "talking_menu/internal/api/base/handler"
	subdto "talking_menu/internal/api/subscription/dto"
	subsvc "talking_menu/internal/api/subscription/service"
	"talking_menu/internal/logger"
)

// SubscriptionHandler xử lý /subscription-package, /subscriptions và /token-usage
type SubscriptionHandler struct {
	*basehdl.BaseHandler
	catalog    *subsvc.CatalogService
	billing    *subsvc.BillingService
	accounting *subsvc.AccountingService
}

// NewSubscriptionHandler tạo SubscriptionHandler
func NewSubscriptionHandler(catalog *subsvc.CatalogService, billing *subsvc.BillingService, accounting *subsvc.AccountingService) *SubscriptionHandler {
	return &SubscriptionHandler{
		BaseHandler: basehdl.NewBaseHandler(),
		catalog:     catalog,
		billing:     billing,
		accounting:  accounting,
	}
}

// --------------------------------
// Subscription package
// --------------------------------

func (h *SubscriptionHandler) HandleListPackages(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		pkgs, err := h.catalog.List(logger.ContextFromRequest(c))
		return h.HandleResponse(c, pkgs, err)
	})
}

func (h *SubscriptionHandler) HandleGetPackage(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "id")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		pkg, err := h.catalog.Get(logger.ContextFromRequest(c), id)
		return h.HandleResponse(c, pkg, err)
	})
}

func (h *SubscriptionHandler) HandleCreatePackage(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input subdto.PackageCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		pkg, err := h.catalog.Create(logger.ContextFromRequest(c), &input)
		return h.HandleCreated(c, pkg, err)
	})
}

func (h *SubscriptionHandler) HandleUpdatePackage(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "id")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		var input subdto.PackageUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		pkg, err := h.catalog.Update(logger.ContextFromRequest(c), id, &input)
		return h.HandleResponse(c, pkg, err)
	})
}

func (h *SubscriptionHandler) HandleDeletePackage(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "id")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		err = h.catalog.Delete(logger.ContextFromRequest(c), id)
		return h.HandleResponse(c, fiber.Map{"id": id.Hex()}, err)
	})
}

// --------------------------------
// Customer subscription
// --------------------------------

func (h *SubscriptionHandler) HandleListSubscriptions(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		page, limit := h.ParsePage(c)
		out, err := h.billing.List(logger.ContextFromRequest(c), page, limit)
		return h.HandleResponse(c, out, err)
	})
}

func (h *SubscriptionHandler) HandleGetSubscription(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "id")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		sub, err := h.billing.Get(logger.ContextFromRequest(c), id)
		return h.HandleResponse(c, sub, err)
	})
}

// HandleCreateSubscription gắn một gói cho dashboard
func (h *SubscriptionHandler) HandleCreateSubscription(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input subdto.SubscriptionCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		sub, err := h.billing.Create(logger.ContextFromRequest(c), &input)
		return h.HandleCreated(c, sub, err)
	})
}

func (h *SubscriptionHandler) HandleUpdateSubscription(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "id")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		var input subdto.SubscriptionUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		sub, err := h.billing.Update(logger.ContextFromRequest(c), id, &input)
		return h.HandleResponse(c, sub, err)
	})
}

func (h *SubscriptionHandler) HandleDeleteSubscription(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "id")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		err = h.billing.Delete(logger.ContextFromRequest(c), id)
		return h.HandleResponse(c, fiber.Map{"id": id.Hex()}, err)
	})
}

// --------------------------------
// Token usage
// --------------------------------

// HandleTokenUsage trả về trạng thái hạn mức token của kỳ hiện tại
func (h *SubscriptionHandler) HandleTokenUsage(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "restaurantId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		status, err := h.accounting.CheckTokenLimitUsage(logger.ContextFromRequest(c), id)
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		return h.HandleResponse(c, fiber.Map{
			"isLimitReached":     status.IsLimitReached,
			"subscriptionStatus": status.SubscriptionStatus,
			"packageName":        status.PackageName,
			"tokenUsage":         status.TokenUsage,
			"remainingTokens":    status.Remaining(),
		}, nil)
	})
}
