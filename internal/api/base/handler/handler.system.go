package basehdl

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/mongo"

	"talking_menu/internal/common"
)

// SystemHandler xử lý các route hệ thống (health)
type SystemHandler struct {
	*BaseHandler
	client *mongo.Client
}

// NewSystemHandler tạo SystemHandler. client có thể nil (chưa kết nối DB).
func NewSystemHandler(client *mongo.Client) *SystemHandler {
	return &SystemHandler{BaseHandler: NewBaseHandler(), client: client}
}

// HandleHealth kiểm tra tình trạng API và kết nối MongoDB
func (h *SystemHandler) HandleHealth(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	services := fiber.Map{"api": "ok"}
	healthData := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services":  services,
	}

	if h.client == nil {
		healthData["status"] = "degraded"
		services["database"] = "not_initialized"
		return WriteSuccess(c, common.StatusOK, common.MsgSuccess, healthData)
	}

	if err := h.client.Ping(ctx, nil); err != nil {
		healthData["status"] = "degraded"
		services["database"] = "error"
		return JSONResponse(c, common.StatusServiceUnavailable, fiber.Map{
			"success":    false,
			"statusCode": common.StatusServiceUnavailable,
			"code":       common.ErrCodeDatabaseConnection.Code,
			"message":    "Database is unreachable",
			"data":       healthData,
		})
	}
	services["database"] = "ok"
	return WriteSuccess(c, common.StatusOK, common.MsgSuccess, healthData)
}
