package middleware

import (
	"github.com/gofiber/fiber/v3"

	basehdl "talking_menu/internal/api/base/handler"
)

// HandleErrorResponse ghi envelope lỗi chuẩn và dừng chuỗi middleware.
// Middleware trả về nil sau khi ghi để Fiber không gọi error handler lần nữa.
func HandleErrorResponse(c fiber.Ctx, err error) error {
	if writeErr := basehdl.WriteError(c, err); writeErr != nil {
		return writeErr
	}
	return nil
}
