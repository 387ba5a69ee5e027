package basehdl

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"

	"talking_menu/internal/common"
	"talking_menu/internal/logger"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// ErrorBody dựng envelope lỗi {success:false, statusCode, code, message}
func ErrorBody(err error) (int, fiber.Map) {
	var customErr *common.Error
	if errors.As(err, &customErr) {
		status := customErr.StatusCode
		if status == 0 {
			status = common.StatusInternalServerError
		}
		return status, fiber.Map{
			"success":    false,
			"statusCode": status,
			"code":       customErr.Code.Code,
			"message":    customErr.Message,
		}
	}
	return common.StatusInternalServerError, fiber.Map{
		"success":    false,
		"statusCode": common.StatusInternalServerError,
		"code":       common.ErrCodeInternalServer.Code,
		"message":    common.MsgInternalError,
	}
}

// WriteError ghi envelope lỗi. Lỗi 5xx được log kèm request.
func WriteError(c fiber.Ctx, err error) error {
	status, body := ErrorBody(err)
	if status >= common.StatusInternalServerError {
		logger.WithRequest(c).WithError(err).Error("Request failed")
	}
	return JSONResponse(c, status, body)
}

// WriteSuccess ghi envelope thành công {success:true, statusCode, message, data}
func WriteSuccess(c fiber.Ctx, status int, message string, data interface{}) error {
	return JSONResponse(c, status, fiber.Map{
		"success":    true,
		"statusCode": status,
		"message":    message,
		"data":       data,
	})
}

// SafeHandler bọc handler với recover để server luôn trả response, kể cả khi panic
func (h *BaseHandler) SafeHandler(c fiber.Ctx, handler func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithRequest(c).WithField("stack", string(debug.Stack())).Errorf("panic: %v", r)
			err = WriteError(c, common.NewError(
				common.ErrCodeInternalServer,
				fmt.Sprintf("Unexpected error: %v", r),
				common.StatusInternalServerError,
				nil,
			))
		}
	}()
	return handler()
}

// HandleResponse chuẩn hóa response: lỗi → envelope lỗi, ngược lại 200 với data
func (h *BaseHandler) HandleResponse(c fiber.Ctx, data interface{}, err error) error {
	if err != nil {
		return WriteError(c, err)
	}
	return WriteSuccess(c, common.StatusOK, common.MsgSuccess, data)
}

// HandleCreated trả 201 khi tạo mới thành công
func (h *BaseHandler) HandleCreated(c fiber.Ctx, data interface{}, err error) error {
	if err != nil {
		return WriteError(c, err)
	}
	return WriteSuccess(c, common.StatusCreated, common.MsgCreated, data)
}
