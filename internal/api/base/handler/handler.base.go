// Package basehdl chứa các tiện ích dùng chung cho handler: parse/validate request và chuẩn hóa response.
package basehdl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"talking_menu/internal/common"
	"talking_menu/internal/global"
)

// BaseHandler được embed bởi các handler domain
type BaseHandler struct{}

// NewBaseHandler tạo BaseHandler
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// validateInput kiểm tra struct theo tag validate
func (h *BaseHandler) validateInput(input interface{}) error {
	if global.Validate == nil {
		global.InitValidator()
	}
	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("Invalid input: %v", err),
			common.StatusBadRequest,
			nil,
		)
	}
	return nil
}

// ParseRequestBody parse body JSON vào input rồi validate
func (h *BaseHandler) ParseRequestBody(c fiber.Ctx, input interface{}) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return common.NewError(common.ErrCodeValidationFormat, "Request body is required", common.StatusBadRequest, nil)
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(input); err != nil {
		return common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Request body is not valid JSON: %v", err),
			common.StatusBadRequest,
			nil,
		)
	}
	return h.validateInput(input)
}

// ParseRequestQuery parse query string vào input rồi validate
func (h *BaseHandler) ParseRequestQuery(c fiber.Ctx, input interface{}) error {
	if err := c.Bind().Query(input); err != nil {
		return common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Invalid query parameters: %v", err),
			common.StatusBadRequest,
			nil,
		)
	}
	return h.validateInput(input)
}

// ParseObjectIDParam đọc URI param name dạng ObjectID
func (h *BaseHandler) ParseObjectIDParam(c fiber.Ctx, name string) (primitive.ObjectID, error) {
	raw := c.Params(name)
	if raw == "" {
		return primitive.NilObjectID, common.NewValidationError(fmt.Sprintf("Missing %s", name))
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("%s '%s' is not a valid id", name, raw),
			common.StatusBadRequest,
			nil,
		)
	}
	return id, nil
}

// ParsePage đọc page/limit từ query (mặc định 1/10)
func (h *BaseHandler) ParsePage(c fiber.Ctx) (int64, int64) {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "10"), 10, 64)
	return page, limit
}
