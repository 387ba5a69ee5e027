package global

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "talking_menu/internal/api/auth/models"
	submodels "talking_menu/internal/api/subscription/models"
)

var validatorOnce sync.Once

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	validatorOnce.Do(func() {
		Validate = validator.New()

		// Dùng tên field theo json tag trong thông báo lỗi
		Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = Validate.RegisterValidation("no_xss", validateNoXSS)
		_ = Validate.RegisterValidation("object_id", validateObjectID)
		_ = Validate.RegisterValidation("role", oneOf(authmodels.ValidRoles...))
		_ = Validate.RegisterValidation("package_name", oneOf(submodels.PackageBasic, submodels.PackagePremium, submodels.PackageTest))
		_ = Validate.RegisterValidation("payment_schedule", oneOf(submodels.ScheduleMonthly, submodels.ScheduleAnnually))
		_ = Validate.RegisterValidation("subscription_status", oneOf(
			submodels.SubscriptionActive, submodels.SubscriptionExpired, submodels.SubscriptionCanceled, submodels.SubscriptionPaused,
		))
	})
}

// validateNoXSS kiểm tra XSS
func validateNoXSS(fl validator.FieldLevel) bool {
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"onmouseover=",
		"eval(",
		"document.cookie",
		"<iframe",
		"<object",
		"<embed",
	}

	value := strings.ToLower(fl.Field().String())
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validateObjectID kiểm tra chuỗi hex ObjectID (chuỗi rỗng cho qua, kết hợp required nếu bắt buộc)
func validateObjectID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return primitive.IsValidObjectID(value)
}

// oneOf tạo validator chấp nhận chuỗi rỗng hoặc một trong các giá trị cho trước
func oneOf(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		for _, v := range values {
			if v == value {
				return true
			}
		}
		return false
	}
}
