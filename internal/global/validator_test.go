package global

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type validatorSample struct {
	Name   string `json:"name" validate:"required,no_xss"`
	RefID  string `json:"refId" validate:"omitempty,object_id"`
	Status string `json:"status" validate:"omitempty,oneof=on off"`
}

func TestValidator_CustomTags(t *testing.T) {
	InitValidator()

	ok := validatorSample{Name: "Pho 24", RefID: "64b7f0c2a1b2c3d4e5f60718", Status: "on"}
	assert.NoError(t, Validate.Struct(ok))

	xss := validatorSample{Name: "<script>alert(1)</script>"}
	assert.Error(t, Validate.Struct(xss))

	badID := validatorSample{Name: "a", RefID: "not-an-id"}
	assert.Error(t, Validate.Struct(badID))

	badStatus := validatorSample{Name: "a", Status: "maybe"}
	assert.Error(t, Validate.Struct(badStatus))
}

type domainSample struct {
	Role     string `json:"role" validate:"omitempty,role"`
	Package  string `json:"name" validate:"omitempty,package_name"`
	Schedule string `json:"paymentSchedule" validate:"omitempty,payment_schedule"`
	Status   string `json:"status" validate:"omitempty,subscription_status"`
}

func TestValidator_DomainTags(t *testing.T) {
	InitValidator()

	assert.NoError(t, Validate.Struct(domainSample{Role: "restaurant_admin", Package: "premium", Schedule: "annually", Status: "paused"}))
	assert.Error(t, Validate.Struct(domainSample{Role: "chef"}))
	assert.Error(t, Validate.Struct(domainSample{Package: "gold"}))
	assert.Error(t, Validate.Struct(domainSample{Schedule: "weekly"}))
	assert.Error(t, Validate.Struct(domainSample{Status: "deleted"}))
}
