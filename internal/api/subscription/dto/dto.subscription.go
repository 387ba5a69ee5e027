package subdto

// PackageCreateInput là body tạo gói dịch vụ
type PackageCreateInput struct {
	Name               string  `json:"name" validate:"required,package_name"`
	TokenLimitPerMonth int64   `json:"tokenLimitPerMonth" validate:"gte=0"`
	Price              float64 `json:"price" validate:"gte=0"`
	PaymentSchedule    string  `json:"paymentSchedule" validate:"required,payment_schedule"`
}

// PackageUpdateInput là body cập nhật gói; nil là giữ nguyên
type PackageUpdateInput struct {
	Name               *string  `json:"name" validate:"omitempty,package_name"`
	TokenLimitPerMonth *int64   `json:"tokenLimitPerMonth" validate:"omitempty,gte=0"`
	Price              *float64 `json:"price" validate:"omitempty,gte=0"`
	PaymentSchedule    *string  `json:"paymentSchedule" validate:"omitempty,payment_schedule"`
}

// SubscriptionCreateInput là body tạo CustomerSubscription cho một dashboard
type SubscriptionCreateInput struct {
	DashboardID           string `json:"dashboardId" validate:"required,object_id"`
	SubscriptionPackageID string `json:"subscriptionPackageId" validate:"required,object_id"`
	Renewal               *bool  `json:"renewal"`
}

// SubscriptionUpdateInput là body cập nhật CustomerSubscription; nil là giữ nguyên
type SubscriptionUpdateInput struct {
	SubscriptionPackageID *string `json:"subscriptionPackageId" validate:"omitempty,object_id"`
	Status                *string `json:"status" validate:"omitempty,subscription_status"`
	Renewal               *bool   `json:"renewal"`
	EndDate               *int64  `json:"endDate" validate:"omitempty,gt=0"`
	NextBillingDate       *int64  `json:"nextBillingDate" validate:"omitempty,gt=0"`
}
