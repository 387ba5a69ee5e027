package employeedto

// GrantInput là body của POST /employee-access
type GrantInput struct {
	Email        string `json:"email" validate:"required,email"`
	RestaurantID string `json:"restaurantId" validate:"required,object_id"`
	DashboardID  string `json:"dashboardId" validate:"required,object_id"`
	Role         string `json:"role" validate:"omitempty,role"`
}

// RevokeInput là body của DELETE /employee-access/revoke
type RevokeInput struct {
	UserID       string `json:"userId" validate:"required"`
	RestaurantID string `json:"restaurantId" validate:"required,object_id"`
	DashboardID  string `json:"dashboardId" validate:"required,object_id"`
}

// AccessOutput mô tả quyền vừa được cấp/thu hồi
type AccessOutput struct {
	UserID       string `json:"userId"`
	UserEmail    string `json:"userEmail,omitempty"`
	Role         string `json:"role,omitempty"`
	RestaurantID string `json:"restaurantId"`
	DashboardID  string `json:"dashboardId"`
}
