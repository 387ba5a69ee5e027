package authdto

import "go.mongodb.org/mongo-driver/bson/primitive"

// SignUpInput là body của POST /auth/signup (token nằm ở header Authorization)
type SignUpInput struct {
	Name      string `json:"name" validate:"omitempty,max=120,no_xss"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
}

// UpdateProfileInput là body của PUT /user; nil là giữ nguyên
type UpdateProfileInput struct {
	Name      *string `json:"name" validate:"omitempty,max=120,no_xss"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,max=2048"`
}

// UserAccessOutput là quyền truy cập hiện tại của một user
type UserAccessOutput struct {
	UserID                string               `json:"userId"`
	Roles                 []string             `json:"roles"`
	AccessibleDashboards  []primitive.ObjectID `json:"accessibleDashboards"`
	AccessibleRestaurants []primitive.ObjectID `json:"accessibleRestaurants"`
}

// AssignRoleInput là body của PUT /user/:userId/role
type AssignRoleInput struct {
	Role string `json:"role" validate:"required,role"`
}
