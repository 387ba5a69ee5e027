package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các vai trò của hệ thống
const (
	RoleDiner               = "diner"
	RoleRestaurantAdmin     = "restaurant_admin"
	RoleRestaurantMainAdmin = "restaurant_main_admin"
	RoleTalkingMenuAdmin    = "talking_menu_admin"
)

// ValidRoles là tập vai trò hợp lệ
var ValidRoles = []string{RoleDiner, RoleRestaurantAdmin, RoleRestaurantMainAdmin, RoleTalkingMenuAdmin}

// User đại diện cho một người dùng, map 1-1 với Firebase UID
type User struct {
	ID                    primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	FirebaseUID           string               `json:"firebaseUid" bson:"firebaseUid" index:"unique"`
	Name                  string               `json:"name" bson:"name"`
	Email                 string               `json:"email,omitempty" bson:"email,omitempty" index:"unique,sparse"`
	AvatarURL             string               `json:"avatarUrl,omitempty" bson:"avatarUrl,omitempty"`
	Roles                 []string             `json:"roles" bson:"roles"`
	AccessibleDashboards  []primitive.ObjectID `json:"accessibleDashboards" bson:"accessibleDashboards"`
	AccessibleRestaurants []primitive.ObjectID `json:"accessibleRestaurants" bson:"accessibleRestaurants" index:"single"`
	StarredChats          []primitive.ObjectID `json:"starredChats" bson:"starredChats"`
	CreatedAt             int64                `json:"createdAt" bson:"createdAt"`
	UpdatedAt             int64                `json:"updatedAt" bson:"updatedAt"`
}

// HasRole kiểm tra user có vai trò role
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsPlatformAdmin là talking_menu_admin
func (u *User) IsPlatformAdmin() bool {
	return u.HasRole(RoleTalkingMenuAdmin)
}

// EnsureSlices khởi tạo các mảng nil thành mảng rỗng trước khi insert,
// để các toán tử $addToSet/$pull sau này không lỗi trên field null.
func (u *User) EnsureSlices() {
	if u.Roles == nil {
		u.Roles = []string{}
	}
	if u.AccessibleDashboards == nil {
		u.AccessibleDashboards = []primitive.ObjectID{}
	}
	if u.AccessibleRestaurants == nil {
		u.AccessibleRestaurants = []primitive.ObjectID{}
	}
	if u.StarredChats == nil {
		u.StarredChats = []primitive.ObjectID{}
	}
}

// UserAccess là một entry trong roster quyền của Dashboard/Restaurant.
// UserID là Firebase UID.
type UserAccess struct {
	UserID    string `json:"userId" bson:"userId"`
	UserEmail string `json:"userEmail" bson:"userEmail"`
	Role      string `json:"role" bson:"role"`
}

// HasAccess kiểm tra uid có trong roster
func HasAccess(roster []UserAccess, uid string) bool {
	for _, a := range roster {
		if a.UserID == uid {
			return true
		}
	}
	return false
}
