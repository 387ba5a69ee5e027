package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "talking_menu/internal/api/auth/models"
)

// Restaurant là một tenant nằm dưới Dashboard
type Restaurant struct {
	ID         primitive.ObjectID      `json:"id,omitempty" bson:"_id,omitempty"`
	Name       string                  `json:"name" bson:"name"`
	Location   string                  `json:"location" bson:"location"`
	OwnerID    string                  `json:"ownerId" bson:"ownerId" index:"single"`
	Menu       *primitive.ObjectID     `json:"menu,omitempty" bson:"menu,omitempty"`
	Chats      []primitive.ObjectID    `json:"chats" bson:"chats"`
	UserAccess []authmodels.UserAccess `json:"userAccess" bson:"userAccess"`
	Logo       string                  `json:"logo" bson:"logo"`
	MenuLink   string                  `json:"menuLink" bson:"menuLink"`
	OrderLink  string                  `json:"orderLink" bson:"orderLink"`
	CreatedAt  int64                   `json:"createdAt" bson:"createdAt"`
	UpdatedAt  int64                   `json:"updatedAt" bson:"updatedAt"`
}

// CanAccess: owner hoặc có trong roster
func (r *Restaurant) CanAccess(uid string) bool {
	return r.OwnerID == uid || authmodels.HasAccess(r.UserAccess, uid)
}

// MainAdmins trả về các entry có vai trò main admin (bất biến: đúng một entry)
func (r *Restaurant) MainAdmins() []authmodels.UserAccess {
	var out []authmodels.UserAccess
	for _, a := range r.UserAccess {
		if a.Role == authmodels.RoleRestaurantMainAdmin {
			out = append(out, a)
		}
	}
	return out
}
