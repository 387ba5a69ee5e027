package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "talking_menu/internal/api/auth/models"
)

// Dashboard là ranh giới sở hữu/billing, mỗi owner có tối đa một dashboard
type Dashboard struct {
	ID                     primitive.ObjectID      `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID                string                  `json:"ownerId" bson:"ownerId" index:"unique"` // Firebase UID của main admin
	Restaurants            []primitive.ObjectID    `json:"restaurants" bson:"restaurants" index:"single"`
	UserAccess             []authmodels.UserAccess `json:"userAccess" bson:"userAccess"`
	CustomerSubscriptionID *primitive.ObjectID     `json:"customerSubscriptionId,omitempty" bson:"customerSubscriptionId,omitempty"`
	CreatedAt              int64                   `json:"createdAt" bson:"createdAt"`
	UpdatedAt              int64                   `json:"updatedAt" bson:"updatedAt"`
}

// HasRestaurant kiểm tra dashboard có chứa restaurantID
func (d *Dashboard) HasRestaurant(restaurantID primitive.ObjectID) bool {
	for _, id := range d.Restaurants {
		if id == restaurantID {
			return true
		}
	}
	return false
}
