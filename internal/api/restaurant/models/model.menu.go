package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Menu của nhà hàng, 1:1 theo restaurantId
type Menu struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	RestaurantID primitive.ObjectID `json:"restaurantId" bson:"restaurantId" index:"unique"`
	MenuItems    []MenuItem         `json:"menuItems" bson:"menuItems"`
	CreatedAt    int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt    int64              `json:"updatedAt" bson:"updatedAt"`
}

// MenuItem là sub-document, định danh bằng _id riêng
type MenuItem struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Price       float64            `json:"price" bson:"price"`
}
