package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	submodels "talking_menu/internal/api/subscription/models"
)

// Người gửi message
const (
	SenderSystem    = "system"
	SenderUser      = "user"
	SenderAssistant = "assistant"

	DefaultTableNumber = "default"
)

// Chat là transcript một cuộc hội thoại của thực khách
type Chat struct {
	ID           primitive.ObjectID           `json:"id,omitempty" bson:"_id,omitempty"`
	SessionToken string                       `json:"sessionToken" bson:"sessionToken" index:"single"`
	RestaurantID primitive.ObjectID           `json:"restaurantId" bson:"restaurantId" index:"single"`
	TableNumber  string                       `json:"tableNumber" bson:"tableNumber"`
	UserID       string                       `json:"userId,omitempty" bson:"userId,omitempty" index:"single"` // Firebase UID, rỗng nếu ẩn danh
	Messages     []ChatMessage                `json:"messages" bson:"messages"`
	Model        string                       `json:"model" bson:"model"`
	TokenUsage   submodels.TokenUsageDetails `json:"tokenUsage" bson:"tokenUsage"`
	SeenBy       []string                     `json:"seenBy" bson:"seenBy"`
	CreatedAt    int64                        `json:"createdAt" bson:"createdAt"`
	UpdatedAt    int64                        `json:"updatedAt" bson:"updatedAt"`
}

// ChatMessage là một message trong transcript (append-only)
type ChatMessage struct {
	Message    string                        `json:"message" bson:"message"`
	Sender     string                        `json:"sender" bson:"sender"`
	Role       string                        `json:"role,omitempty" bson:"role,omitempty"` // vai trò của người gửi nếu đã đăng nhập
	Timestamp  int64                         `json:"timestamp" bson:"timestamp"`
	TokenUsage *submodels.TokenUsageDetails `json:"tokenUsage,omitempty" bson:"tokenUsage,omitempty"`
}

// UserChats là danh sách chat của một user
type UserChats struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string               `json:"userId" bson:"userId" index:"unique"`
	Chats     []primitive.ObjectID `json:"chats" bson:"chats" index:"single"`
	CreatedAt int64                `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64                `json:"updatedAt" bson:"updatedAt"`
}
