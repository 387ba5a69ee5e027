package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// RestaurantAnalytics là thống kê theo tháng, 1:1 theo restaurantId
type RestaurantAnalytics struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	RestaurantID  primitive.ObjectID `json:"restaurantId" bson:"restaurantId" index:"unique"`
	MonthlyStats  []MonthlyStat      `json:"monthlyStats" bson:"monthlyStats"`
	TotalChats    int64              `json:"totalChats" bson:"totalChats"`
	TotalMessages int64              `json:"totalMessages" bson:"totalMessages"`
	TotalTokens   int64              `json:"totalTokens" bson:"totalTokens"`
	CreatedAt     int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt     int64              `json:"updatedAt" bson:"updatedAt"`
}

// MonthlyStat là số liệu của một tháng
type MonthlyStat struct {
	Year             int   `json:"year" bson:"year"`
	Month            int   `json:"month" bson:"month"` // 1-12
	Chats            int64 `json:"chats" bson:"chats"`
	Messages         int64 `json:"messages" bson:"messages"`
	PromptTokens     int64 `json:"promptTokens" bson:"promptTokens"`
	CompletionTokens int64 `json:"completionTokens" bson:"completionTokens"`
	TotalTokens      int64 `json:"totalTokens" bson:"totalTokens"`
}

// Index trả về số tháng tuyệt đối (year*12 + month-1) để so sánh/tính khoảng cách
func (m MonthlyStat) Index() int {
	return m.Year*12 + m.Month - 1
}
