package chatdto

// SendMessageInput là body của POST /chat/send-message
type SendMessageInput struct {
	RestaurantID string `json:"restaurantId" validate:"required,object_id"`
	SessionToken string `json:"sessionToken" validate:"omitempty,max=64"`
	TableNumber  string `json:"tableNumber" validate:"omitempty,max=32,no_xss"`
	Message      string `json:"message" validate:"required,max=4000"`
}

// StarInput là body của POST /chat/:chatId/star
type StarInput struct {
	Starred *bool `json:"starred" validate:"required"`
}

// ChatListQuery là query của GET /restaurant/:restaurantId/chats
type ChatListQuery struct {
	Page  int64 `query:"page"`
	Limit int64 `query:"limit"`
}

// StarOutput trả về trạng thái star sau khi cập nhật
type StarOutput struct {
	ChatID  string `json:"chatId"`
	Starred bool   `json:"starred"`
}
