package restdto

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	chatmodels "talking_menu/internal/api/chat/models"
	restmodels "talking_menu/internal/api/restaurant/models"
)

// RestaurantCreateInput là body của POST /dashboards/:dashboardId/restaurants
type RestaurantCreateInput struct {
	Name      string `json:"name" validate:"required,max=200,no_xss"`
	Location  string `json:"location" validate:"omitempty,max=300,no_xss"`
	Logo      string `json:"logo" validate:"omitempty,max=2048"`
	MenuLink  string `json:"menuLink" validate:"omitempty,max=2048"`
	OrderLink string `json:"orderLink" validate:"omitempty,max=2048"`
}

// RestaurantUpdateInput: nil là giữ nguyên, "" là xóa giá trị
type RestaurantUpdateInput struct {
	Name      *string `json:"name" validate:"omitempty,max=200,no_xss"`
	Location  *string `json:"location" validate:"omitempty,max=300,no_xss"`
	Logo      *string `json:"logo" validate:"omitempty,max=2048"`
	MenuLink  *string `json:"menuLink" validate:"omitempty,max=2048"`
	OrderLink *string `json:"orderLink" validate:"omitempty,max=2048"`
}

// Fields trả về map các field có mặt trong input
func (in *RestaurantUpdateInput) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	set := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	set("name", in.Name)
	set("location", in.Location)
	set("logo", in.Logo)
	set("menuLink", in.MenuLink)
	set("orderLink", in.OrderLink)
	return fields
}

// TransferInput là body của PUT /restaurant/:restaurantId/transfer
type TransferInput struct {
	Email string `json:"email" validate:"required,email"`
}

// RestaurantListQuery là query của GET /restaurants
type RestaurantListQuery struct {
	Page   int64  `query:"page"`
	Limit  int64  `query:"limit"`
	Search string `query:"search" validate:"omitempty,max=100"`
}

// RestaurantOutput là nhà hàng với menu và chat đã được resolve
type RestaurantOutput struct {
	restmodels.Restaurant
	Menu  *restmodels.Menu  `json:"menu"`
	Chats []chatmodels.Chat `json:"chats"`
}

// RestaurantListItem là một dòng trong danh sách của platform admin
type RestaurantListItem struct {
	restmodels.Restaurant
	OwnerEmail  string              `json:"ownerEmail"`
	DashboardID *primitive.ObjectID `json:"dashboardId,omitempty"`
}

// TransferOutput là kết quả chuyển quyền sở hữu
type TransferOutput struct {
	Restaurant       *restmodels.Restaurant `json:"restaurant"`
	NewDashboardID   primitive.ObjectID     `json:"newDashboardId"`
	DashboardCreated bool                   `json:"dashboardCreated"`
	PreviousOwnerID  string                 `json:"previousOwnerId"`
}

// MenuItemInput là một món khi thêm vào menu
type MenuItemInput struct {
	Name        string  `json:"name" validate:"required,max=200,no_xss"`
	Description string  `json:"description" validate:"omitempty,max=2000,no_xss"`
	Price       float64 `json:"price" validate:"gte=0"`
}

// MenuItemsInput cho phép thêm một hoặc nhiều món
type MenuItemsInput struct {
	Items []MenuItemInput `json:"menuItems" validate:"required,min=1,max=500,dive"`
}

// MenuItemUpdateInput: nil là giữ nguyên
type MenuItemUpdateInput struct {
	Name        *string  `json:"name" validate:"omitempty,max=200,no_xss"`
	Description *string  `json:"description" validate:"omitempty,max=2000,no_xss"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
}

// MenuBulkDeleteInput là danh sách id món cần xóa
type MenuBulkDeleteInput struct {
	MenuItemIDs []string `json:"menuItemIds" validate:"required,min=1,dive,object_id"`
}

// ChatbotUpdateInput là body của PATCH /chatbot/:restaurantId
type ChatbotUpdateInput struct {
	SystemPrompt *string `json:"systemPrompt" validate:"omitempty,max=10000"`
	QRScanOnly   *bool   `json:"qrScanOnly"`
}

// SuggestedQuestionsInput là body của PATCH /chatbot/:restaurantId/suggested-questions
type SuggestedQuestionsInput struct {
	SuggestedQuestions []restmodels.RichTextDocument `json:"suggestedQuestions" validate:"max=10"`
}

// ChatbotStatusInput là body của PATCH /chatbot/:restaurantId/status
type ChatbotStatusInput struct {
	Status string `json:"status" validate:"required,oneof=on off"`
}
