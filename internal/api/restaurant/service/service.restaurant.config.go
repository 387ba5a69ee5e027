package restaurantsvc

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	restdto "talking_menu/internal/api/restaurant/dto"
	models "talking_menu/internal/api/restaurant/models"
	"talking_menu/internal/common"
	"talking_menu/internal/store"
)

// ConfigService quản lý menu và cấu hình chatbot của một nhà hàng
type ConfigService struct {
	menus    store.MenuStore
	chatbots store.ChatbotStore
}

// NewConfigService tạo ConfigService
func NewConfigService(stores *store.Stores) *ConfigService {
	return &ConfigService{menus: stores.Menus, chatbots: stores.Chatbots}
}

// GetMenu trả về menu của nhà hàng
func (s *ConfigService) GetMenu(ctx context.Context, restaurantID primitive.ObjectID) (*models.Menu, error) {
	return s.menus.FindByRestaurant(ctx, restaurantID)
}

// AddMenuItems thêm một hoặc nhiều món, mỗi món được cấp _id mới
func (s *ConfigService) AddMenuItems(ctx context.Context, restaurantID primitive.ObjectID, input *restdto.MenuItemsInput) (*models.Menu, error) {
	items := make([]models.MenuItem, 0, len(input.Items))
	for _, in := range input.Items {
		items = append(items, models.MenuItem{
			ID:          primitive.NewObjectID(),
			Name:        in.Name,
			Description: in.Description,
			Price:       in.Price,
		})
	}
	return s.menus.AddItems(ctx, restaurantID, items)
}

// UpdateMenuItem sửa một phần một món
func (s *ConfigService) UpdateMenuItem(ctx context.Context, restaurantID, itemID primitive.ObjectID, input *restdto.MenuItemUpdateInput) (*models.Menu, error) {
	fields := map[string]interface{}{}
	if input.Name != nil {
		fields["name"] = *input.Name
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Price != nil {
		fields["price"] = *input.Price
	}
	if len(fields) == 0 {
		return nil, common.NewValidationError("No fields to update")
	}
	return s.menus.UpdateItem(ctx, restaurantID, itemID, fields)
}

// DeleteMenuItems xóa các món theo id; id không tồn tại được bỏ qua
func (s *ConfigService) DeleteMenuItems(ctx context.Context, restaurantID primitive.ObjectID, itemIDs []string) (*models.Menu, error) {
	ids := make([]primitive.ObjectID, 0, len(itemIDs))
	for _, raw := range itemIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, common.ErrInvalidID
		}
		ids = append(ids, id)
	}
	return s.menus.DeleteItems(ctx, restaurantID, ids)
}

// GetChatbot trả về cấu hình chatbot
func (s *ConfigService) GetChatbot(ctx context.Context, restaurantID primitive.ObjectID) (*models.Chatbot, error) {
	return s.chatbots.FindByRestaurant(ctx, restaurantID)
}

// UpdateChatbot sửa systemPrompt/qrScanOnly
func (s *ConfigService) UpdateChatbot(ctx context.Context, restaurantID primitive.ObjectID, input *restdto.ChatbotUpdateInput) (*models.Chatbot, error) {
	fields := map[string]interface{}{}
	if input.SystemPrompt != nil {
		fields["systemPrompt"] = *input.SystemPrompt
	}
	if input.QRScanOnly != nil {
		fields["qrScanOnly"] = *input.QRScanOnly
	}
	if len(fields) == 0 {
		return s.chatbots.FindByRestaurant(ctx, restaurantID)
	}
	return s.chatbots.Update(ctx, restaurantID, fields)
}

// SetSuggestedQuestions thay toàn bộ danh sách câu hỏi gợi ý
func (s *ConfigService) SetSuggestedQuestions(ctx context.Context, restaurantID primitive.ObjectID, questions []models.RichTextDocument) (*models.Chatbot, error) {
	if questions == nil {
		questions = []models.RichTextDocument{}
	}
	return s.chatbots.Update(ctx, restaurantID, map[string]interface{}{"suggestedQuestions": questions})
}

// SetChatbotStatus bật/tắt chatbot
func (s *ConfigService) SetChatbotStatus(ctx context.Context, restaurantID primitive.ObjectID, status string) (*models.Chatbot, error) {
	if status != models.ChatbotStatusOn && status != models.ChatbotStatusOff {
		return nil, common.NewValidationError("status must be on or off")
	}
	return s.chatbots.Update(ctx, restaurantID, map[string]interface{}{"status": status})
}
