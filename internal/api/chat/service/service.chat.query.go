package chatsvc

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "talking_menu/internal/api/auth/models"
	basemodels "talking_menu/internal/api/base/models"
	models "talking_menu/internal/api/chat/models"
	"talking_menu/internal/common"
	"talking_menu/internal/store"
)

// QueryService đọc chat và các thao tác của admin trên chat (seen, star)
type QueryService struct {
	chats       store.ChatStore
	restaurants store.RestaurantStore
	users       store.UserStore
}

// NewQueryService tạo QueryService
func NewQueryService(stores *store.Stores) *QueryService {
	return &QueryService{chats: stores.Chats, restaurants: stores.Restaurants, users: stores.Users}
}

// ListByRestaurant phân trang chat của nhà hàng, mới cập nhật trước, không kèm messages
func (s *QueryService) ListByRestaurant(ctx context.Context, restaurantID primitive.ObjectID, page, limit int64) (*basemodels.PaginateResult[models.Chat], error) {
	page, limit = basemodels.NormalizePage(page, limit)
	return s.chats.ListByRestaurant(ctx, restaurantID, page, limit)
}

// canManage: platform admin, owner hoặc nhân viên của nhà hàng chứa chat
func (s *QueryService) canManage(ctx context.Context, principal *authmodels.User, chat *models.Chat) (bool, error) {
	if principal == nil {
		return false, nil
	}
	if principal.IsPlatformAdmin() {
		return true, nil
	}
	restaurant, err := s.restaurants.FindByID(ctx, chat.RestaurantID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return restaurant.CanAccess(principal.FirebaseUID), nil
}

// Get trả về chat đầy đủ. Người được xem: người quản lý nhà hàng, chủ chat,
// hoặc thực khách ẩn danh giữ đúng session token.
func (s *QueryService) Get(ctx context.Context, principal *authmodels.User, chatID primitive.ObjectID, sessionToken string) (*models.Chat, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if sessionToken != "" && sessionToken == chat.SessionToken {
		return chat, nil
	}
	if principal != nil && chat.UserID != "" && chat.UserID == principal.FirebaseUID {
		return chat, nil
	}
	ok, err := s.canManage(ctx, principal, chat)
	if err != nil {
		return nil, err
	}
	if !ok {
		if principal == nil {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrForbidden
	}
	return chat, nil
}

func (s *QueryService) managedChat(ctx context.Context, principal *authmodels.User, chatID primitive.ObjectID) (*models.Chat, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	ok, err := s.canManage(ctx, principal, chat)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrForbidden
	}
	return chat, nil
}

// MarkSeen đánh dấu principal đã xem chat
func (s *QueryService) MarkSeen(ctx context.Context, principal *authmodels.User, chatID primitive.ObjectID) error {
	if _, err := s.managedChat(ctx, principal, chatID); err != nil {
		return err
	}
	return s.chats.MarkSeen(ctx, chatID, principal.FirebaseUID)
}

// Star thêm/bỏ chat khỏi starredChats của principal
func (s *QueryService) Star(ctx context.Context, principal *authmodels.User, chatID primitive.ObjectID, starred bool) error {
	if _, err := s.managedChat(ctx, principal, chatID); err != nil {
		return err
	}
	return s.users.SetStarredChat(ctx, principal.FirebaseUID, chatID, starred)
}
