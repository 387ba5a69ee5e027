// Package chatsvc chứa store MongoDB của chats/user_chats và relay chatbot.
package chatsvc

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "talking_menu/internal/api/base/models"
	basesvc "talking_menu/internal/api/base/service"
	models "talking_menu/internal/api/chat/models"
	"talking_menu/internal/global"
	"talking_menu/internal/store"
)

// ChatService là store MongoDB của collection chats
type ChatService struct {
	*basesvc.BaseServiceMongoImpl[models.Chat]
}

var _ store.ChatStore = (*ChatService)(nil)

// NewChatService tạo mới ChatService
func NewChatService() (*ChatService, error) {
	collection, err := basesvc.GetCollection(global.MongoDB_ColNames.Chats)
	if err != nil {
		return nil, err
	}
	return &ChatService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Chat](collection),
	}, nil
}

func (s *ChatService) Create(ctx context.Context, c models.Chat) (*models.Chat, error) {
	if c.Messages == nil {
		c.Messages = []models.ChatMessage{}
	}
	if c.SeenBy == nil {
		c.SeenBy = []string{}
	}
	created, err := s.InsertOne(ctx, c)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *ChatService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	c, err := s.FindOneById(ctx, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ChatService) FindBySession(ctx context.Context, restaurantID primitive.ObjectID, sessionToken string) (*models.Chat, error) {
	c, err := s.FindOne(ctx, bson.M{"restaurantId": restaurantID, "sessionToken": sessionToken}, nil)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ChatService) FindLatestByUser(ctx context.Context, restaurantID primitive.ObjectID, uid string) (*models.Chat, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	c, err := s.FindOne(ctx, bson.M{"restaurantId": restaurantID, "userId": uid}, opts)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByRestaurant phân trang chat của nhà hàng, mới cập nhật trước; không trả messages
func (s *ChatService) ListByRestaurant(ctx context.Context, restaurantID primitive.ObjectID, page, limit int64) (*basemodels.PaginateResult[models.Chat], error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetProjection(bson.M{"messages": 0})
	return s.FindWithPagination(ctx, bson.M{"restaurantId": restaurantID}, page, limit, opts)
}

func (s *ChatService) FindIDsByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]primitive.ObjectID, error) {
	chats, err := s.Find(ctx, bson.M{"restaurantId": restaurantID}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(chats))
	for _, c := range chats {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// AppendMessage $push message và $inc tổng usage của chat
func (s *ChatService) AppendMessage(ctx context.Context, id primitive.ObjectID, msg models.ChatMessage, model string) error {
	update := &basesvc.UpdateData{
		Push: map[string]interface{}{"messages": msg},
	}
	if msg.TokenUsage != nil {
		update.Inc = msg.TokenUsage.IncFields("tokenUsage")
	}
	if model != "" {
		update.Set = map[string]interface{}{"model": model}
	}
	_, err := s.UpdateById(ctx, id, update)
	return err
}

func (s *ChatService) MarkSeen(ctx context.Context, id primitive.ObjectID, uid string) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{AddToSet: map[string]interface{}{"seenBy": uid}})
	return err
}

func (s *ChatService) DeleteByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) (int64, error) {
	return s.DeleteMany(ctx, bson.M{"restaurantId": restaurantID})
}

// UserChatsService là store MongoDB của collection user_chats
type UserChatsService struct {
	*basesvc.BaseServiceMongoImpl[models.UserChats]
}

var _ store.UserChatsStore = (*UserChatsService)(nil)

// NewUserChatsService tạo mới UserChatsService
func NewUserChatsService() (*UserChatsService, error) {
	collection, err := basesvc.GetCollection(global.MongoDB_ColNames.UserChats)
	if err != nil {
		return nil, err
	}
	return &UserChatsService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.UserChats](collection),
	}, nil
}

func (s *UserChatsService) FindByUser(ctx context.Context, uid string) (*models.UserChats, error) {
	uc, err := s.FindOne(ctx, bson.M{"userId": uid}, nil)
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

// AddChat upsert document của user rồi $addToSet chatID
func (s *UserChatsService) AddChat(ctx context.Context, uid string, chatID primitive.ObjectID) error {
	update := &basesvc.UpdateData{AddToSet: map[string]interface{}{"chats": chatID}}
	_, err := s.UpdateOne(ctx, bson.M{"userId": uid}, update, options.Update().SetUpsert(true))
	return err
}

func (s *UserChatsService) PullChats(ctx context.Context, chatIDs []primitive.ObjectID) error {
	if len(chatIDs) == 0 {
		return nil
	}
	_, err := s.UpdateMany(ctx,
		bson.M{"chats": bson.M{"$in": chatIDs}},
		&basesvc.UpdateData{Pull: map[string]interface{}{"chats": bson.M{"$in": chatIDs}}},
	)
	return err
}
