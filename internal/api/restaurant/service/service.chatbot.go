package restaurantsvc

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "talking_menu/internal/api/base/service"
	models "talking_menu/internal/api/restaurant/models"
	"talking_menu/internal/global"
	"talking_menu/internal/store"
)

// ChatbotService là store MongoDB của collection chatbots
type ChatbotService struct {
	*basesvc.BaseServiceMongoImpl[models.Chatbot]
}

var _ store.ChatbotStore = (*ChatbotService)(nil)

// NewChatbotService tạo mới ChatbotService
func NewChatbotService() (*ChatbotService, error) {
	collection, err := basesvc.GetCollection(global.MongoDB_ColNames.Chatbots)
	if err != nil {
		return nil, err
	}
	return &ChatbotService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Chatbot](collection),
	}, nil
}

func (s *ChatbotService) Create(ctx context.Context, c models.Chatbot) (*models.Chatbot, error) {
	if c.SuggestedQuestions == nil {
		c.SuggestedQuestions = []models.RichTextDocument{}
	}
	created, err := s.InsertOne(ctx, c)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *ChatbotService) FindByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) (*models.Chatbot, error) {
	c, err := s.FindOne(ctx, byRestaurant(restaurantID), nil)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ChatbotService) Update(ctx context.Context, restaurantID primitive.ObjectID, fields map[string]interface{}) (*models.Chatbot, error) {
	c, err := s.UpdateOne(ctx, byRestaurant(restaurantID), &basesvc.UpdateData{Set: fields}, nil)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ChatbotService) DeleteByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) error {
	_, err := s.DeleteMany(ctx, byRestaurant(restaurantID))
	return err
}
