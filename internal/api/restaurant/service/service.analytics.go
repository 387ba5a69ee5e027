package restaurantsvc

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "talking_menu/internal/api/base/service"
	models "talking_menu/internal/api/restaurant/models"
	"talking_menu/internal/common"
	"talking_menu/internal/global"
	"talking_menu/internal/store"
)

// AnalyticsService là store MongoDB của collection restaurant_analytics
type AnalyticsService struct {
	*basesvc.BaseServiceMongoImpl[models.RestaurantAnalytics]
}

var _ store.AnalyticsStore = (*AnalyticsService)(nil)

// NewAnalyticsService tạo mới AnalyticsService
func NewAnalyticsService() (*AnalyticsService, error) {
	collection, err := basesvc.GetCollection(global.MongoDB_ColNames.RestaurantAnalytics)
	if err != nil {
		return nil, err
	}
	return &AnalyticsService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.RestaurantAnalytics](collection),
	}, nil
}

// Create tạo bản thống kê rỗng cho nhà hàng
func (s *AnalyticsService) Create(ctx context.Context, restaurantID primitive.ObjectID) (*models.RestaurantAnalytics, error) {
	created, err := s.InsertOne(ctx, models.RestaurantAnalytics{
		RestaurantID: restaurantID,
		MonthlyStats: []models.MonthlyStat{},
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *AnalyticsService) FindByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) (*models.RestaurantAnalytics, error) {
	a, err := s.FindOne(ctx, byRestaurant(restaurantID), nil)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Record cộng delta vào entry của tháng. Thử $inc theo vị trí trước, chưa có entry thì $push;
// nếu $push không khớp (request khác vừa push tháng này) thì quay lại $inc.
// Không upsert: document analytics chỉ được tạo cùng nhà hàng, nhà hàng đã xóa thì trả ErrNotFound.
func (s *AnalyticsService) Record(ctx context.Context, restaurantID primitive.ObjectID, delta models.MonthlyStat) error {
	totals := map[string]interface{}{
		"totalChats":    delta.Chats,
		"totalMessages": delta.Messages,
		"totalTokens":   delta.TotalTokens,
	}

	err := s.incMonth(ctx, restaurantID, delta, totals)
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	filter := bson.M{
		"restaurantId": restaurantID,
		"monthlyStats": bson.M{"$not": bson.M{"$elemMatch": bson.M{"year": delta.Year, "month": delta.Month}}},
	}
	update := &basesvc.UpdateData{
		Push: map[string]interface{}{"monthlyStats": delta},
		Inc:  totals,
	}
	_, err = s.UpdateOne(ctx, filter, update, nil)
	if errors.Is(err, common.ErrNotFound) {
		return s.incMonth(ctx, restaurantID, delta, totals)
	}
	return err
}

func (s *AnalyticsService) incMonth(ctx context.Context, restaurantID primitive.ObjectID, delta models.MonthlyStat, totals map[string]interface{}) error {
	filter := bson.M{
		"restaurantId": restaurantID,
		"monthlyStats": bson.M{"$elemMatch": bson.M{"year": delta.Year, "month": delta.Month}},
	}
	inc := map[string]interface{}{
		"monthlyStats.$.chats":            delta.Chats,
		"monthlyStats.$.messages":         delta.Messages,
		"monthlyStats.$.promptTokens":     delta.PromptTokens,
		"monthlyStats.$.completionTokens": delta.CompletionTokens,
		"monthlyStats.$.totalTokens":      delta.TotalTokens,
	}
	for k, v := range totals {
		inc[k] = v
	}
	_, err := s.UpdateOne(ctx, filter, &basesvc.UpdateData{Inc: inc}, nil)
	return err
}

func (s *AnalyticsService) DeleteByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) error {
	_, err := s.DeleteMany(ctx, byRestaurant(restaurantID))
	return err
}
