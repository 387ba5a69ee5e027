// Package dashboardsvc chứa store MongoDB của dashboards và nghiệp vụ vòng đời dashboard.
package dashboardsvc

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	authmodels "talking_menu/internal/api/auth/models"
	basesvc "talking_menu/internal/api/base/service"
	models "talking_menu/internal/api/dashboard/models"
	"talking_menu/internal/common"
	"talking_menu/internal/global"
	"talking_menu/internal/store"
)

// DashboardService là store MongoDB của collection dashboards
type DashboardService struct {
	*basesvc.BaseServiceMongoImpl[models.Dashboard]
}

var _ store.DashboardStore = (*DashboardService)(nil)

// NewDashboardService tạo mới DashboardService
func NewDashboardService() (*DashboardService, error) {
	collection, err := basesvc.GetCollection(global.MongoDB_ColNames.Dashboards)
	if err != nil {
		return nil, err
	}
	return &DashboardService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Dashboard](collection),
	}, nil
}

// Create thêm dashboard; trùng ownerId (unique index) trả về lỗi duplicate
func (s *DashboardService) Create(ctx context.Context, d models.Dashboard) (*models.Dashboard, error) {
	if d.Restaurants == nil {
		d.Restaurants = []primitive.ObjectID{}
	}
	if d.UserAccess == nil {
		d.UserAccess = []authmodels.UserAccess{}
	}
	created, err := s.InsertOne(ctx, d)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *DashboardService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Dashboard, error) {
	d, err := s.FindOneById(ctx, id)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DashboardService) FindByOwner(ctx context.Context, ownerUID string) (*models.Dashboard, error) {
	d, err := s.FindOne(ctx, bson.M{"ownerId": ownerUID}, nil)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DashboardService) FindByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) (*models.Dashboard, error) {
	d, err := s.FindOne(ctx, bson.M{"restaurants": restaurantID}, nil)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FindForPrincipal: owner hoặc có trong userAccess
func (s *DashboardService) FindForPrincipal(ctx context.Context, uid string) ([]models.Dashboard, error) {
	filter := bson.M{"$or": []bson.M{
		{"ownerId": uid},
		{"userAccess.userId": uid},
	}}
	return s.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (s *DashboardService) SetSubscription(ctx context.Context, id, subscriptionID primitive.ObjectID) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{Set: map[string]interface{}{"customerSubscriptionId": subscriptionID}})
	return err
}

func (s *DashboardService) AddRestaurant(ctx context.Context, id, restaurantID primitive.ObjectID) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{AddToSet: map[string]interface{}{"restaurants": restaurantID}})
	return err
}

func (s *DashboardService) RemoveRestaurant(ctx context.Context, id, restaurantID primitive.ObjectID) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{Pull: map[string]interface{}{"restaurants": restaurantID}})
	return err
}

func (s *DashboardService) PullRestaurantFromAll(ctx context.Context, restaurantID primitive.ObjectID) error {
	_, err := s.UpdateMany(ctx,
		bson.M{"restaurants": restaurantID},
		&basesvc.UpdateData{Pull: map[string]interface{}{"restaurants": restaurantID}},
	)
	return err
}

// AddUserAccess thêm entry khi userId chưa có trong roster.
// Filter loại trừ userId đã có nên không khớp document cũng có thể là "đã có quyền".
func (s *DashboardService) AddUserAccess(ctx context.Context, id primitive.ObjectID, access authmodels.UserAccess) error {
	filter := bson.M{"_id": id, "userAccess.userId": bson.M{"$ne": access.UserID}}
	_, err := s.UpdateOne(ctx, filter, &basesvc.UpdateData{Push: map[string]interface{}{"userAccess": access}}, nil)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}
	exists, existsErr := s.DocumentExists(ctx, bson.M{"_id": id})
	if existsErr != nil {
		return existsErr
	}
	if !exists {
		return common.ErrNotFound
	}
	return nil
}

func (s *DashboardService) RemoveUserAccess(ctx context.Context, id primitive.ObjectID, uid string) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{Pull: map[string]interface{}{"userAccess": bson.M{"userId": uid}}})
	return err
}
