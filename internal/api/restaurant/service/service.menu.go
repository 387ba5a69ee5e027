package restaurantsvc

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "talking_menu/internal/api/base/service"
	models "talking_menu/internal/api/restaurant/models"
	"talking_menu/internal/global"
	"talking_menu/internal/store"
)

// MenuService là store MongoDB của collection menus
type MenuService struct {
	*basesvc.BaseServiceMongoImpl[models.Menu]
}

var _ store.MenuStore = (*MenuService)(nil)

// NewMenuService tạo mới MenuService
func NewMenuService() (*MenuService, error) {
	collection, err := basesvc.GetCollection(global.MongoDB_ColNames.Menus)
	if err != nil {
		return nil, err
	}
	return &MenuService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Menu](collection),
	}, nil
}

func byRestaurant(restaurantID primitive.ObjectID) bson.M {
	return bson.M{"restaurantId": restaurantID}
}

func (s *MenuService) Create(ctx context.Context, m models.Menu) (*models.Menu, error) {
	if m.MenuItems == nil {
		m.MenuItems = []models.MenuItem{}
	}
	created, err := s.InsertOne(ctx, m)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *MenuService) FindByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) (*models.Menu, error) {
	m, err := s.FindOne(ctx, byRestaurant(restaurantID), nil)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// AddItems push nhiều item cùng lúc ($each)
func (s *MenuService) AddItems(ctx context.Context, restaurantID primitive.ObjectID, items []models.MenuItem) (*models.Menu, error) {
	update := &basesvc.UpdateData{Push: map[string]interface{}{"menuItems": bson.M{"$each": items}}}
	m, err := s.UpdateOne(ctx, byRestaurant(restaurantID), update, nil)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateItem cập nhật các field của một item qua toán tử vị trí $
func (s *MenuService) UpdateItem(ctx context.Context, restaurantID, itemID primitive.ObjectID, fields map[string]interface{}) (*models.Menu, error) {
	set := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		set["menuItems.$."+k] = v
	}
	filter := bson.M{"restaurantId": restaurantID, "menuItems._id": itemID}
	m, err := s.UpdateOne(ctx, filter, &basesvc.UpdateData{Set: set}, nil)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MenuService) DeleteItems(ctx context.Context, restaurantID primitive.ObjectID, itemIDs []primitive.ObjectID) (*models.Menu, error) {
	update := &basesvc.UpdateData{Pull: map[string]interface{}{"menuItems": bson.M{"_id": bson.M{"$in": itemIDs}}}}
	m, err := s.UpdateOne(ctx, byRestaurant(restaurantID), update, nil)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MenuService) DeleteByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) error {
	_, err := s.DeleteMany(ctx, byRestaurant(restaurantID))
	return err
}
