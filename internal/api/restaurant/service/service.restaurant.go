// Package restaurantsvc chứa các store MongoDB của restaurant/menu/chatbot/analytics và nghiệp vụ vòng đời nhà hàng.
package restaurantsvc

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	authmodels "talking_menu/internal/api/auth/models"
	basemodels "talking_menu/internal/api/base/models"
	basesvc "talking_menu/internal/api/base/service"
	models "talking_menu/internal/api/restaurant/models"
	"talking_menu/internal/common"
	"talking_menu/internal/global"
	"talking_menu/internal/store"
)

// RestaurantService là store MongoDB của collection restaurants
type RestaurantService struct {
	*basesvc.BaseServiceMongoImpl[models.Restaurant]
}

var _ store.RestaurantStore = (*RestaurantService)(nil)

// NewRestaurantService tạo mới RestaurantService
func NewRestaurantService() (*RestaurantService, error) {
	collection, err := basesvc.GetCollection(global.MongoDB_ColNames.Restaurants)
	if err != nil {
		return nil, err
	}
	return &RestaurantService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Restaurant](collection),
	}, nil
}

func (s *RestaurantService) Create(ctx context.Context, r models.Restaurant) (*models.Restaurant, error) {
	if r.Chats == nil {
		r.Chats = []primitive.ObjectID{}
	}
	if r.UserAccess == nil {
		r.UserAccess = []authmodels.UserAccess{}
	}
	created, err := s.InsertOne(ctx, r)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *RestaurantService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Restaurant, error) {
	r, err := s.FindOneById(ctx, id)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RestaurantService) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Restaurant, error) {
	return s.FindManyByIds(ctx, ids)
}

// List phân trang; Search khớp name/location (không phân biệt hoa thường) hoặc ownerId thuộc OwnerIDs
func (s *RestaurantService) List(ctx context.Context, filter store.RestaurantFilter, page, limit int64) (*basemodels.PaginateResult[models.Restaurant], error) {
	query := bson.M{}
	if filter.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
		or := []bson.M{
			{"name": pattern},
			{"location": pattern},
		}
		if len(filter.OwnerIDs) > 0 {
			or = append(or, bson.M{"ownerId": bson.M{"$in": filter.OwnerIDs}})
		}
		query["$or"] = or
	}
	return s.FindWithPagination(ctx, query, page, limit, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (s *RestaurantService) Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Restaurant, error) {
	r, err := s.UpdateById(ctx, id, &basesvc.UpdateData{Set: fields})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RestaurantService) SetMenu(ctx context.Context, id, menuID primitive.ObjectID) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{Set: map[string]interface{}{"menu": menuID}})
	return err
}

func (s *RestaurantService) AddChat(ctx context.Context, id, chatID primitive.ObjectID) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{AddToSet: map[string]interface{}{"chats": chatID}})
	return err
}

// AddUserAccess thêm entry khi userId chưa có trong roster
func (s *RestaurantService) AddUserAccess(ctx context.Context, id primitive.ObjectID, access authmodels.UserAccess) error {
	filter := bson.M{"_id": id, "userAccess.userId": bson.M{"$ne": access.UserID}}
	_, err := s.UpdateOne(ctx, filter, &basesvc.UpdateData{Push: map[string]interface{}{"userAccess": access}}, nil)
	if err == nil || !isNotFound(err) {
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

func (s *RestaurantService) RemoveUserAccess(ctx context.Context, id primitive.ObjectID, uid string) error {
	_, err := s.UpdateById(ctx, id, &basesvc.UpdateData{Pull: map[string]interface{}{"userAccess": bson.M{"userId": uid}}})
	return err
}

// TransferOwnership thay entry main admin bằng newOwner và đổi ownerId trong một pipeline update,
// nên roster không bao giờ có 0 hoặc 2 main admin.
func (s *RestaurantService) TransferOwnership(ctx context.Context, id primitive.ObjectID, newOwner authmodels.UserAccess) (*models.Restaurant, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"ownerId": newOwner.UserID,
			"userAccess": bson.M{"$concatArrays": bson.A{
				bson.M{"$filter": bson.M{
					"input": bson.M{"$ifNull": bson.A{"$userAccess", bson.A{}}},
					"as":    "a",
					"cond": bson.M{"$and": bson.A{
						bson.M{"$ne": bson.A{"$$a.role", authmodels.RoleRestaurantMainAdmin}},
						bson.M{"$ne": bson.A{"$$a.userId", newOwner.UserID}},
					}},
				}},
				bson.A{bson.M{
					"userId":    newOwner.UserID,
					"userEmail": newOwner.UserEmail,
					"role":      newOwner.Role,
				}},
			}},
		}}},
	}
	r, err := s.UpdateOnePipeline(ctx, bson.M{"_id": id}, pipeline)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RestaurantService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.DeleteById(ctx, id)
}
