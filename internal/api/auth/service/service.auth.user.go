// Package authsvc - service người dùng (User) và luồng đăng nhập.
package authsvc

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "talking_menu/internal/api/auth/models"
	basesvc "talking_menu/internal/api/base/service"
	"talking_menu/internal/global"
	"talking_menu/internal/store"
)

// UserService là store MongoDB của collection users
type UserService struct {
	*basesvc.BaseServiceMongoImpl[models.User]
}

var _ store.UserStore = (*UserService)(nil)

// NewUserService tạo mới UserService
func NewUserService() (*UserService, error) {
	collection, err := basesvc.GetCollection(global.MongoDB_ColNames.Users)
	if err != nil {
		return nil, err
	}
	return &UserService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.User](collection),
	}, nil
}

func byUID(uid string) bson.M {
	return bson.M{"firebaseUid": uid}
}

// FindByUID tìm user theo Firebase UID
func (s *UserService) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.FindOne(ctx, byUID(uid), nil)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail tìm user theo email (không phân biệt hoa thường)
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	filter := bson.M{"email": bson.M{"$regex": "^" + regexp.QuoteMeta(email) + "$", "$options": "i"}}
	user, err := s.FindOne(ctx, filter, nil)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) FindByUIDs(ctx context.Context, uids []string) ([]models.User, error) {
	if len(uids) == 0 {
		return []models.User{}, nil
	}
	return s.Find(ctx, bson.M{"firebaseUid": bson.M{"$in": uids}}, nil)
}

// FindUIDsByEmailLike dùng regex không phân biệt hoa thường trên email
func (s *UserService) FindUIDsByEmailLike(ctx context.Context, substr string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"firebaseUid": 1})
	users, err := s.Find(ctx, bson.M{"email": bson.M{"$regex": regexp.QuoteMeta(substr), "$options": "i"}}, opts)
	if err != nil {
		return nil, err
	}
	uids := make([]string, 0, len(users))
	for _, u := range users {
		uids = append(uids, u.FirebaseUID)
	}
	return uids, nil
}

func (s *UserService) FindByAccessibleRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]models.User, error) {
	return s.Find(ctx, bson.M{"accessibleRestaurants": restaurantID}, nil)
}

// Upsert tạo user mới (role diner, các mảng rỗng) hoặc cập nhật hồ sơ của user đã có
func (s *UserService) Upsert(ctx context.Context, uid string, profile store.UserProfile) (*models.User, error) {
	set := map[string]interface{}{}
	if profile.Name != "" {
		set["name"] = profile.Name
	}
	if profile.Email != "" {
		set["email"] = profile.Email
	}
	if profile.AvatarURL != "" {
		set["avatarUrl"] = profile.AvatarURL
	}

	update := &basesvc.UpdateData{
		Set: set,
		SetOnInsert: map[string]interface{}{
			"roles":                 []string{models.RoleDiner},
			"accessibleDashboards":  []primitive.ObjectID{},
			"accessibleRestaurants": []primitive.ObjectID{},
			"starredChats":          []primitive.ObjectID{},
		},
	}
	user, err := s.UpdateOne(ctx, byUID(uid), update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile cập nhật name/avatarUrl, nil là giữ nguyên
func (s *UserService) UpdateProfile(ctx context.Context, uid string, name, avatarURL *string) (*models.User, error) {
	set := map[string]interface{}{}
	if name != nil {
		set["name"] = *name
	}
	if avatarURL != nil {
		set["avatarUrl"] = *avatarURL
	}
	user, err := s.UpdateOne(ctx, byUID(uid), &basesvc.UpdateData{Set: set}, nil)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) updateArray(ctx context.Context, uid string, update *basesvc.UpdateData) error {
	_, err := s.UpdateOne(ctx, byUID(uid), update, nil)
	return err
}

// AddRole thêm role ($addToSet, idempotent)
func (s *UserService) AddRole(ctx context.Context, uid, role string) error {
	return s.updateArray(ctx, uid, &basesvc.UpdateData{AddToSet: map[string]interface{}{"roles": role}})
}

// RemoveRoleIfNoRestaurants gỡ role khỏi các user trong uids không còn nhà hàng nào
func (s *UserService) RemoveRoleIfNoRestaurants(ctx context.Context, uids []string, role string) (int64, error) {
	if len(uids) == 0 {
		return 0, nil
	}
	filter := bson.M{
		"firebaseUid":           bson.M{"$in": uids},
		"accessibleRestaurants": bson.M{"$size": 0},
	}
	return s.UpdateMany(ctx, filter, &basesvc.UpdateData{Pull: map[string]interface{}{"roles": role}})
}

func (s *UserService) AddAccessibleDashboard(ctx context.Context, uid string, dashboardID primitive.ObjectID) error {
	return s.updateArray(ctx, uid, &basesvc.UpdateData{AddToSet: map[string]interface{}{"accessibleDashboards": dashboardID}})
}

func (s *UserService) RemoveAccessibleDashboard(ctx context.Context, uid string, dashboardID primitive.ObjectID) error {
	return s.updateArray(ctx, uid, &basesvc.UpdateData{Pull: map[string]interface{}{"accessibleDashboards": dashboardID}})
}

func (s *UserService) AddAccessibleRestaurant(ctx context.Context, uid string, restaurantID primitive.ObjectID) error {
	return s.updateArray(ctx, uid, &basesvc.UpdateData{AddToSet: map[string]interface{}{"accessibleRestaurants": restaurantID}})
}

func (s *UserService) RemoveAccessibleRestaurant(ctx context.Context, uid string, restaurantID primitive.ObjectID) error {
	return s.updateArray(ctx, uid, &basesvc.UpdateData{Pull: map[string]interface{}{"accessibleRestaurants": restaurantID}})
}

func (s *UserService) PullAccessibleRestaurantFromAll(ctx context.Context, restaurantID primitive.ObjectID) error {
	_, err := s.UpdateMany(ctx,
		bson.M{"accessibleRestaurants": restaurantID},
		&basesvc.UpdateData{Pull: map[string]interface{}{"accessibleRestaurants": restaurantID}},
	)
	return err
}

// SetStarredChat đánh dấu hoặc bỏ đánh dấu chat
func (s *UserService) SetStarredChat(ctx context.Context, uid string, chatID primitive.ObjectID, starred bool) error {
	update := &basesvc.UpdateData{Pull: map[string]interface{}{"starredChats": chatID}}
	if starred {
		update = &basesvc.UpdateData{AddToSet: map[string]interface{}{"starredChats": chatID}}
	}
	return s.updateArray(ctx, uid, update)
}

func (s *UserService) PullStarredChats(ctx context.Context, chatIDs []primitive.ObjectID) error {
	if len(chatIDs) == 0 {
		return nil
	}
	_, err := s.UpdateMany(ctx,
		bson.M{"starredChats": bson.M{"$in": chatIDs}},
		&basesvc.UpdateData{Pull: map[string]interface{}{"starredChats": bson.M{"$in": chatIDs}}},
	)
	return err
}

