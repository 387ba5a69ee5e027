// Package subsvc chứa store MongoDB của gói dịch vụ, subscription, token usage và nghiệp vụ tính token.
package subsvc

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "talking_menu/internal/api/base/models"
	basesvc "talking_menu/internal/api/base/service"
	models "talking_menu/internal/api/subscription/models"
	"talking_menu/internal/common"
	"talking_menu/internal/global"
	"talking_menu/internal/store"
)

// PackageService là store MongoDB của collection subscription_packages
type PackageService struct {
	*basesvc.BaseServiceMongoImpl[models.SubscriptionPackage]
}

var _ store.SubscriptionPackageStore = (*PackageService)(nil)

// NewPackageService tạo mới PackageService
func NewPackageService() (*PackageService, error) {
	collection, err := basesvc.GetCollection(global.MongoDB_ColNames.SubscriptionPackages)
	if err != nil {
		return nil, err
	}
	return &PackageService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.SubscriptionPackage](collection),
	}, nil
}

func (s *PackageService) Create(ctx context.Context, p models.SubscriptionPackage) (*models.SubscriptionPackage, error) {
	created, err := s.InsertOne(ctx, p)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *PackageService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.SubscriptionPackage, error) {
	p, err := s.FindOneById(ctx, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PackageService) FindByName(ctx context.Context, name string) (*models.SubscriptionPackage, error) {
	p, err := s.FindOne(ctx, bson.M{"name": name}, nil)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PackageService) List(ctx context.Context) ([]models.SubscriptionPackage, error) {
	return s.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "tokenLimitPerMonth", Value: 1}}))
}

func (s *PackageService) Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.SubscriptionPackage, error) {
	p, err := s.UpdateById(ctx, id, &basesvc.UpdateData{Set: fields})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PackageService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.DeleteById(ctx, id)
}

// EnsureByName upsert theo name với $setOnInsert, gói đã có thì giữ nguyên
func (s *PackageService) EnsureByName(ctx context.Context, p models.SubscriptionPackage) (*models.SubscriptionPackage, error) {
	update := &basesvc.UpdateData{SetOnInsert: map[string]interface{}{
		"tokenLimitPerMonth": p.TokenLimitPerMonth,
		"price":              p.Price,
		"paymentSchedule":    p.PaymentSchedule,
	}}
	saved, err := s.UpdateOne(ctx, bson.M{"name": p.Name}, update, options.Update().SetUpsert(true))
	if errors.Is(err, common.ErrMongoDuplicate) {
		return s.FindByName(ctx, p.Name)
	}
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// CustomerSubscriptionService là store MongoDB của collection customer_subscriptions
type CustomerSubscriptionService struct {
	*basesvc.BaseServiceMongoImpl[models.CustomerSubscription]
}

var _ store.CustomerSubscriptionStore = (*CustomerSubscriptionService)(nil)

// NewCustomerSubscriptionService tạo mới CustomerSubscriptionService
func NewCustomerSubscriptionService() (*CustomerSubscriptionService, error) {
	collection, err := basesvc.GetCollection(global.MongoDB_ColNames.CustomerSubscriptions)
	if err != nil {
		return nil, err
	}
	return &CustomerSubscriptionService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.CustomerSubscription](collection),
	}, nil
}

func (s *CustomerSubscriptionService) Create(ctx context.Context, sub models.CustomerSubscription) (*models.CustomerSubscription, error) {
	created, err := s.InsertOne(ctx, sub)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *CustomerSubscriptionService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.CustomerSubscription, error) {
	sub, err := s.FindOneById(ctx, id)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *CustomerSubscriptionService) FindByDashboard(ctx context.Context, dashboardID primitive.ObjectID) (*models.CustomerSubscription, error) {
	sub, err := s.FindOne(ctx, bson.M{"dashboardId": dashboardID}, options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *CustomerSubscriptionService) List(ctx context.Context, page, limit int64) (*basemodels.PaginateResult[models.CustomerSubscription], error) {
	return s.FindWithPagination(ctx, bson.M{}, page, limit, nil)
}

func (s *CustomerSubscriptionService) Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.CustomerSubscription, error) {
	sub, err := s.UpdateById(ctx, id, &basesvc.UpdateData{Set: fields})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *CustomerSubscriptionService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.DeleteById(ctx, id)
}

// FindDue: active và đã tới endDate
func (s *CustomerSubscriptionService) FindDue(ctx context.Context, now time.Time) ([]models.CustomerSubscription, error) {
	filter := bson.M{
		"status":  models.SubscriptionActive,
		"endDate": bson.M{"$lte": now.UnixMilli()},
	}
	return s.Find(ctx, filter, nil)
}

// TokenUsageService là store MongoDB của collection token_usages
type TokenUsageService struct {
	*basesvc.BaseServiceMongoImpl[models.TokenUsage]
}

var _ store.TokenUsageStore = (*TokenUsageService)(nil)

// NewTokenUsageService tạo mới TokenUsageService
func NewTokenUsageService() (*TokenUsageService, error) {
	collection, err := basesvc.GetCollection(global.MongoDB_ColNames.TokenUsages)
	if err != nil {
		return nil, err
	}
	return &TokenUsageService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.TokenUsage](collection),
	}, nil
}

func keyFilter(key models.TokenUsageKey) bson.M {
	return bson.M{
		"restaurantId":           key.RestaurantID,
		"dashboardId":            key.DashboardID,
		"customerSubscriptionId": key.CustomerSubscriptionID,
		"month":                  key.Month,
		"year":                   key.Year,
	}
}

// GetOrCreate upsert với $setOnInsert: tokenLimit chỉ được ghi khi record được tạo
func (s *TokenUsageService) GetOrCreate(ctx context.Context, key models.TokenUsageKey, tokenLimit int64) (*models.TokenUsage, error) {
	update := &basesvc.UpdateData{SetOnInsert: map[string]interface{}{
		"tokenLimit":        tokenLimit,
		"tokenUsageDetails": models.TokenUsageDetails{},
	}}
	tu, err := s.UpdateOne(ctx, keyFilter(key), update, options.Update().SetUpsert(true))
	if errors.Is(err, common.ErrMongoDuplicate) {
		tu, err = s.FindOne(ctx, keyFilter(key), nil)
	}
	if err != nil {
		return nil, err
	}
	return &tu, nil
}

// Increment $inc usage vào record của kỳ (upsert)
func (s *TokenUsageService) Increment(ctx context.Context, key models.TokenUsageKey, tokenLimit int64, usage models.TokenUsageDetails) (*models.TokenUsage, error) {
	update := &basesvc.UpdateData{
		Inc:         usage.IncFields("tokenUsageDetails"),
		SetOnInsert: map[string]interface{}{"tokenLimit": tokenLimit},
	}
	tu, err := s.UpdateOne(ctx, keyFilter(key), update, options.Update().SetUpsert(true))
	if errors.Is(err, common.ErrMongoDuplicate) {
		tu, err = s.UpdateOne(ctx, keyFilter(key), &basesvc.UpdateData{Inc: usage.IncFields("tokenUsageDetails")}, nil)
	}
	if err != nil {
		return nil, err
	}
	return &tu, nil
}

func (s *TokenUsageService) ListByRestaurant(ctx context.Context, restaurantID primitive.ObjectID) ([]models.TokenUsage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}})
	return s.Find(ctx, bson.M{"restaurantId": restaurantID}, opts)
}
