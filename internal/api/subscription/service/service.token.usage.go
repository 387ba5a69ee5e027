package subsvc

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	dashmodels "talking_menu/internal/api/dashboard/models"
	models "talking_menu/internal/api/subscription/models"
	"talking_menu/internal/common"
	"talking_menu/internal/store"
	"talking_menu/internal/utility"
)

// Lỗi nghiệp vụ của phần tính token
var (
	ErrDashboardNotLinked   = common.NewError(common.ErrCodeBusinessState, "Restaurant is not linked to a dashboard", common.StatusNotFound, nil)
	ErrSubscriptionMissing  = common.NewError(common.ErrCodeBusinessState, "Dashboard has no subscription", common.StatusNotFound, nil)
	ErrPackageMissing       = common.NewError(common.ErrCodeBusinessState, "Subscription package not found", common.StatusNotFound, nil)
	ErrSubscriptionInactive = common.NewError(common.ErrCodeBusinessState, "Subscription is not active", common.StatusForbidden, nil)
)

// TokenLimitStatus là kết quả kiểm tra hạn mức token của kỳ hiện tại
type TokenLimitStatus struct {
	IsLimitReached     bool               `json:"isLimitReached"`
	SubscriptionStatus string             `json:"subscriptionStatus"`
	PackageName        string             `json:"packageName"`
	TokenUsage         *models.TokenUsage `json:"tokenUsage"`
}

// Remaining là số token còn lại trong kỳ (không âm)
func (s *TokenLimitStatus) Remaining() int64 {
	if s.TokenUsage == nil {
		return 0
	}
	left := s.TokenUsage.TokenLimit - s.TokenUsage.TokenUsageDetails.TotalTokens
	if left < 0 {
		return 0
	}
	return left
}

// AccountingService tính token usage theo tháng cho từng nhà hàng
type AccountingService struct {
	dashboards    store.DashboardStore
	subscriptions store.CustomerSubscriptionStore
	packages      store.SubscriptionPackageStore
	usages        store.TokenUsageStore
	now           func() time.Time
}

// NewAccountingService tạo AccountingService
func NewAccountingService(stores *store.Stores) *AccountingService {
	return &AccountingService{
		dashboards:    stores.Dashboards,
		subscriptions: stores.CustomerSubscriptions,
		packages:      stores.Packages,
		usages:        stores.TokenUsages,
		now:           time.Now,
	}
}

// WithClock thay nguồn thời gian (dùng trong test)
func (s *AccountingService) WithClock(now func() time.Time) *AccountingService {
	s.now = now
	return s
}

type period struct {
	key          models.TokenUsageKey
	subscription *models.CustomerSubscription
	pkg          *models.SubscriptionPackage
}

// resolvePeriod tìm dashboard chứa nhà hàng, subscription và gói của nó
func (s *AccountingService) resolvePeriod(ctx context.Context, restaurantID primitive.ObjectID) (*period, error) {
	month, year := utility.MonthYear(s.now())

	dashboard, err := s.dashboards.FindByRestaurant(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrDashboardNotLinked
		}
		return nil, err
	}
	sub, err := s.subscriptionOf(ctx, dashboard)
	if err != nil {
		return nil, err
	}
	pkg, err := s.packages.FindByID(ctx, sub.SubscriptionPackageID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrPackageMissing
		}
		return nil, err
	}

	return &period{
		key: models.TokenUsageKey{
			RestaurantID:           restaurantID,
			DashboardID:            dashboard.ID,
			CustomerSubscriptionID: sub.ID,
			Month:                  month,
			Year:                   year,
		},
		subscription: sub,
		pkg:          pkg,
	}, nil
}

func (s *AccountingService) subscriptionOf(ctx context.Context, dashboard *dashmodels.Dashboard) (*models.CustomerSubscription, error) {
	if dashboard.CustomerSubscriptionID == nil || dashboard.CustomerSubscriptionID.IsZero() {
		return nil, ErrSubscriptionMissing
	}
	sub, err := s.subscriptions.FindByID(ctx, *dashboard.CustomerSubscriptionID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrSubscriptionMissing
		}
		return nil, err
	}
	return sub, nil
}

// CheckTokenLimitUsage trả về trạng thái hạn mức của tháng hiện tại, tạo record kỳ nếu chưa có.
// Hàm không tự cộng usage.
func (s *AccountingService) CheckTokenLimitUsage(ctx context.Context, restaurantID primitive.ObjectID) (*TokenLimitStatus, error) {
	p, err := s.resolvePeriod(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	usage, err := s.usages.GetOrCreate(ctx, p.key, p.pkg.TokenLimitPerMonth)
	if err != nil {
		return nil, err
	}
	return &TokenLimitStatus{
		IsLimitReached:     usage.TokenUsageDetails.TotalTokens >= usage.TokenLimit,
		SubscriptionStatus: p.subscription.Status,
		PackageName:        p.pkg.Name,
		TokenUsage:         usage,
	}, nil
}

// RecordTokenUsage cộng usage do LLM provider trả về vào record của kỳ hiện tại
func (s *AccountingService) RecordTokenUsage(ctx context.Context, restaurantID primitive.ObjectID, usage models.TokenUsageDetails) (*models.TokenUsage, error) {
	p, err := s.resolvePeriod(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	return s.usages.Increment(ctx, p.key, p.pkg.TokenLimitPerMonth, usage)
}

// History trả về các kỳ đã ghi của nhà hàng, mới nhất trước
func (s *AccountingService) History(ctx context.Context, restaurantID primitive.ObjectID) ([]models.TokenUsage, error) {
	return s.usages.ListByRestaurant(ctx, restaurantID)
}
