package subsvc

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	basemodels "talking_menu/internal/api/base/models"
	subdto "talking_menu/internal/api/subscription/dto"
	models "talking_menu/internal/api/subscription/models"
	"talking_menu/internal/common"
	"talking_menu/internal/logger"
	"talking_menu/internal/store"
)

// BillingService quản lý CustomerSubscription: CRUD cho platform admin và xử lý gia hạn/hết hạn định kỳ
type BillingService struct {
	dashboards    store.DashboardStore
	subscriptions store.CustomerSubscriptionStore
	packages      store.SubscriptionPackageStore
	now           func() time.Time
}

// NewBillingService tạo BillingService
func NewBillingService(stores *store.Stores) *BillingService {
	return &BillingService{
		dashboards:    stores.Dashboards,
		subscriptions: stores.CustomerSubscriptions,
		packages:      stores.Packages,
		now:           time.Now,
	}
}

// WithClock thay nguồn thời gian (dùng trong test)
func (s *BillingService) WithClock(now func() time.Time) *BillingService {
	s.now = now
	return s
}

// Subscribe tạo subscription active cho dashboard và gắn vào dashboard
func (s *BillingService) Subscribe(ctx context.Context, dashboardID primitive.ObjectID, pkg *models.SubscriptionPackage) (*models.CustomerSubscription, error) {
	sub, err := s.subscriptions.Create(ctx, models.NewCustomerSubscription(dashboardID, pkg, s.now()))
	if err != nil {
		return nil, err
	}
	if err := s.dashboards.SetSubscription(ctx, dashboardID, sub.ID); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *BillingService) List(ctx context.Context, page, limit int64) (*basemodels.PaginateResult[models.CustomerSubscription], error) {
	return s.subscriptions.List(ctx, page, limit)
}

func (s *BillingService) Get(ctx context.Context, id primitive.ObjectID) (*models.CustomerSubscription, error) {
	return s.subscriptions.FindByID(ctx, id)
}

// Create tạo subscription mới cho dashboard theo gói chỉ định
func (s *BillingService) Create(ctx context.Context, input *subdto.SubscriptionCreateInput) (*models.CustomerSubscription, error) {
	dashboardID, err := primitive.ObjectIDFromHex(input.DashboardID)
	if err != nil {
		return nil, common.ErrInvalidID
	}
	packageID, err := primitive.ObjectIDFromHex(input.SubscriptionPackageID)
	if err != nil {
		return nil, common.ErrInvalidID
	}
	if _, err := s.dashboards.FindByID(ctx, dashboardID); err != nil {
		return nil, err
	}
	pkg, err := s.packages.FindByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrPackageMissing
		}
		return nil, err
	}

	sub := models.NewCustomerSubscription(dashboardID, pkg, s.now())
	if input.Renewal != nil {
		sub.Renewal = *input.Renewal
	}
	created, err := s.subscriptions.Create(ctx, sub)
	if err != nil {
		return nil, err
	}
	if err := s.dashboards.SetSubscription(ctx, dashboardID, created.ID); err != nil {
		return nil, err
	}
	return created, nil
}

// Update sửa subscription; đổi gói thì gói mới phải tồn tại
func (s *BillingService) Update(ctx context.Context, id primitive.ObjectID, input *subdto.SubscriptionUpdateInput) (*models.CustomerSubscription, error) {
	fields := map[string]interface{}{}
	if input.SubscriptionPackageID != nil {
		packageID, err := primitive.ObjectIDFromHex(*input.SubscriptionPackageID)
		if err != nil {
			return nil, common.ErrInvalidID
		}
		if _, err := s.packages.FindByID(ctx, packageID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, ErrPackageMissing
			}
			return nil, err
		}
		fields["subscriptionPackageId"] = packageID
	}
	if input.Status != nil {
		fields["status"] = *input.Status
	}
	if input.Renewal != nil {
		fields["renewal"] = *input.Renewal
	}
	if input.EndDate != nil {
		fields["endDate"] = *input.EndDate
	}
	if input.NextBillingDate != nil {
		fields["nextBillingDate"] = *input.NextBillingDate
	}
	if len(fields) == 0 {
		return s.subscriptions.FindByID(ctx, id)
	}
	return s.subscriptions.Update(ctx, id, fields)
}

func (s *BillingService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.subscriptions.Delete(ctx, id)
}

// DueResult là số subscription được xử lý trong một lượt
type DueResult struct {
	Expired int
	Renewed int
}

// ProcessDue xử lý các subscription active đã tới endDate:
// renewal=false thì chuyển expired, renewal=true thì dời endDate/nextBillingDate thêm một chu kỳ.
func (s *BillingService) ProcessDue(ctx context.Context) (*DueResult, error) {
	now := s.now()
	due, err := s.subscriptions.FindDue(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &DueResult{}
	log := logger.GetAppLogger()
	for _, sub := range due {
		if !sub.Renewal {
			if _, err := s.subscriptions.Update(ctx, sub.ID, map[string]interface{}{"status": models.SubscriptionExpired}); err != nil {
				log.WithError(err).WithField("subscription_id", sub.ID.Hex()).Error("Failed to expire subscription")
				continue
			}
			result.Expired++
			continue
		}

		schedule := models.ScheduleMonthly
		if pkg, err := s.packages.FindByID(ctx, sub.SubscriptionPackageID); err == nil {
			schedule = pkg.PaymentSchedule
		}
		end := time.UnixMilli(sub.EndDate)
		// bắt kịp nếu worker bỏ lỡ nhiều chu kỳ
		for !end.After(now) {
			end = models.AdvancePeriod(end, schedule)
		}
		fields := map[string]interface{}{
			"endDate":         end.UnixMilli(),
			"nextBillingDate": end.UnixMilli(),
		}
		if _, err := s.subscriptions.Update(ctx, sub.ID, fields); err != nil {
			log.WithError(err).WithField("subscription_id", sub.ID.Hex()).Error("Failed to renew subscription")
			continue
		}
		result.Renewed++
	}
	return result, nil
}

// SubscriptionWithPackage trả về subscription và gói của nó (gói có thể nil nếu đã bị xóa)
func (s *BillingService) SubscriptionWithPackage(ctx context.Context, id primitive.ObjectID) (*models.CustomerSubscription, *models.SubscriptionPackage, error) {
	sub, err := s.subscriptions.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	pkg, err := s.packages.FindByID(ctx, sub.SubscriptionPackageID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return sub, nil, nil
		}
		return nil, nil, err
	}
	return sub, pkg, nil
}
