package dashboardsvc

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	authmodels "talking_menu/internal/api/auth/models"
	dashdto "talking_menu/internal/api/dashboard/dto"
	models "talking_menu/internal/api/dashboard/models"
	restmodels "talking_menu/internal/api/restaurant/models"
	subsvc "talking_menu/internal/api/subscription/service"
	"talking_menu/internal/common"
	"talking_menu/internal/logger"
	"talking_menu/internal/store"
)

// Lỗi nghiệp vụ của dashboard
var (
	ErrDashboardExists      = common.NewConflictError("Dashboard already exists for this owner")
	ErrMainAdminRoleMissing = common.NewForbiddenError("restaurant_main_admin role required")
)

// enrichConcurrency giới hạn số dashboard được làm giàu song song
const enrichConcurrency = 8

// LifecycleService tạo và liệt kê dashboard
type LifecycleService struct {
	users       store.UserStore
	dashboards  store.DashboardStore
	restaurants store.RestaurantStore
	catalog     *subsvc.CatalogService
	billing     *subsvc.BillingService
}

// NewLifecycleService tạo LifecycleService
func NewLifecycleService(stores *store.Stores, catalog *subsvc.CatalogService, billing *subsvc.BillingService) *LifecycleService {
	return &LifecycleService{
		users:       stores.Users,
		dashboards:  stores.Dashboards,
		restaurants: stores.Restaurants,
		catalog:     catalog,
		billing:     billing,
	}
}

// CreateDashboard tạo dashboard cho principal (cần role restaurant_main_admin, tối đa một dashboard/owner)
func (s *LifecycleService) CreateDashboard(ctx context.Context, principal *authmodels.User, packageName string) (*models.Dashboard, error) {
	if principal == nil {
		return nil, common.ErrUnauthorized
	}
	if !principal.HasRole(authmodels.RoleRestaurantMainAdmin) {
		return nil, ErrMainAdminRoleMissing
	}
	if _, err := s.dashboards.FindByOwner(ctx, principal.FirebaseUID); err == nil {
		return nil, ErrDashboardExists
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	dashboard, err := s.ProvisionDashboard(ctx, principal.FirebaseUID, packageName)
	if err != nil {
		return nil, err
	}
	logger.LogAction(ctx, logger.AuditDashboardCreate, principal.FirebaseUID, "dashboard", dashboard.ID.Hex(), nil)
	return dashboard, nil
}

// ProvisionDashboard chạy các bước tạo dashboard mà không kiểm tra role (dùng khi chuyển quyền sở hữu).
// Thứ tự: gói → dashboard → subscription → gắn subscriptionId → thêm vào accessibleDashboards của owner.
func (s *LifecycleService) ProvisionDashboard(ctx context.Context, ownerUID, packageName string) (*models.Dashboard, error) {
	pkg, err := s.catalog.ResolvePackage(ctx, packageName)
	if err != nil {
		return nil, err
	}

	dashboard, err := s.dashboards.Create(ctx, models.Dashboard{OwnerID: ownerUID})
	if err != nil {
		if errors.Is(err, common.ErrMongoDuplicate) {
			return nil, ErrDashboardExists
		}
		return nil, err
	}

	sub, err := s.billing.Subscribe(ctx, dashboard.ID, pkg)
	if err != nil {
		return nil, err
	}
	dashboard.CustomerSubscriptionID = &sub.ID

	if err := s.users.AddAccessibleDashboard(ctx, ownerUID, dashboard.ID); err != nil {
		return nil, err
	}
	return dashboard, nil
}

// GetOrProvision trả về dashboard của owner, tạo mới nếu chưa có
func (s *LifecycleService) GetOrProvision(ctx context.Context, ownerUID string) (*models.Dashboard, bool, error) {
	dashboard, err := s.dashboards.FindByOwner(ctx, ownerUID)
	if err == nil {
		return dashboard, false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}
	dashboard, err = s.ProvisionDashboard(ctx, ownerUID, "")
	if errors.Is(err, ErrDashboardExists) {
		// request khác vừa tạo xong
		dashboard, err = s.dashboards.FindByOwner(ctx, ownerUID)
		return dashboard, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return dashboard, true, nil
}

// ListForPrincipal trả về các dashboard mà principal là owner hoặc có trong userAccess,
// mỗi dashboard kèm email owner, subscription, gói và các nhà hàng principal được thấy.
func (s *LifecycleService) ListForPrincipal(ctx context.Context, principal *authmodels.User) ([]dashdto.DashboardOutput, error) {
	if principal == nil {
		return nil, common.ErrUnauthorized
	}
	dashboards, err := s.dashboards.FindForPrincipal(ctx, principal.FirebaseUID)
	if err != nil {
		return nil, err
	}

	out := make([]dashdto.DashboardOutput, len(dashboards))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i := range dashboards {
		g.Go(func() error {
			view, err := s.enrich(gctx, principal, &dashboards[i])
			if err != nil {
				return err
			}
			out[i] = *view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *LifecycleService) enrich(ctx context.Context, principal *authmodels.User, d *models.Dashboard) (*dashdto.DashboardOutput, error) {
	view := &dashdto.DashboardOutput{
		ID:                     d.ID,
		OwnerID:                d.OwnerID,
		UserAccess:             d.UserAccess,
		CustomerSubscriptionID: d.CustomerSubscriptionID,
		Restaurants:            []restmodels.Restaurant{},
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
	}
	if view.UserAccess == nil {
		view.UserAccess = []authmodels.UserAccess{}
	}

	if owner, err := s.users.FindByUID(ctx, d.OwnerID); err == nil {
		view.OwnerEmail = owner.Email
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	if d.CustomerSubscriptionID != nil {
		sub, pkg, err := s.billing.SubscriptionWithPackage(ctx, *d.CustomerSubscriptionID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		view.Subscription, view.Package = sub, pkg
	}

	restaurants, err := s.restaurants.FindByIDs(ctx, d.Restaurants)
	if err != nil {
		return nil, err
	}
	seeAll := d.OwnerID == principal.FirebaseUID || principal.IsPlatformAdmin()
	for _, r := range restaurants {
		if seeAll || authmodels.HasAccess(r.UserAccess, principal.FirebaseUID) {
			view.Restaurants = append(view.Restaurants, r)
		}
	}
	return view, nil
}
