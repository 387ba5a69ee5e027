package subsvc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	dashmodels "talking_menu/internal/api/dashboard/models"
	subdto "talking_menu/internal/api/subscription/dto"
	models "talking_menu/internal/api/subscription/models"
	"talking_menu/internal/store"
	"talking_menu/internal/store/memstore"
)

type billingFixture struct {
	stores     *store.Stores
	catalog    *CatalogService
	billing    *BillingService
	accounting *AccountingService
	now        time.Time
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()
	f := &billingFixture{
		stores: memstore.NewStores(),
		now:    time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.catalog = NewCatalogService(f.stores.Packages)
	_, err := f.catalog.Seed(context.Background(), models.DefaultPackages())
	require.NoError(t, err)
	f.billing = NewBillingService(f.stores).WithClock(clock)
	f.accounting = NewAccountingService(f.stores).WithClock(clock)
	return f
}

// dashboardWithRestaurant tạo dashboard có subscription theo gói và một nhà hàng
func (f *billingFixture) dashboardWithRestaurant(t *testing.T, owner, packageName string) (primitive.ObjectID, *models.CustomerSubscription) {
	t.Helper()
	ctx := context.Background()
	d, err := f.stores.Dashboards.Create(ctx, dashmodels.Dashboard{OwnerID: owner})
	require.NoError(t, err)
	pkg, err := f.catalog.ResolvePackage(ctx, packageName)
	require.NoError(t, err)
	sub, err := f.billing.Subscribe(ctx, d.ID, pkg)
	require.NoError(t, err)
	restaurantID := primitive.NewObjectID()
	require.NoError(t, f.stores.Dashboards.AddRestaurant(ctx, d.ID, restaurantID))
	return restaurantID, sub
}

func TestLoadPackagesFile(t *testing.T) {
	pkgs, err := LoadPackagesFile("")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPackages(), pkgs)

	dir := t.TempDir()
	path := filepath.Join(dir, "packages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`packages:
  - name: basic
    tokenLimitPerMonth: 2000
    price: 0
    paymentSchedule: monthly
  - name: premium
    tokenLimitPerMonth: 90000
    price: 99
    paymentSchedule: annually
`), 0o600))
	pkgs, err = LoadPackagesFile(path)
	require.NoError(t, err)
	require.Len(t, pkgs, 2)
	assert.Equal(t, int64(2000), pkgs[0].TokenLimitPerMonth)
	assert.Equal(t, models.ScheduleAnnually, pkgs[1].PaymentSchedule)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("packages: []\n"), 0o600))
	_, err = LoadPackagesFile(empty)
	assert.Error(t, err)

	_, err = LoadPackagesFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestCatalog_SeedIsIdempotent(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	basic, err := f.catalog.ResolvePackage(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, models.PackageBasic, basic.Name)

	// admin sửa gói, seed lại không ghi đè
	limit := int64(42)
	_, err = f.catalog.Update(ctx, basic.ID, &subdto.PackageUpdateInput{TokenLimitPerMonth: &limit})
	require.NoError(t, err)
	_, err = f.catalog.Seed(ctx, models.DefaultPackages())
	require.NoError(t, err)

	all, err := f.catalog.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(models.DefaultPackages()))
	again, err := f.catalog.ResolvePackage(ctx, models.PackageBasic)
	require.NoError(t, err)
	assert.Equal(t, limit, again.TokenLimitPerMonth)

	_, err = f.catalog.ResolvePackage(ctx, "gold")
	assert.ErrorIs(t, err, ErrPackageMissing)
}

func TestAccounting_LimitReachedAfterUsage(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	restaurantID, _ := f.dashboardWithRestaurant(t, "owner", models.PackageTest)

	status, err := f.accounting.CheckTokenLimitUsage(ctx, restaurantID)
	require.NoError(t, err)
	assert.False(t, status.IsLimitReached)
	assert.Equal(t, models.SubscriptionActive, status.SubscriptionStatus)
	assert.Equal(t, models.PackageTest, status.PackageName)
	assert.Equal(t, int64(5_000), status.Remaining())

	_, err = f.accounting.RecordTokenUsage(ctx, restaurantID, models.TokenUsageDetails{PromptTokens: 3_000, CompletionTokens: 1_000, TotalTokens: 4_000})
	require.NoError(t, err)
	status, err = f.accounting.CheckTokenLimitUsage(ctx, restaurantID)
	require.NoError(t, err)
	assert.False(t, status.IsLimitReached)
	assert.Equal(t, int64(1_000), status.Remaining())

	_, err = f.accounting.RecordTokenUsage(ctx, restaurantID, models.TokenUsageDetails{TotalTokens: 1_500})
	require.NoError(t, err)
	status, err = f.accounting.CheckTokenLimitUsage(ctx, restaurantID)
	require.NoError(t, err)
	assert.True(t, status.IsLimitReached)
	assert.Equal(t, int64(0), status.Remaining())
}

func TestAccounting_NewMonthStartsFresh(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	restaurantID, _ := f.dashboardWithRestaurant(t, "owner", models.PackageTest)

	_, err := f.accounting.RecordTokenUsage(ctx, restaurantID, models.TokenUsageDetails{TotalTokens: 6_000})
	require.NoError(t, err)

	f.now = f.now.AddDate(0, 1, 0)
	status, err := f.accounting.CheckTokenLimitUsage(ctx, restaurantID)
	require.NoError(t, err)
	assert.False(t, status.IsLimitReached)
	assert.Equal(t, int(time.April), status.TokenUsage.Month)

	history, err := f.accounting.History(ctx, restaurantID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int(time.April), history[0].Month)
}

func TestAccounting_LimitSnapshotSurvivesPackageEdit(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	restaurantID, sub := f.dashboardWithRestaurant(t, "owner", models.PackageTest)

	_, err := f.accounting.CheckTokenLimitUsage(ctx, restaurantID)
	require.NoError(t, err)

	limit := int64(1)
	_, err = f.catalog.Update(ctx, sub.SubscriptionPackageID, &subdto.PackageUpdateInput{TokenLimitPerMonth: &limit})
	require.NoError(t, err)

	status, err := f.accounting.CheckTokenLimitUsage(ctx, restaurantID)
	require.NoError(t, err)
	assert.Equal(t, int64(5_000), status.TokenUsage.TokenLimit)
	assert.False(t, status.IsLimitReached)
}

func TestAccounting_UnlinkedRestaurant(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	_, err := f.accounting.CheckTokenLimitUsage(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrDashboardNotLinked)

	d, err := f.stores.Dashboards.Create(ctx, dashmodels.Dashboard{OwnerID: "no-sub"})
	require.NoError(t, err)
	restaurantID := primitive.NewObjectID()
	require.NoError(t, f.stores.Dashboards.AddRestaurant(ctx, d.ID, restaurantID))
	_, err = f.accounting.CheckTokenLimitUsage(ctx, restaurantID)
	assert.ErrorIs(t, err, ErrSubscriptionMissing)
}

func TestBilling_ProcessDue(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	_, renewing := f.dashboardWithRestaurant(t, "renewing", models.PackageBasic)
	_, ending := f.dashboardWithRestaurant(t, "ending", models.PackageBasic)
	renewal := false
	_, err := f.billing.Update(ctx, ending.ID, &subdto.SubscriptionUpdateInput{Renewal: &renewal})
	require.NoError(t, err)

	// chưa tới hạn
	result, err := f.billing.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, &DueResult{}, result)

	// worker bỏ lỡ ba chu kỳ
	f.now = f.now.AddDate(0, 3, 1)
	result, err = f.billing.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Expired)
	assert.Equal(t, 1, result.Renewed)

	got, err := f.billing.Get(ctx, ending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionExpired, got.Status)

	got, err = f.billing.Get(ctx, renewing.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, got.Status)
	assert.Greater(t, got.EndDate, f.now.UnixMilli())
	assert.Equal(t, got.EndDate, got.NextBillingDate)
	assert.Equal(t, time.Date(2024, time.July, 15, 10, 0, 0, 0, time.UTC).UnixMilli(), got.EndDate)

	// lượt tiếp theo không còn gì tới hạn
	result, err = f.billing.ProcessDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, &DueResult{}, result)
}

func TestBilling_CreateRequiresKnownPackage(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()
	d, err := f.stores.Dashboards.Create(ctx, dashmodels.Dashboard{OwnerID: "owner"})
	require.NoError(t, err)

	_, err = f.billing.Create(ctx, &subdto.SubscriptionCreateInput{
		DashboardID:           d.ID.Hex(),
		SubscriptionPackageID: primitive.NewObjectID().Hex(),
	})
	assert.ErrorIs(t, err, ErrPackageMissing)

	premium, err := f.catalog.ResolvePackage(ctx, models.PackagePremium)
	require.NoError(t, err)
	sub, err := f.billing.Create(ctx, &subdto.SubscriptionCreateInput{
		DashboardID:           d.ID.Hex(),
		SubscriptionPackageID: premium.ID.Hex(),
	})
	require.NoError(t, err)
	assert.True(t, sub.Renewal)

	dashboard, err := f.stores.Dashboards.FindByID(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, dashboard.CustomerSubscriptionID)
	assert.Equal(t, sub.ID, *dashboard.CustomerSubscriptionID)
}
