package dashboardsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmodels "talking_menu/internal/api/auth/models"
	restmodels "talking_menu/internal/api/restaurant/models"
	submodels "talking_menu/internal/api/subscription/models"
	subsvc "talking_menu/internal/api/subscription/service"
	"talking_menu/internal/common"
	"talking_menu/internal/store"
	"talking_menu/internal/store/memstore"
)

func newLifecycle(t *testing.T) (*memstore.DB, *store.Stores, *LifecycleService) {
	t.Helper()
	db := memstore.New()
	stores := db.Stores()
	catalog := subsvc.NewCatalogService(stores.Packages)
	_, err := catalog.Seed(context.Background(), submodels.DefaultPackages())
	require.NoError(t, err)
	return db, stores, NewLifecycleService(stores, catalog, subsvc.NewBillingService(stores))
}

func TestCreateDashboard_RequiresMainAdmin(t *testing.T) {
	db, _, svc := newLifecycle(t)
	ctx := context.Background()

	_, err := svc.CreateDashboard(ctx, nil, "")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	diner := db.PutUser(authmodels.User{FirebaseUID: "diner", Roles: []string{authmodels.RoleDiner}})
	_, err = svc.CreateDashboard(ctx, diner, "")
	assert.ErrorIs(t, err, ErrMainAdminRoleMissing)
}

func TestCreateDashboard_OnePerOwner(t *testing.T) {
	db, stores, svc := newLifecycle(t)
	ctx := context.Background()
	owner := db.PutUser(authmodels.User{FirebaseUID: "owner", Email: "owner@example.com", Roles: []string{authmodels.RoleRestaurantMainAdmin}})

	d, err := svc.CreateDashboard(ctx, owner, submodels.PackagePremium)
	require.NoError(t, err)
	require.NotNil(t, d.CustomerSubscriptionID)

	sub, err := stores.CustomerSubscriptions.FindByID(ctx, *d.CustomerSubscriptionID)
	require.NoError(t, err)
	assert.Equal(t, submodels.SubscriptionActive, sub.Status)
	pkg, err := stores.Packages.FindByID(ctx, sub.SubscriptionPackageID)
	require.NoError(t, err)
	assert.Equal(t, submodels.PackagePremium, pkg.Name)

	user, err := stores.Users.FindByUID(ctx, "owner")
	require.NoError(t, err)
	assert.Contains(t, user.AccessibleDashboards, d.ID)

	_, err = svc.CreateDashboard(ctx, owner, "")
	assert.ErrorIs(t, err, ErrDashboardExists)
}

func TestGetOrProvision(t *testing.T) {
	_, _, svc := newLifecycle(t)
	ctx := context.Background()

	first, created, err := svc.GetOrProvision(ctx, "new-owner")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.GetOrProvision(ctx, "new-owner")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestListForPrincipal_FiltersRestaurantsForEmployees(t *testing.T) {
	db, stores, svc := newLifecycle(t)
	ctx := context.Background()
	owner := db.PutUser(authmodels.User{FirebaseUID: "owner", Email: "owner@example.com", Roles: []string{authmodels.RoleRestaurantMainAdmin}})
	employee := db.PutUser(authmodels.User{FirebaseUID: "staff", Email: "staff@example.com", Roles: []string{authmodels.RoleRestaurantAdmin}})

	d, err := svc.CreateDashboard(ctx, owner, "")
	require.NoError(t, err)

	visible, err := stores.Restaurants.Create(ctx, restmodels.Restaurant{Name: "Visible", OwnerID: "owner"})
	require.NoError(t, err)
	hidden, err := stores.Restaurants.Create(ctx, restmodels.Restaurant{Name: "Hidden", OwnerID: "owner"})
	require.NoError(t, err)
	require.NoError(t, stores.Dashboards.AddRestaurant(ctx, d.ID, visible.ID))
	require.NoError(t, stores.Dashboards.AddRestaurant(ctx, d.ID, hidden.ID))

	access := authmodels.UserAccess{UserID: "staff", UserEmail: "staff@example.com", Role: authmodels.RoleRestaurantAdmin}
	require.NoError(t, stores.Dashboards.AddUserAccess(ctx, d.ID, access))
	require.NoError(t, stores.Restaurants.AddUserAccess(ctx, visible.ID, access))

	ownerView, err := svc.ListForPrincipal(ctx, owner)
	require.NoError(t, err)
	require.Len(t, ownerView, 1)
	assert.Equal(t, "owner@example.com", ownerView[0].OwnerEmail)
	assert.Len(t, ownerView[0].Restaurants, 2)
	require.NotNil(t, ownerView[0].Package)
	assert.Equal(t, submodels.PackageBasic, ownerView[0].Package.Name)

	staffView, err := svc.ListForPrincipal(ctx, employee)
	require.NoError(t, err)
	require.Len(t, staffView, 1)
	require.Len(t, staffView[0].Restaurants, 1)
	assert.Equal(t, "Visible", staffView[0].Restaurants[0].Name)

	stranger := db.PutUser(authmodels.User{FirebaseUID: "stranger"})
	none, err := svc.ListForPrincipal(ctx, stranger)
	require.NoError(t, err)
	assert.Empty(t, none)
}
