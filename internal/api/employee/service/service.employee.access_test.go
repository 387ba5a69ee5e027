package employeesvc

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmodels "talking_menu/internal/api/auth/models"
	dashmodels "talking_menu/internal/api/dashboard/models"
	employeedto "talking_menu/internal/api/employee/dto"
	restmodels "talking_menu/internal/api/restaurant/models"
	"talking_menu/internal/common"
	"talking_menu/internal/delivery/channels"
	"talking_menu/internal/store"
	"talking_menu/internal/store/memstore"
)

type fakeNotifier struct {
	mu         sync.Mutex
	recipients []string
}

func (n *fakeNotifier) Enqueue(recipient string, _ *channels.RenderedTemplate) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.recipients = append(n.recipients, recipient)
	return true
}

type fixture struct {
	stores     *store.Stores
	svc        *AccessService
	notifier   *fakeNotifier
	owner      *authmodels.User
	staff      *authmodels.User
	dashboard  *dashmodels.Dashboard
	restaurant *restmodels.Restaurant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := memstore.New()
	stores := db.Stores()

	owner := db.PutUser(authmodels.User{FirebaseUID: "owner", Email: "owner@example.com", Roles: []string{authmodels.RoleRestaurantMainAdmin}})
	staff := db.PutUser(authmodels.User{FirebaseUID: "staff", Email: "staff@example.com", Roles: []string{authmodels.RoleDiner}})

	d, err := stores.Dashboards.Create(ctx, dashmodels.Dashboard{OwnerID: owner.FirebaseUID})
	require.NoError(t, err)
	r, err := stores.Restaurants.Create(ctx, restmodels.Restaurant{
		Name:       "Pho 24",
		OwnerID:    owner.FirebaseUID,
		UserAccess: []authmodels.UserAccess{{UserID: owner.FirebaseUID, UserEmail: owner.Email, Role: authmodels.RoleRestaurantMainAdmin}},
	})
	require.NoError(t, err)
	require.NoError(t, stores.Dashboards.AddRestaurant(ctx, d.ID, r.ID))
	d, err = stores.Dashboards.FindByID(ctx, d.ID)
	require.NoError(t, err)

	notifier := &fakeNotifier{}
	return &fixture{
		stores:     stores,
		svc:        NewAccessService(stores, notifier, "https://app.example.com"),
		notifier:   notifier,
		owner:      owner,
		staff:      staff,
		dashboard:  d,
		restaurant: r,
	}
}

func (f *fixture) grantInput() *employeedto.GrantInput {
	return &employeedto.GrantInput{
		Email:        "STAFF@example.com",
		RestaurantID: f.restaurant.ID.Hex(),
		DashboardID:  f.dashboard.ID.Hex(),
	}
}

func countAccess(roster []authmodels.UserAccess, uid string) int {
	n := 0
	for _, a := range roster {
		if a.UserID == uid {
			n++
		}
	}
	return n
}

func TestGrant_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.Grant(ctx, f.owner, f.grantInput())
	require.NoError(t, err)
	assert.Equal(t, authmodels.RoleRestaurantAdmin, out.Role)
	_, err = f.svc.Grant(ctx, f.owner, f.grantInput())
	require.NoError(t, err)

	r, err := f.stores.Restaurants.FindByID(ctx, f.restaurant.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, countAccess(r.UserAccess, f.staff.FirebaseUID))

	d, err := f.stores.Dashboards.FindByID(ctx, f.dashboard.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, countAccess(d.UserAccess, f.staff.FirebaseUID))

	u, err := f.stores.Users.FindByUID(ctx, f.staff.FirebaseUID)
	require.NoError(t, err)
	assert.Equal(t, []string{authmodels.RoleDiner, authmodels.RoleRestaurantAdmin}, u.Roles)
	assert.Len(t, u.AccessibleRestaurants, 1)
	assert.Len(t, u.AccessibleDashboards, 1)

	assert.Equal(t, []string{"staff@example.com", "staff@example.com"}, f.notifier.recipients)
}

func TestGrantThenRevoke_RestoresAccessLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.stores.Users.FindByUID(ctx, f.staff.FirebaseUID)
	require.NoError(t, err)

	_, err = f.svc.Grant(ctx, f.owner, f.grantInput())
	require.NoError(t, err)
	_, err = f.svc.Revoke(ctx, f.owner, &employeedto.RevokeInput{
		UserID:       f.staff.FirebaseUID,
		RestaurantID: f.restaurant.ID.Hex(),
		DashboardID:  f.dashboard.ID.Hex(),
	})
	require.NoError(t, err)

	after, err := f.stores.Users.FindByUID(ctx, f.staff.FirebaseUID)
	require.NoError(t, err)
	assert.Equal(t, before.AccessibleDashboards, after.AccessibleDashboards)
	assert.Equal(t, before.AccessibleRestaurants, after.AccessibleRestaurants)
	// role không bị gỡ khi revoke
	assert.Contains(t, after.Roles, authmodels.RoleRestaurantAdmin)

	r, err := f.stores.Restaurants.FindByID(ctx, f.restaurant.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, countAccess(r.UserAccess, f.staff.FirebaseUID))

	// một email khi cấp, một email khi thu hồi
	assert.Equal(t, []string{"staff@example.com", "staff@example.com"}, f.notifier.recipients)
}

func TestGrant_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.grantInput()
	in.Email = "ghost@example.com"
	_, err := f.svc.Grant(ctx, f.owner, in)
	assert.ErrorIs(t, err, common.ErrUserNotFound)

	in = f.grantInput()
	in.Role = authmodels.RoleRestaurantMainAdmin
	_, err = f.svc.Grant(ctx, f.owner, in)
	assert.Equal(t, http.StatusBadRequest, common.StatusOf(err))

	other, err := f.stores.Dashboards.Create(ctx, dashmodels.Dashboard{OwnerID: "someone-else"})
	require.NoError(t, err)
	in = f.grantInput()
	in.DashboardID = other.ID.Hex()
	_, err = f.svc.Grant(ctx, f.owner, in)
	assert.ErrorIs(t, err, ErrRestaurantNotInDashboard)
}

func TestRevoke_MainAdminSelfRevokeRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Revoke(context.Background(), f.owner, &employeedto.RevokeInput{
		UserID:       f.owner.FirebaseUID,
		RestaurantID: f.restaurant.ID.Hex(),
		DashboardID:  f.dashboard.ID.Hex(),
	})
	assert.Equal(t, http.StatusConflict, common.StatusOf(err))

	r, err := f.stores.Restaurants.FindByID(context.Background(), f.restaurant.ID)
	require.NoError(t, err)
	assert.Len(t, r.MainAdmins(), 1)
}
