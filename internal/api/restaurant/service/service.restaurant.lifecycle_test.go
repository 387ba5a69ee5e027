package restaurantsvc

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmodels "talking_menu/internal/api/auth/models"
	chatmodels "talking_menu/internal/api/chat/models"
	dashmodels "talking_menu/internal/api/dashboard/models"
	dashboardsvc "talking_menu/internal/api/dashboard/service"
	restdto "talking_menu/internal/api/restaurant/dto"
	models "talking_menu/internal/api/restaurant/models"
	subsvc "talking_menu/internal/api/subscription/service"
	"talking_menu/internal/common"
	"talking_menu/internal/store"
	"talking_menu/internal/store/memstore"
)

type fixture struct {
	db        *memstore.DB
	stores    *store.Stores
	svc       *LifecycleService
	owner     *authmodels.User
	dashboard *dashmodels.Dashboard
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := memstore.New()
	stores := db.Stores()

	catalog := subsvc.NewCatalogService(stores.Packages)
	billing := subsvc.NewBillingService(stores)
	dashboards := dashboardsvc.NewLifecycleService(stores, catalog, billing)

	owner := db.PutUser(authmodels.User{
		FirebaseUID: "owner-uid",
		Email:       "owner@example.com",
		Roles:       []string{authmodels.RoleDiner, authmodels.RoleRestaurantMainAdmin},
	})
	dashboard, err := dashboards.CreateDashboard(ctx, owner, "")
	require.NoError(t, err)

	return &fixture{
		db:        db,
		stores:    stores,
		svc:       NewLifecycleService(stores, dashboards),
		owner:     owner,
		dashboard: dashboard,
	}
}

func (f *fixture) createRestaurant(t *testing.T, name string) *restdto.RestaurantOutput {
	t.Helper()
	out, err := f.svc.Create(context.Background(), f.owner, f.dashboard.ID, &restdto.RestaurantCreateInput{Name: name, Location: "Hanoi"})
	require.NoError(t, err)
	return out
}

func TestCreate_ProvisionsDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out := f.createRestaurant(t, "Pho 24")

	require.Len(t, out.UserAccess, 1)
	assert.Equal(t, f.owner.FirebaseUID, out.UserAccess[0].UserID)
	assert.Equal(t, authmodels.RoleRestaurantMainAdmin, out.UserAccess[0].Role)
	require.NotNil(t, out.Restaurant.Menu)
	assert.Empty(t, out.Menu.MenuItems)

	bot, err := f.stores.Chatbots.FindByRestaurant(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChatbotStatusOn, bot.Status)
	assert.False(t, bot.QRScanOnly)
	assert.Len(t, bot.SuggestedQuestions, 2)
	assert.Equal(t, models.DefaultSystemPrompt, bot.SystemPrompt)

	analytics, err := f.stores.Analytics.FindByRestaurant(ctx, out.ID)
	require.NoError(t, err)
	assert.Empty(t, analytics.MonthlyStats)

	d, err := f.stores.Dashboards.FindByID(ctx, f.dashboard.ID)
	require.NoError(t, err)
	assert.True(t, d.HasRestaurant(out.ID))

	u, err := f.stores.Users.FindByUID(ctx, f.owner.FirebaseUID)
	require.NoError(t, err)
	assert.Contains(t, u.AccessibleRestaurants, out.ID)
}

func TestCreate_ForeignDashboardForbidden(t *testing.T) {
	f := newFixture(t)
	stranger := f.db.PutUser(authmodels.User{FirebaseUID: "stranger", Roles: []string{authmodels.RoleRestaurantMainAdmin}})

	_, err := f.svc.Create(context.Background(), stranger, f.dashboard.ID, &restdto.RestaurantCreateInput{Name: "X"})
	assert.Equal(t, http.StatusForbidden, common.StatusOf(err))
}

func TestDelete_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	out := f.createRestaurant(t, "Pho 24")

	staff := f.db.PutUser(authmodels.User{FirebaseUID: "staff", Email: "staff@example.com", Roles: []string{authmodels.RoleDiner, authmodels.RoleRestaurantAdmin}})
	require.NoError(t, f.stores.Users.AddAccessibleRestaurant(ctx, staff.FirebaseUID, out.ID))

	chat, err := f.stores.Chats.Create(ctx, chatmodels.Chat{RestaurantID: out.ID, SessionToken: "s1", TableNumber: chatmodels.DefaultTableNumber})
	require.NoError(t, err)
	require.NoError(t, f.stores.Users.SetStarredChat(ctx, staff.FirebaseUID, chat.ID, true))
	require.NoError(t, f.stores.UserChats.AddChat(ctx, "diner", chat.ID))

	require.NoError(t, f.svc.Delete(ctx, f.owner, out.ID))

	_, err = f.stores.Restaurants.FindByID(ctx, out.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = f.stores.Chatbots.FindByRestaurant(ctx, out.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = f.stores.Menus.FindByRestaurant(ctx, out.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = f.stores.Analytics.FindByRestaurant(ctx, out.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = f.stores.Chats.FindByID(ctx, chat.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	s, err := f.stores.Users.FindByUID(ctx, staff.FirebaseUID)
	require.NoError(t, err)
	assert.Empty(t, s.StarredChats)
	assert.Empty(t, s.AccessibleRestaurants)
	assert.NotContains(t, s.Roles, authmodels.RoleRestaurantAdmin)

	uc, err := f.stores.UserChats.FindByUser(ctx, "diner")
	require.NoError(t, err)
	assert.Empty(t, uc.Chats)

	d, err := f.stores.Dashboards.FindByID(ctx, f.dashboard.ID)
	require.NoError(t, err)
	assert.False(t, d.HasRestaurant(out.ID))
}

func TestDelete_KeepsRoleWhenOtherRestaurantsRemain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createRestaurant(t, "A")
	b := f.createRestaurant(t, "B")

	staff := f.db.PutUser(authmodels.User{FirebaseUID: "staff", Roles: []string{authmodels.RoleRestaurantAdmin}})
	require.NoError(t, f.stores.Users.AddAccessibleRestaurant(ctx, staff.FirebaseUID, a.ID))
	require.NoError(t, f.stores.Users.AddAccessibleRestaurant(ctx, staff.FirebaseUID, b.ID))

	require.NoError(t, f.svc.Delete(ctx, f.owner, a.ID))

	s, err := f.stores.Users.FindByUID(ctx, staff.FirebaseUID)
	require.NoError(t, err)
	assert.Contains(t, s.Roles, authmodels.RoleRestaurantAdmin)
	assert.Equal(t, b.ID, s.AccessibleRestaurants[0])
}

func TestTransfer_CreatesOneDashboardForNewOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	out := f.createRestaurant(t, "Pho 24")
	newOwner := f.db.PutUser(authmodels.User{FirebaseUID: "new-uid", Email: "New@Example.com", Roles: []string{authmodels.RoleDiner}})

	res, err := f.svc.Transfer(ctx, f.owner, out.ID, "new@example.com")
	require.NoError(t, err)
	assert.True(t, res.DashboardCreated)
	assert.Equal(t, f.owner.FirebaseUID, res.PreviousOwnerID)

	assert.Equal(t, newOwner.FirebaseUID, res.Restaurant.OwnerID)
	mains := res.Restaurant.MainAdmins()
	require.Len(t, mains, 1)
	assert.Equal(t, newOwner.FirebaseUID, mains[0].UserID)

	oldDash, err := f.stores.Dashboards.FindByID(ctx, f.dashboard.ID)
	require.NoError(t, err)
	assert.False(t, oldDash.HasRestaurant(out.ID))

	newDash, err := f.stores.Dashboards.FindByOwner(ctx, newOwner.FirebaseUID)
	require.NoError(t, err)
	assert.Equal(t, res.NewDashboardID, newDash.ID)
	assert.True(t, newDash.HasRestaurant(out.ID))

	u, err := f.stores.Users.FindByUID(ctx, newOwner.FirebaseUID)
	require.NoError(t, err)
	assert.Contains(t, u.Roles, authmodels.RoleRestaurantMainAdmin)
	assert.Contains(t, u.AccessibleRestaurants, out.ID)
	assert.Contains(t, u.AccessibleDashboards, newDash.ID)

	prev, err := f.stores.Users.FindByUID(ctx, f.owner.FirebaseUID)
	require.NoError(t, err)
	assert.NotContains(t, prev.AccessibleRestaurants, out.ID)

	// chuyển tiếp nhà hàng thứ hai không tạo thêm dashboard
	second := f.createRestaurant(t, "Bun Cha")
	res, err = f.svc.Transfer(ctx, f.owner, second.ID, "new@example.com")
	require.NoError(t, err)
	assert.False(t, res.DashboardCreated)
	assert.Equal(t, newDash.ID, res.NewDashboardID)
}

func TestTransfer_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	out := f.createRestaurant(t, "Pho 24")

	_, err := f.svc.Transfer(ctx, f.owner, out.ID, "nobody@example.com")
	assert.ErrorIs(t, err, common.ErrUserNotFound)

	_, err = f.svc.Transfer(ctx, f.owner, out.ID, f.owner.Email)
	assert.Equal(t, http.StatusConflict, common.StatusOf(err))
}

func TestList_AdminOnlyAndSearchByOwnerEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createRestaurant(t, "Pho 24")
	f.createRestaurant(t, "Bun Cha")

	_, err := f.svc.List(ctx, f.owner, "", 1, 10)
	assert.Equal(t, http.StatusForbidden, common.StatusOf(err))

	admin := f.db.PutUser(authmodels.User{FirebaseUID: "root", Roles: []string{authmodels.RoleTalkingMenuAdmin}})
	all, err := f.svc.List(ctx, admin, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	for _, item := range all.Items {
		assert.Equal(t, "owner@example.com", item.OwnerEmail)
		require.NotNil(t, item.DashboardID)
		assert.Equal(t, f.dashboard.ID, *item.DashboardID)
	}

	byName, err := f.svc.List(ctx, admin, "pho", 1, 10)
	require.NoError(t, err)
	require.Len(t, byName.Items, 1)
	assert.Equal(t, "Pho 24", byName.Items[0].Name)

	byEmail, err := f.svc.List(ctx, admin, "OWNER@", 1, 10)
	require.NoError(t, err)
	assert.Len(t, byEmail.Items, 2)
}

func TestUpdate_PartialFields(t *testing.T) {
	f := newFixture(t)
	out := f.createRestaurant(t, "Pho 24")

	logo := "https://cdn.example.com/logo.png"
	updated, err := f.svc.Update(context.Background(), out.ID, &restdto.RestaurantUpdateInput{Logo: &logo})
	require.NoError(t, err)
	assert.Equal(t, logo, updated.Logo)
	assert.Equal(t, "Pho 24", updated.Name)
	assert.Equal(t, "Hanoi", updated.Location)
}
