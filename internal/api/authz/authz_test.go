package authz

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "talking_menu/internal/api/auth/models"
	dashmodels "talking_menu/internal/api/dashboard/models"
	restmodels "talking_menu/internal/api/restaurant/models"
	"talking_menu/internal/common"
	"talking_menu/internal/store/memstore"
)

func setup(t *testing.T) (*Authorizer, *dashmodels.Dashboard, *restmodels.Restaurant) {
	t.Helper()
	ctx := context.Background()
	stores := memstore.NewStores()

	d, err := stores.Dashboards.Create(ctx, dashmodels.Dashboard{OwnerID: "owner"})
	require.NoError(t, err)
	r, err := stores.Restaurants.Create(ctx, restmodels.Restaurant{
		Name:    "Pho 24",
		OwnerID: "owner",
		UserAccess: []authmodels.UserAccess{
			{UserID: "owner", UserEmail: "owner@example.com", Role: authmodels.RoleRestaurantMainAdmin},
			{UserID: "staff", UserEmail: "staff@example.com", Role: authmodels.RoleRestaurantAdmin},
		},
	})
	require.NoError(t, err)
	return NewAuthorizer(stores.Dashboards, stores.Restaurants), d, r
}

func user(uid string, roles ...string) *authmodels.User {
	return &authmodels.User{FirebaseUID: uid, Roles: roles}
}

func TestAuthorize_Dashboard(t *testing.T) {
	a, d, _ := setup(t)
	ctx := context.Background()

	assert.NoError(t, a.Authorize(ctx, ResourceDashboard, d.ID.Hex(), user("owner")))
	assert.Equal(t, http.StatusForbidden, common.StatusOf(a.Authorize(ctx, ResourceDashboard, d.ID.Hex(), user("staff"))))
	assert.NoError(t, a.Authorize(ctx, ResourceDashboard, d.ID.Hex(), user("root", authmodels.RoleTalkingMenuAdmin)))
}

func TestAuthorize_Restaurant(t *testing.T) {
	a, _, r := setup(t)
	ctx := context.Background()

	assert.NoError(t, a.Authorize(ctx, ResourceRestaurant, r.ID.Hex(), user("owner")))
	assert.NoError(t, a.Authorize(ctx, ResourceRestaurant, r.ID.Hex(), user("staff")))
	assert.Equal(t, http.StatusForbidden, common.StatusOf(a.Authorize(ctx, ResourceRestaurant, r.ID.Hex(), user("stranger"))))
}

func TestAuthorize_RestaurantOwnerOnly(t *testing.T) {
	a, _, r := setup(t)
	ctx := context.Background()

	assert.NoError(t, a.Authorize(ctx, ResourceRestaurantOwner, r.ID.Hex(), user("owner")))
	assert.Equal(t, http.StatusForbidden, common.StatusOf(a.Authorize(ctx, ResourceRestaurantOwner, r.ID.Hex(), user("staff"))))
	assert.Equal(t, http.StatusNotFound, common.StatusOf(a.Authorize(ctx, ResourceRestaurantOwner, primitive.NewObjectID().Hex(), user("staff"))))
}

func TestAuthorize_NotFoundBeforeForbidden(t *testing.T) {
	a, _, _ := setup(t)
	ctx := context.Background()

	missing := primitive.NewObjectID().Hex()
	assert.Equal(t, http.StatusNotFound, common.StatusOf(a.Authorize(ctx, ResourceRestaurant, missing, user("stranger"))))
	assert.Equal(t, http.StatusNotFound, common.StatusOf(a.Authorize(ctx, ResourceDashboard, "not-an-id", user("stranger"))))
}

func TestAuthorize_AnonymousAndUnknownType(t *testing.T) {
	a, _, r := setup(t)
	ctx := context.Background()

	assert.Equal(t, http.StatusUnauthorized, common.StatusOf(a.Authorize(ctx, ResourceRestaurant, r.ID.Hex(), nil)))
	assert.Equal(t, http.StatusForbidden, common.StatusOf(a.Authorize(ctx, "menu", r.ID.Hex(), user("owner"))))
}
