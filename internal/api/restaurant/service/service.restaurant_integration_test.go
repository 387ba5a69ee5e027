//go:build integration

package restaurantsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "talking_menu/internal/api/auth/models"
	models "talking_menu/internal/api/restaurant/models"
	"talking_menu/internal/common"
	"talking_menu/internal/database/mongotest"
)

func newMongoRestaurant(t *testing.T, svc *RestaurantService, roster ...authmodels.UserAccess) *models.Restaurant {
	t.Helper()
	r, err := svc.Create(context.Background(), models.Restaurant{
		Name:       "Pho 24",
		OwnerID:    "owner",
		UserAccess: append([]authmodels.UserAccess{{UserID: "owner", UserEmail: "owner@example.com", Role: authmodels.RoleRestaurantMainAdmin}}, roster...),
	})
	require.NoError(t, err)
	return r
}

func countMainAdmins(r *models.Restaurant) int {
	n := 0
	for _, a := range r.UserAccess {
		if a.Role == authmodels.RoleRestaurantMainAdmin {
			n++
		}
	}
	return n
}

func TestRestaurantServiceMongo_AddUserAccessIsIdempotent(t *testing.T) {
	mongotest.Start(t)
	ctx := context.Background()
	svc, err := NewRestaurantService()
	require.NoError(t, err)
	r := newMongoRestaurant(t, svc)

	waiter := authmodels.UserAccess{UserID: "waiter", UserEmail: "waiter@example.com", Role: authmodels.RoleRestaurantAdmin}
	require.NoError(t, svc.AddUserAccess(ctx, r.ID, waiter))
	require.NoError(t, svc.AddUserAccess(ctx, r.ID, waiter))

	got, err := svc.FindByID(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, got.UserAccess, 2)
	assert.Equal(t, "waiter", got.UserAccess[1].UserID)

	err = svc.AddUserAccess(ctx, primitive.NewObjectID(), waiter)
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, svc.RemoveUserAccess(ctx, r.ID, "waiter"))
	got, err = svc.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, got.UserAccess, 1)
}

func TestRestaurantServiceMongo_TransferOwnershipKeepsOneMainAdmin(t *testing.T) {
	mongotest.Start(t)
	ctx := context.Background()
	svc, err := NewRestaurantService()
	require.NoError(t, err)
	r := newMongoRestaurant(t, svc,
		authmodels.UserAccess{UserID: "waiter", UserEmail: "waiter@example.com", Role: authmodels.RoleRestaurantAdmin},
		authmodels.UserAccess{UserID: "manager", UserEmail: "manager@example.com", Role: authmodels.RoleRestaurantAdmin},
	)

	// manager đang là nhân viên thì entry cũ bị thay, không nhân đôi
	out, err := svc.TransferOwnership(ctx, r.ID, authmodels.UserAccess{UserID: "manager", UserEmail: "manager@example.com", Role: authmodels.RoleRestaurantMainAdmin})
	require.NoError(t, err)
	assert.Equal(t, "manager", out.OwnerID)
	assert.Equal(t, 1, countMainAdmins(out))

	stored, err := svc.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "manager", stored.OwnerID)
	require.Len(t, stored.UserAccess, 2)
	assert.Equal(t, 1, countMainAdmins(stored))
	assert.False(t, authmodels.HasAccess(stored.UserAccess, "owner"))
	assert.True(t, authmodels.HasAccess(stored.UserAccess, "waiter"))
	assert.Equal(t, "manager", stored.MainAdmins()[0].UserID)

	// chuyển tiếp cho user chưa có trong roster
	out, err = svc.TransferOwnership(ctx, r.ID, authmodels.UserAccess{UserID: "buyer", UserEmail: "buyer@example.com", Role: authmodels.RoleRestaurantMainAdmin})
	require.NoError(t, err)
	assert.Equal(t, 1, countMainAdmins(out))
	assert.Len(t, out.UserAccess, 2)

	_, err = svc.TransferOwnership(ctx, primitive.NewObjectID(), authmodels.UserAccess{UserID: "x", Role: authmodels.RoleRestaurantMainAdmin})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAnalyticsServiceMongo_RecordMergesMonths(t *testing.T) {
	mongotest.Start(t)
	ctx := context.Background()
	svc, err := NewAnalyticsService()
	require.NoError(t, err)
	restaurantID := primitive.NewObjectID()
	_, err = svc.Create(ctx, restaurantID)
	require.NoError(t, err)

	require.NoError(t, svc.Record(ctx, restaurantID, models.MonthlyStat{Year: 2024, Month: 1, Chats: 1}))
	require.NoError(t, svc.Record(ctx, restaurantID, models.MonthlyStat{Year: 2024, Month: 1, Messages: 1, TotalTokens: 120}))
	require.NoError(t, svc.Record(ctx, restaurantID, models.MonthlyStat{Year: 2024, Month: 2, Messages: 1, TotalTokens: 30}))

	a, err := svc.FindByRestaurant(ctx, restaurantID)
	require.NoError(t, err)
	require.Len(t, a.MonthlyStats, 2)
	assert.Equal(t, int64(1), a.MonthlyStats[0].Chats)
	assert.Equal(t, int64(1), a.MonthlyStats[0].Messages)
	assert.Equal(t, int64(120), a.MonthlyStats[0].TotalTokens)
	assert.Equal(t, 2, a.MonthlyStats[1].Month)
	assert.Equal(t, int64(1), a.TotalChats)
	assert.Equal(t, int64(2), a.TotalMessages)
	assert.Equal(t, int64(150), a.TotalTokens)
}

func TestAnalyticsServiceMongo_RecordDoesNotRecreateDeletedRestaurant(t *testing.T) {
	mongotest.Start(t)
	ctx := context.Background()
	svc, err := NewAnalyticsService()
	require.NoError(t, err)
	restaurantID := primitive.NewObjectID()

	err = svc.Record(ctx, restaurantID, models.MonthlyStat{Year: 2024, Month: 1, Messages: 1})
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = svc.FindByRestaurant(ctx, restaurantID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
