//go:build integration

package subsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "talking_menu/internal/api/subscription/models"
	"talking_menu/internal/database/mongotest"
)

func TestTokenUsageServiceMongo_LimitSnapshotIsWrittenOnce(t *testing.T) {
	mongotest.Start(t)
	ctx := context.Background()
	svc, err := NewTokenUsageService()
	require.NoError(t, err)

	key := models.TokenUsageKey{
		RestaurantID:           primitive.NewObjectID(),
		DashboardID:            primitive.NewObjectID(),
		CustomerSubscriptionID: primitive.NewObjectID(),
		Month:                  3,
		Year:                   2024,
	}

	first, err := svc.GetOrCreate(ctx, key, 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), first.TokenLimit)
	assert.Zero(t, first.TokenUsageDetails.TotalTokens)

	// gói bị sửa giữa tháng
	again, err := svc.GetOrCreate(ctx, key, 9000)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, int64(5000), again.TokenLimit)

	usage := models.TokenUsageDetails{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120}
	usage.PromptTokensDetails.CachedTokens = 64
	usage.CompletionTokensDetails.ReasoningTokens = 7
	after, err := svc.Increment(ctx, key, 9000, usage)
	require.NoError(t, err)
	after, err = svc.Increment(ctx, key, 9000, usage)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), after.TokenLimit)
	assert.Equal(t, int64(240), after.TokenUsageDetails.TotalTokens)
	assert.Equal(t, int64(128), after.TokenUsageDetails.PromptTokensDetails.CachedTokens)
	assert.Equal(t, int64(14), after.TokenUsageDetails.CompletionTokensDetails.ReasoningTokens)

	all, err := svc.ListByRestaurant(ctx, key.RestaurantID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTokenUsageServiceMongo_IncrementCreatesPeriod(t *testing.T) {
	mongotest.Start(t)
	ctx := context.Background()
	svc, err := NewTokenUsageService()
	require.NoError(t, err)

	restaurantID := primitive.NewObjectID()
	base := models.TokenUsageKey{RestaurantID: restaurantID, DashboardID: primitive.NewObjectID(), CustomerSubscriptionID: primitive.NewObjectID(), Year: 2024}
	march, april := base, base
	march.Month, april.Month = 3, 4

	_, err = svc.Increment(ctx, march, 5000, models.TokenUsageDetails{TotalTokens: 10})
	require.NoError(t, err)
	created, err := svc.Increment(ctx, april, 7000, models.TokenUsageDetails{TotalTokens: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(7000), created.TokenLimit)
	assert.Equal(t, int64(5), created.TokenUsageDetails.TotalTokens)

	all, err := svc.ListByRestaurant(ctx, restaurantID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 4, all[0].Month)
	assert.Equal(t, 3, all[1].Month)
}
