package restaurantsvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "talking_menu/internal/api/restaurant/models"
	"talking_menu/internal/common"
	"talking_menu/internal/store/memstore"
)

func TestFillMonthlyGaps(t *testing.T) {
	now := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	t.Run("empty stays empty", func(t *testing.T) {
		assert.Empty(t, FillMonthlyGaps(nil, now))
	})

	t.Run("fills across year boundary newest first", func(t *testing.T) {
		stats := []models.MonthlyStat{
			{Year: 2023, Month: 11, Chats: 3},
			{Year: 2024, Month: 1, Chats: 5},
		}
		out := FillMonthlyGaps(stats, now)
		require.Len(t, out, 5)

		want := [][2]int{{2024, 3}, {2024, 2}, {2024, 1}, {2023, 12}, {2023, 11}}
		for i, w := range want {
			assert.Equal(t, w[0], out[i].Year)
			assert.Equal(t, w[1], out[i].Month)
		}
		assert.Equal(t, int64(5), out[2].Chats)
		assert.Equal(t, int64(0), out[3].Chats)
		assert.Equal(t, int64(3), out[4].Chats)
	})

	t.Run("k plus one entries", func(t *testing.T) {
		out := FillMonthlyGaps([]models.MonthlyStat{{Year: 2023, Month: 3}}, now)
		assert.Len(t, out, 13)
	})

	t.Run("unsorted input", func(t *testing.T) {
		out := FillMonthlyGaps([]models.MonthlyStat{{Year: 2024, Month: 3, Messages: 1}, {Year: 2024, Month: 2, Messages: 2}}, now)
		require.Len(t, out, 2)
		assert.Equal(t, int64(1), out[0].Messages)
		assert.Equal(t, int64(2), out[1].Messages)
	})
}

func TestGetRestaurantAnalytics_DoesNotBackfill(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	stores := db.Stores()
	id := primitive.NewObjectID()

	_, err := stores.Analytics.Create(ctx, id)
	require.NoError(t, err)
	require.NoError(t, stores.Analytics.Record(ctx, id, models.MonthlyStat{Year: 2024, Month: 1, Chats: 1}))

	reader := NewAnalyticsReader(stores).WithClock(func() time.Time {
		return time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	})
	out, err := reader.GetRestaurantAnalytics(ctx, id)
	require.NoError(t, err)
	assert.Len(t, out.MonthlyStats, 4)

	stored, err := stores.Analytics.FindByRestaurant(ctx, id)
	require.NoError(t, err)
	assert.Len(t, stored.MonthlyStats, 1)
}

func TestAnalyticsRecord_DeletedRestaurantLeavesNoDocument(t *testing.T) {
	ctx := context.Background()
	stores := memstore.NewStores()
	id := primitive.NewObjectID()

	err := stores.Analytics.Record(ctx, id, models.MonthlyStat{Year: 2024, Month: 1, Messages: 1})
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = stores.Analytics.FindByRestaurant(ctx, id)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
