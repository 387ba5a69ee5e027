package restaurantsvc

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "talking_menu/internal/api/restaurant/models"
	"talking_menu/internal/store"
)

// AnalyticsReader đọc thống kê theo tháng của nhà hàng
type AnalyticsReader struct {
	analytics store.AnalyticsStore
	now       func() time.Time
}

// NewAnalyticsReader tạo AnalyticsReader
func NewAnalyticsReader(stores *store.Stores) *AnalyticsReader {
	return &AnalyticsReader{analytics: stores.Analytics, now: time.Now}
}

// WithClock thay nguồn thời gian (dùng trong test)
func (r *AnalyticsReader) WithClock(now func() time.Time) *AnalyticsReader {
	r.now = now
	return r
}

// GetRestaurantAnalytics trả về bản thống kê với monthlyStats đã lấp tháng trống, mới nhất trước.
// Dữ liệu lưu không bị ghi lại.
func (r *AnalyticsReader) GetRestaurantAnalytics(ctx context.Context, restaurantID primitive.ObjectID) (*models.RestaurantAnalytics, error) {
	analytics, err := r.analytics.FindByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	analytics.MonthlyStats = FillMonthlyGaps(analytics.MonthlyStats, r.now())
	return analytics, nil
}

// FillMonthlyGaps lấp các tháng thiếu từ tháng sớm nhất tới tháng của now bằng entry 0,
// rồi đảo thứ tự thành mới nhất trước. stats rỗng thì trả về danh sách rỗng.
func FillMonthlyGaps(stats []models.MonthlyStat, now time.Time) []models.MonthlyStat {
	if len(stats) == 0 {
		return []models.MonthlyStat{}
	}

	byIndex := make(map[int]models.MonthlyStat, len(stats))
	first := stats[0].Index()
	last := first
	for _, s := range stats {
		idx := s.Index()
		if prev, ok := byIndex[idx]; ok {
			// trùng tháng thì cộng dồn
			s = addStats(prev, s)
		}
		byIndex[idx] = s
		if idx < first {
			first = idx
		}
		if idx > last {
			last = idx
		}
	}
	current := now.Year()*12 + int(now.Month()) - 1
	if current > last {
		last = current
	}

	out := make([]models.MonthlyStat, 0, last-first+1)
	for idx := first; idx <= last; idx++ {
		if s, ok := byIndex[idx]; ok {
			out = append(out, s)
			continue
		}
		out = append(out, models.MonthlyStat{Year: idx / 12, Month: idx%12 + 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index() > out[j].Index() })
	return out
}

func addStats(a, b models.MonthlyStat) models.MonthlyStat {
	a.Chats += b.Chats
	a.Messages += b.Messages
	a.PromptTokens += b.PromptTokens
	a.CompletionTokens += b.CompletionTokens
	a.TotalTokens += b.TotalTokens
	return a
}
