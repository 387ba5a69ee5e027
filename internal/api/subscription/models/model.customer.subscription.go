package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái CustomerSubscription
const (
	SubscriptionActive   = "active"
	SubscriptionExpired  = "expired"
	SubscriptionCanceled = "canceled"
	SubscriptionPaused   = "paused"
)

// CustomerSubscription gắn một gói vào một dashboard. Thời gian lưu dạng Unix milli.
type CustomerSubscription struct {
	ID                    primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	DashboardID           primitive.ObjectID `json:"dashboardId" bson:"dashboardId" index:"single"`
	SubscriptionPackageID primitive.ObjectID `json:"subscriptionPackageId" bson:"subscriptionPackageId"`
	StartDate             int64              `json:"startDate" bson:"startDate"`
	EndDate               int64              `json:"endDate" bson:"endDate" index:"single"`
	Status                string             `json:"status" bson:"status"`
	NextBillingDate       int64              `json:"nextBillingDate" bson:"nextBillingDate"`
	Renewal               bool               `json:"renewal" bson:"renewal"`
	CreatedAt             int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt             int64              `json:"updatedAt" bson:"updatedAt"`
}

// AdvancePeriod trả về thời điểm sau một chu kỳ thanh toán kể từ t
func AdvancePeriod(t time.Time, schedule string) time.Time {
	if schedule == ScheduleAnnually {
		return t.AddDate(1, 0, 0)
	}
	return t.AddDate(0, 1, 0)
}

// NewCustomerSubscription tạo subscription active bắt đầu từ now
func NewCustomerSubscription(dashboardID primitive.ObjectID, pkg *SubscriptionPackage, now time.Time) CustomerSubscription {
	end := AdvancePeriod(now, pkg.PaymentSchedule)
	return CustomerSubscription{
		DashboardID:           dashboardID,
		SubscriptionPackageID: pkg.ID,
		StartDate:             now.UnixMilli(),
		EndDate:               end.UnixMilli(),
		Status:                SubscriptionActive,
		NextBillingDate:       end.UnixMilli(),
		Renewal:               true,
	}
}
