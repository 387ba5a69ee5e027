package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Tên gói và chu kỳ thanh toán
const (
	PackageBasic   = "basic"
	PackagePremium = "premium"
	PackageTest    = "test"

	ScheduleMonthly  = "monthly"
	ScheduleAnnually = "annually"
)

// SubscriptionPackage là dữ liệu tham chiếu do platform admin quản lý
type SubscriptionPackage struct {
	ID                 primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty" yaml:"-"`
	Name               string             `json:"name" bson:"name" yaml:"name" index:"unique"`
	TokenLimitPerMonth int64              `json:"tokenLimitPerMonth" bson:"tokenLimitPerMonth" yaml:"tokenLimitPerMonth"`
	Price              float64            `json:"price" bson:"price" yaml:"price"`
	PaymentSchedule    string             `json:"paymentSchedule" bson:"paymentSchedule" yaml:"paymentSchedule"`
	CreatedAt          int64              `json:"createdAt" bson:"createdAt" yaml:"-"`
	UpdatedAt          int64              `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}

// DefaultPackages là các gói dùng khi không có file seed
func DefaultPackages() []SubscriptionPackage {
	return []SubscriptionPackage{
		{Name: PackageBasic, TokenLimitPerMonth: 1_000_000, Price: 0, PaymentSchedule: ScheduleMonthly},
		{Name: PackagePremium, TokenLimitPerMonth: 10_000_000, Price: 49, PaymentSchedule: ScheduleMonthly},
		{Name: PackageTest, TokenLimitPerMonth: 5_000, Price: 0, PaymentSchedule: ScheduleMonthly},
	}
}
