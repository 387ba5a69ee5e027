package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// TokenUsage là số token đã dùng của một nhà hàng trong một tháng.
// TokenLimit được chụp lại từ gói tại thời điểm tạo record.
type TokenUsage struct {
	ID                     primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	RestaurantID           primitive.ObjectID `json:"restaurantId" bson:"restaurantId" index:"compound:token_period_unique"`
	DashboardID            primitive.ObjectID `json:"dashboardId" bson:"dashboardId" index:"compound:token_period_unique"`
	CustomerSubscriptionID primitive.ObjectID `json:"customerSubscriptionId" bson:"customerSubscriptionId" index:"compound:token_period_unique"`
	Month                  int                `json:"month" bson:"month" index:"compound:token_period_unique"`
	Year                   int                `json:"year" bson:"year" index:"compound:token_period_unique"`
	TokenLimit             int64              `json:"tokenLimit" bson:"tokenLimit"`
	TokenUsageDetails      TokenUsageDetails  `json:"tokenUsageDetails" bson:"tokenUsageDetails"`
	CreatedAt              int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt              int64              `json:"updatedAt" bson:"updatedAt"`
}

// TokenUsageKey định danh một kỳ tính token
type TokenUsageKey struct {
	RestaurantID           primitive.ObjectID
	DashboardID            primitive.ObjectID
	CustomerSubscriptionID primitive.ObjectID
	Month                  int
	Year                   int
}

// TokenUsageDetails theo schema usage của OpenAI
type TokenUsageDetails struct {
	PromptTokens            int64                   `json:"prompt_tokens" bson:"prompt_tokens"`
	CompletionTokens        int64                   `json:"completion_tokens" bson:"completion_tokens"`
	TotalTokens             int64                   `json:"total_tokens" bson:"total_tokens"`
	PromptTokensDetails     PromptTokensDetails     `json:"prompt_tokens_details" bson:"prompt_tokens_details"`
	CompletionTokensDetails CompletionTokensDetails `json:"completion_tokens_details" bson:"completion_tokens_details"`
}

type PromptTokensDetails struct {
	CachedTokens int64 `json:"cached_tokens" bson:"cached_tokens"`
	AudioTokens  int64 `json:"audio_tokens" bson:"audio_tokens"`
}

type CompletionTokensDetails struct {
	ReasoningTokens          int64 `json:"reasoning_tokens" bson:"reasoning_tokens"`
	AudioTokens              int64 `json:"audio_tokens" bson:"audio_tokens"`
	AcceptedPredictionTokens int64 `json:"accepted_prediction_tokens" bson:"accepted_prediction_tokens"`
	RejectedPredictionTokens int64 `json:"rejected_prediction_tokens" bson:"rejected_prediction_tokens"`
}

// Add cộng dồn usage khác vào d
func (d *TokenUsageDetails) Add(o TokenUsageDetails) {
	d.PromptTokens += o.PromptTokens
	d.CompletionTokens += o.CompletionTokens
	d.TotalTokens += o.TotalTokens
	d.PromptTokensDetails.CachedTokens += o.PromptTokensDetails.CachedTokens
	d.PromptTokensDetails.AudioTokens += o.PromptTokensDetails.AudioTokens
	d.CompletionTokensDetails.ReasoningTokens += o.CompletionTokensDetails.ReasoningTokens
	d.CompletionTokensDetails.AudioTokens += o.CompletionTokensDetails.AudioTokens
	d.CompletionTokensDetails.AcceptedPredictionTokens += o.CompletionTokensDetails.AcceptedPredictionTokens
	d.CompletionTokensDetails.RejectedPredictionTokens += o.CompletionTokensDetails.RejectedPredictionTokens
}

// IncFields trả về map $inc cho các field usage dưới prefix (ví dụ "tokenUsageDetails")
func (d TokenUsageDetails) IncFields(prefix string) map[string]interface{} {
	p := prefix + "."
	return map[string]interface{}{
		p + "prompt_tokens":                                        d.PromptTokens,
		p + "completion_tokens":                                    d.CompletionTokens,
		p + "total_tokens":                                         d.TotalTokens,
		p + "prompt_tokens_details.cached_tokens":                  d.PromptTokensDetails.CachedTokens,
		p + "prompt_tokens_details.audio_tokens":                   d.PromptTokensDetails.AudioTokens,
		p + "completion_tokens_details.reasoning_tokens":           d.CompletionTokensDetails.ReasoningTokens,
		p + "completion_tokens_details.audio_tokens":               d.CompletionTokensDetails.AudioTokens,
		p + "completion_tokens_details.accepted_prediction_tokens": d.CompletionTokensDetails.AcceptedPredictionTokens,
		p + "completion_tokens_details.rejected_prediction_tokens": d.CompletionTokensDetails.RejectedPredictionTokens,
	}
}
