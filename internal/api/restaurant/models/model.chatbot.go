package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Trạng thái chatbot
const (
	ChatbotStatusOn  = "on"
	ChatbotStatusOff = "off"
)

// RichTextDocument là state của rich-text editor phía client (lưu nguyên dạng)
type RichTextDocument map[string]interface{}

// Chatbot là cấu hình chatbot của nhà hàng, 1:1 theo restaurantId
type Chatbot struct {
	ID                 primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	RestaurantID       primitive.ObjectID `json:"restaurantId" bson:"restaurantId" index:"unique"`
	SystemPrompt       string             `json:"systemPrompt" bson:"systemPrompt"`
	SuggestedQuestions []RichTextDocument `json:"suggestedQuestions" bson:"suggestedQuestions"`
	Status             string             `json:"status" bson:"status"`
	QRScanOnly         bool               `json:"qrScanOnly" bson:"qrScanOnly"`
	CreatedAt          int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt          int64              `json:"updatedAt" bson:"updatedAt"`
}

// IsOn: chatbot đang nhận tin nhắn
func (c *Chatbot) IsOn() bool {
	return c.Status == ChatbotStatusOn
}

// DefaultSystemPrompt là prompt khởi tạo cho chatbot mới
const DefaultSystemPrompt = "You are a friendly restaurant assistant. Answer questions about the menu, " +
	"recommend dishes and help diners decide what to order. Only use the menu information you are given; " +
	"if you do not know something, say so politely."

// NewParagraphDocument tạo rich-text document một đoạn văn chứa text
func NewParagraphDocument(text string) RichTextDocument {
	return RichTextDocument{
		"root": map[string]interface{}{
			"type":      "root",
			"direction": "ltr",
			"format":    "",
			"indent":    0,
			"version":   1,
			"children": []interface{}{
				map[string]interface{}{
					"type":      "paragraph",
					"direction": "ltr",
					"format":    "",
					"indent":    0,
					"version":   1,
					"children": []interface{}{
						map[string]interface{}{
							"type":    "text",
							"text":    text,
							"detail":  0,
							"format":  0,
							"mode":    "normal",
							"style":   "",
							"version": 1,
						},
					},
				},
			},
		},
	}
}

// DefaultSuggestedQuestions là hai câu hỏi gợi ý mặc định
func DefaultSuggestedQuestions() []RichTextDocument {
	return []RichTextDocument{
		NewParagraphDocument("What are your most popular dishes?"),
		NewParagraphDocument("Do you have any vegetarian options?"),
	}
}
