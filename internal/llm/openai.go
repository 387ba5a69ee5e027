// Package llm gọi model ngôn ngữ qua API tương thích OpenAI (chat completions, stream SSE).
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"talking_menu/internal/common"
)

// Vai trò message theo API chat completions
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message là một message gửi lên model
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage là số token model báo về ở cuối stream
type Usage struct {
	PromptTokens            int64                    `json:"prompt_tokens"`
	CompletionTokens        int64                    `json:"completion_tokens"`
	TotalTokens             int64                    `json:"total_tokens"`
	PromptTokensDetails     *PromptTokensDetails     `json:"prompt_tokens_details,omitempty"`
	CompletionTokensDetails *CompletionTokensDetails `json:"completion_tokens_details,omitempty"`
}

type PromptTokensDetails struct {
	CachedTokens int64 `json:"cached_tokens"`
	AudioTokens  int64 `json:"audio_tokens"`
}

type CompletionTokensDetails struct {
	ReasoningTokens          int64 `json:"reasoning_tokens"`
	AudioTokens              int64 `json:"audio_tokens"`
	AcceptedPredictionTokens int64 `json:"accepted_prediction_tokens"`
	RejectedPredictionTokens int64 `json:"rejected_prediction_tokens"`
}

// StreamRequest là một lượt hỏi; Model rỗng thì dùng model mặc định của client
type StreamRequest struct {
	Model    string
	Messages []Message
}

// StreamResult là kết quả sau khi stream kết thúc
type StreamResult struct {
	Text  string
	Model string
	Usage *Usage
}

// ChatStreamer stream câu trả lời của model, gọi onDelta cho từng đoạn text.
// onDelta trả lỗi thì stream dừng và lỗi đó được trả về.
type ChatStreamer interface {
	StreamChat(ctx context.Context, req StreamRequest, onDelta func(delta string) error) (*StreamResult, error)
}

// OpenAIClient gọi endpoint /chat/completions của bất kỳ server tương thích OpenAI
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

var _ ChatStreamer = (*OpenAIClient)(nil)

// NewOpenAIClient tạo OpenAIClient. baseURL gồm cả tiền tố /v1.
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration) *OpenAIClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenAIClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		model:      strings.TrimSpace(model),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model         string         `json:"model"`
	Messages      []Message      `json:"messages"`
	Stream        bool           `json:"stream"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type chatChunk struct {
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// StreamChat gửi request stream và đọc từng event "data:" cho tới [DONE]
func (c *OpenAIClient) StreamChat(ctx context.Context, req StreamRequest, onDelta func(delta string) error) (*StreamResult, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	if model == "" {
		return nil, errors.New("llm: model required")
	}

	body, err := json.Marshal(chatRequest{
		Model:         model,
		Messages:      req.Messages,
		Stream:        true,
		StreamOptions: &streamOptions{IncludeUsage: true},
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, common.NewUpstreamError("LLM request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&errResp)
		msg := resp.Status
		if errResp.Error.Message != "" {
			msg = errResp.Error.Message
		}
		return nil, common.NewUpstreamError(fmt.Sprintf("LLM api error: %s", msg), nil)
	}

	result := &StreamResult{Model: model}
	var text strings.Builder
	// chỉ coi là xong khi nhận [DONE] hoặc finish_reason, EOF trước đó là stream bị cắt
	completed := false

	reader := bufio.NewReader(resp.Body)
	for {
		line, readErr := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		if data, ok := strings.CutPrefix(line, "data:"); ok {
			data = strings.TrimSpace(data)
			if data == "[DONE]" {
				completed = true
				break
			}
			var chunk chatChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				return nil, common.NewUpstreamError("LLM stream decode failed", err)
			}
			if chunk.Model != "" {
				result.Model = chunk.Model
			}
			if chunk.Usage != nil {
				result.Usage = chunk.Usage
			}
			for _, choice := range chunk.Choices {
				if choice.FinishReason != nil {
					completed = true
				}
				if choice.Delta.Content == "" {
					continue
				}
				text.WriteString(choice.Delta.Content)
				if onDelta != nil {
					if err := onDelta(choice.Delta.Content); err != nil {
						return nil, err
					}
				}
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				if !completed {
					return nil, common.NewUpstreamError("LLM stream ended early", io.ErrUnexpectedEOF)
				}
				break
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, common.NewUpstreamError("LLM stream interrupted", readErr)
		}
	}

	result.Text = text.String()
	return result, nil
}
