package chatsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "talking_menu/internal/api/auth/models"
	chatdto "talking_menu/internal/api/chat/dto"
	models "talking_menu/internal/api/chat/models"
	restmodels "talking_menu/internal/api/restaurant/models"
	submodels "talking_menu/internal/api/subscription/models"
	subsvc "talking_menu/internal/api/subscription/service"
	"talking_menu/internal/common"
	"talking_menu/internal/llm"
	"talking_menu/internal/logger"
	"talking_menu/internal/metrics"
	"talking_menu/internal/store"
	"talking_menu/internal/utility"
)

// ErrTableNumberRequired: chatbot chỉ nhận chat mở từ mã QR của bàn
var ErrTableNumberRequired = common.NewError(common.ErrCodeValidationInput, "tableNumber is required for this restaurant", common.StatusBadRequest, nil)

// defaultHistoryLimit là số message gần nhất gửi lên model
const defaultHistoryLimit = 30

// RelayService nhận message của thực khách, gọi LLM và stream câu trả lời
type RelayService struct {
	stores       *store.Stores
	accounting   *subsvc.AccountingService
	streamer     llm.ChatStreamer
	locker       ChatLocker
	metrics      *metrics.Metrics
	historyLimit int
	now          func() time.Time
}

// NewRelayService tạo RelayService. locker nil thì không khóa; m có thể nil.
func NewRelayService(stores *store.Stores, accounting *subsvc.AccountingService, streamer llm.ChatStreamer, locker ChatLocker, m *metrics.Metrics, historyLimit int) *RelayService {
	if locker == nil {
		locker = NoopLocker{}
	}
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &RelayService{
		stores:       stores,
		accounting:   accounting,
		streamer:     streamer,
		locker:       locker,
		metrics:      m,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// WithClock thay nguồn thời gian (dùng trong test)
func (s *RelayService) WithClock(now func() time.Time) *RelayService {
	s.now = now
	return s
}

// Session là một lượt chat đã qua kiểm tra và đã ghi message của thực khách
type Session struct {
	Chat       *models.Chat
	Created    bool
	restaurant *restmodels.Restaurant
	chatbot    *restmodels.Chatbot
	menu       *restmodels.Menu
	release    func()
}

// Close nhả khóa chat; gọi nhiều lần không sao
func (sess *Session) Close() {
	if sess.release != nil {
		sess.release()
		sess.release = nil
	}
}

// Prepare chạy các bước trước khi gọi model: kiểm tra chatbot, hạn mức token và subscription,
// tìm hoặc tạo chat theo session token, lấy khóa và ghi message của thực khách.
// principal có thể nil (thực khách ẩn danh).
func (s *RelayService) Prepare(ctx context.Context, principal *authmodels.User, input *chatdto.SendMessageInput) (*Session, error) {
	restaurantID, err := primitive.ObjectIDFromHex(input.RestaurantID)
	if err != nil {
		return nil, common.ErrInvalidID
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, common.NewValidationError("message must not be empty")
	}

	restaurant, err := s.stores.Restaurants.FindByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	chatbot, err := s.stores.Chatbots.FindByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if !chatbot.IsOn() {
		s.metrics.ChatResult(metrics.ChatResultRejected)
		return nil, common.ErrChatbotOff
	}
	if chatbot.QRScanOnly && strings.TrimSpace(input.TableNumber) == "" {
		s.metrics.ChatResult(metrics.ChatResultRejected)
		return nil, ErrTableNumberRequired
	}

	status, err := s.accounting.CheckTokenLimitUsage(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if status.SubscriptionStatus != submodels.SubscriptionActive {
		s.metrics.ChatResult(metrics.ChatResultRejected)
		return nil, subsvc.ErrSubscriptionInactive
	}
	if status.IsLimitReached {
		s.metrics.ChatResult(metrics.ChatResultRejected)
		if s.metrics != nil {
			s.metrics.TokenLimitRejection.Inc()
		}
		return nil, common.ErrTokenLimitReached
	}

	chat, created, err := s.findOrCreateChat(ctx, principal, restaurantID, input)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, chat.ID.Hex())
	if err != nil {
		return nil, err
	}
	sess := &Session{Chat: chat, Created: created, restaurant: restaurant, chatbot: chatbot, release: release}

	if menu, err := s.stores.Menus.FindByRestaurant(ctx, restaurantID); err == nil {
		sess.menu = menu
	} else if !errors.Is(err, common.ErrNotFound) {
		sess.Close()
		return nil, err
	}

	userMsg := models.ChatMessage{
		Message:   message,
		Sender:    models.SenderUser,
		Role:      principalRole(principal),
		Timestamp: s.now().UnixMilli(),
	}
	if err := s.stores.Chats.AppendMessage(ctx, chat.ID, userMsg, ""); err != nil {
		sess.Close()
		return nil, err
	}
	chat.Messages = append(chat.Messages, userMsg)
	return sess, nil
}

func (s *RelayService) findOrCreateChat(ctx context.Context, principal *authmodels.User, restaurantID primitive.ObjectID, input *chatdto.SendMessageInput) (*models.Chat, bool, error) {
	if token := strings.TrimSpace(input.SessionToken); token != "" {
		chat, err := s.stores.Chats.FindBySession(ctx, restaurantID, token)
		if err == nil {
			return chat, false, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, false, err
		}
	}
	// thực khách đã đăng nhập: mỗi (nhà hàng, user) một chat
	if principal != nil {
		chat, err := s.stores.Chats.FindLatestByUser(ctx, restaurantID, principal.FirebaseUID)
		if err == nil {
			return chat, false, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, false, err
		}
	}

	tableNumber := strings.TrimSpace(input.TableNumber)
	if tableNumber == "" {
		tableNumber = models.DefaultTableNumber
	}
	chat := models.Chat{
		SessionToken: uuid.NewString(),
		RestaurantID: restaurantID,
		TableNumber:  tableNumber,
	}
	if principal != nil {
		chat.UserID = principal.FirebaseUID
	}
	created, err := s.stores.Chats.Create(ctx, chat)
	if err != nil {
		return nil, false, err
	}

	if err := s.stores.Restaurants.AddChat(ctx, restaurantID, created.ID); err != nil {
		return nil, false, err
	}
	if principal != nil {
		if err := s.stores.UserChats.AddChat(ctx, principal.FirebaseUID, created.ID); err != nil {
			return nil, false, err
		}
	}
	month, year := utility.MonthYear(s.now())
	if err := s.stores.Analytics.Record(ctx, restaurantID, restmodels.MonthlyStat{Year: year, Month: month, Chats: 1}); err != nil {
		logger.WithContext(ctx).WithError(err).Warn("Không thể ghi analytics cho chat mới")
	}
	return created, true, nil
}

// Stream gọi model với lịch sử chat và gửi từng đoạn text qua onDelta.
// Chỉ khi stream hoàn tất câu trả lời mới được ghi vào transcript, kèm usage và analytics.
func (s *RelayService) Stream(ctx context.Context, sess *Session, onDelta func(delta string) error) (*llm.StreamResult, error) {
	defer sess.Close()

	start := time.Now()
	result, err := s.streamer.StreamChat(ctx, llm.StreamRequest{Messages: s.buildMessages(sess)}, onDelta)
	if err != nil {
		if ctx.Err() != nil {
			s.metrics.ChatResult(metrics.ChatResultCanceled)
		} else {
			s.metrics.ChatResult(metrics.ChatResultUpstreamFail)
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ChatStreamDuration.Observe(time.Since(start).Seconds())
	}

	// câu trả lời đã tới client, phần ghi sau đây không theo ctx của request nữa
	persistCtx := context.WithoutCancel(ctx)

	usage := usageDetails(result.Usage)
	assistantMsg := models.ChatMessage{
		Message:    result.Text,
		Sender:     models.SenderAssistant,
		Timestamp:  s.now().UnixMilli(),
		TokenUsage: usage,
	}
	if err := s.stores.Chats.AppendMessage(persistCtx, sess.Chat.ID, assistantMsg, result.Model); err != nil {
		return result, err
	}
	sess.Chat.Messages = append(sess.Chat.Messages, assistantMsg)

	delta := restmodels.MonthlyStat{Messages: 1}
	delta.Month, delta.Year = utility.MonthYear(s.now())
	if usage != nil {
		if _, err := s.accounting.RecordTokenUsage(persistCtx, sess.Chat.RestaurantID, *usage); err != nil {
			return result, err
		}
		delta.PromptTokens = usage.PromptTokens
		delta.CompletionTokens = usage.CompletionTokens
		delta.TotalTokens = usage.TotalTokens
		s.metrics.ObserveTokens(usage.PromptTokens, usage.CompletionTokens)
	}
	if err := s.stores.Analytics.Record(persistCtx, sess.Chat.RestaurantID, delta); err != nil {
		logger.WithContext(ctx).WithError(err).Warn("Không thể ghi analytics cho message")
	}

	s.metrics.ChatResult(metrics.ChatResultOK)
	return result, nil
}

// buildMessages ghép system prompt (kèm menu) với các message gần nhất của chat
func (s *RelayService) buildMessages(sess *Session) []llm.Message {
	out := []llm.Message{{Role: llm.RoleSystem, Content: buildSystemPrompt(sess.restaurant, sess.chatbot, sess.menu)}}

	history := sess.Chat.Messages
	if len(history) > s.historyLimit {
		history = history[len(history)-s.historyLimit:]
	}
	for _, m := range history {
		switch m.Sender {
		case models.SenderUser:
			out = append(out, llm.Message{Role: llm.RoleUser, Content: m.Message})
		case models.SenderAssistant:
			out = append(out, llm.Message{Role: llm.RoleAssistant, Content: m.Message})
		}
	}
	return out
}

func buildSystemPrompt(restaurant *restmodels.Restaurant, chatbot *restmodels.Chatbot, menu *restmodels.Menu) string {
	var b strings.Builder
	b.WriteString(chatbot.SystemPrompt)
	fmt.Fprintf(&b, "\n\nRestaurant: %s", restaurant.Name)
	if restaurant.Location != "" {
		fmt.Fprintf(&b, " (%s)", restaurant.Location)
	}
	if restaurant.OrderLink != "" {
		fmt.Fprintf(&b, "\nOrders can be placed at: %s", restaurant.OrderLink)
	}
	if menu == nil || len(menu.MenuItems) == 0 {
		b.WriteString("\n\nThe menu is currently empty.")
		return b.String()
	}
	b.WriteString("\n\nMenu:")
	for _, item := range menu.MenuItems {
		fmt.Fprintf(&b, "\n- %s: %.2f", item.Name, item.Price)
		if item.Description != "" {
			fmt.Fprintf(&b, " | %s", item.Description)
		}
	}
	return b.String()
}

// principalRole trả về vai trò cao nhất của người gửi, rỗng nếu ẩn danh
func principalRole(principal *authmodels.User) string {
	if principal == nil {
		return ""
	}
	for _, role := range []string{
		authmodels.RoleTalkingMenuAdmin,
		authmodels.RoleRestaurantMainAdmin,
		authmodels.RoleRestaurantAdmin,
	} {
		if principal.HasRole(role) {
			return role
		}
	}
	return authmodels.RoleDiner
}

// usageDetails chuyển usage của model sang TokenUsageDetails, giữ cả phần chi tiết
func usageDetails(u *llm.Usage) *submodels.TokenUsageDetails {
	if u == nil {
		return nil
	}
	d := &submodels.TokenUsageDetails{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
	if p := u.PromptTokensDetails; p != nil {
		d.PromptTokensDetails = submodels.PromptTokensDetails{
			CachedTokens: p.CachedTokens,
			AudioTokens:  p.AudioTokens,
		}
	}
	if c := u.CompletionTokensDetails; c != nil {
		d.CompletionTokensDetails = submodels.CompletionTokensDetails{
			ReasoningTokens:          c.ReasoningTokens,
			AudioTokens:              c.AudioTokens,
			AcceptedPredictionTokens: c.AcceptedPredictionTokens,
			RejectedPredictionTokens: c.RejectedPredictionTokens,
		}
	}
	return d
}
