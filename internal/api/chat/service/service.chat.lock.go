package chatsvc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"talking_menu/internal/common"
	"talking_menu/internal/logger"
)

// ChatLocker giữ khóa theo chat để hai message của cùng một chat không chạy song song
type ChatLocker interface {
	Acquire(ctx context.Context, chatID string) (release func(), err error)
}

// NoopLocker không khóa gì (khi chưa cấu hình Redis)
type NoopLocker struct{}

// Acquire luôn thành công
func (NoopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

// chỉ xóa key khi token còn là của mình
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisChatLocker khóa bằng SET NX PX trên Redis
type RedisChatLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

var _ ChatLocker = (*RedisChatLocker)(nil)

// NewRedisChatLocker tạo RedisChatLocker; ttl là thời gian tối đa một lượt chat giữ khóa
func NewRedisChatLocker(client redis.UniversalClient, ttl time.Duration) *RedisChatLocker {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisChatLocker{client: client, ttl: ttl, prefix: "talking_menu:chat_lock:"}
}

// Acquire lấy khóa của chatID, trả về ErrChatBusy nếu đang có người giữ
func (l *RedisChatLocker) Acquire(ctx context.Context, chatID string) (func(), error) {
	key := l.prefix + chatID
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, common.NewError(common.ErrCodeInternalServer, "Chat lock unavailable", common.StatusServiceUnavailable, err)
	}
	if !ok {
		return nil, common.ErrChatBusy
	}

	return func() {
		// ctx của request có thể đã bị hủy
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			logger.GetAppLogger().WithError(err).WithField("chat_id", chatID).Warn("Không thể nhả khóa chat")
		}
	}, nil
}
