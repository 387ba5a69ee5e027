// Package delivery gửi thông báo ra ngoài (email) ở background để không chặn request.
package delivery

import (
	"context"
	"sync"

	"talking_menu/internal/delivery/channels"
	"talking_menu/internal/logger"
	"talking_menu/internal/utility"
)

// Sender gửi một thông báo đã render tới recipient
type Sender interface {
	Send(ctx context.Context, recipient string, template *channels.RenderedTemplate) error
}

type queueItem struct {
	recipient string
	template  *channels.RenderedTemplate
}

// Queue là hàng đợi in-process, một goroutine gửi lần lượt từng item
type Queue struct {
	sender Sender
	items  chan queueItem
	wg     sync.WaitGroup
	once   sync.Once
}

// NewQueue tạo mới Queue với sức chứa size
func NewQueue(sender Sender, size int) *Queue {
	if size <= 0 {
		size = 100
	}
	return &Queue{sender: sender, items: make(chan queueItem, size)}
}

// Enqueue thêm thông báo vào queue. Queue đầy thì bỏ item và trả về false.
func (q *Queue) Enqueue(recipient string, template *channels.RenderedTemplate) bool {
	select {
	case q.items <- queueItem{recipient: recipient, template: template}:
		return true
	default:
		logger.GetAppLogger().WithField("recipient", recipient).Warn("📦 [DELIVERY] Queue đầy, bỏ qua thông báo")
		return false
	}
}

// Start chạy goroutine gửi cho tới khi ctx bị hủy hoặc Stop được gọi
func (q *Queue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		log := logger.GetAppLogger()
		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-q.items:
				if !ok {
					return
				}
				utility.GoProtect(func() {
					if err := q.sender.Send(ctx, item.recipient, item.template); err != nil {
						log.WithError(err).WithFields(map[string]interface{}{
							"recipient": item.recipient,
							"subject":   item.template.Subject,
						}).Error("📦 [DELIVERY] Gửi thông báo thất bại")
						return
					}
					log.WithField("recipient", item.recipient).Info("📦 [DELIVERY] Đã gửi thông báo")
				})
			}
		}
	}()
}

// Stop đóng queue và chờ goroutine gửi xong các item còn lại
func (q *Queue) Stop() {
	q.once.Do(func() { close(q.items) })
	q.wg.Wait()
}
