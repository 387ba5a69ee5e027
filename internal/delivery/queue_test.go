package delivery

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"talking_menu/internal/delivery/channels"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (s *recordingSender) Send(_ context.Context, recipient string, _ *channels.RenderedTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("smtp down")
	}
	s.sent = append(s.sent, recipient)
	return nil
}

func TestQueue_DeliversInOrder(t *testing.T) {
	sender := &recordingSender{}
	q := NewQueue(sender, 10)
	q.Start(context.Background())

	assert.True(t, q.Enqueue("a@example.com", &channels.RenderedTemplate{Subject: "1"}))
	assert.True(t, q.Enqueue("b@example.com", &channels.RenderedTemplate{Subject: "2"}))
	q.Stop()

	assert.Equal(t, []string{"a@example.com", "b@example.com"}, sender.sent)
}

func TestQueue_DropsWhenFull(t *testing.T) {
	q := NewQueue(&recordingSender{}, 1)
	assert.True(t, q.Enqueue("a@example.com", &channels.RenderedTemplate{}))
	assert.False(t, q.Enqueue("b@example.com", &channels.RenderedTemplate{}))
}

func TestQueue_SendErrorDoesNotStop(t *testing.T) {
	sender := &recordingSender{fail: true}
	q := NewQueue(sender, 10)
	q.Start(context.Background())
	q.Enqueue("a@example.com", &channels.RenderedTemplate{})
	q.Stop()
	assert.Empty(t, sender.sent)
}

type panickySender struct {
	recordingSender
}

func (s *panickySender) Send(ctx context.Context, recipient string, t *channels.RenderedTemplate) error {
	if recipient == "boom@example.com" {
		panic("template nil")
	}
	return s.recordingSender.Send(ctx, recipient, t)
}

func TestQueue_RecoversFromSenderPanic(t *testing.T) {
	sender := &panickySender{}
	q := NewQueue(sender, 10)
	q.Start(context.Background())
	q.Enqueue("boom@example.com", &channels.RenderedTemplate{})
	q.Enqueue("a@example.com", &channels.RenderedTemplate{})
	q.Stop()
	assert.Equal(t, []string{"a@example.com"}, sender.sent)
}

func TestRenderHTML_EscapesCTA(t *testing.T) {
	out := channels.RenderHTML(&channels.RenderedTemplate{
		Content: "<p>Hi</p>",
		CTAs:    []channels.RenderedCTA{{Label: "Open <b>", Action: "https://app.example.com/?a=1&b=2"}},
	})
	assert.Contains(t, out, "<p>Hi</p>")
	assert.Contains(t, out, "Open &lt;b&gt;")
	assert.Contains(t, out, "a=1&amp;b=2")
}
