// Package chathdl chứa handler của chatbot relay và các view chat cho quản lý nhà hàng
package chathdl

import (
	"bufio"
	"context"

	"github.com/gofiber/fiber/v3"

	basehdl "talking_menu/internal/api/base/handler"
	chatdto "talking_menu/internal/api/chat/dto"
	chatsvc "talking_menu/internal/api/chat/service"
	"talking_menu/internal/api/middleware"
	"talking_menu/internal/logger"
)

// Header trả về cho client khi stream
const (
	HeaderChatID       = "X-Chat-Id"
	HeaderSessionToken = "X-Session-Token"
)

// ChatHandler xử lý /chat/* và /restaurant/:restaurantId/chats
type ChatHandler struct {
	*basehdl.BaseHandler
	relay *chatsvc.RelayService
	query *chatsvc.QueryService
}

// NewChatHandler tạo ChatHandler
func NewChatHandler(relay *chatsvc.RelayService, query *chatsvc.QueryService) *ChatHandler {
	return &ChatHandler{BaseHandler: basehdl.NewBaseHandler(), relay: relay, query: query}
}

// HandleSendMessage nhận message của thực khách và stream câu trả lời dạng text/plain.
// Lỗi trước khi stream (chatbot tắt, hết token, chat đang bận...) trả về envelope JSON như thường.
func (h *ChatHandler) HandleSendMessage(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input chatdto.SendMessageInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		reqCtx := logger.ContextFromRequest(c)
		sess, err := h.relay.Prepare(reqCtx, middleware.UserFrom(c), &input)
		if err != nil {
			return basehdl.WriteError(c, err)
		}

		c.Set(HeaderChatID, sess.Chat.ID.Hex())
		c.Set(HeaderSessionToken, sess.Chat.SessionToken)
		c.Set("Content-Type", "text/plain; charset=utf-8")
		c.Set("Cache-Control", "no-cache")
		c.Set("X-Accel-Buffering", "no")
		log := logger.WithRequest(c).WithField("chat_id", sess.Chat.ID.Hex())

		// callback chạy sau khi handler trả về, không được dùng c bên trong
		return c.SendStreamWriter(func(w *bufio.Writer) {
			ctx, cancel := context.WithCancel(context.WithoutCancel(reqCtx))
			defer cancel()

			_, err := h.relay.Stream(ctx, sess, func(delta string) error {
				if _, err := w.WriteString(delta); err != nil {
					cancel()
					return err
				}
				if err := w.Flush(); err != nil {
					// client đã ngắt kết nối
					cancel()
					return err
				}
				return nil
			})
			if err != nil {
				log.WithError(err).Warn("Chat stream ended with error")
			}
		})
	})
}

// HandleGetChat trả về transcript. Thực khách ẩn danh gửi session token qua query hoặc header.
func (h *ChatHandler) HandleGetChat(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "chatId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		token := c.Query("sessionToken")
		if token == "" {
			token = c.Get(HeaderSessionToken)
		}
		chat, err := h.query.Get(logger.ContextFromRequest(c), middleware.UserFrom(c), id, token)
		return h.HandleResponse(c, chat, err)
	})
}

func (h *ChatHandler) HandleMarkSeen(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "chatId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		err = h.query.MarkSeen(logger.ContextFromRequest(c), middleware.UserFrom(c), id)
		return h.HandleResponse(c, fiber.Map{"chatId": id.Hex(), "seen": true}, err)
	})
}

func (h *ChatHandler) HandleStar(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "chatId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		var input chatdto.StarInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			return basehdl.WriteError(c, err)
		}
		err = h.query.Star(logger.ContextFromRequest(c), middleware.UserFrom(c), id, *input.Starred)
		return h.HandleResponse(c, &chatdto.StarOutput{ChatID: id.Hex(), Starred: *input.Starred}, err)
	})
}

// HandleListByRestaurant liệt kê chat của nhà hàng (phân trang)
func (h *ChatHandler) HandleListByRestaurant(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.ParseObjectIDParam(c, "restaurantId")
		if err != nil {
			return basehdl.WriteError(c, err)
		}
		var query chatdto.ChatListQuery
		if err := h.ParseRequestQuery(c, &query); err != nil {
			return basehdl.WriteError(c, err)
		}
		out, err := h.query.ListByRestaurant(logger.ContextFromRequest(c), id, query.Page, query.Limit)
		return h.HandleResponse(c, out, err)
	})
}
