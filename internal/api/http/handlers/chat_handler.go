package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/storefront-labs/storefront-api/internal/ai"
	"github.com/storefront-labs/storefront-api/internal/api/dto"
	"github.com/storefront-labs/storefront-api/internal/service"
)

// ChatHandler serves the shopping assistant.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler constructs handler.
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Chat handles POST /ai/chat.
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requireFields("message", req.Message); err != nil {
		return err
	}
	history := make([]ai.Turn, 0, len(req.History))
	for _, t := range req.History {
		history = append(history, ai.Turn{Role: t.Role, Text: t.Text})
	}

	reply, err := h.chat.Reply(c.UserContext(), req.Message, history)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Reply generated", "reply": reply})
}
