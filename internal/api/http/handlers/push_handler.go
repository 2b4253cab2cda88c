package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/storefront-labs/storefront-api/internal/api/dto"
	"github.com/storefront-labs/storefront-api/internal/domain"
	"github.com/storefront-labs/storefront-api/internal/service"
)

// PushHandler manages web push subscriptions.
type PushHandler struct {
	push *service.PushService
}

// NewPushHandler constructs handler.
func NewPushHandler(push *service.PushService) *PushHandler {
	return &PushHandler{push: push}
}

// VAPIDKey handles GET /push/vapid-key.
func (h *PushHandler) VAPIDKey(c *fiber.Ctx) error {
	key, err := h.push.VAPIDPublicKey()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"publicKey": key})
}

// Subscribe handles POST /push/subscribe.
func (h *PushHandler) Subscribe(c *fiber.Ctx) error {
	var req dto.PushSubscribeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requireFields("endpoint", req.Endpoint, "keys.p256dh", req.Keys.P256dh, "keys.auth", req.Keys.Auth); err != nil {
		return err
	}
	if _, err := h.push.Subscribe(c.UserContext(), domain.PushSubscription{
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "Subscribed to push notifications"})
}

// Unsubscribe handles POST /push/unsubscribe.
func (h *PushHandler) Unsubscribe(c *fiber.Ctx) error {
	var req dto.PushUnsubscribeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requireFields("endpoint", req.Endpoint); err != nil {
		return err
	}
	if err := h.push.Unsubscribe(c.UserContext(), req.Endpoint); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Unsubscribed from push notifications"})
}

// SendTest handles POST /push/send-test.
func (h *PushHandler) SendTest(c *fiber.Ctx) error {
	var req dto.PushSendRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	msg := domain.PushMessage{Title: req.Title, Body: req.Body, URL: req.URL}
	if msg.Title == "" {
		msg.Title = "Test notification"
	}
	if msg.Body == "" {
		msg.Body = "Push notifications are working."
	}

	report, err := h.push.Broadcast(c.UserContext(), msg)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Test notification sent",
		"sent":    report.Sent,
		"failed":  report.Failed,
		"removed": report.Removed,
	})
}
