package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/storefront-labs/storefront-api/internal/ai"
	"github.com/storefront-labs/storefront-api/internal/domain"
)

const (
	chatCatalogueSize = 20
	maxChatHistory    = 20
	maxChatMessage    = 2000
)

// Generator produces an assistant reply for a transcript.
type Generator interface {
	Generate(ctx context.Context, system string, history []ai.Turn, message string) (string, error)
}

// ChatService answers shopper questions grounded on the catalogue.
type ChatService struct {
	generator Generator
	products  *ProductService
}

// NewChatService constructs the service. A nil generator disables chat.
func NewChatService(generator Generator, products *ProductService) *ChatService {
	return &ChatService{generator: generator, products: products}
}

// Reply sends message with the trailing part of history to the model.
func (s *ChatService) Reply(ctx context.Context, message string, history []ai.Turn) (string, error) {
	if s.generator == nil {
		return "", domain.ErrNotConfigured
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", domain.NewValidation("Message is required", "message")
	}
	if len([]rune(message)) > maxChatMessage {
		return "", domain.NewValidation("Message is too long", "message")
	}
	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}

	system, err := s.systemPrompt(ctx)
	if err != nil {
		return "", err
	}
	return s.generator.Generate(ctx, system, history, message)
}

func (s *ChatService) systemPrompt(ctx context.Context) (string, error) {
	var b strings.Builder
	b.WriteString("You are a friendly shopping assistant for an online store. ")
	b.WriteString("Answer briefly and only recommend products from this catalogue.\n\nCatalogue:\n")

	products, _, err := s.products.List(ctx, ProductQuery{PageRequest: PageRequest{Page: 1, Limit: chatCatalogueSize}})
	if err != nil {
		return "", fmt.Errorf("load catalogue: %w", err)
	}
	if len(products) == 0 {
		b.WriteString("(no products available yet)\n")
	}
	for _, p := range products {
		fmt.Fprintf(&b, "- %s: %s %s", p.Name, p.Price.StringFixed(2), p.Currency)
		if p.Description != "" {
			fmt.Fprintf(&b, " (%s)", p.Description)
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
