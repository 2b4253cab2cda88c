package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/storefront-labs/storefront-api/internal/api/dto"
	"github.com/storefront-labs/storefront-api/internal/service"
)

// ExampleHandler serves the demo examples collection.
type ExampleHandler struct {
	examples *service.ExampleService
}

// NewExampleHandler constructs handler.
func NewExampleHandler(examples *service.ExampleService) *ExampleHandler {
	return &ExampleHandler{examples: examples}
}

func (h *ExampleHandler) List(c *fiber.Ctx) error {
	examples, err := h.examples.List(c.UserContext(), pageRequest(c))
	if err != nil {
		return err
	}
	items := make([]dto.ExampleResponse, 0, len(examples))
	for i := range examples {
		items = append(items, exampleResponse(&examples[i]))
	}
	return c.JSON(fiber.Map{"message": "Examples retrieved successfully", "examples": items})
}

func (h *ExampleHandler) Get(c *fiber.Ctx) error {
	example, err := h.examples.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Example retrieved successfully", "example": exampleResponse(example)})
}

func (h *ExampleHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ExampleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := requireFields("title", deref(req.Title)); err != nil {
		return err
	}
	example, err := h.examples.Create(c.UserContext(), user.ID, service.ExampleInput{Title: req.Title, Description: req.Description})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "Example created successfully", "example": exampleResponse(example)})
}

func (h *ExampleHandler) Update(c *fiber.Ctx) error {
	var req dto.ExampleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	example, err := h.examples.Update(c.UserContext(), c.Params("id"), service.ExampleInput{Title: req.Title, Description: req.Description})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Example updated successfully", "example": exampleResponse(example)})
}

func (h *ExampleHandler) Delete(c *fiber.Ctx) error {
	if err := h.examples.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Example deleted successfully"})
}
