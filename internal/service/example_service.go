package service

import (
	"context"
	"strings"

	"github.com/storefront-labs/storefront-api/internal/domain"
	"github.com/storefront-labs/storefront-api/internal/repository"
)

// ExampleService manages the demo examples collection.
type ExampleService struct {
	examples repository.ExampleRepository
}

// ExampleInput carries example fields; nil leaves a field unchanged on update.
type ExampleInput struct {
	Title       *string
	Description *string
}

// NewExampleService constructs the service.
func NewExampleService(examples repository.ExampleRepository) *ExampleService {
	return &ExampleService{examples: examples}
}

func (s *ExampleService) List(ctx context.Context, req PageRequest) ([]domain.Example, error) {
	req = req.normalize()
	return s.examples.List(ctx, req.Limit, req.offset())
}

func (s *ExampleService) Get(ctx context.Context, id string) (*domain.Example, error) {
	example, err := s.examples.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	return example, nil
}

func (s *ExampleService) Create(ctx context.Context, actorID string, in ExampleInput) (*domain.Example, error) {
	example := &domain.Example{CreatedBy: &actorID}
	if err := applyExample(example, in, true); err != nil {
		return nil, err
	}
	if err := s.examples.Create(ctx, example); err != nil {
		return nil, err
	}
	return example, nil
}

func (s *ExampleService) Update(ctx context.Context, id string, in ExampleInput) (*domain.Example, error) {
	example, err := s.examples.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	if err := applyExample(example, in, false); err != nil {
		return nil, err
	}
	if err := s.examples.Update(ctx, example); err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	return example, nil
}

func (s *ExampleService) Delete(ctx context.Context, id string) error {
	return notFound(s.examples.Delete(ctx, id), domain.ErrNotFound)
}

func applyExample(example *domain.Example, in ExampleInput, requireTitle bool) error {
	if in.Title != nil {
		example.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		example.Description = strings.TrimSpace(*in.Description)
	}
	if (requireTitle || in.Title != nil) && example.Title == "" {
		return domain.NewValidation("Title is required", "title")
	}
	return nil
}
