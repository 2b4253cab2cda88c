package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront-labs/storefront-api/internal/cache"
	"github.com/storefront-labs/storefront-api/internal/domain"
	"github.com/storefront-labs/storefront-api/internal/events"
	"github.com/storefront-labs/storefront-api/internal/repository"
)

const productCacheNamespace = "products"

// maxPrice is the first value the NUMERIC(12, 2) price column cannot hold.
var maxPrice = decimal.New(1, 10)

// ProductService manages the catalogue.
type ProductService struct {
	products   repository.ProductRepository
	cache      *cache.Cache
	cacheTTL   time.Duration
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ProductDependencies encapsulates collaborators for the product service.
type ProductDependencies struct {
	ProductRepo repository.ProductRepository
	Cache       *cache.Cache
	CacheTTL    time.Duration
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// ProductInput carries a full product definition.
type ProductInput struct {
	Name        string
	Price       decimal.Decimal
	Description string
	ImageURL    string
	Currency    string
}

// ProductPatch carries optional product changes.
type ProductPatch struct {
	Name        *string
	Price       *decimal.Decimal
	Description *string
	ImageURL    *string
	Currency    *string
}

// ProductQuery filters the public listing.
type ProductQuery struct {
	Search string
	PageRequest
}

type productListing struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

// NewProductService constructs the service.
func NewProductService(deps ProductDependencies) *ProductService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := deps.Cache
	if c == nil {
		c = cache.New(nil, logger)
	}
	return &ProductService{
		products:   deps.ProductRepo,
		cache:      c,
		cacheTTL:   deps.CacheTTL,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// List returns one page of products, served from cache when possible.
func (s *ProductService) List(ctx context.Context, q ProductQuery) ([]domain.Product, Page, error) {
	req := q.PageRequest.normalize()
	search := strings.ToLower(strings.TrimSpace(q.Search))
	key := fmt.Sprintf("%s:list:%d:%d:%s", s.cache.Namespace(ctx, productCacheNamespace), req.Limit, req.offset(), search)

	raw, err := s.cache.GetOrLoad(ctx, key, s.cacheTTL, func(ctx context.Context) ([]byte, error) {
		products, total, err := s.products.List(ctx, repository.ProductFilter{
			SearchTerm: search,
			Limit:      req.Limit,
			Offset:     req.offset(),
		})
		if err != nil {
			return nil, err
		}
		return json.Marshal(productListing{Products: products, Total: total})
	})
	if err != nil {
		return nil, Page{}, err
	}

	var listing productListing
	if err := json.Unmarshal(raw, &listing); err != nil {
		return nil, Page{}, fmt.Errorf("decode cached products: %w", err)
	}
	return listing.Products, newPage(req, listing.Total), nil
}

// Get returns a product by id.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	return product, nil
}

// Create validates and stores a product, then announces it.
func (s *ProductService) Create(ctx context.Context, actorID string, in ProductInput) (*domain.Product, error) {
	product, err := buildProduct(in)
	if err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.cache.Bump(ctx, productCacheNamespace)
	s.announce(ctx, actorID, product)
	return product, nil
}

// Update applies a partial change to a product.
func (s *ProductService) Update(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}

	in := ProductInput{
		Name:        product.Name,
		Price:       product.Price,
		Description: product.Description,
		ImageURL:    product.ImageURL,
		Currency:    product.Currency,
	}
	if patch.Name != nil {
		in.Name = *patch.Name
	}
	if patch.Price != nil {
		in.Price = *patch.Price
	}
	if patch.Description != nil {
		in.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		in.ImageURL = *patch.ImageURL
	}
	if patch.Currency != nil {
		in.Currency = *patch.Currency
	}

	updated, err := buildProduct(in)
	if err != nil {
		return nil, err
	}
	updated.ID = product.ID
	updated.CreatedAt = product.CreatedAt
	if err := s.products.Update(ctx, updated); err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	s.cache.Bump(ctx, productCacheNamespace)
	return updated, nil
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return notFound(err, domain.ErrNotFound)
	}
	s.cache.Bump(ctx, productCacheNamespace)
	return nil
}

func (s *ProductService) announce(ctx context.Context, actorID string, product *domain.Product) {
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventProductCreated,
		ActorID: actorID,
		Payload: events.ProductCreatedPayload{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price.StringFixed(2),
			Currency:  product.Currency,
		},
	})
}

func buildProduct(in ProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidation("Product name is required", "name")
	}
	if in.Price.IsNegative() {
		return nil, domain.NewValidation("Price must be zero or greater", "price")
	}
	price := in.Price.Round(2)
	if price.GreaterThanOrEqual(maxPrice) {
		return nil, domain.NewValidation("Price must be less than 10000000000", "price")
	}
	currency, err := normalizeCurrency(in.Currency)
	if err != nil {
		return nil, err
	}
	return &domain.Product{
		Name:        name,
		Price:       price,
		Description: strings.TrimSpace(in.Description),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Currency:    currency,
	}, nil
}

func normalizeCurrency(raw string) (string, error) {
	currency := strings.ToUpper(strings.TrimSpace(raw))
	if currency == "" {
		return domain.DefaultCurrency, nil
	}
	if len(currency) != 3 {
		return "", domain.NewValidation("Currency must be a 3-letter ISO code", "currency")
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return "", domain.NewValidation("Currency must be a 3-letter ISO code", "currency")
		}
	}
	return currency, nil
}
