// Package catalog manages the menu: product CRUD, recommendations and
// product images.
package catalog

import (
	"context"
	"fmt"
	"strings"

	appactivity "github.com/tehraja/backend/internal/application/activity"
	appinv "github.com/tehraja/backend/internal/application/inventory"
	"github.com/tehraja/backend/internal/domain/activity"
	"github.com/tehraja/backend/internal/domain/catalog"
	"github.com/tehraja/backend/internal/domain/recommendation"
	"github.com/tehraja/backend/internal/domain/shared"
	"github.com/tehraja/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ProductServiceConfig holds catalog defaults
type ProductServiceConfig struct {
	DefaultMinStock    int
	RecommendationTopN int
}

// ProductService handles product-related business operations
type ProductService struct {
	products  catalog.ProductRepository
	txScope   appinv.TransactionScope
	logs      *appactivity.LogService
	publisher shared.EventPublisher
	images    ImageStorage
	config    ProductServiceConfig
	logger    *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	products catalog.ProductRepository,
	txScope appinv.TransactionScope,
	logs *appactivity.LogService,
	publisher shared.EventPublisher,
	config ProductServiceConfig,
	logger *zap.Logger,
) *ProductService {
	if config.RecommendationTopN <= 0 {
		config.RecommendationTopN = recommendation.DefaultTopN
	}
	return &ProductService{
		products:  products,
		txScope:   txScope,
		logs:      logs,
		publisher: publisher,
		config:    config,
		logger:    logger,
	}
}

// SetImageStorage enables image uploads
func (s *ProductService) SetImageStorage(images ImageStorage) {
	s.images = images
}

// Create creates a new product. A caller-supplied id must never have been
// used before, retired products included.
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest, actor string) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "create")
	defer span.End()

	category, err := catalog.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	minStock := s.config.DefaultMinStock
	if req.MinStockThreshold != nil {
		minStock = *req.MinStockThreshold
	}

	product, err := catalog.NewProduct(catalog.ProductInput{
		ID:                req.ID,
		Name:              req.Name,
		Price:             req.Price,
		Description:       req.Description,
		ImageURL:          req.ImageURL,
		Category:          category,
		Taste:             req.Taste.ToDomain(),
		Stock:             req.Stock,
		MinStockThreshold: minStock,
	})
	if err != nil {
		return nil, err
	}

	if err := s.insert(ctx, product, fmt.Sprintf("Created %s (%s)", product.Name, product.ID), actor); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// insert stores a new product with its log entry in one transaction
func (s *ProductService) insert(ctx context.Context, product *catalog.Product, details, actor string) error {
	var entry activity.Entry
	err := s.txScope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		exists, err := repos.Products().ExistsByID(ctx, product.ID)
		if err != nil {
			return shared.NewPersistenceError("check product id", err)
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Product id "+product.ID+" is already in use or retired")
		}
		if err := repos.Products().Create(ctx, product); err != nil {
			if shared.IsCode(err, shared.CodeAlreadyExists) {
				return err
			}
			return shared.NewPersistenceError("create product", err)
		}
		entry, err = s.logs.AppendWith(ctx, repos.Activity(), activity.ActionCreateProduct, details, actor)
		return err
	})
	if err != nil {
		return err
	}

	s.publishEvents(ctx, product)
	s.logs.Announce(ctx, entry)
	s.logger.Info("Product created", zap.String("product_id", product.ID), zap.String("actor", actor))
	return nil
}

// Update applies a partial update. Only supplied fields are written, so
// concurrent edits of different fields both survive.
func (s *ProductService) Update(ctx context.Context, id string, req UpdateProductRequest, actor string) (*ProductResponse, error) {
	patch, err := req.ToPatch()
	if err != nil {
		return nil, err
	}
	return s.applyPatch(ctx, id, patch, actor)
}

func (s *ProductService) applyPatch(ctx context.Context, id string, patch catalog.ProductPatch, actor string) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "update", telemetry.SpanAttrProductID, id)
	defer span.End()

	if patch.IsEmpty() {
		return nil, shared.NewValidationError("No fields to update")
	}

	product, entry, err := s.mutate(ctx, id, actor, func(p *catalog.Product) (activity.Action, string, error) {
		if err := p.Apply(patch); err != nil {
			return "", "", err
		}
		return activity.ActionUpdateProduct, fmt.Sprintf("Updated %s: %s", p.Name, strings.Join(patchFields(patch), ", ")), nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, product)
	s.logs.Announce(ctx, entry)
	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete retires a product. It disappears from the catalog but its id is
// never reused and past orders keep their snapshot of it.
func (s *ProductService) Delete(ctx context.Context, id string, actor string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "delete", telemetry.SpanAttrProductID, id)
	defer span.End()

	product, entry, err := s.mutate(ctx, id, actor, func(p *catalog.Product) (activity.Action, string, error) {
		if err := p.MarkDeleted(); err != nil {
			return "", "", err
		}
		return activity.ActionDeleteProduct, fmt.Sprintf("Deleted %s (%s)", p.Name, p.ID), nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.publishEvents(ctx, product)
	s.logs.Announce(ctx, entry)
	s.logger.Info("Product deleted", zap.String("product_id", id), zap.String("actor", actor))
	return nil
}

// mutate locks one live product, applies fn and saves it with the log entry
// fn describes, all in one transaction
func (s *ProductService) mutate(
	ctx context.Context,
	id, actor string,
	fn func(p *catalog.Product) (activity.Action, string, error),
) (*catalog.Product, activity.Entry, error) {
	var (
		product *catalog.Product
		entry   activity.Entry
	)
	err := s.txScope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		locked, err := repos.Products().FindByIDsForUpdate(ctx, []string{id})
		if err != nil {
			return shared.NewPersistenceError("load product", err)
		}
		if len(locked) == 0 || locked[0].IsDeleted() {
			return shared.ErrNotFound
		}
		product = &locked[0]

		action, details, err := fn(product)
		if err != nil {
			return err
		}
		if err := repos.Products().Save(ctx, product); err != nil {
			return shared.NewPersistenceError("save product", err)
		}
		entry, err = s.logs.AppendWith(ctx, repos.Activity(), action, details, actor)
		return err
	})
	if err != nil {
		return nil, activity.Entry{}, err
	}
	return product, entry, nil
}

// GetByID returns a live product
func (s *ProductService) GetByID(ctx context.Context, id string) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if shared.IsCode(err, shared.CodeNotFound) {
			return nil, err
		}
		return nil, shared.NewPersistenceError("load product", err)
	}
	if product.IsDeleted() {
		return nil, shared.ErrNotFound
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List returns products in catalog order
func (s *ProductService) List(ctx context.Context, req ListProductsRequest) ([]ProductResponse, error) {
	filter := catalog.ProductFilter{
		Search:         req.Search,
		OnlyAvailable:  req.Available,
		OnlyLowStock:   req.LowStock,
		IncludeDeleted: req.IncludeDeleted,
	}
	if req.Category != "" {
		c, err := catalog.ParseCategory(req.Category)
		if err != nil {
			return nil, err
		}
		filter.Category = c
	}
	products, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, shared.NewPersistenceError("load catalog", err)
	}
	return ToProductResponses(products), nil
}

// Recommend ranks the live catalog against a taste preference. The catalog
// is always read from the store, never from a cache.
func (s *ProductService) Recommend(ctx context.Context, req RecommendRequest) ([]RecommendationResponse, error) {
	pref, err := catalog.NewTasteVector(req.Sweet, req.Creamy, req.Fruity)
	if err != nil {
		return nil, err
	}
	topN := req.TopN
	if topN <= 0 {
		topN = s.config.RecommendationTopN
	}
	products, err := s.products.FindAll(ctx, catalog.ProductFilter{})
	if err != nil {
		return nil, shared.NewPersistenceError("load catalog", err)
	}
	return ToRecommendationResponses(recommendation.Recommend(pref, products, topN)), nil
}

// SeedMenu creates the default menu when the catalog has never held a
// product. Returns the number of products created.
func (s *ProductService) SeedMenu(ctx context.Context, stock, minStock int, actor string) (int, error) {
	existing, err := s.products.FindAll(ctx, catalog.ProductFilter{IncludeDeleted: true})
	if err != nil {
		return 0, shared.NewPersistenceError("load catalog", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	created := 0
	for _, in := range catalog.DefaultMenu(stock, minStock) {
		product, err := catalog.NewProduct(in)
		if err != nil {
			return created, err
		}
		if err := s.insert(ctx, product, "Seeded "+product.Name, actor); err != nil {
			return created, err
		}
		created++
	}
	s.logger.Info("Default menu seeded", zap.Int("products", created))
	return created, nil
}

// Snapshot returns the visible catalog, for realtime subscribers
func (s *ProductService) Snapshot(ctx context.Context, _ string) (any, error) {
	return s.List(ctx, ListProductsRequest{})
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	events := product.GetDomainEvents()
	product.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish product events", zap.String("product_id", product.ID), zap.Error(err))
	}
}

func patchFields(p catalog.ProductPatch) []string {
	var fields []string
	if p.Name != nil {
		fields = append(fields, "name")
	}
	if p.Price != nil {
		fields = append(fields, "price")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.ImageURL != nil {
		fields = append(fields, "image")
	}
	if p.Category != nil {
		fields = append(fields, "category")
	}
	if p.Taste != nil {
		fields = append(fields, "taste")
	}
	if p.Stock != nil {
		fields = append(fields, fmt.Sprintf("stock=%d", *p.Stock))
	}
	if p.MinStockThreshold != nil {
		fields = append(fields, "min stock")
	}
	return fields
}
