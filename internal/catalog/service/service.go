package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sonicpods/internal/catalog"
	"sonicpods/internal/catalog/fallback"
	"sonicpods/internal/catalog/seo"
	"sonicpods/internal/catalog/slug"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// maxSlugAttempts bounds how often a write is retried after losing a slug
// to a concurrent writer.
const maxSlugAttempts = 5

type Repository interface {
	List(ctx context.Context, f catalog.Filter) ([]catalog.Product, error)
	ListMissingSEO(ctx context.Context) ([]catalog.Product, error)
	Get(ctx context.Context, key string) (catalog.Product, error)
	GetByID(ctx context.Context, id string) (catalog.Product, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, p catalog.Product) (catalog.Product, error)
	Update(ctx context.Context, p catalog.Product) (catalog.Product, error)
	RenameSlugs(ctx context.Context, changes []catalog.SlugChange) error
	Delete(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]catalog.Category, error)
}

type Publisher interface {
	Publish(ctx context.Context, event catalog.ProductEvent) error
}

type Cache interface {
	Get(ctx context.Context, key string) (catalog.Product, bool)
	Set(ctx context.Context, p catalog.Product)
	Invalidate(ctx context.Context, versions ...catalog.Product)
}

type Synthesizer interface {
	Generate(ctx context.Context, in seo.Input) seo.Result
	GenerateDescription(ctx context.Context, in seo.DescriptionInput) string
}

type Metrics struct {
	Created      prometheus.Counter
	Deleted      prometheus.Counter
	Fallbacks    *prometheus.CounterVec
	SEOTemplates prometheus.Counter
}

type Deps struct {
	Repo        Repository
	Fallback    *fallback.Store
	Cache       Cache
	Synthesizer Synthesizer
	Publisher   Publisher
	Logger      *slog.Logger
	Metrics     Metrics

	// SEOOnCreate fills the SEO bundle and an empty description when a
	// product is created.
	SEOOnCreate bool
}

type Service struct {
	repo        Repository
	fallback    Repository
	cache       Cache
	synth       Synthesizer
	publisher   Publisher
	logger      *slog.Logger
	metrics     Metrics
	seoOnCreate bool
	now         func() time.Time
}

func New(d Deps) *Service {
	return &Service{
		repo:        d.Repo,
		fallback:    fallbackRepository{store: d.Fallback},
		cache:       d.Cache,
		synth:       d.Synthesizer,
		publisher:   d.Publisher,
		logger:      d.Logger,
		metrics:     d.Metrics,
		seoOnCreate: d.SEOOnCreate,
		now:         time.Now,
	}
}

type ListResult struct {
	Products []catalog.Product
	Fallback bool
}

func (s *Service) List(ctx context.Context, f catalog.Filter) (ListResult, error) {
	if err := f.Validate(); err != nil {
		return ListResult{}, err
	}

	var items []catalog.Product
	usedFallback, err := s.withFallback(ctx, "list", func(repo Repository) error {
		var err error
		items, err = repo.List(ctx, f)
		return err
	})
	if err != nil {
		return ListResult{}, fmt.Errorf("list products: %w", err)
	}

	catalog.SortProducts(items, f.Sort)
	if f.Featured && len(items) > catalog.FeaturedLimit {
		items = items[:catalog.FeaturedLimit]
	}
	return ListResult{Products: f.Paginate(f.ClampPrice(items)), Fallback: usedFallback}, nil
}

type GetResult struct {
	Product  catalog.Product
	Fallback bool
}

// Get resolves key as a product id or slug.
func (s *Service) Get(ctx context.Context, key string) (GetResult, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return GetResult{}, catalog.ErrNotFound
	}
	if p, ok := s.cache.Get(ctx, key); ok {
		return GetResult{Product: p}, nil
	}

	var p catalog.Product
	usedFallback, err := s.withFallback(ctx, "get", func(repo Repository) error {
		var err error
		p, err = repo.Get(ctx, key)
		return err
	})
	if err != nil {
		return GetResult{}, err
	}
	if !usedFallback {
		s.cache.Set(ctx, p)
	}
	return GetResult{Product: p, Fallback: usedFallback}, nil
}

type CreateInput struct {
	Name        string
	Description string
	Price       int64
	Discount    int64
	Stock       int
	Brand       string
	Type        catalog.ProductType
	CategoryID  string
	Features    catalog.Features
	Images      []string
	Image       string
	Colors      []string
	InStock     *bool
}

type CreateResult struct {
	Product      catalog.Product
	SEOGenerated bool
	SEOSource    seo.Source
	Fallback     bool
}

func (s *Service) Create(ctx context.Context, in CreateInput) (CreateResult, error) {
	p := newProduct(in)
	if err := p.Validate(); err != nil {
		return CreateResult{}, err
	}

	var res CreateResult
	if s.seoOnCreate {
		generated := s.generateSEO(ctx, seo.InputFor(p))
		p.SEO = generated.Bundle.SEO()
		if p.Description == "" {
			p.Description = generated.Bundle.ProductDescription
		}
		res.SEOGenerated = true
		res.SEOSource = generated.Source
	}

	p.ID = uuid.NewString()
	now := s.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	base := baseSlug(p.Name)

	var created catalog.Product
	usedFallback, err := s.withFallback(ctx, "create", func(repo Repository) error {
		return s.saveWithSlug(ctx, repo, base, "", func(sl string) error {
			p.Slug = sl
			var err error
			created, err = repo.Create(ctx, p)
			return err
		})
	})
	if err != nil {
		return CreateResult{}, fmt.Errorf("create product: %w", err)
	}

	s.publish(ctx, catalog.EventCreated, created, usedFallback)
	s.metrics.Created.Inc()

	res.Product = created
	res.Fallback = usedFallback
	return res, nil
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	Price       *int64
	Discount    *int64
	Stock       *int
	Brand       *string
	Type        *catalog.ProductType
	CategoryID  *string
	Features    catalog.Features
	Images      []string
	Image       *string
	Colors      []string
	InStock     *bool
	SEO         *catalog.SEO
}

type UpdateResult struct {
	Product  catalog.Product
	Fallback bool
}

// Update applies in to the product. The slug is re-resolved only when the
// name changes, excluding the product itself from the uniqueness check.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (UpdateResult, error) {
	var before, after catalog.Product
	usedFallback, err := s.withFallback(ctx, "update", func(repo Repository) error {
		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		next, err := applyUpdate(current, in)
		if err != nil {
			return err
		}
		next.UpdatedAt = s.now().UTC()

		save := func(sl string) error {
			next.Slug = sl
			var err error
			after, err = repo.Update(ctx, next)
			return err
		}
		before = current
		if next.Name == current.Name {
			return save(current.Slug)
		}
		return s.saveWithSlug(ctx, repo, baseSlug(next.Name), id, save)
	})
	if err != nil {
		return UpdateResult{}, fmt.Errorf("update product %s: %w", id, err)
	}

	s.cache.Invalidate(ctx, before, after)
	s.publish(ctx, catalog.EventUpdated, after, usedFallback)
	return UpdateResult{Product: after, Fallback: usedFallback}, nil
}

type DeleteResult struct {
	Fallback bool
}

// Delete hard-deletes the product; its slug becomes free immediately.
func (s *Service) Delete(ctx context.Context, id string) (DeleteResult, error) {
	var deleted catalog.Product
	usedFallback, err := s.withFallback(ctx, "delete", func(repo Repository) error {
		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		deleted = current
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return DeleteResult{}, fmt.Errorf("delete product %s: %w", id, err)
	}

	s.cache.Invalidate(ctx, deleted)
	s.publish(ctx, catalog.EventDeleted, deleted, usedFallback)
	s.metrics.Deleted.Inc()
	return DeleteResult{Fallback: usedFallback}, nil
}

type CategoriesResult struct {
	Categories []catalog.Category
	Fallback   bool
}

func (s *Service) Categories(ctx context.Context) (CategoriesResult, error) {
	var list []catalog.Category
	usedFallback, err := s.withFallback(ctx, "categories", func(repo Repository) error {
		var err error
		list, err = repo.ListCategories(ctx)
		return err
	})
	if err != nil {
		return CategoriesResult{}, fmt.Errorf("list categories: %w", err)
	}
	return CategoriesResult{Categories: list, Fallback: usedFallback}, nil
}

// withFallback runs op against the store and, if the store itself fails,
// once more against the fallback. Domain errors are returned as they are.
func (s *Service) withFallback(ctx context.Context, operation string, op func(repo Repository) error) (bool, error) {
	err := op(s.repo)
	if err == nil || isDomainError(err) || ctx.Err() != nil {
		return false, err
	}

	s.logger.Warn("catalog store unavailable, using fallback",
		"operation", operation,
		"error", err,
	)
	s.metrics.Fallbacks.WithLabelValues(operation).Inc()

	if ferr := op(s.fallback); ferr != nil {
		if isDomainError(ferr) {
			return true, ferr
		}
		return true, fmt.Errorf("fallback %s: %w (store: %v)", operation, ferr, err)
	}
	return true, nil
}

// saveWithSlug resolves a free variant of base and calls save with it,
// retrying when save loses the slug to a concurrent writer.
func (s *Service) saveWithSlug(ctx context.Context, repo Repository, base, excludeID string, save func(slug string) error) error {
	resolver := slug.NewResolver(repo)
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		candidate, err := resolver.Resolve(ctx, base, excludeID)
		if err != nil {
			return err
		}
		err = save(candidate)
		if !errors.Is(err, catalog.ErrSlugConflict) {
			return err
		}
		s.logger.Info("slug taken concurrently, retrying",
			"slug", candidate,
			"attempt", attempt,
		)
	}
	return fmt.Errorf("%w: %q after %d attempts", catalog.ErrSlugConflict, base, maxSlugAttempts)
}

func (s *Service) generateSEO(ctx context.Context, in seo.Input) seo.Result {
	res := s.synth.Generate(ctx, in)
	if res.Source == seo.SourceTemplate {
		s.metrics.SEOTemplates.Inc()
	}
	return res
}

func (s *Service) publish(ctx context.Context, eventType string, p catalog.Product, usedFallback bool) {
	if err := s.publisher.Publish(ctx, catalog.ProductEvent{
		EventType: eventType,
		ProductID: p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Fallback:  usedFallback,
		Timestamp: s.now().UTC(),
	}); err != nil {
		s.logger.Error("publish "+eventType+" event failed",
			"product_id", p.ID,
			"error", err,
		)
	}
}

func isDomainError(err error) bool {
	return errors.Is(err, catalog.ErrNotFound) ||
		errors.Is(err, catalog.ErrInvalidProduct) ||
		errors.Is(err, catalog.ErrInvalidFilter) ||
		errors.Is(err, catalog.ErrSlugConflict)
}

func baseSlug(name string) string {
	if s := slug.Generate(name); s != "" {
		return s
	}
	return catalog.FallbackSlug
}

func newProduct(in CreateInput) catalog.Product {
	p := catalog.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Discount:    in.Discount,
		Stock:       in.Stock,
		Brand:       strings.TrimSpace(in.Brand),
		Type:        in.Type,
		CategoryID:  strings.TrimSpace(in.CategoryID),
		Features:    in.Features,
		Images:      in.Images,
		Image:       strings.TrimSpace(in.Image),
		Colors:      in.Colors,
		InStock:     true,
	}
	if p.Brand == "" {
		p.Brand = catalog.DefaultBrand
	}
	if p.Type == "" {
		p.Type = catalog.TypeWireless
	}
	if p.Features == nil {
		p.Features = catalog.Features{}
	}
	if len(p.Images) == 0 {
		p.Images = []string{}
		if p.Image != "" {
			p.Images = []string{p.Image}
		}
	}
	if p.Image == "" && len(p.Images) > 0 {
		p.Image = p.Images[0]
	}
	if len(p.Colors) == 0 {
		p.Colors = []string{catalog.DefaultColor}
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	return p.Clone()
}

func applyUpdate(p catalog.Product, in UpdateInput) (catalog.Product, error) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Discount != nil {
		p.Discount = *in.Discount
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Brand != nil {
		p.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.Type != nil {
		p.Type = *in.Type
	}
	if in.CategoryID != nil {
		p.CategoryID = strings.TrimSpace(*in.CategoryID)
	}
	if in.Features != nil {
		p.Features = in.Features
	}
	if in.Images != nil {
		p.Images = in.Images
	}
	if in.Image != nil {
		p.Image = strings.TrimSpace(*in.Image)
	}
	if in.Colors != nil {
		p.Colors = in.Colors
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	if in.SEO != nil {
		p.SEO = *in.SEO
	}
	if p.Brand == "" {
		p.Brand = catalog.DefaultBrand
	}
	if err := p.Validate(); err != nil {
		return catalog.Product{}, err
	}
	return p.Clone(), nil
}
