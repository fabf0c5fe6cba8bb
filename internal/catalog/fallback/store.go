// Package fallback keeps a process-local, non-authoritative copy of the
// catalog that is served while the database is unreachable. It is seeded
// with a small demo catalog and grows with whatever is written to it; it
// has no eviction and is lost on restart.
package fallback

import (
	"context"
	_ "embed"
	"fmt"
	"sync"
	"time"

	"sonicpods/internal/catalog"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type seedProduct struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Slug        string           `yaml:"slug"`
	Description string           `yaml:"description"`
	Price       int64            `yaml:"price"`
	Discount    int64            `yaml:"discount"`
	Stock       int              `yaml:"stock"`
	Image       string           `yaml:"image"`
	Brand       string           `yaml:"brand"`
	Type        string           `yaml:"type"`
	Colors      []string         `yaml:"colors"`
	Features    catalog.Features `yaml:"features"`
	AgeDays     int              `yaml:"age_days"`
}

type seedFile struct {
	Categories []catalog.Category `yaml:"categories"`
	Products   []seedProduct      `yaml:"products"`
}

// Store is safe for concurrent use. Writes to the same id are
// last-write-wins.
type Store struct {
	mu         sync.RWMutex
	products   map[string]catalog.Product
	categories []catalog.Category
	seed       seedFile
	now        func() time.Time
}

// New builds a store holding the embedded demo catalog.
func New() (*Store, error) {
	var seed seedFile
	if err := yaml.Unmarshal(seedYAML, &seed); err != nil {
		return nil, fmt.Errorf("parse fallback seed: %w", err)
	}
	s := &Store{seed: seed, now: time.Now}
	s.Reset()
	return s, nil
}

// Reset drops everything written since construction and restores the demo
// catalog.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	seededAt := s.now().UTC()
	s.products = make(map[string]catalog.Product, len(s.seed.Products))
	for _, sp := range s.seed.Products {
		created := seededAt.Add(-time.Duration(sp.AgeDays) * 24 * time.Hour)
		images := []string{}
		if sp.Image != "" {
			images = append(images, sp.Image)
		}
		s.products[sp.ID] = catalog.Product{
			ID:          sp.ID,
			Slug:        sp.Slug,
			Name:        sp.Name,
			Description: sp.Description,
			Price:       sp.Price,
			Discount:    sp.Discount,
			Stock:       sp.Stock,
			Brand:       sp.Brand,
			Type:        catalog.ProductType(sp.Type),
			Features:    sp.Features,
			Images:      images,
			Image:       sp.Image,
			Colors:      sp.Colors,
			InStock:     true,
			CreatedAt:   created,
			UpdatedAt:   created,
		}
	}
	s.categories = append([]catalog.Category(nil), s.seed.Categories...)
}

func (s *Store) Insert(p catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slugTakenLocked(p.Slug, p.ID) {
		return fmt.Errorf("%w: %s", catalog.ErrSlugConflict, p.Slug)
	}
	s.products[p.ID] = p.Clone()
	return nil
}

func (s *Store) Update(p catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; !ok {
		return catalog.ErrNotFound
	}
	if s.slugTakenLocked(p.Slug, p.ID) {
		return fmt.Errorf("%w: %s", catalog.ErrSlugConflict, p.Slug)
	}
	s.products[p.ID] = p.Clone()
	return nil
}

// RenameSlugs applies every change or none. Uniqueness is checked against
// the final state, so slugs may be swapped between products.
func (s *Store) RenameSlugs(changes []catalog.SlugChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	final := make(map[string]string, len(s.products))
	for id, p := range s.products {
		final[id] = p.Slug
	}
	for _, c := range changes {
		if _, ok := final[c.ID]; !ok {
			return fmt.Errorf("rename product %s: %w", c.ID, catalog.ErrNotFound)
		}
		final[c.ID] = c.NewSlug
	}
	owner := make(map[string]string, len(final))
	for id, sl := range final {
		if other, taken := owner[sl]; taken {
			return fmt.Errorf("%w: %s held by %s and %s", catalog.ErrSlugConflict, sl, other, id)
		}
		owner[sl] = id
	}

	now := s.now().UTC()
	for _, c := range changes {
		p := s.products[c.ID]
		p.Slug = c.NewSlug
		p.UpdatedAt = now
		s.products[c.ID] = p
	}
	return nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) Get(id string) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *Store) GetBySlug(slug string) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.Slug == slug {
			return p.Clone(), nil
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

// Lookup resolves key as an id first and as a slug second.
func (s *Store) Lookup(key string) (catalog.Product, error) {
	if p, err := s.Get(key); err == nil {
		return p, nil
	}
	return s.GetBySlug(key)
}

// SlugExists satisfies slug.Lookup.
func (s *Store) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slugTakenLocked(slug, excludeID), nil
}

// All returns every product, newest first.
func (s *Store) All() []catalog.Product {
	s.mu.RLock()
	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p.Clone())
	}
	s.mu.RUnlock()

	catalog.SortProducts(out, catalog.SortNewest)
	return out
}

// List evaluates filter exactly as the query service would against the
// database.
func (s *Store) List(filter catalog.Filter) []catalog.Product {
	return filter.Apply(s.All())
}

func (s *Store) Categories() []catalog.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]catalog.Category(nil), s.categories...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

func (s *Store) slugTakenLocked(slug, excludeID string) bool {
	for id, p := range s.products {
		if p.Slug == slug && (excludeID == "" || id != excludeID) {
			return true
		}
	}
	return false
}
