package service

import (
	"context"

	"sonicpods/internal/catalog"
	"sonicpods/internal/catalog/fallback"
)

// fallbackRepository serves the Repository contract from the in-process
// store so that every operation can be replayed against it unchanged.
type fallbackRepository struct {
	store *fallback.Store
}

func (r fallbackRepository) List(_ context.Context, f catalog.Filter) ([]catalog.Product, error) {
	f.MinPrice, f.MaxPrice = nil, nil
	f.Page, f.Limit = 0, 0
	return r.store.List(f), nil
}

func (r fallbackRepository) ListMissingSEO(context.Context) ([]catalog.Product, error) {
	all := r.store.All()
	out := make([]catalog.Product, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].SEO.MissingMeta() {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (r fallbackRepository) Get(_ context.Context, key string) (catalog.Product, error) {
	return r.store.Lookup(key)
}

func (r fallbackRepository) GetByID(_ context.Context, id string) (catalog.Product, error) {
	return r.store.Get(id)
}

func (r fallbackRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return r.store.SlugExists(ctx, slug, excludeID)
}

func (r fallbackRepository) Create(_ context.Context, p catalog.Product) (catalog.Product, error) {
	if err := r.store.Insert(p); err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

func (r fallbackRepository) Update(_ context.Context, p catalog.Product) (catalog.Product, error) {
	if err := r.store.Update(p); err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

func (r fallbackRepository) RenameSlugs(_ context.Context, changes []catalog.SlugChange) error {
	return r.store.RenameSlugs(changes)
}

func (r fallbackRepository) Delete(_ context.Context, id string) error {
	return r.store.Delete(id)
}

func (r fallbackRepository) ListCategories(context.Context) ([]catalog.Category, error) {
	return r.store.Categories(), nil
}
