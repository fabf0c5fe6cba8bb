package fallback

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"sonicpods/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	return s
}

func product(id, name, slug string, price int64) catalog.Product {
	return catalog.Product{
		ID:        id,
		Name:      name,
		Slug:      slug,
		Price:     price,
		Brand:     catalog.DefaultBrand,
		Type:      catalog.TypeWireless,
		Colors:    []string{catalog.DefaultColor},
		InStock:   true,
		CreatedAt: time.Now().UTC(),
	}
}

func TestNew_SeedsDemoCatalog(t *testing.T) {
	s := newStore(t)

	all := s.All()
	require.Len(t, all, 6)
	assert.Equal(t, "sonicpods-pro-max", all[0].Slug, "newest seed first")
	assert.Len(t, s.Categories(), 5)

	for _, p := range all {
		require.NoError(t, p.Validate(), p.Name)
		assert.True(t, p.InStock)
	}

	pro, err := s.GetBySlug("sonicpods-pro-max")
	require.NoError(t, err)
	assert.Equal(t, catalog.BoolFeature(true), pro.Features[catalog.FeatureNoiseCancellation])
	assert.Equal(t, catalog.StringFeature("5.3"), pro.Features[catalog.FeatureBluetoothVersion])
}

func TestStore_InsertAndLookup(t *testing.T) {
	s := newStore(t)
	p := product("a1", "Test Buds", "test-buds", 5000)

	require.NoError(t, s.Insert(p))

	byID, err := s.Get("a1")
	require.NoError(t, err)
	bySlug, err := s.GetBySlug("test-buds")
	require.NoError(t, err)
	assert.Equal(t, byID, bySlug)

	viaLookup, err := s.Lookup("test-buds")
	require.NoError(t, err)
	assert.Equal(t, "a1", viaLookup.ID)

	_, err = s.Lookup("missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestStore_InsertRejectsSlugHeldByOtherID(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Insert(product("a1", "Test Buds", "test-buds", 5000)))

	err := s.Insert(product("a2", "Test Buds", "test-buds", 5000))
	assert.ErrorIs(t, err, catalog.ErrSlugConflict)

	// Same id overwrites.
	again := product("a1", "Test Buds v2", "test-buds", 6000)
	require.NoError(t, s.Insert(again))
	got, err := s.Get("a1")
	require.NoError(t, err)
	assert.Equal(t, int64(6000), got.Price)
}

func TestStore_SlugExistsHonoursExclude(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Insert(product("a1", "Test Buds", "test-buds", 5000)))
	ctx := context.Background()

	taken, err := s.SlugExists(ctx, "test-buds", "")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = s.SlugExists(ctx, "test-buds", "a1")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestStore_UpdateDelete(t *testing.T) {
	s := newStore(t)
	p := product("a1", "Test Buds", "test-buds", 5000)
	require.NoError(t, s.Insert(p))

	p.Name = "Test Buds Max"
	p.Slug = "test-buds-max"
	require.NoError(t, s.Update(p))
	_, err := s.GetBySlug("test-buds")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	assert.ErrorIs(t, s.Update(product("zz", "Ghost", "ghost", 1)), catalog.ErrNotFound)

	require.NoError(t, s.Delete("a1"))
	assert.ErrorIs(t, s.Delete("a1"), catalog.ErrNotFound)

	// Freed slug can be reused.
	require.NoError(t, s.Insert(product("a2", "Test Buds Max", "test-buds-max", 1)))
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := newStore(t)
	p := product("a1", "Test Buds", "test-buds", 5000)
	require.NoError(t, s.Insert(p))

	got, err := s.Get("a1")
	require.NoError(t, err)
	got.Colors[0] = "Mutated"

	again, err := s.Get("a1")
	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultColor, again.Colors[0])
}

func TestStore_Reset(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Insert(product("a1", "Test Buds", "test-buds", 5000)))
	require.NoError(t, s.Delete("3f2b9c1e-5d4a-4f7b-8e21-0c9d6a100001"))

	s.Reset()

	assert.Equal(t, 6, s.Len())
	_, err := s.Get("a1")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestStore_List(t *testing.T) {
	s := newStore(t)

	tests := []struct {
		name   string
		filter catalog.Filter
		check  func(t *testing.T, got []catalog.Product)
	}{
		{
			name:   "budget bucket",
			filter: catalog.Filter{Category: catalog.ParseCategory("budget")},
			check: func(t *testing.T, got []catalog.Product) {
				require.NotEmpty(t, got)
				for _, p := range got {
					assert.LessOrEqual(t, p.Price, catalog.BudgetMaxPrice)
				}
			},
		},
		{
			name:   "premium bucket",
			filter: catalog.Filter{Category: catalog.ParseCategory("premium")},
			check: func(t *testing.T, got []catalog.Product) {
				require.Len(t, got, 2)
				for _, p := range got {
					assert.GreaterOrEqual(t, p.Price, catalog.PremiumMinPrice)
				}
			},
		},
		{
			name:   "category alias of type",
			filter: catalog.Filter{Category: catalog.ParseCategory("anc")},
			check: func(t *testing.T, got []catalog.Product) {
				require.Len(t, got, 2)
				for _, p := range got {
					assert.Equal(t, catalog.TypeANC, p.Type)
				}
			},
		},
		{
			name:   "featured means discounted",
			filter: catalog.Filter{Featured: true},
			check: func(t *testing.T, got []catalog.Product) {
				require.Len(t, got, 4)
				for _, p := range got {
					assert.Positive(t, p.Discount)
				}
			},
		},
		{
			name:   "brand is case-insensitive substring",
			filter: catalog.Filter{Brand: "sonic"},
			check: func(t *testing.T, got []catalog.Product) {
				assert.Len(t, got, 6)
			},
		},
		{
			name:   "price ascending",
			filter: catalog.Filter{Sort: catalog.SortPriceAsc},
			check: func(t *testing.T, got []catalog.Product) {
				for i := 1; i < len(got); i++ {
					assert.LessOrEqual(t, got[i-1].Price, got[i].Price)
				}
			},
		},
		{
			name:   "slug exact match",
			filter: catalog.Filter{Slug: "airbuds-lite"},
			check: func(t *testing.T, got []catalog.Product) {
				require.Len(t, got, 1)
				assert.Equal(t, "AirBuds Lite", got[0].Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, s.List(tt.filter))
		})
	}
}

func TestStore_ConcurrentInserts(t *testing.T) {
	s := newStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("id-%d", i)
			_ = s.Insert(product(id, "Buds", fmt.Sprintf("buds-%d", i), 100))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 56, s.Len())
}

func TestStore_RenameSlugsSwapsAtomically(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Insert(product("a1", "Buds", "buds-1", 1)))
	require.NoError(t, s.Insert(product("a2", "Buds", "buds", 1)))

	err := s.RenameSlugs([]catalog.SlugChange{
		{ID: "a1", OldSlug: "buds-1", NewSlug: "buds"},
		{ID: "a2", OldSlug: "buds", NewSlug: "buds-1"},
	})
	require.NoError(t, err)

	a1, err := s.Get("a1")
	require.NoError(t, err)
	assert.Equal(t, "buds", a1.Slug)

	err = s.RenameSlugs([]catalog.SlugChange{{ID: "a1", NewSlug: "airbuds-lite"}})
	assert.ErrorIs(t, err, catalog.ErrSlugConflict)
	a1, _ = s.Get("a1")
	assert.Equal(t, "buds", a1.Slug, "failed batch leaves state untouched")

	err = s.RenameSlugs([]catalog.SlugChange{{ID: "missing", NewSlug: "x"}})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
