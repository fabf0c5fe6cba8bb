package service

import (
	"context"
	"fmt"
	"sort"

	"sonicpods/internal/catalog"
	"sonicpods/internal/catalog/seo"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type SEOItem struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Status string     `json:"status"`
	Source seo.Source `json:"source,omitempty"`
	Error  string     `json:"error,omitempty"`
}

type SEOReport struct {
	Updated  int         `json:"updated"`
	Total    int         `json:"total"`
	Results  []SEOItem   `json:"results"`
	Bundle   *seo.Bundle `json:"seo,omitempty"`
	Fallback bool        `json:"-"`
}

// RegenerateSEO rebuilds the SEO bundle of one product, or of every
// product missing a meta title or description when productID is empty.
// Per-product failures are reported, not returned.
func (s *Service) RegenerateSEO(ctx context.Context, productID string) (SEOReport, error) {
	var report SEOReport
	usedFallback, err := s.withFallback(ctx, "generate_seo", func(repo Repository) error {
		report = SEOReport{Results: []SEOItem{}}

		var targets []catalog.Product
		if productID != "" {
			p, err := repo.GetByID(ctx, productID)
			if err != nil {
				return err
			}
			targets = []catalog.Product{p}
		} else {
			list, err := repo.ListMissingSEO(ctx)
			if err != nil {
				return err
			}
			targets = list
		}
		report.Total = len(targets)

		for _, p := range targets {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := s.generateSEO(ctx, seo.InputFor(p))
			p.SEO = res.Bundle.SEO()
			p.UpdatedAt = s.now().UTC()

			item := SEOItem{ID: p.ID, Name: p.Name, Source: res.Source}
			updated, err := repo.Update(ctx, p)
			if err != nil {
				if productID != "" {
					return err
				}
				item.Status = StatusError
				item.Error = err.Error()
				report.Results = append(report.Results, item)
				continue
			}
			s.cache.Invalidate(ctx, updated)
			item.Status = StatusSuccess
			report.Updated++
			report.Results = append(report.Results, item)
			if productID != "" {
				bundle := res.Bundle
				report.Bundle = &bundle
			}
		}
		return nil
	})
	if err != nil {
		return SEOReport{}, fmt.Errorf("regenerate seo: %w", err)
	}
	report.Fallback = usedFallback

	s.logger.Info("seo regenerated",
		"updated", report.Updated,
		"total", report.Total,
		"fallback", usedFallback,
	)
	return report, nil
}

type SlugReport struct {
	Total    int                  `json:"total"`
	Updated  int                  `json:"updated"`
	Changes  []catalog.SlugChange `json:"changes"`
	Fallback bool                 `json:"-"`
}

// RegenerateSlugs recomputes every slug from the product name. Products
// are visited oldest first, so the oldest product keeps the unsuffixed
// slug. All changes are applied together.
func (s *Service) RegenerateSlugs(ctx context.Context) (SlugReport, error) {
	var report SlugReport
	usedFallback, err := s.withFallback(ctx, "regenerate_slugs", func(repo Repository) error {
		all, err := repo.List(ctx, catalog.Filter{})
		if err != nil {
			return err
		}
		sort.SliceStable(all, func(i, j int) bool {
			if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].CreatedAt.Before(all[j].CreatedAt)
			}
			return all[i].ID < all[j].ID
		})

		changes := planSlugs(all)
		report = SlugReport{Total: len(all), Updated: len(changes), Changes: changes}
		if len(changes) == 0 {
			return nil
		}
		return repo.RenameSlugs(ctx, changes)
	})
	if err != nil {
		return SlugReport{}, fmt.Errorf("regenerate slugs: %w", err)
	}
	report.Fallback = usedFallback

	for _, c := range report.Changes {
		s.cache.Invalidate(ctx, catalog.Product{ID: c.ID, Slug: c.OldSlug})
		s.publish(ctx, catalog.EventUpdated, catalog.Product{ID: c.ID, Name: c.Name, Slug: c.NewSlug}, usedFallback)
	}
	s.logger.Info("slugs regenerated",
		"updated", report.Updated,
		"total", report.Total,
		"fallback", usedFallback,
	)
	return report, nil
}

// planSlugs assigns slugs in order, suffixing repeats with -1, -2, ...
func planSlugs(ordered []catalog.Product) []catalog.SlugChange {
	used := make(map[string]bool, len(ordered))
	changes := make([]catalog.SlugChange, 0)
	for _, p := range ordered {
		base := baseSlug(p.Name)
		candidate := base
		for n := 1; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s-%d", base, n)
		}
		used[candidate] = true
		if candidate != p.Slug {
			changes = append(changes, catalog.SlugChange{
				ID:      p.ID,
				Name:    p.Name,
				OldSlug: p.Slug,
				NewSlug: candidate,
			})
		}
	}
	return changes
}

// GenerateSEO builds a bundle for an unsaved product.
func (s *Service) GenerateSEO(ctx context.Context, in seo.Input) seo.Result {
	return s.generateSEO(ctx, in)
}

func (s *Service) GenerateDescription(ctx context.Context, in seo.DescriptionInput) string {
	return s.synth.GenerateDescription(ctx, in)
}
