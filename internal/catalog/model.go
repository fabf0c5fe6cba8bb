package catalog

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound       = errors.New("product not found")
	ErrInvalidProduct = errors.New("invalid product")
	ErrInvalidFilter  = errors.New("invalid filter")
	ErrSlugConflict   = errors.New("slug already in use")
)

const (
	DefaultBrand = "SonicPods"
	DefaultColor = "Black"

	// FallbackSlug replaces names that normalize to nothing.
	FallbackSlug = "product"
)

type ProductType string

const (
	TypeWireless ProductType = "wireless"
	TypeGaming   ProductType = "gaming"
	TypeANC      ProductType = "anc"
)

var productTypes = []ProductType{TypeWireless, TypeGaming, TypeANC}

func ProductTypes() []ProductType {
	out := make([]ProductType, len(productTypes))
	copy(out, productTypes)
	return out
}

func (t ProductType) Valid() bool {
	for _, known := range productTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Label is the human-readable product line used in copy and SEO text.
func (t ProductType) Label() string {
	switch t {
	case TypeWireless:
		return "Wireless Earbuds"
	case TypeGaming:
		return "Gaming Earbuds"
	case TypeANC:
		return "ANC Earbuds"
	default:
		return "Earbuds"
	}
}

type Product struct {
	ID          string      `json:"id" example:"0b7c6a52-63f6-4c55-9b59-5bb0f3c1f8a2"`
	Slug        string      `json:"slug" example:"sonicpods-pro-max"`
	Name        string      `json:"name" example:"SonicPods Pro Max"`
	Description string      `json:"description"`
	Price       int64       `json:"price" example:"24999"`
	Discount    int64       `json:"discount" example:"2000"`
	Stock       int         `json:"stock" example:"25"`
	Brand       string      `json:"brand" example:"SonicPods"`
	Type        ProductType `json:"type" example:"anc"`
	CategoryID  string      `json:"category_id,omitempty"`
	Features    Features    `json:"features" swaggertype:"object"`
	Images      []string    `json:"images"`
	Image       string      `json:"image,omitempty"`
	Colors      []string    `json:"colors"`
	InStock     bool        `json:"in_stock"`
	SEO         SEO         `json:"seo"`
	CreatedAt   time.Time   `json:"created_at" example:"2026-02-24T12:00:00Z"`
	UpdatedAt   time.Time   `json:"updated_at" example:"2026-02-24T12:00:00Z"`
}

// SEO is the persisted search and social metadata of a product. Any field
// may be empty.
type SEO struct {
	MetaTitle          string   `json:"meta_title,omitempty"`
	MetaDescription    string   `json:"meta_description,omitempty"`
	MetaKeywords       []string `json:"meta_keywords,omitempty"`
	OGTitle            string   `json:"og_title,omitempty"`
	OGDescription      string   `json:"og_description,omitempty"`
	OGType             string   `json:"og_type,omitempty"`
	TwitterTitle       string   `json:"twitter_title,omitempty"`
	TwitterDescription string   `json:"twitter_description,omitempty"`
	Title              string   `json:"seo_title,omitempty"`
	Description        string   `json:"seo_description,omitempty"`
	SchemaDescription  string   `json:"schema_description,omitempty"`
}

// MissingMeta reports whether the meta title or description is unset.
func (s SEO) MissingMeta() bool {
	return s.MetaTitle == "" || s.MetaDescription == ""
}

// FillEmpty copies every field of src into s that s leaves empty.
func (s SEO) FillEmpty(src SEO) SEO {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&s.MetaTitle, src.MetaTitle)
	fill(&s.MetaDescription, src.MetaDescription)
	fill(&s.OGTitle, src.OGTitle)
	fill(&s.OGDescription, src.OGDescription)
	fill(&s.OGType, src.OGType)
	fill(&s.TwitterTitle, src.TwitterTitle)
	fill(&s.TwitterDescription, src.TwitterDescription)
	fill(&s.Title, src.Title)
	fill(&s.Description, src.Description)
	fill(&s.SchemaDescription, src.SchemaDescription)
	if len(s.MetaKeywords) == 0 {
		s.MetaKeywords = cloneStrings(src.MetaKeywords)
	}
	return s
}

type Category struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Slug        string `json:"slug" yaml:"slug"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// Validate checks the record-level invariants that must hold before a
// product is written anywhere.
func (p Product) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case p.Price < 0:
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	case p.Discount < 0:
		return fmt.Errorf("%w: discount must not be negative", ErrInvalidProduct)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	case !p.Type.Valid():
		return fmt.Errorf("%w: unknown type %q", ErrInvalidProduct, p.Type)
	case len(p.Colors) == 0:
		return fmt.Errorf("%w: at least one color is required", ErrInvalidProduct)
	}
	return nil
}

// Clone returns a copy that shares no slices or maps with p.
func (p Product) Clone() Product {
	out := p
	out.Images = cloneStrings(p.Images)
	out.Colors = cloneStrings(p.Colors)
	out.SEO.MetaKeywords = cloneStrings(p.SEO.MetaKeywords)
	if p.Features != nil {
		out.Features = make(Features, len(p.Features))
		for k, v := range p.Features {
			out.Features[k] = v
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// SlugChange moves a product from one slug to another as part of a batch.
type SlugChange struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OldSlug string `json:"old_slug"`
	NewSlug string `json:"new_slug"`
}
