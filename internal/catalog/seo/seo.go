// Package seo produces search and social metadata for products, from an
// OpenAI-compatible chat-completions model when one is configured and from
// a deterministic template otherwise.
package seo

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sonicpods/internal/catalog"
	"sonicpods/internal/catalog/slug"

	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultAPIURL  = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel   = "llama-3.3-70b-versatile"
	DefaultTimeout = 20 * time.Second
)

// Field limits, in runes.
const (
	maxMetaTitle          = 60
	maxMetaDescription    = 160
	maxKeywords           = 20
	maxKeywordLen         = 30
	maxOGTitle            = 70
	maxOGDescription      = 200
	maxTwitterTitle       = 60
	maxTwitterDescription = 140
	maxSEOTitle           = 100
	maxSEODescription     = 500
	maxSlug               = 50
	maxSchemaDescription  = 500
	maxProductDescription = 1000
)

type Source string

const (
	SourceAI       Source = "ai"
	SourceTemplate Source = "template"
)

type Bundle struct {
	MetaTitle          string   `json:"meta_title"`
	MetaDescription    string   `json:"meta_description"`
	MetaKeywords       []string `json:"meta_keywords"`
	OGTitle            string   `json:"og_title"`
	OGDescription      string   `json:"og_description"`
	OGType             string   `json:"og_type"`
	TwitterTitle       string   `json:"twitter_title"`
	TwitterDescription string   `json:"twitter_description"`
	SEOTitle           string   `json:"seo_title"`
	SEODescription     string   `json:"seo_description"`
	Slug               string   `json:"seo_slug"`
	SchemaDescription  string   `json:"schema_description"`
	ProductDescription string   `json:"product_description"`
}

// SEO returns the persisted subset of the bundle.
func (b Bundle) SEO() catalog.SEO {
	return catalog.SEO{
		MetaTitle:          b.MetaTitle,
		MetaDescription:    b.MetaDescription,
		MetaKeywords:       append([]string(nil), b.MetaKeywords...),
		OGTitle:            b.OGTitle,
		OGDescription:      b.OGDescription,
		OGType:             b.OGType,
		TwitterTitle:       b.TwitterTitle,
		TwitterDescription: b.TwitterDescription,
		Title:              b.SEOTitle,
		Description:        b.SEODescription,
		SchemaDescription:  b.SchemaDescription,
	}
}

type Input struct {
	Name        string
	Description string
	Price       int64
	Type        catalog.ProductType
	Brand       string
	Features    catalog.Features
}

// InputFor builds the generator input of an existing product.
func InputFor(p catalog.Product) Input {
	return Input{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Type:        p.Type,
		Brand:       p.Brand,
		Features:    p.Features,
	}
}

type Result struct {
	Bundle Bundle `json:"bundle"`
	Source Source `json:"source"`
}

type DescriptionInput struct {
	Name      string
	Type      catalog.ProductType
	Category  string
	BriefInfo string
}

type Config struct {
	APIKey  string
	APIURL  string
	Model   string
	Timeout time.Duration
}

type Synthesizer struct {
	client *http.Client
	apiURL string
	apiKey string
	model  string
	policy *bluemonday.Policy
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Synthesizer {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Synthesizer{
		client: &http.Client{
			Transport: otelhttp.NewTransport(transport),
			Timeout:   cfg.Timeout,
		},
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		policy: bluemonday.StrictPolicy(),
		logger: logger,
	}
}

// Enabled reports whether an API credential is configured.
func (s *Synthesizer) Enabled() bool {
	return s.apiKey != ""
}

// Generate never fails: every AI failure falls through to the template.
func (s *Synthesizer) Generate(ctx context.Context, in Input) Result {
	fallback := s.clampBundle(templateBundle(in))
	if !s.Enabled() {
		s.logger.Warn("ai credential not set, using seo template", "product", in.Name)
		return Result{Bundle: fallback, Source: SourceTemplate}
	}

	text, err := s.complete(ctx, chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: seoSystemPrompt},
			{Role: "user", Content: seoPrompt(in)},
		},
		Temperature: 0.7,
		MaxTokens:   1500,
	})
	if err != nil {
		s.logger.Warn("ai seo generation failed, using template", "product", in.Name, "error", err)
		return Result{Bundle: fallback, Source: SourceTemplate}
	}

	var payload aiPayload
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &payload); err != nil {
		s.logger.Warn("ai seo response unparseable, using template", "product", in.Name, "error", err)
		return Result{Bundle: fallback, Source: SourceTemplate}
	}
	raw := payload.bundle()
	if raw.Slug == "" {
		raw.Slug = in.Name
	}

	return Result{Bundle: fillEmpty(s.clampBundle(raw), fallback), Source: SourceAI}
}

// GenerateDescription returns marketing copy for a product, never empty.
func (s *Synthesizer) GenerateDescription(ctx context.Context, in DescriptionInput) string {
	fallback := templateDescription(in)
	if !s.Enabled() {
		return fallback
	}

	text, err := s.complete(ctx, chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: descriptionSystemPrompt},
			{Role: "user", Content: descriptionPrompt(in)},
		},
		Temperature: 0.8,
		MaxTokens:   300,
	})
	if err != nil {
		s.logger.Warn("ai description failed, using template", "product", in.Name, "error", err)
		return fallback
	}

	out := s.clean(text, maxProductDescription)
	if out == "" {
		return fallback
	}
	return out
}

func (s *Synthesizer) clampBundle(b Bundle) Bundle {
	keywords := make([]string, 0, len(b.MetaKeywords))
	seen := make(map[string]bool, len(b.MetaKeywords))
	for _, k := range b.MetaKeywords {
		if len(keywords) == maxKeywords {
			break
		}
		k = s.clean(k, maxKeywordLen)
		if k == "" || seen[strings.ToLower(k)] {
			continue
		}
		seen[strings.ToLower(k)] = true
		keywords = append(keywords, k)
	}
	return Bundle{
		MetaTitle:          s.clean(b.MetaTitle, maxMetaTitle),
		MetaDescription:    s.clean(b.MetaDescription, maxMetaDescription),
		MetaKeywords:       keywords,
		OGTitle:            s.clean(b.OGTitle, maxOGTitle),
		OGDescription:      s.clean(b.OGDescription, maxOGDescription),
		OGType:             "product",
		TwitterTitle:       s.clean(b.TwitterTitle, maxTwitterTitle),
		TwitterDescription: s.clean(b.TwitterDescription, maxTwitterDescription),
		SEOTitle:           s.clean(b.SEOTitle, maxSEOTitle),
		SEODescription:     s.clean(b.SEODescription, maxSEODescription),
		Slug:               suggestedSlug(b.Slug),
		SchemaDescription:  s.clean(b.SchemaDescription, maxSchemaDescription),
		ProductDescription: s.clean(b.ProductDescription, maxProductDescription),
	}
}

// suggestedSlug keeps a well-formed slug as is and regenerates anything else.
func suggestedSlug(raw string) string {
	if len(raw) <= maxSlug && slug.Valid(raw) {
		return raw
	}
	return slug.Truncate(slug.Generate(raw), maxSlug)
}

// clean strips markup, trims and cuts to max runes.
func (s *Synthesizer) clean(text string, max int) string {
	return truncateRunes(strings.TrimSpace(unescape(s.policy.Sanitize(text))), max)
}

func fillEmpty(b, fallback Bundle) Bundle {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&b.MetaTitle, fallback.MetaTitle)
	fill(&b.MetaDescription, fallback.MetaDescription)
	fill(&b.OGTitle, fallback.OGTitle)
	fill(&b.OGDescription, fallback.OGDescription)
	fill(&b.TwitterTitle, fallback.TwitterTitle)
	fill(&b.TwitterDescription, fallback.TwitterDescription)
	fill(&b.SEOTitle, fallback.SEOTitle)
	fill(&b.SEODescription, fallback.SEODescription)
	fill(&b.Slug, fallback.Slug)
	fill(&b.SchemaDescription, fallback.SchemaDescription)
	fill(&b.ProductDescription, fallback.ProductDescription)
	if len(b.MetaKeywords) == 0 {
		b.MetaKeywords = fallback.MetaKeywords
	}
	return b
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}
