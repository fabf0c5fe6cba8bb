package seo

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"sonicpods/internal/catalog"
	"sonicpods/internal/catalog/slug"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testInput() Input {
	return Input{
		Name:  "Test Buds",
		Price: 24999,
		Type:  catalog.TypeANC,
		Features: catalog.Features{
			catalog.FeatureNoiseCancellation: catalog.BoolFeature(true),
		},
	}
}

func completionServer(t *testing.T, status int, content string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		assert.Len(t, req.Messages, 2)

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func assertComplete(t *testing.T, b Bundle) {
	t.Helper()
	fields := map[string]string{
		"meta_title":          b.MetaTitle,
		"meta_description":    b.MetaDescription,
		"og_title":            b.OGTitle,
		"og_description":      b.OGDescription,
		"og_type":             b.OGType,
		"twitter_title":       b.TwitterTitle,
		"twitter_description": b.TwitterDescription,
		"seo_title":           b.SEOTitle,
		"seo_description":     b.SEODescription,
		"seo_slug":            b.Slug,
		"schema_description":  b.SchemaDescription,
		"product_description": b.ProductDescription,
	}
	for name, v := range fields {
		assert.NotEmpty(t, v, name)
	}
	assert.NotEmpty(t, b.MetaKeywords)
}

func assertWithinLimits(t *testing.T, b Bundle) {
	t.Helper()
	limits := []struct {
		name  string
		value string
		max   int
	}{
		{"meta_title", b.MetaTitle, maxMetaTitle},
		{"meta_description", b.MetaDescription, maxMetaDescription},
		{"og_title", b.OGTitle, maxOGTitle},
		{"og_description", b.OGDescription, maxOGDescription},
		{"twitter_title", b.TwitterTitle, maxTwitterTitle},
		{"twitter_description", b.TwitterDescription, maxTwitterDescription},
		{"seo_title", b.SEOTitle, maxSEOTitle},
		{"seo_description", b.SEODescription, maxSEODescription},
		{"seo_slug", b.Slug, maxSlug},
		{"schema_description", b.SchemaDescription, maxSchemaDescription},
		{"product_description", b.ProductDescription, maxProductDescription},
	}
	for _, l := range limits {
		assert.LessOrEqual(t, utf8.RuneCountInString(l.value), l.max, l.name)
	}
	assert.LessOrEqual(t, len(b.MetaKeywords), maxKeywords)
	for _, k := range b.MetaKeywords {
		assert.LessOrEqual(t, utf8.RuneCountInString(k), maxKeywordLen, k)
	}
	assert.Equal(t, "product", b.OGType)
	assert.True(t, slug.Valid(b.Slug), b.Slug)
}

func TestGenerate_TemplateWithoutCredential(t *testing.T) {
	s := New(Config{}, discardLogger())

	res := s.Generate(context.Background(), testInput())

	assert.Equal(t, SourceTemplate, res.Source)
	assertComplete(t, res.Bundle)
	assertWithinLimits(t, res.Bundle)
	assert.Equal(t, "test-buds", res.Bundle.Slug)
	assert.Contains(t, res.Bundle.MetaDescription, "Rs. 24,999")
	assert.Equal(t, "Test Buds | ANC Earbuds | Buy Online Pakistan", res.Bundle.MetaTitle)
}

func TestGenerate_KeywordsAreUnique(t *testing.T) {
	s := New(Config{}, discardLogger())
	for _, typ := range []catalog.ProductType{catalog.TypeWireless, catalog.TypeGaming, catalog.TypeANC} {
		t.Run(string(typ), func(t *testing.T) {
			in := testInput()
			in.Type = typ
			in.Name = "SonicPods"

			kw := s.Generate(context.Background(), in).Bundle.MetaKeywords

			seen := map[string]bool{}
			for _, k := range kw {
				assert.False(t, seen[strings.ToLower(k)], "duplicate keyword %q in %v", k, kw)
				seen[strings.ToLower(k)] = true
			}
			assert.Contains(t, kw, "wireless earbuds")
		})
	}
}

func TestSuggestedSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "test-buds-anc", want: "test-buds-anc"},
		{in: "Test-Buds", want: "test-buds"},
		{in: "Test Buds ANC!!", want: "test-buds-anc"},
		{in: strings.Repeat("ab-", 30), want: slug.Truncate(strings.Repeat("ab-", 30), maxSlug)},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := suggestedSlug(tt.in)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), maxSlug)
		})
	}
}

func TestGenerate_TemplateIsDeterministic(t *testing.T) {
	s := New(Config{}, discardLogger())
	a := s.Generate(context.Background(), testInput())
	b := s.Generate(context.Background(), testInput())
	assert.Equal(t, a, b)
}

func TestGenerate_UsesAIResponse(t *testing.T) {
	content := "```json\n" + `{
		"metaTitle": "Test Buds <b>ANC</b> | SonicPods",
		"metaDescription": "Buy Test Buds &amp; save. Shop now!",
		"metaKeywords": ["anc earbuds", "test buds"],
		"ogTitle": "Test Buds",
		"ogDescription": "Great buds",
		"ogType": "website",
		"twitterTitle": "Test Buds",
		"twitterDescription": "Great buds",
		"seoTitle": "Test Buds ANC",
		"seoDescription": "Intro",
		"seoSlug": "Test Buds ANC!!",
		"schemaDescription": "Schema",
		"productDescription": "<script>alert(1)</script>Lovely sound"
	}` + "\n```"
	srv, calls := completionServer(t, http.StatusOK, content)
	s := New(Config{APIKey: "test-key", APIURL: srv.URL}, discardLogger())

	res := s.Generate(context.Background(), testInput())

	require.Equal(t, SourceAI, res.Source)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "Test Buds ANC | SonicPods", res.Bundle.MetaTitle)
	assert.Equal(t, "Buy Test Buds & save. Shop now!", res.Bundle.MetaDescription)
	assert.Equal(t, "product", res.Bundle.OGType)
	assert.Equal(t, "test-buds-anc", res.Bundle.Slug)
	assert.Equal(t, "Lovely sound", res.Bundle.ProductDescription)
	assertWithinLimits(t, res.Bundle)
}

func TestGenerate_ClampsOverlongAIFields(t *testing.T) {
	long := strings.Repeat("x", 2000)
	keywords := make([]string, 40)
	for i := range keywords {
		keywords[i] = strings.Repeat("k", 50)
	}
	payload, err := json.Marshal(aiPayload{
		MetaTitle:          long,
		MetaDescription:    long,
		MetaKeywords:       keywords,
		OGTitle:            long,
		OGDescription:      long,
		TwitterTitle:       long,
		TwitterDescription: long,
		SEOTitle:           long,
		SEODescription:     long,
		SEOSlug:            long,
		SchemaDescription:  long,
		ProductDescription: long,
	})
	require.NoError(t, err)
	srv, _ := completionServer(t, http.StatusOK, string(payload))
	s := New(Config{APIKey: "test-key", APIURL: srv.URL}, discardLogger())

	res := s.Generate(context.Background(), testInput())

	assert.Equal(t, SourceAI, res.Source)
	assertWithinLimits(t, res.Bundle)
	assert.Len(t, res.Bundle.MetaKeywords, maxKeywords)
}

func TestGenerate_MissingAIFieldsFilledFromTemplate(t *testing.T) {
	srv, _ := completionServer(t, http.StatusOK, `{"metaTitle": "Only a title"}`)
	s := New(Config{APIKey: "test-key", APIURL: srv.URL}, discardLogger())

	res := s.Generate(context.Background(), testInput())

	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, "Only a title", res.Bundle.MetaTitle)
	assertComplete(t, res.Bundle)
	assert.Equal(t, "test-buds", res.Bundle.Slug)
}

func TestGenerate_FallsBackToTemplate(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		content string
	}{
		{name: "non-200 status", status: http.StatusTooManyRequests, content: "{}"},
		{name: "empty content", status: http.StatusOK, content: "   "},
		{name: "not json", status: http.StatusOK, content: "Sure! Here is your SEO:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := completionServer(t, tt.status, tt.content)
			s := New(Config{APIKey: "test-key", APIURL: srv.URL}, discardLogger())

			res := s.Generate(context.Background(), testInput())

			assert.Equal(t, int32(1), calls.Load())
			assert.Equal(t, SourceTemplate, res.Source)
			assertComplete(t, res.Bundle)
		})
	}
}

func TestGenerate_TransportErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	s := New(Config{APIKey: "test-key", APIURL: url}, discardLogger())
	res := s.Generate(context.Background(), testInput())

	assert.Equal(t, SourceTemplate, res.Source)
	assertComplete(t, res.Bundle)
}

func TestGenerateDescription(t *testing.T) {
	in := DescriptionInput{Name: "Test Buds", Type: catalog.TypeGaming, Category: "Gaming"}

	t.Run("template without credential", func(t *testing.T) {
		s := New(Config{}, discardLogger())
		got := s.GenerateDescription(context.Background(), in)
		assert.Contains(t, got, "gaming earbuds with low latency")
		assert.Contains(t, got, "Test Buds")
	})

	t.Run("ai text is sanitized", func(t *testing.T) {
		srv, _ := completionServer(t, http.StatusOK, "  <p>Crisp, punchy sound.</p>  ")
		s := New(Config{APIKey: "test-key", APIURL: srv.URL}, discardLogger())
		assert.Equal(t, "Crisp, punchy sound.", s.GenerateDescription(context.Background(), in))
	})

	t.Run("api error falls back", func(t *testing.T) {
		srv, _ := completionServer(t, http.StatusInternalServerError, "")
		s := New(Config{APIKey: "test-key", APIURL: srv.URL}, discardLogger())
		assert.Equal(t, templateDescription(in), s.GenerateDescription(context.Background(), in))
	})
}

func TestStripCodeFence(t *testing.T) {
	tests := map[string]string{
		"```json\n{}\n```": "{}",
		"```\n{}\n```":     "{}",
		"  {}  ":           "{}",
	}
	for in, want := range tests {
		assert.Equal(t, want, stripCodeFence(in))
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "Rs. 24,999", formatPrice(24999))
	assert.Equal(t, "Rs. 999", formatPrice(999))
	assert.Equal(t, "Rs. 1,250,000", formatPrice(1250000))
}

func TestBundle_SEO(t *testing.T) {
	b := New(Config{}, discardLogger()).Generate(context.Background(), testInput()).Bundle

	got := b.SEO()

	assert.Equal(t, b.MetaTitle, got.MetaTitle)
	assert.Equal(t, b.SEOTitle, got.Title)
	assert.Equal(t, b.SchemaDescription, got.SchemaDescription)
	assert.False(t, got.MissingMeta())
}
