package seo

import (
	"fmt"
	"strings"

	"sonicpods/internal/catalog"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	seoSystemPrompt = "You are an expert SEO copywriter specializing in consumer electronics and audio products. " +
		"Always respond with valid JSON only, no markdown formatting or code blocks."
	descriptionSystemPrompt = "You are a professional copywriter for an audio/earpods store. " +
		"Write concise, engaging product descriptions."
)

var pricePrinter = message.NewPrinter(language.English)

// formatPrice renders an amount as "Rs. 24,999".
func formatPrice(amount int64) string {
	return pricePrinter.Sprintf("Rs. %d", amount)
}

func brandOf(in Input) string {
	if in.Brand == "" {
		return catalog.DefaultBrand
	}
	return in.Brand
}

func promptTypeLabel(t catalog.ProductType) string {
	switch t {
	case catalog.TypeWireless:
		return "True Wireless Earbuds"
	case catalog.TypeGaming:
		return "Gaming Earbuds"
	case catalog.TypeANC:
		return "ANC (Noise Cancelling) Earbuds"
	default:
		return string(t)
	}
}

func descriptionTypeLabel(t catalog.ProductType) string {
	switch t {
	case catalog.TypeWireless:
		return "true wireless earbuds"
	case catalog.TypeGaming:
		return "gaming earbuds with low latency"
	case catalog.TypeANC:
		return "active noise cancelling earbuds"
	default:
		return string(t)
	}
}

func seoPrompt(in Input) string {
	var b strings.Builder
	b.WriteString(`You are an expert SEO copywriter for "SonicPods", a premium earpods and wireless audio store in Pakistan. Generate comprehensive SEO content for this product:` + "\n\n")
	fmt.Fprintf(&b, "Product Name: %s\n", in.Name)
	fmt.Fprintf(&b, "Type: %s\n", promptTypeLabel(in.Type))
	fmt.Fprintf(&b, "Price: %s\n", formatPrice(in.Price))
	fmt.Fprintf(&b, "Brand: %s\n", brandOf(in))
	if in.Description != "" {
		fmt.Fprintf(&b, "Brief Info: %s\n", in.Description)
	}
	if len(in.Features) > 0 {
		parts := make([]string, 0, len(in.Features))
		for _, k := range in.Features.Keys() {
			parts = append(parts, k+": "+in.Features[k].String())
		}
		fmt.Fprintf(&b, "Features: %s\n", strings.Join(parts, ", "))
	}
	b.WriteString(`
Generate the following in JSON format ONLY (no markdown, no code blocks, just pure JSON):
{
  "metaTitle": "SEO meta title (50-60 chars, include brand + product type + 'Buy Online Pakistan')",
  "metaDescription": "Meta description (150-160 chars, include price, key benefits, call-to-action like 'Shop Now' or 'Free Delivery')",
  "metaKeywords": ["array", "of", "15-20", "relevant", "SEO", "keywords"],
  "ogTitle": "OpenGraph title for social sharing (60-70 chars)",
  "ogDescription": "OpenGraph description for Facebook/LinkedIn (150-200 chars)",
  "ogType": "product",
  "twitterTitle": "Twitter card title (55-60 chars)",
  "twitterDescription": "Twitter description (120-140 chars)",
  "seoTitle": "H1 heading for product page (include product name and key feature)",
  "seoDescription": "SEO-optimized product intro paragraph (100-150 words, naturally include keywords)",
  "seoSlug": "url-friendly-slug-lowercase-hyphens-max-50-chars",
  "schemaDescription": "Clean description for schema.org structured data (100-150 words)",
  "productDescription": "Compelling product description (150-200 words, flowing paragraphs, no bullet points)"
}

Requirements:
- All content in English, suitable for a Pakistani audience
- metaTitle must include the product name and "SonicPods" or "Buy Online"
- metaDescription must mention the price and include a call-to-action
- seoSlug must be lowercase with hyphens only

Return ONLY valid JSON, no explanations or markdown.`)
	return b.String()
}

func descriptionPrompt(in DescriptionInput) string {
	var b strings.Builder
	b.WriteString(`You are a copywriter for "SonicPods", a premium earpods store in Pakistan. Write a compelling product description for:` + "\n\n")
	fmt.Fprintf(&b, "Product: %s\n", in.Name)
	fmt.Fprintf(&b, "Type: %s\n", descriptionTypeLabel(in.Type))
	fmt.Fprintf(&b, "Category: %s\n", in.Category)
	if in.BriefInfo != "" {
		fmt.Fprintf(&b, "Additional Info: %s\n", in.BriefInfo)
	}
	b.WriteString(`
Requirements:
- 3-4 sentences (80-150 words)
- Highlight sound quality, battery life, connectivity and comfort
- Do NOT include the price
- Do NOT use asterisks, bullet points, or markdown

Return ONLY the description text, nothing else.`)
	return b.String()
}

func templateBundle(in Input) Bundle {
	label := in.Type.Label()
	lower := strings.ToLower(label)
	price := formatPrice(in.Price)
	brand := brandOf(in)

	description := fmt.Sprintf("Experience exceptional audio quality with the %[1]s. These premium %[2]s deliver "+
		"crystal-clear sound, powerful bass, and ultimate comfort for all-day wear. Whether you're commuting, "+
		"working out, or relaxing at home, the %[1]s provides an immersive listening experience. With cutting-edge "+
		"Bluetooth technology, long battery life, and a sleek design, these earbuds are perfect for music lovers "+
		"and professionals alike. Order now and enjoy free delivery across Pakistan.", in.Name, lower)

	return Bundle{
		MetaTitle:       fmt.Sprintf("%s | %s | Buy Online Pakistan", in.Name, label),
		MetaDescription: fmt.Sprintf("Buy %s for %s. Premium %s with amazing sound quality. Free delivery across Pakistan! Shop now at SonicPods.", in.Name, price, lower),
		MetaKeywords: []string{
			strings.ToLower(in.Name),
			string(in.Type),
			strings.ToLower(brand),
			"wireless earbuds",
			"earpods pakistan",
			"buy earbuds online",
			"bluetooth earphones",
			lower,
			"audio devices",
			"free delivery",
			"best earbuds",
			"online shopping pakistan",
			"sonicpods",
			"premium audio",
			"noise cancellation",
		},
		OGTitle:            fmt.Sprintf("%s - %s | SonicPods", in.Name, label),
		OGDescription:      fmt.Sprintf("Get the %s for %s. Premium audio quality with free delivery in Pakistan.", in.Name, price),
		OGType:             "product",
		TwitterTitle:       fmt.Sprintf("%s | %s", in.Name, label),
		TwitterDescription: fmt.Sprintf("%s - Premium %s. Free delivery in Pakistan!", price, lower),
		SEOTitle:           fmt.Sprintf("%s - Premium %s for Audiophiles", in.Name, label),
		SEODescription:     truncateRunes(description, 300),
		Slug:               in.Name,
		SchemaDescription:  truncateRunes(description, 300),
		ProductDescription: description,
	}
}

func templateDescription(in DescriptionInput) string {
	return fmt.Sprintf("Experience premium audio with the %[1]s. These %[2]s deliver exceptional sound quality, "+
		"reliable connectivity, and all-day comfort. Whether you're streaming music, taking calls, or enjoying your "+
		"favorite podcasts, the %[1]s provides the perfect audio companion for your lifestyle. Designed for quality "+
		"and durability, these earbuds offer outstanding value for discerning audio enthusiasts.",
		in.Name, descriptionTypeLabel(in.Type))
}
