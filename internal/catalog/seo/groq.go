package seo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
)

var errEmptyCompletion = errors.New("empty completion")

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// aiPayload is the JSON object the model is asked to return.
type aiPayload struct {
	MetaTitle          string   `json:"metaTitle"`
	MetaDescription    string   `json:"metaDescription"`
	MetaKeywords       []string `json:"metaKeywords"`
	OGTitle            string   `json:"ogTitle"`
	OGDescription      string   `json:"ogDescription"`
	TwitterTitle       string   `json:"twitterTitle"`
	TwitterDescription string   `json:"twitterDescription"`
	SEOTitle           string   `json:"seoTitle"`
	SEODescription     string   `json:"seoDescription"`
	SEOSlug            string   `json:"seoSlug"`
	SchemaDescription  string   `json:"schemaDescription"`
	ProductDescription string   `json:"productDescription"`
}

func (p aiPayload) bundle() Bundle {
	return Bundle{
		MetaTitle:          p.MetaTitle,
		MetaDescription:    p.MetaDescription,
		MetaKeywords:       p.MetaKeywords,
		OGTitle:            p.OGTitle,
		OGDescription:      p.OGDescription,
		TwitterTitle:       p.TwitterTitle,
		TwitterDescription: p.TwitterDescription,
		SEOTitle:           p.SEOTitle,
		SEODescription:     p.SEODescription,
		Slug:               p.SEOSlug,
		SchemaDescription:  p.SchemaDescription,
		ProductDescription: p.ProductDescription,
	}
}

func (s *Synthesizer) complete(ctx context.Context, body chatRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("completion status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", errEmptyCompletion
	}
	return out.Choices[0].Message.Content, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func unescape(s string) string {
	return html.UnescapeString(s)
}
