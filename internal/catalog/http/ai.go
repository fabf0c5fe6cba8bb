package http

import (
	"net/http"
	"strings"

	"sonicpods/internal/catalog"
	"sonicpods/internal/catalog/seo"
	"sonicpods/internal/httpapi"

	"github.com/gin-gonic/gin"
)

type generateSEORequest struct {
	Name        string              `json:"name" binding:"required" example:"Test Buds"`
	Type        catalog.ProductType `json:"type" binding:"required" example:"anc"`
	Price       *int64              `json:"price" binding:"required" example:"24999"`
	Brand       string              `json:"brand" example:"SonicPods"`
	Description string              `json:"description"`
	Features    catalog.Features    `json:"features" swaggertype:"object"`
}

type generateDescriptionRequest struct {
	Name      string              `json:"name" binding:"required" example:"Test Buds"`
	Type      catalog.ProductType `json:"type" binding:"required" example:"wireless"`
	Category  string              `json:"category"`
	BriefInfo string              `json:"brief_info"`
}

type descriptionResponse struct {
	Description string `json:"description"`
}

// GenerateSEO godoc
// @Summary      Generate SEO metadata for an unsaved product
// @Description  Uses the configured model when available and a deterministic template otherwise.
// @Tags         ai
// @Accept       json
// @Produce      json
// @Param        body  body      generateSEORequest  true  "Product data"
// @Success      200   {object}  httpapi.Envelope{data=seo.Result}
// @Failure      400   {object}  httpapi.Envelope
// @Router       /ai/generate-seo [post]
func (h *Handler) GenerateSEO(c *gin.Context) {
	var req generateSEORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, "name, type and price are required")
		return
	}

	res := h.service.GenerateSEO(c.Request.Context(), seo.Input{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       *req.Price,
		Type:        req.Type,
		Brand:       strings.TrimSpace(req.Brand),
		Features:    req.Features,
	})
	httpapi.OK(c, http.StatusOK, res, false)
}

// GenerateDescription godoc
// @Summary      Generate a product description
// @Tags         ai
// @Accept       json
// @Produce      json
// @Param        body  body      generateDescriptionRequest  true  "Product data"
// @Success      200   {object}  httpapi.Envelope{data=descriptionResponse}
// @Failure      400   {object}  httpapi.Envelope
// @Router       /ai/generate-description [post]
func (h *Handler) GenerateDescription(c *gin.Context) {
	var req generateDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, "name and type are required")
		return
	}

	text := h.service.GenerateDescription(c.Request.Context(), seo.DescriptionInput{
		Name:      strings.TrimSpace(req.Name),
		Type:      req.Type,
		Category:  strings.TrimSpace(req.Category),
		BriefInfo: strings.TrimSpace(req.BriefInfo),
	})
	httpapi.OK(c, http.StatusOK, descriptionResponse{Description: text}, false)
}
