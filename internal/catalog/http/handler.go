package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"sonicpods/internal/catalog"
	"sonicpods/internal/catalog/seo"
	"sonicpods/internal/catalog/service"
	"sonicpods/internal/httpapi"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 0
)

type ProductService interface {
	List(ctx context.Context, f catalog.Filter) (service.ListResult, error)
	Get(ctx context.Context, key string) (service.GetResult, error)
	Create(ctx context.Context, in service.CreateInput) (service.CreateResult, error)
	Update(ctx context.Context, id string, in service.UpdateInput) (service.UpdateResult, error)
	Delete(ctx context.Context, id string) (service.DeleteResult, error)
	Categories(ctx context.Context) (service.CategoriesResult, error)
	RegenerateSEO(ctx context.Context, productID string) (service.SEOReport, error)
	RegenerateSlugs(ctx context.Context) (service.SlugReport, error)
	GenerateSEO(ctx context.Context, in seo.Input) seo.Result
	GenerateDescription(ctx context.Context, in seo.DescriptionInput) string
}

type Handler struct {
	service ProductService
}

func NewHandler(svc ProductService) *Handler {
	return &Handler{service: svc}
}

func (h *Handler) Register(router gin.IRouter) {
	router.GET("/products", h.ListProducts)
	router.GET("/products/:key", h.GetProduct)
	router.POST("/products", h.CreateProduct)
	router.PUT("/products/:key", h.UpdateProduct)
	router.DELETE("/products/:key", h.DeleteProduct)
	router.POST("/products/generate-seo", h.RegenerateSEO)
	router.POST("/products/regenerate-slugs", h.RegenerateSlugs)
	router.GET("/categories", h.ListCategories)
	router.POST("/ai/generate-seo", h.GenerateSEO)
	router.POST("/ai/generate-description", h.GenerateDescription)
}

type createProductRequest struct {
	Name        string              `json:"name" binding:"required" example:"SonicPods Pro Max"`
	Description string              `json:"description"`
	Price       *int64              `json:"price" binding:"required" example:"24999"`
	Discount    int64               `json:"discount" example:"2000"`
	Stock       int                 `json:"stock" example:"40"`
	Brand       string              `json:"brand" example:"SonicPods"`
	Type        catalog.ProductType `json:"type" example:"anc"`
	CategoryID  string              `json:"category_id"`
	Features    catalog.Features    `json:"features" swaggertype:"object"`
	Images      []string            `json:"images"`
	Image       string              `json:"image"`
	Colors      []string            `json:"colors"`
	InStock     *bool               `json:"in_stock"`
}

type updateProductRequest struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Price       *int64               `json:"price"`
	Discount    *int64               `json:"discount"`
	Stock       *int                 `json:"stock"`
	Brand       *string              `json:"brand"`
	Type        *catalog.ProductType `json:"type"`
	CategoryID  *string              `json:"category_id"`
	Features    catalog.Features     `json:"features" swaggertype:"object"`
	Images      []string             `json:"images"`
	Image       *string              `json:"image"`
	Colors      []string             `json:"colors"`
	InStock     *bool                `json:"in_stock"`
	SEO         *catalog.SEO         `json:"seo"`
}

type createProductResponse struct {
	httpapi.Envelope
	SEOGenerated bool       `json:"seo_generated"`
	SEOSource    seo.Source `json:"seo_source,omitempty"`
}

type regenerateSEORequest struct {
	ProductID string `json:"product_id"`
}

// ListProducts godoc
// @Summary      List products
// @Description  Filters are combined with AND. category accepts a product type, "budget", "premium" or a category id. The price range is applied after ordering, then the page is cut.
// @Tags         products
// @Produce      json
// @Param        type       query     string  false  "Product type"  Enums(wireless, gaming, anc)
// @Param        category   query     string  false  "Type, price bucket or category id"
// @Param        brand      query     string  false  "Case-insensitive brand substring"
// @Param        featured   query     bool    false  "Only discounted products, at most 8"
// @Param        slug       query     string  false  "Exact slug"
// @Param        min_price  query     int     false  "Inclusive lower price bound"
// @Param        max_price  query     int     false  "Inclusive upper price bound"
// @Param        sort       query     string  false  "Ordering"  Enums(newest, price-asc, price-desc, popularity, discount-desc)
// @Param        page       query     int     false  "Page number"  default(1)
// @Param        limit      query     int     false  "Items per page, 0 for all"
// @Success      200        {object}  httpapi.Envelope{data=[]catalog.Product}
// @Failure      400        {object}  httpapi.Envelope
// @Failure      500        {object}  httpapi.Envelope
// @Router       /products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		httpapi.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err, "failed to get products")
		return
	}

	items := res.Products
	if items == nil {
		items = []catalog.Product{}
	}
	httpapi.OKList(c, http.StatusOK, items, len(items), res.Fallback)
}

// GetProduct godoc
// @Summary      Get a product by id or slug
// @Tags         products
// @Produce      json
// @Param        key  path      string  true  "Product UUID or slug"
// @Success      200  {object}  httpapi.Envelope{data=catalog.Product}
// @Failure      404  {object}  httpapi.Envelope
// @Failure      500  {object}  httpapi.Envelope
// @Router       /products/{key} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	res, err := h.service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		writeError(c, err, "failed to get product")
		return
	}
	httpapi.OK(c, http.StatusOK, res.Product, res.Fallback)
}

// CreateProduct godoc
// @Summary      Create a product
// @Description  The slug is derived from the name and made unique. Empty SEO fields and an empty description are generated.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body      createProductRequest  true  "Product data"
// @Success      201   {object}  createProductResponse{data=catalog.Product}
// @Failure      400   {object}  httpapi.Envelope
// @Failure      409   {object}  httpapi.Envelope
// @Failure      500   {object}  httpapi.Envelope
// @Router       /products [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.Create(c.Request.Context(), service.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Discount:    req.Discount,
		Stock:       req.Stock,
		Brand:       req.Brand,
		Type:        req.Type,
		CategoryID:  req.CategoryID,
		Features:    req.Features,
		Images:      req.Images,
		Image:       req.Image,
		Colors:      req.Colors,
		InStock:     req.InStock,
	})
	if err != nil {
		writeError(c, err, "failed to create product")
		return
	}

	c.JSON(http.StatusCreated, createProductResponse{
		Envelope:     httpapi.Envelope{Success: true, Data: res.Product, Fallback: res.Fallback},
		SEOGenerated: res.SEOGenerated,
		SEOSource:    res.SEOSource,
	})
}

// UpdateProduct godoc
// @Summary      Update a product
// @Description  Absent fields are left unchanged. Renaming re-derives the slug.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        key   path      string                true  "Product UUID"
// @Param        body  body      updateProductRequest  true  "Fields to change"
// @Success      200   {object}  httpapi.Envelope{data=catalog.Product}
// @Failure      400   {object}  httpapi.Envelope
// @Failure      404   {object}  httpapi.Envelope
// @Failure      409   {object}  httpapi.Envelope
// @Failure      500   {object}  httpapi.Envelope
// @Router       /products/{key} [put]
func (h *Handler) UpdateProduct(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.Update(c.Request.Context(), c.Param("key"), service.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Discount:    req.Discount,
		Stock:       req.Stock,
		Brand:       req.Brand,
		Type:        req.Type,
		CategoryID:  req.CategoryID,
		Features:    req.Features,
		Images:      req.Images,
		Image:       req.Image,
		Colors:      req.Colors,
		InStock:     req.InStock,
		SEO:         req.SEO,
	})
	if err != nil {
		writeError(c, err, "failed to update product")
		return
	}
	httpapi.OK(c, http.StatusOK, res.Product, res.Fallback)
}

// DeleteProduct godoc
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Param        key  path      string  true  "Product UUID"
// @Success      200  {object}  httpapi.Envelope
// @Failure      404  {object}  httpapi.Envelope
// @Failure      500  {object}  httpapi.Envelope
// @Router       /products/{key} [delete]
func (h *Handler) DeleteProduct(c *gin.Context) {
	res, err := h.service.Delete(c.Request.Context(), c.Param("key"))
	if err != nil {
		writeError(c, err, "failed to delete product")
		return
	}
	c.JSON(http.StatusOK, httpapi.Envelope{Success: true, Message: "product deleted", Fallback: res.Fallback})
}

// RegenerateSEO godoc
// @Summary      Regenerate SEO metadata
// @Description  With product_id, rebuilds that product. Without it, rebuilds every product missing a meta title or description.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body      regenerateSEORequest  false  "Target product"
// @Success      200   {object}  httpapi.Envelope{data=service.SEOReport}
// @Failure      404   {object}  httpapi.Envelope
// @Failure      500   {object}  httpapi.Envelope
// @Router       /products/generate-seo [post]
func (h *Handler) RegenerateSEO(c *gin.Context) {
	var req regenerateSEORequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httpapi.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.service.RegenerateSEO(c.Request.Context(), strings.TrimSpace(req.ProductID))
	if err != nil {
		writeError(c, err, "failed to generate seo")
		return
	}
	httpapi.OK(c, http.StatusOK, report, report.Fallback)
}

// RegenerateSlugs godoc
// @Summary      Recompute every slug from product names
// @Description  Products are visited oldest first; the oldest keeps the unsuffixed slug.
// @Tags         products
// @Produce      json
// @Success      200  {object}  httpapi.Envelope{data=service.SlugReport}
// @Failure      409  {object}  httpapi.Envelope
// @Failure      500  {object}  httpapi.Envelope
// @Router       /products/regenerate-slugs [post]
func (h *Handler) RegenerateSlugs(c *gin.Context) {
	report, err := h.service.RegenerateSlugs(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to regenerate slugs")
		return
	}
	httpapi.OK(c, http.StatusOK, report, report.Fallback)
}

// ListCategories godoc
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200  {object}  httpapi.Envelope{data=[]catalog.Category}
// @Failure      500  {object}  httpapi.Envelope
// @Router       /categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	res, err := h.service.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to get categories")
		return
	}
	items := res.Categories
	if items == nil {
		items = []catalog.Category{}
	}
	httpapi.OKList(c, http.StatusOK, items, len(items), res.Fallback)
}

func parseFilter(c *gin.Context) (catalog.Filter, error) {
	sortKey, err := catalog.ParseSort(c.Query("sort"))
	if err != nil {
		return catalog.Filter{}, err
	}
	f := catalog.Filter{
		Type:     catalog.ProductType(strings.TrimSpace(c.Query("type"))),
		Category: catalog.ParseCategory(c.Query("category")),
		Brand:    strings.TrimSpace(c.Query("brand")),
		Slug:     strings.TrimSpace(c.Query("slug")),
		Sort:     sortKey,
		Page:     parseQueryInt(c.Query("page"), defaultPage),
		Limit:    parseQueryInt(c.Query("limit"), defaultLimit),
	}
	if raw := c.Query("featured"); raw != "" {
		f.Featured, err = strconv.ParseBool(raw)
		if err != nil {
			return catalog.Filter{}, invalidFilter("featured", raw)
		}
	}
	if f.MinPrice, err = parsePrice(c, "min_price"); err != nil {
		return catalog.Filter{}, err
	}
	if f.MaxPrice, err = parsePrice(c, "max_price"); err != nil {
		return catalog.Filter{}, err
	}
	return f, nil
}

func parsePrice(c *gin.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, invalidFilter(name, raw)
	}
	return &v, nil
}

func invalidFilter(name, raw string) error {
	return fmt.Errorf("%w: bad %s %q", catalog.ErrInvalidFilter, name, raw)
}

func parseQueryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

func writeError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, catalog.ErrInvalidProduct), errors.Is(err, catalog.ErrInvalidFilter):
		httpapi.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		httpapi.Fail(c, http.StatusNotFound, catalog.ErrNotFound.Error())
	case errors.Is(err, catalog.ErrSlugConflict):
		httpapi.Fail(c, http.StatusConflict, catalog.ErrSlugConflict.Error())
	default:
		httpapi.Fail(c, http.StatusInternalServerError, message)
	}
}
