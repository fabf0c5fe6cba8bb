package http

import (
	"context"
	"errors"
	"net/http"

	"sonicpods/internal/httpapi"
	"sonicpods/internal/orders"
	"sonicpods/internal/orders/service"

	"github.com/gin-gonic/gin"
)

type OrderService interface {
	Create(ctx context.Context, in service.CreateInput) (orders.Order, bool, error)
	List(ctx context.Context) ([]orders.Order, bool, error)
	Get(ctx context.Context, id string) (orders.Order, bool, error)
	UpdateStatus(ctx context.Context, id string, status orders.Status) (orders.Order, bool, error)
	Track(ctx context.Context, q orders.TrackQuery) (orders.Order, bool, error)
}

type Handler struct {
	service OrderService
}

func NewHandler(svc OrderService) *Handler {
	return &Handler{service: svc}
}

func (h *Handler) Register(router gin.IRouter) {
	router.POST("/orders", h.CreateOrder)
	router.GET("/orders", h.ListOrders)
	router.GET("/orders/track", h.TrackOrder)
	router.GET("/orders/:id", h.GetOrder)
	router.PUT("/orders/:id/status", h.UpdateStatus)
}

type createOrderRequest struct {
	CustomerName string        `json:"customer_name" binding:"required" example:"Ayesha Khan"`
	Email        string        `json:"email" binding:"required" example:"ayesha@example.com"`
	Phone        string        `json:"phone" example:"+92 300 1234567"`
	Address      string        `json:"address" binding:"required" example:"12 Mall Road"`
	City         string        `json:"city" example:"Lahore"`
	PostalCode   string        `json:"postal_code" example:"54000"`
	Items        []orders.Item `json:"items" binding:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"shipped"`
}

// CreateOrder godoc
// @Summary      Place an order
// @Description  The total is computed from the items; any client-supplied total is ignored.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      createOrderRequest  true  "Checkout data"
// @Success      201   {object}  httpapi.Envelope{data=orders.Order}
// @Failure      400   {object}  httpapi.Envelope
// @Failure      500   {object}  httpapi.Envelope
// @Router       /orders [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	order, usedFallback, err := h.service.Create(c.Request.Context(), service.CreateInput{
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		City:         req.City,
		PostalCode:   req.PostalCode,
		Items:        req.Items,
	})
	if err != nil {
		writeError(c, err, "failed to create order")
		return
	}
	httpapi.OK(c, http.StatusCreated, order, usedFallback)
}

// ListOrders godoc
// @Summary      List all orders, newest first
// @Tags         orders
// @Produce      json
// @Success      200  {object}  httpapi.Envelope{data=[]orders.Order}
// @Failure      500  {object}  httpapi.Envelope
// @Router       /orders [get]
func (h *Handler) ListOrders(c *gin.Context) {
	list, usedFallback, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to fetch orders")
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	httpapi.OKList(c, http.StatusOK, list, len(list), usedFallback)
}

// GetOrder godoc
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  httpapi.Envelope{data=orders.Order}
// @Failure      404  {object}  httpapi.Envelope
// @Failure      500  {object}  httpapi.Envelope
// @Router       /orders/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	order, usedFallback, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to fetch order")
		return
	}
	httpapi.OK(c, http.StatusOK, order, usedFallback)
}

// UpdateStatus godoc
// @Summary      Change an order's status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Order ID"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  httpapi.Envelope{data=orders.Order}
// @Failure      400   {object}  httpapi.Envelope
// @Failure      404   {object}  httpapi.Envelope
// @Failure      500   {object}  httpapi.Envelope
// @Router       /orders/{id}/status [put]
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := orders.ParseStatus(req.Status)
	if err != nil {
		httpapi.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	order, usedFallback, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		writeError(c, err, "failed to update order")
		return
	}
	httpapi.OK(c, http.StatusOK, order, usedFallback)
}

// TrackOrder godoc
// @Summary      Track an order
// @Description  Returns the most recent order matching the id and/or email.
// @Tags         orders
// @Produce      json
// @Param        order_id  query     string  false  "Order ID"
// @Param        email     query     string  false  "Customer email"
// @Success      200       {object}  httpapi.Envelope{data=orders.Order}
// @Failure      400       {object}  httpapi.Envelope
// @Failure      404       {object}  httpapi.Envelope
// @Failure      500       {object}  httpapi.Envelope
// @Router       /orders/track [get]
func (h *Handler) TrackOrder(c *gin.Context) {
	orderID := c.Query("order_id")
	if orderID == "" {
		orderID = c.Query("orderId")
	}

	order, usedFallback, err := h.service.Track(c.Request.Context(), orders.TrackQuery{
		OrderID: orderID,
		Email:   c.Query("email"),
	})
	if err != nil {
		writeError(c, err, "failed to track order")
		return
	}
	httpapi.OK(c, http.StatusOK, order, usedFallback)
}

func writeError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, orders.ErrInvalidOrder),
		errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, orders.ErrMissingLookup):
		httpapi.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrNotFound):
		httpapi.Fail(c, http.StatusNotFound, orders.ErrNotFound.Error())
	default:
		httpapi.Fail(c, http.StatusInternalServerError, message)
	}
}
