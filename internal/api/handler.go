package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"parts-quote-service/internal/apperr"
	"parts-quote-service/internal/models"
	"parts-quote-service/internal/service"
	"parts-quote-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	quotes *service.QuoteService
	orders *service.OrderService
	search *service.SearchService
}

// NewHandler creates a new HTTP handler
func NewHandler(quotes *service.QuoteService, orders *service.OrderService, search *service.SearchService) *Handler {
	return &Handler{
		quotes: quotes,
		orders: orders,
		search: search,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/parts/search", h.searchParts)
		v1.GET("/parts/:partId/compare", h.comparePart)

		v1.POST("/quotes", h.createQuote)
		v1.GET("/quotes", h.listQuotes)
		v1.DELETE("/quotes/:orderId", h.deleteQuote)
		v1.PUT("/quotes/:orderId/supplier", h.updateQuoteSupplier)

		v1.GET("/cart", h.listCartItems)

		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/status/:status", h.listOrdersByStatus)
		v1.POST("/orders/:orderId/checkout", h.checkout)
		v1.POST("/orders/:orderId/process", h.processOrder)
		v1.POST("/orders/:orderId/complete", h.completeOrder)
		v1.POST("/orders/:orderId/cancel", h.cancelOrder)
	}
}

// CreateQuoteRequest is the body for POST /quotes
type CreateQuoteRequest struct {
	OfferID    int64 `json:"offer_id" binding:"required"`
	Quantity   int   `json:"quantity"`
	IsCartItem bool  `json:"is_cart_item"`
}

// UpdateQuoteSupplierRequest is the body for PUT /quotes/:orderId/supplier
type UpdateQuoteSupplierRequest struct {
	NewOfferID int64 `json:"new_offer_id" binding:"required"`
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) searchParts(c *gin.Context) {
	parts, err := h.search.SearchParts(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, parts)
}

func (h *Handler) comparePart(c *gin.Context) {
	comparison, err := h.search.ComparePartOffers(c.Request.Context(), c.Param("partId"), c.Query("sort"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comparison)
}

func (h *Handler) createQuote(c *gin.Context) {
	var req CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.quotes.CreateQuote(c.Request.Context(), req.OfferID, req.Quantity, req.IsCartItem)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) listQuotes(c *gin.Context) {
	orders, err := h.quotes.ListQuotes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) listCartItems(c *gin.Context) {
	orders, err := h.quotes.ListCartItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) deleteQuote(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	if err := h.quotes.DeleteQuote(c.Request.Context(), orderID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) updateQuoteSupplier(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req UpdateQuoteSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.quotes.UpdateQuoteSupplier(c.Request.Context(), orderID, req.NewOfferID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) listOrdersByStatus(c *gin.Context) {
	orders, err := h.orders.ListOrdersByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) checkout(c *gin.Context) {
	transition(c, h.orders.Checkout)
}

func (h *Handler) processOrder(c *gin.Context) {
	transition(c, h.orders.Process)
}

func (h *Handler) completeOrder(c *gin.Context) {
	transition(c, h.orders.Complete)
}

func (h *Handler) cancelOrder(c *gin.Context) {
	transition(c, h.orders.Cancel)
}

func transition(c *gin.Context, op func(ctx context.Context, orderID int64) (*models.Order, error)) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	order, err := op(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func orderIDParam(c *gin.Context) (int64, bool) {
	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return 0, false
	}
	return orderID, true
}

// respondError maps business error kinds to HTTP statuses; anything
// else is a server-side fault surfaced without internals.
func respondError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidArgument:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperr.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperr.KindInsufficientStock, apperr.KindInvalidState:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		util.GetLogger().Error("Unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
