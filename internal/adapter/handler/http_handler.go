package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type HTTPHandler struct {
	stockService StockService
	logger       *zap.Logger
}

type CreateOrUpdateHTTPRequest struct {
	InitialStock *int `json:"initial_stock" binding:"required"`
}

type AdjustHTTPRequest struct {
	Quantity int `json:"quantity"`
}

type StockHTTPResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ProductID int64  `json:"product_id,omitempty"`
	Remaining *int   `json:"remaining,omitempty"`
}

func NewHTTPHandler(stockService StockService, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{stockService: stockService, logger: logger}
}

// NewRouter builds the gin engine serving the stock API, health and metrics.
func NewRouter(h *HTTPHandler, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(Logger(h.logger))

	v1 := router.Group("/api/v1/stocks")
	{
		v1.PUT("/:productId", h.CreateOrUpdate)
		v1.GET("/:productId", h.GetRemaining)
		v1.POST("/:productId/increase", h.IncreaseRemaining)
		v1.POST("/:productId/decrease", h.DecreaseRemaining)
	}

	router.GET("/health", h.HealthCheck)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return router
}

func (h *HTTPHandler) CreateOrUpdate(c *gin.Context) {
	productID, ok := h.productID(c)
	if !ok {
		return
	}

	var req CreateOrUpdateHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, StockHTTPResponse{Message: "invalid request body"})
		return
	}

	remaining, err := h.stockService.CreateOrUpdate(c.Request.Context(), productID, *req.InitialStock)
	if err != nil {
		h.writeError(c, productID, err)
		return
	}

	c.JSON(http.StatusOK, StockHTTPResponse{
		Success:   true,
		Message:   "stock saved",
		ProductID: productID,
		Remaining: &remaining,
	})
}

func (h *HTTPHandler) GetRemaining(c *gin.Context) {
	productID, ok := h.productID(c)
	if !ok {
		return
	}

	remaining, err := h.stockService.GetRemaining(c.Request.Context(), productID)
	if err != nil {
		h.writeError(c, productID, err)
		return
	}

	c.JSON(http.StatusOK, StockHTTPResponse{
		Success:   true,
		Message:   "ok",
		ProductID: productID,
		Remaining: &remaining,
	})
}

func (h *HTTPHandler) IncreaseRemaining(c *gin.Context) {
	h.adjust(c, "remaining stock increased", h.stockService.IncreaseRemaining)
}

func (h *HTTPHandler) DecreaseRemaining(c *gin.Context) {
	h.adjust(c, "remaining stock decreased", h.stockService.DecreaseRemaining)
}

func (h *HTTPHandler) adjust(c *gin.Context, message string, apply func(ctx context.Context, productID int64, quantity int) error) {
	productID, ok := h.productID(c)
	if !ok {
		return
	}

	var req AdjustHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, StockHTTPResponse{Message: "invalid request body"})
		return
	}

	if err := apply(c.Request.Context(), productID, req.Quantity); err != nil {
		h.writeError(c, productID, err)
		return
	}

	c.JSON(http.StatusOK, StockHTTPResponse{
		Success:   true,
		Message:   message,
		ProductID: productID,
	})
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) productID(c *gin.Context) (int64, bool) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil || productID <= 0 {
		c.JSON(http.StatusBadRequest, StockHTTPResponse{Message: "invalid product id"})
		return 0, false
	}
	return productID, true
}

func (h *HTTPHandler) writeError(c *gin.Context, productID int64, err error) {
	m := mapError(err)
	if m.httpCode >= http.StatusInternalServerError {
		h.logger.Error("stock request failed",
			zap.Int64("product_id", productID),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	c.JSON(m.httpCode, StockHTTPResponse{
		Message:   m.message,
		ProductID: productID,
	})
}
