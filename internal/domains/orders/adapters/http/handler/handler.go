package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	httpmapper "github.com/Apurer/northwind-orders/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/northwind-orders/internal/domains/orders/ports"
	apierrors "github.com/Apurer/northwind-orders/internal/shared/errors"
)

const (
	defaultPageSize = 20
	// IdempotencyKeyHeader lets clients retry order placement safely.
	IdempotencyKeyHeader = "Idempotency-Key"
)

// Handler serves the order API over gin.
type Handler struct {
	service   ports.Service
	placement ports.PlacementOrchestrator
	responder *apierrors.Responder
}

// New wires dependencies. A nil responder gets one with the order problem mapper.
func New(service ports.Service, placement ports.PlacementOrchestrator, responder *apierrors.Responder) *Handler {
	if responder == nil {
		responder = apierrors.NewResponder("", ProblemMapper)
	}
	return &Handler{service: service, placement: placement, responder: responder}
}

// Register mounts the order routes on r.
func (h *Handler) Register(r gin.IRouter) {
	orders := r.Group("/orders")
	orders.GET("", h.ListOrders)
	orders.POST("", h.PlaceOrder)
	orders.GET("/:id", h.GetOrder)
	orders.PUT("/:id", h.ReplaceOrder)
	orders.DELETE("/:id", h.DeleteOrder)

	r.GET("/employees/:id/reports", h.DirectReports)
	r.GET("/categories/:id/products", h.ProductsInCategory)
}

// Get /api/orders?skip=&count=
func (h *Handler) ListOrders(c *gin.Context) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	count, err := queryInt(c, "count", defaultPageSize)
	if err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	orders, err := h.service.ListOrders(c.Request.Context(), ports.Page{Skip: skip, Count: count})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpmapper.FromDomainOrders(orders))
}

// Get /api/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	order, err := h.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpmapper.FromDomainOrder(order))
}

// Post /api/orders
func (h *Handler) PlaceOrder(c *gin.Context) {
	var payload httpmapper.Order
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	order, err := httpmapper.ToDomainOrder(payload)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	order.ID = 0
	placed, err := h.placement.PlaceOrder(c.Request.Context(), ports.PlacementRequest{
		Order:          *order,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)),
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("%s/%d", strings.TrimSuffix(c.Request.URL.Path, "/"), placed.ID))
	c.JSON(http.StatusCreated, httpmapper.FromDomainOrder(placed))
}

// Put /api/orders/:id
func (h *Handler) ReplaceOrder(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var payload httpmapper.Order
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	payload.ID = id
	order, err := httpmapper.ToDomainOrder(payload)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	updated, err := h.service.ReplaceOrder(c.Request.Context(), order)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpmapper.FromDomainOrder(updated))
}

// Delete /api/orders/:id
func (h *Handler) DeleteOrder(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteOrder(c.Request.Context(), id); err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /api/employees/:id/reports
func (h *Handler) DirectReports(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	reports, err := h.service.DirectReports(c.Request.Context(), id)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employeeId": id, "directReports": reports})
}

// Get /api/categories/:id/products
func (h *Handler) ProductsInCategory(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	products, err := h.service.ProductsInCategory(c.Request.Context(), id)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpmapper.FromDomainProducts(products))
}

func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.responder.BadRequest(c, fmt.Sprintf("id must be an integer, got %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return v, nil
}
