package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ottawa-housing/services"
)

// SalesPage handles GET / requests
func (h *Handler) SalesPage(c *gin.Context) {
	h.renderPage(c, services.PageSales)
}

// RentalsPage handles GET /rentals requests
func (h *Handler) RentalsPage(c *gin.Context) {
	h.renderPage(c, services.PageRentals)
}

func (h *Handler) renderPage(c *gin.Context, name string) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	page, err := h.dashboard.BuildPage(ctx, name)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Failed to build page")
		return
	}

	c.HTML(http.StatusOK, "page", newPageView(page))
}

// GetGraph handles GET /api/graphs/:metric requests. A graph whose data
// could not be read is returned with 502 and its static message.
func (h *Handler) GetGraph(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	graph, err := h.dashboard.BuildGraph(ctx, c.Param("metric"))
	if err != nil {
		if errors.Is(err, services.ErrUnknownMetric) {
			h.handleError(c, err, http.StatusBadRequest, err.Error())
			return
		}
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}

	if graph.Failed() {
		h.handleError(c, errors.New(graph.Error), http.StatusBadGateway, graph.Error)
		return
	}

	c.JSON(http.StatusOK, graph)
}

// GetPage handles GET /api/pages/:name requests
func (h *Handler) GetPage(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	page, err := h.dashboard.BuildPage(ctx, c.Param("name"))
	if err != nil {
		if errors.Is(err, services.ErrUnknownPage) {
			h.handleError(c, err, http.StatusNotFound, err.Error())
			return
		}
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, page)
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   ServiceVersion,
	}

	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			h.logger.Warn("[http] Health check: database unreachable: %v", err)
			status = http.StatusServiceUnavailable
			body["status"] = "DEGRADED"
			body["database"] = "unreachable"
		} else {
			body["database"] = "OK"
		}
	}

	c.JSON(status, body)
}

// handleError logs the error and sends a JSON error body carrying the
// request ID.
func (h *Handler) handleError(c *gin.Context, err error, statusCode int, userMessage string) {
	requestID := requestIDFrom(c)

	h.logger.Error("[http] %s %s failed (request_id=%s, status=%d): %v",
		c.Request.Method, c.Request.URL.Path, requestID, statusCode, err)

	c.JSON(statusCode, gin.H{
		"error":      userMessage,
		"request_id": requestID,
	})
}

func requestIDFrom(c *gin.Context) string {
	if v, ok := c.Get(RequestIDContextKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return "unknown"
}
