package web

import (
	"context"
	"html/template"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ottawa-housing/models"
	"ottawa-housing/services"
	"ottawa-housing/utils"
)

const (
	DefaultTimeout      = 30 * time.Second
	ServiceVersion      = "1.0.0"
	ServiceName         = "ottawa-housing-dashboard"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// Dashboard builds the graphs and pages served over HTTP.
type Dashboard interface {
	BuildGraph(ctx context.Context, key string) (*models.Graph, error)
	BuildPage(ctx context.Context, name string) (*services.Page, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the dashboard pages and JSON API.
type Handler struct {
	dashboard Dashboard
	store     Pinger
	timeout   time.Duration
	logger    *utils.Logger
}

// NewHandler creates a Handler. store may be nil, in which case /health
// does not check the database.
func NewHandler(dashboard Dashboard, store Pinger, timeout time.Duration, logger *utils.Logger) *Handler {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Handler{
		dashboard: dashboard,
		store:     store,
		timeout:   timeout,
		logger:    logger,
	}
}

// Addr formats a listen address for port.
func Addr(port int) string {
	return ":" + strconv.Itoa(port)
}

// SetupRoutes configures all routes on a fresh engine.
func (h *Handler) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(h.logger))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.SetHTMLTemplate(template.Must(template.New("page").Parse(pageTemplate)))

	router.GET("/", h.SalesPage)
	router.GET("/rentals", h.RentalsPage)

	api := router.Group("/api")
	api.GET("/graphs/:metric", h.GetGraph)
	api.GET("/pages/:name", h.GetPage)

	router.GET("/health", h.HealthCheck)

	return router
}
