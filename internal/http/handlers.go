package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel"

	"afrilink/internal/auth"
	"afrilink/internal/domain"
	"afrilink/internal/repository"
	"afrilink/internal/service"
)

const tracerName = "afrilink/internal/http"

type Server struct {
	engine        *gin.Engine
	products      *service.ProductService
	notifications *service.NotificationService
	authn         *auth.Authenticator
	metrics       *Metrics
}

// NewServer wires the router. metrics may be nil.
func NewServer(products *service.ProductService, notifications *service.NotificationService, authn *auth.Authenticator, metrics *Metrics) *Server {
	r := gin.New()
	r.Use(gin.Recovery(), Tracing(otel.Tracer(tracerName)), RequestLogger())
	if metrics != nil {
		r.Use(metrics.Middleware())
	}
	s := &Server{engine: r, products: products, notifications: notifications, authn: authn, metrics: metrics}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	v1.GET("/ping", s.ping)

	authed := v1.Group("", s.authenticate)
	{
		products := authed.Group("/products")
		products.GET("", s.listMarketplace)
		products.POST("", requireRole(domain.RoleVendor), s.createProduct)
		products.GET(":id", s.getProduct)
		products.POST(":id/takedown", s.transition(domain.ActionRequestTakedown))
		products.POST(":id/transitions", s.applyTransition)

		vendor := authed.Group("/vendor", requireRole(domain.RoleVendor))
		vendor.GET("/products", s.listVendorProducts)
		vendor.GET("/stats", s.vendorStats)

		admin := authed.Group("/admin", requireRole(domain.RoleAdmin))
		admin.GET("/products", s.listProductsByStatus)
		admin.POST("/products/:id/approve", s.transition(domain.ActionApprove))
		admin.POST("/products/:id/reject", s.transition(domain.ActionReject))
		admin.POST("/products/:id/takedown/approve", s.transition(domain.ActionApproveTakedown))
		admin.POST("/products/:id/takedown/reject", s.transition(domain.ActionRejectTakedown))

		notifications := authed.Group("/notifications")
		notifications.GET("", s.listNotifications)
		notifications.GET("/stream", s.streamNotifications)
		notifications.POST("/read-all", s.markAllNotificationsRead)
		notifications.POST("/:id/read", s.markNotificationRead)
		notifications.DELETE("/:id", s.deleteNotification)
		notifications.DELETE("", s.clearNotifications)
	}
}

// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func (s *Server) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// @Summary Create product
// @Description Vendor only. The product starts in pending status.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body service.CreateProductInput true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req service.CreateProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.products.CreateProduct(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} map[string]string
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	p, err := s.products.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Marketplace listing
// @Description Approved products only.
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param q query string false "Title contains"
// @Param min_price query int false "Min price"
// @Param max_price query int false "Max price"
// @Success 200 {array} domain.Product
// @Failure 400 {object} map[string]string
// @Router /products [get]
func (s *Server) listMarketplace(c *gin.Context) {
	q := service.MarketQuery{Title: c.Query("q")}
	var err error
	if q.MinPrice, err = parsePrice(c.Query("min_price")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_price"})
		return
	}
	if q.MaxPrice, err = parsePrice(c.Query("max_price")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_price"})
		return
	}
	list, err := s.products.ListMarketplace(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Vendor products
// @Description All products of the calling vendor in every status, newest first.
// @Tags vendor
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Product
// @Failure 403 {object} map[string]string
// @Router /vendor/products [get]
func (s *Server) listVendorProducts(c *gin.Context) {
	list, err := s.products.ListVendorProducts(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Vendor statistics
// @Tags vendor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.VendorStats
// @Failure 403 {object} map[string]string
// @Router /vendor/stats [get]
func (s *Server) vendorStats(c *gin.Context) {
	st, err := s.products.VendorStats(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary Moderation queue
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "all, pending, approved, rejected, pending_takedown, taken_down" default(all)
// @Success 200 {array} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /admin/products [get]
func (s *Server) listProductsByStatus(c *gin.Context) {
	list, err := s.products.ListProductsByStatus(c.Request.Context(), c.DefaultQuery("status", service.FilterAll))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type transitionReq struct {
	Action domain.Action `json:"action"`
}

// @Summary Apply a lifecycle action
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param input body transitionReq true "Action"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /products/{id}/transitions [post]
func (s *Server) applyTransition(c *gin.Context) {
	var req transitionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	s.doTransition(c, req.Action)
}

// transition serves the fixed-action routes, e.g. POST /admin/products/{id}/approve.
func (s *Server) transition(action domain.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.doTransition(c, action)
	}
}

func (s *Server) doTransition(c *gin.Context, action domain.Action) {
	p, err := s.products.ApplyTransition(c.Request.Context(), actorFrom(c), c.Param("id"), action)
	if s.metrics != nil {
		s.metrics.ObserveTransition(action, err)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func parsePrice(v string) (*int64, error) {
	if v == "" {
		return nil, nil
	}
	x, err := strconv.ParseInt(v, 10, 64)
	if err != nil || x < 0 {
		return nil, service.ErrInvalidInput
	}
	return &x, nil
}

func writeError(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, domain.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, repository.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
