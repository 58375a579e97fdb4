package httpserver

import (
	"context"
	"errors"
	"strconv"
	"time"

	"bookstore/internal/domain"
	"bookstore/internal/metrics"
	cartsvc "bookstore/internal/service/cart"
	ordersvc "bookstore/internal/service/order"
	"bookstore/internal/uow"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type cartService interface {
	Create(ctx context.Context, tx uow.Tx, customerID string) (*domain.Cart, error)
	Find(ctx context.Context, tx uow.Tx, cartID string, withLines bool) (*domain.Cart, error)
	FindActiveByCustomer(ctx context.Context, tx uow.Tx, customerID string) (*domain.Cart, error)
	Update(ctx context.Context, tx uow.Tx, cartID string, patch domain.CartPatch) (*domain.Cart, error)
	AddLineItem(ctx context.Context, tx uow.Tx, cartID string, in cartsvc.AddLineItemInput) (*domain.Cart, error)
	RemoveLineItem(ctx context.Context, tx uow.Tx, cartID string, in cartsvc.RemoveLineItemInput) (*domain.Cart, error)
	Delete(ctx context.Context, tx uow.Tx, cartID string) error
}

type orderService interface {
	Create(ctx context.Context, tx uow.Tx, creatorID string, in ordersvc.CreateInput) (*domain.Order, error)
	Find(ctx context.Context, tx uow.Tx, orderID string) (*domain.Order, error)
	FindByCustomer(ctx context.Context, tx uow.Tx, customerID string, page domain.Page) ([]domain.Order, error)
}

type bookService interface {
	List(ctx context.Context, tx uow.Tx) ([]domain.Book, error)
	Get(ctx context.Context, tx uow.Tx, id string) (*domain.Book, error)
}

type customerService interface {
	Resolve(ctx context.Context, tx uow.Tx, userID string) (*domain.Customer, error)
}

// Deps carries the collaborators the router needs.
type Deps struct {
	Runner       uow.Runner
	CartSvc      cartService
	OrderSvc     orderService
	BookSvc      bookService
	CustomerSvc  customerService
	Metrics      *metrics.Metrics
	Ready        func(context.Context) error
	AllowOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, deps Deps) (*gin.Engine, error) {
	if deps.Runner == nil || deps.CartSvc == nil || deps.OrderSvc == nil || deps.BookSvc == nil || deps.CustomerSvc == nil {
		return nil, errors.New("httpserver: missing dependencies")
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	if deps.Metrics != nil {
		router.Use(metricsMiddleware(deps.Metrics))
	}
	if len(deps.AllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  deps.AllowOrigins,
			AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", userHeader},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Ready))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	h := &handlers{deps: deps, logger: logger}

	router.GET("/books", h.listBooks)
	router.GET("/books/:id", h.getBook)

	authed := router.Group("/")
	authed.Use(customerMiddleware(deps.Runner, deps.CustomerSvc))
	{
		carts := authed.Group("/carts")
		carts.POST("", h.createCart)
		carts.GET("/active", h.activeCart)
		carts.GET("/:id", h.getCart)
		carts.PATCH("/:id", h.updateCart)
		carts.DELETE("/:id", h.deleteCart)
		carts.POST("/:id/line-items", h.addLineItem)
		carts.DELETE("/:id/line-items/:lineItemId", h.removeLineItem)

		orders := authed.Group("/orders")
		orders.POST("", h.createOrder)
		orders.GET("", h.listOrders)
		orders.GET("/:id", h.getOrder)
	}

	return router, nil
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		m.Requests.WithLabelValues(handler, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	}
}
