package httpserver

import (
	"context"
	"net/http"
	"strconv"

	"bookstore/internal/domain"
	cartsvc "bookstore/internal/service/cart"
	ordersvc "bookstore/internal/service/order"
	"bookstore/internal/uow"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type handlers struct {
	deps   Deps
	logger *zap.Logger
}

type updateCartRequest struct {
	BillingAddressID  *string `json:"billingAddressId"`
	ShippingAddressID *string `json:"shippingAddressId"`
	DeliveryMethod    *string `json:"deliveryMethod"`
}

type addLineItemRequest struct {
	BookID   string `json:"bookId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0,max=2147483647"`
}

type removeLineItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0,max=2147483647"`
}

type createOrderRequest struct {
	CartID        string `json:"cartId" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

type orderList struct {
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
	Count   int            `json:"count"`
	Results []domain.Order `json:"results"`
}

func (h *handlers) fail(c *gin.Context, op string, err error) {
	if errorStatus(err) >= http.StatusInternalServerError {
		h.logger.Error("handler failed", zap.String("op", op), zap.Error(err))
	}
	writeError(c, err)
}

// ownedCart loads the cart and hides it from anyone but its owner.
func ownedCart(ctx context.Context, svc cartService, tx uow.Tx, customer *domain.Customer, cartID string) error {
	cart, err := svc.Find(ctx, tx, cartID, false)
	if err != nil {
		return err
	}
	if cart.CustomerID != customer.ID {
		return domain.ErrCartNotFound
	}
	return nil
}

func (h *handlers) createCart(c *gin.Context) {
	customer := customerFrom(c)
	cart, err := uow.Do(c.Request.Context(), h.deps.Runner, func(ctx context.Context, tx uow.Tx) (*domain.Cart, error) {
		return h.deps.CartSvc.Create(ctx, tx, customer.ID)
	})
	if err != nil {
		h.fail(c, "create cart", err)
		return
	}
	c.JSON(http.StatusCreated, cart)
}

func (h *handlers) activeCart(c *gin.Context) {
	customer := customerFrom(c)
	cart, err := uow.Do(c.Request.Context(), h.deps.Runner, func(ctx context.Context, tx uow.Tx) (*domain.Cart, error) {
		return h.deps.CartSvc.FindActiveByCustomer(ctx, tx, customer.ID)
	})
	if err != nil {
		h.fail(c, "active cart", err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) getCart(c *gin.Context) {
	customer := customerFrom(c)
	cartID := c.Param("id")
	cart, err := uow.Do(c.Request.Context(), h.deps.Runner, func(ctx context.Context, tx uow.Tx) (*domain.Cart, error) {
		if err := ownedCart(ctx, h.deps.CartSvc, tx, customer, cartID); err != nil {
			return nil, err
		}
		return h.deps.CartSvc.Find(ctx, tx, cartID, true)
	})
	if err != nil {
		h.fail(c, "get cart", err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) updateCart(c *gin.Context) {
	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	customer := customerFrom(c)
	cartID := c.Param("id")
	cart, err := uow.Do(c.Request.Context(), h.deps.Runner, func(ctx context.Context, tx uow.Tx) (*domain.Cart, error) {
		if err := ownedCart(ctx, h.deps.CartSvc, tx, customer, cartID); err != nil {
			return nil, err
		}
		return h.deps.CartSvc.Update(ctx, tx, cartID, domain.CartPatch{
			BillingAddressID:  req.BillingAddressID,
			ShippingAddressID: req.ShippingAddressID,
			DeliveryMethod:    req.DeliveryMethod,
		})
	})
	if err != nil {
		h.fail(c, "update cart", err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) deleteCart(c *gin.Context) {
	customer := customerFrom(c)
	cartID := c.Param("id")
	err := h.deps.Runner.Run(c.Request.Context(), func(ctx context.Context, tx uow.Tx) error {
		if err := ownedCart(ctx, h.deps.CartSvc, tx, customer, cartID); err != nil {
			return err
		}
		return h.deps.CartSvc.Delete(ctx, tx, cartID)
	})
	if err != nil {
		h.fail(c, "delete cart", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) addLineItem(c *gin.Context) {
	var req addLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("bookId and a positive quantity are required"))
		return
	}
	customer := customerFrom(c)
	cartID := c.Param("id")
	cart, err := uow.Do(c.Request.Context(), h.deps.Runner, func(ctx context.Context, tx uow.Tx) (*domain.Cart, error) {
		if err := ownedCart(ctx, h.deps.CartSvc, tx, customer, cartID); err != nil {
			return nil, err
		}
		return h.deps.CartSvc.AddLineItem(ctx, tx, cartID, cartsvc.AddLineItemInput{BookID: req.BookID, Quantity: req.Quantity})
	})
	if err != nil {
		h.fail(c, "add line item", err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) removeLineItem(c *gin.Context) {
	var req removeLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("a positive quantity is required"))
		return
	}
	customer := customerFrom(c)
	cartID := c.Param("id")
	cart, err := uow.Do(c.Request.Context(), h.deps.Runner, func(ctx context.Context, tx uow.Tx) (*domain.Cart, error) {
		if err := ownedCart(ctx, h.deps.CartSvc, tx, customer, cartID); err != nil {
			return nil, err
		}
		return h.deps.CartSvc.RemoveLineItem(ctx, tx, cartID, cartsvc.RemoveLineItemInput{
			LineItemID: c.Param("lineItemId"),
			Quantity:   req.Quantity,
		})
	})
	if err != nil {
		h.fail(c, "remove line item", err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("cartId and paymentMethod are required"))
		return
	}
	customer := customerFrom(c)
	order, err := uow.Do(c.Request.Context(), h.deps.Runner, func(ctx context.Context, tx uow.Tx) (*domain.Order, error) {
		return h.deps.OrderSvc.Create(ctx, tx, customer.ID, ordersvc.CreateInput{
			CartID:        req.CartID,
			PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		})
	})
	if err != nil {
		h.fail(c, "create order", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *handlers) listOrders(c *gin.Context) {
	page := domain.Page{
		Limit:  queryInt(c, "limit"),
		Offset: queryInt(c, "offset"),
	}.Normalize()
	customer := customerFrom(c)
	orders, err := uow.Do(c.Request.Context(), h.deps.Runner, func(ctx context.Context, tx uow.Tx) ([]domain.Order, error) {
		return h.deps.OrderSvc.FindByCustomer(ctx, tx, customer.ID, page)
	})
	if err != nil {
		h.fail(c, "list orders", err)
		return
	}
	c.JSON(http.StatusOK, orderList{
		Limit:   page.Limit,
		Offset:  page.Offset,
		Count:   len(orders),
		Results: orders,
	})
}

func (h *handlers) getOrder(c *gin.Context) {
	customer := customerFrom(c)
	order, err := uow.Do(c.Request.Context(), h.deps.Runner, func(ctx context.Context, tx uow.Tx) (*domain.Order, error) {
		return h.deps.OrderSvc.Find(ctx, tx, c.Param("id"))
	})
	if err == nil && order.CustomerID != customer.ID {
		err = domain.ErrOrderNotFound
	}
	if err != nil {
		h.fail(c, "get order", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *handlers) listBooks(c *gin.Context) {
	books, err := uow.Do(c.Request.Context(), h.deps.Runner, func(ctx context.Context, tx uow.Tx) ([]domain.Book, error) {
		return h.deps.BookSvc.List(ctx, tx)
	})
	if err != nil {
		h.fail(c, "list books", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(books), "results": books})
}

func (h *handlers) getBook(c *gin.Context) {
	book, err := uow.Do(c.Request.Context(), h.deps.Runner, func(ctx context.Context, tx uow.Tx) (*domain.Book, error) {
		return h.deps.BookSvc.Get(ctx, tx, c.Param("id"))
	})
	if err != nil {
		h.fail(c, "get book", err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}
