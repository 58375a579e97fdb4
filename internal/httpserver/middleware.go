package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bookstore/internal/domain"
	"bookstore/internal/uow"
	"github.com/gin-gonic/gin"
)

// userHeader carries the user id established by the gateway in front of
// the API.
const userHeader = "X-User-ID"

type ctxKey string

const customerCtxKey ctxKey = "customer"

func customerMiddleware(runner uow.Runner, svc customerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(userHeader))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("missing " + userHeader))
			return
		}
		customer, err := uow.Do(c.Request.Context(), runner, func(ctx context.Context, tx uow.Tx) (*domain.Customer, error) {
			return svc.Resolve(ctx, tx, userID)
		})
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("unknown customer"))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("failed to resolve customer"))
			return
		}
		ctx := context.WithValue(c.Request.Context(), customerCtxKey, customer)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func customerFrom(c *gin.Context) *domain.Customer {
	customer, _ := c.Request.Context().Value(customerCtxKey).(*domain.Customer)
	return customer
}

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

// errorStatus maps core errors to HTTP statuses. Carts of other customers
// look missing.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrCartOwnership), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := errorStatus(err)
	switch {
	case status == http.StatusInternalServerError:
		c.JSON(status, errorBody("internal error"))
	case errors.Is(err, domain.ErrCartOwnership):
		c.JSON(status, errorBody(domain.ErrCartNotFound.Error()))
	default:
		c.JSON(status, errorBody(err.Error()))
	}
}
