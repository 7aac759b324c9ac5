package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/trattoria/internal/domain/errors"
	"github.com/polkiloo/trattoria/internal/live"
	pkgAuth "github.com/polkiloo/trattoria/internal/pkg/auth"
	"github.com/polkiloo/trattoria/internal/server/http/dto"
	"github.com/polkiloo/trattoria/internal/server/http/middleware"
	"github.com/polkiloo/trattoria/internal/usecase"
)

// CurrentClaims extracts authenticated staff claims from context.
func CurrentClaims(c *gin.Context) pkgAuth.Claims {
	claims, _ := middleware.Claims(c)
	return claims
}

func currentActor(c *gin.Context) usecase.Actor {
	claims := CurrentClaims(c)
	return usecase.Actor{StaffID: claims.StaffID, Role: claims.Role}
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrInvalidTransition),
		errors.Is(err, domainErrors.ErrAlreadyExists),
		errors.Is(err, domainErrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domainErrors.ErrUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainErrors.ErrInsufficientPayment):
		return http.StatusPaymentRequired
	case errors.Is(err, domainErrors.ErrAuthenticationRequired),
		errors.Is(err, domainErrors.ErrInvalidCredentials),
		errors.Is(err, pkgAuth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domainErrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domainErrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, live.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondErr(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, dto.ErrorResponse{Error: "internal"})
		return
	}
	kind := domainErrors.Kind(err)
	if kind == "" {
		kind = err.Error()
	}
	c.JSON(status, dto.ErrorResponse{Error: kind, Message: err.Error()})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: domainErrors.ErrInvalidInput.Error(), Message: message})
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
