package service

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/contacts-book/internal/model"
	public "gitlab.com/dirk.krummacker/contacts-book/pkg/model"
)

// respondError translates an error into the HTTP response. It is the only place where internal
// errors become status codes.
func (h *handler) respondError(c *gin.Context, err error) {
	var validationErr *public.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"message":    "invalid request",
			"violations": validationErr.Violations,
		})
	case errors.Is(err, model.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
	case errors.Is(err, model.ErrConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "Account already exists"})
	case errors.Is(err, model.ErrUnauthorized):
		c.Header("WWW-Authenticate", "Bearer")
		message := strings.TrimPrefix(err.Error(), model.ErrUnauthorized.Error()+": ")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": message})
	default:
		h.deps.Logger.ErrorContext(c.Request.Context(), "request failed",
			"error", err,
			"correlation_id", correlationIDOf(c),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	}
}
