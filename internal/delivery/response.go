package delivery

import (
	"errors"
	"net/http"

	"user_service/internal/domain"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func errorJSON(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorResponse{Error: message})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidUser):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrNoUsers):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// domainError writes err as {"error": ...}. Persistence causes are never sent.
func domainError(c *gin.Context, err error) {
	errorJSON(c, mapErrorToStatus(err), domain.PublicMessage(err))
}
