package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// errorCase ties a service sentinel to the response it produces. A case with
// a nil sentinel catches anything the earlier cases did not match.
type errorCase struct {
	sentinel error
	status   int
	message  string
}

func match(sentinel error, status int, message string) errorCase {
	return errorCase{sentinel: sentinel, status: status, message: message}
}

func fallback(status int, message string) errorCase {
	return errorCase{status: status, message: message}
}

// respondError writes the ErrorResponse for the first case matching err,
// evaluating cases in order. An unmatched error without a fallback case
// becomes a plain 500.
func respondError(c *gin.Context, err error, cases ...errorCase) {
	for _, cs := range cases {
		if cs.sentinel == nil || errors.Is(err, cs.sentinel) {
			c.JSON(cs.status, NewErrorResponse(c, cs.message))
			return
		}
	}

	c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "internal error"))
}
