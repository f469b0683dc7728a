package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/clientbase-backend/internal/services"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondResult writes a mutation Result with the status its kind maps to.
// Successful creates answer 201.
func RespondResult(c *gin.Context, res services.Result, created bool) {
	status := StatusFor(res.Kind)
	if res.Success && created {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

func StatusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindNone:
		return http.StatusOK
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
