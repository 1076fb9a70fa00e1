package interfaces

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"jobselect/domain"
)

type errorResponse struct {
	Error string      `json:"error"`
	Code  domain.Kind `json:"code"`
	Field string      `json:"field,omitempty"`
}

// writeError renders err with its kind's status. Internal causes stay in the log.
func writeError(c *gin.Context, err error) {
	de := domain.AsError(err)
	_ = c.Error(err)
	c.JSON(de.Kind.HTTPStatus(), errorResponse{
		Error: de.UserMessage(),
		Code:  de.Kind,
		Field: de.Field,
	})
}

// bindError converts a gin binding failure into a field-level validation error.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := lowerFirst(fe.Field())
		return domain.FieldError(domain.KindValidationFailed, field, "%s is invalid (%s)", field, fe.Tag())
	}
	return domain.NewError(domain.KindValidationFailed, "malformed request body", err)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
