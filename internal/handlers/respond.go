package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"kart_back_end/internal/apierror"
)

// Validation messages name fields by their JSON key.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// RespondError renders any error as {code, message}. Errors outside the
// taxonomy become a generic 500; services log the cause before returning.
func RespondError(c *gin.Context, err error) {
	apiErr := apierror.Wrap(err)
	c.JSON(apiErr.Status(), gin.H{
		"code":    apiErr.Status(),
		"message": apiErr.Message,
	})
}

// BindError turns a gin binding failure into an InvalidRequest error with a
// readable message.
func BindError(err error) *apierror.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierror.InvalidRequest("Invalid request body")
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return apierror.InvalidRequest(strings.Join(msgs, ", "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	case "min", "gte":
		return fmt.Sprintf("%q must be greater than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}
