// Package validators plugs go-playground/validator into Echo.
package validators

import (
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9._]{3,30}$`)

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns a validator with the application's custom rules registered.
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("username", validateUsername)
	return &CustomValidator{validator: v}
}

// Validate rejects invalid requests with 400 Bad Request.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// validateUsername accepts 3 to 30 lowercase letters, digits, dots and underscores.
func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}
