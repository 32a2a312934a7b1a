package platform

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shopunion/client/internal/domain/affiliate"
)

// configValidator checks platform credential structs.
// Field names in errors use the mapstructure tag (app_key, client_secret...).
var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateConfig maps validation failures to ErrPlatformNotConfigured
func validateConfig(platform affiliate.PlatformCode, cfg any) error {
	err := configValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return fmt.Errorf("%w: %s: %v", affiliate.ErrPlatformNotConfigured, strings.ToLower(platform.String()), err)
	}

	fe := validationErrors[0]
	return fmt.Errorf("%w: %s %s %s", affiliate.ErrPlatformNotConfigured, strings.ToLower(platform.String()), fe.Field(), validationMessage(fe))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
