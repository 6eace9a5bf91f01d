package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/lmsdash/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var flagNames = map[string]string{
	"BaseURL":         "--url",
	"Timeout":         "--timeout",
	"RefreshInterval": "--refresh-interval",
	"RawLimit":        "--raw-limit",
	"LogLevel":        "--log-level",
	"MetricsAddr":     "--metrics-addr",
}

// Validate checks resolved settings and reports problems by flag name.
func Validate(cfg model.Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := flagNames[fe.Field()]
		if name == "" {
			name = fe.Field()
		}
		msgs = append(msgs, fmt.Sprintf("%s: invalid value %v (%s)", name, fe.Value(), describeTag(fe)))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "url":
		return "must be an absolute URL"
	case "min", "gte":
		return "must be >= " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "hostname_port":
		return "must be host:port"
	default:
		return fe.Tag()
	}
}
