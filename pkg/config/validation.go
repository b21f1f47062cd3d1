package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the configuration against its struct validation tags and
// cross-field rules the tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q validation (value: %v)",
					fieldPath(fe), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid configuration:\n  %s", strings.Join(msgs, "\n  "))
		}
		return err
	}

	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	apiPort := cfg.API.Port
	if apiPort == 0 {
		apiPort = 8080
	}
	if cfg.API.IsEnabled() && cfg.Metrics.Enabled && apiPort == cfg.Metrics.Port {
		return fmt.Errorf("api and metrics servers cannot share port %d", apiPort)
	}

	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

// fieldPath renders a namespaced field like "Config.Logging.Level" as
// "logging.level" for error messages.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns)
}
