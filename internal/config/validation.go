package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks struct tags and the rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if strings.ContainsAny(cfg.ServerName, " \t:") {
		return fmt.Errorf("server_name: must not contain spaces or colons (%q)", cfg.ServerName)
	}

	if cfg.HTTPAddr != "" && cfg.HTTPAddr == cfg.Addr {
		return fmt.Errorf("http_addr: must differ from addr (%q)", cfg.Addr)
	}

	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)", e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
