package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and the cross-section rules. The service
// refuses to start on an invalid config.
func (c *Config) Validate() error {
	var errs []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, e := range verrs {
			errs = append(errs, formatFieldError(e))
		}
	}

	errs = append(errs, c.crossChecks()...)

	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}

func (c *Config) crossChecks() []string {
	var errs []string

	if c.Audio.Store == "minio" {
		if c.Audio.MinIO.Endpoint == "" {
			errs = append(errs, "audio.minio.endpoint is required when store is minio")
		}
		if c.Audio.MinIO.Bucket == "" {
			errs = append(errs, "audio.minio.bucket is required when store is minio")
		}
	}

	if c.Speech.Recognizer == "deepgram" && c.Speech.Deepgram.APIKey == "" {
		errs = append(errs, "speech.deepgram.api_key is required when recognizer is deepgram")
	}

	return errs
}

func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, e.Param())
	case "required_unless":
		return fmt.Sprintf("%s is required unless %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatFieldPath converts "Config.Storage.HistoryLimit" to "storage.historylimit".
func formatFieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}

	return strings.Join(parts, ".")
}
