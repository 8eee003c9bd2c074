package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// Binding and validation failures.
var (
	ErrValidation = errors.New("validation failed")
	ErrBinding    = errors.New("binding failed")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator. Besides the built-in tags it knows:
//
//	notempty  string is non-blank after trimming
//	uuid      string is empty or a UUID
//	lang      string is empty, "auto", or a catalog language
//	target    string is a catalog language other than "auto"
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form", "uri"} {
				name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})

		_ = validate.RegisterValidation("notempty", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = validate.RegisterValidation("uuid", func(fl validator.FieldLevel) bool {
			v := fl.Field().String()
			if v == "" {
				return true
			}
			_, err := uuid.Parse(v)
			return err == nil
		})
		_ = validate.RegisterValidation("lang", func(fl validator.FieldLevel) bool {
			v := strings.ToLower(strings.TrimSpace(fl.Field().String()))
			return v == "" || domain.ValidateSource(v) == nil
		})
		_ = validate.RegisterValidation("target", func(fl validator.FieldLevel) bool {
			return domain.ValidateTarget(strings.ToLower(strings.TrimSpace(fl.Field().String()))) == nil
		})
	})

	return validate
}

// Validate checks the struct tags of v.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// BindAndValidate decodes the JSON body into v and validates it.
func BindAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// BindQueryAndValidate decodes query parameters into v and validates it.
func BindQueryAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindQuery(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// BindFormAndValidate decodes multipart or urlencoded form fields into v and validates it.
func BindFormAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBind(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// ValidationErrors flattens validator failures into field messages.
func ValidationErrors(err error) map[string]string {
	out := make(map[string]string)

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			out[fe.Field()] = validationMessage(fe)
		}
	}

	return out
}

// IsValidationError reports whether err carries validator field errors.
func IsValidationError(err error) bool {
	var fieldErrs validator.ValidationErrors
	return errors.As(err, &fieldErrs)
}

var validationMessages = map[string]string{
	"required": "this field is required",
	"notempty": "must not be blank",
	"uuid":     "must be a valid UUID",
	"lang":     "unsupported language",
	"target":   "must be a supported language other than auto",
	"gte":      "must be greater than or equal to {param}",
	"lte":      "must be less than or equal to {param}",
	"oneof":    "must be one of: {param}",
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min", "max":
		unit := ""
		if fe.Kind() == reflect.String {
			unit = " characters"
		}
		if fe.Tag() == "min" {
			return "must be at least " + fe.Param() + unit
		}
		return "must be at most " + fe.Param() + unit
	}

	if msg, ok := validationMessages[fe.Tag()]; ok {
		return strings.ReplaceAll(msg, "{param}", strings.ReplaceAll(fe.Param(), " ", ", "))
	}

	return "failed validation: " + fe.Tag()
}
