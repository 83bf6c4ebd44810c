package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/buildmat/internal/domain/models"
	apperrors "github.com/mamadbah2/buildmat/internal/errors"
)

var materialValidate *validator.Validate

func init() {
	materialValidate = validator.New()

	materialValidate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	// Decimals are compared as floats so the numeric tags (gt, lte, ...) apply.
	materialValidate.RegisterCustomTypeFunc(func(v reflect.Value) any {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	_ = materialValidate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Known()
	})
}

// normalize trims free text and canonicalizes the category spelling.
func normalize(m models.Material) models.Material {
	m.Name = strings.TrimSpace(m.Name)
	m.Unit = strings.TrimSpace(m.Unit)
	m.Supplier = strings.TrimSpace(m.Supplier)
	if c, ok := models.ParseCategory(string(m.Category)); ok {
		m.Category = c
	}
	return m
}

func validateMaterial(m models.Material) error {
	err := materialValidate.Struct(m)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Validation("invalid material: %v", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describeFieldError(fe))
	}
	return apperrors.Validation("invalid material: %s", strings.Join(problems, "; ")).
		WithContext("fields", len(problems))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "category":
		return fmt.Sprintf("category %q is not recognised", fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be positive", fe.Field())
	case "gte", "lte":
		return fmt.Sprintf("%s must be between 0 and 100", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
