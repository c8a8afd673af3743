// Package validation wraps go-playground/validator and converts its failures
// into domain validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/humidorapp/humidor-server/internal/domain"
	domainerrors "github.com/humidorapp/humidor-server/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the json tag as field name and the
// "flavor" tag registered.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("flavor", func(fl validator.FieldLevel) bool {
		return domain.IsFlavor(fl.Field().String())
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a *errors.Error on failure.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// ValidateReview checks a review against mode. Nothing is mutated by a
// failing review, so callers run this before touching any state.
func (v *Validator) ValidateReview(r domain.Review, mode domain.ReviewMode) error {
	fields := make(map[string]string)

	if err := v.v.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, e := range verrs {
			fields[fieldName(e)] = friendlyMessage(e)
		}
	}

	if mode == domain.ReviewFull {
		if len(r.Flavors) == 0 {
			setOnce(fields, "flavors", "is required")
		}
		if r.BurnQuality == nil {
			setOnce(fields, "burn_quality", "is required")
		}
		if r.DrawQuality == nil {
			setOnce(fields, "draw_quality", "is required")
		}
		if r.AshQuality == nil {
			setOnce(fields, "ash_quality", "is required")
		}
	}

	if len(fields) > 0 {
		return domainerrors.ValidationWithDetails("invalid review", fields)
	}
	return nil
}

func setOnce(m map[string]string, k, v string) {
	if _, ok := m[k]; !ok {
		m[k] = v
	}
}

func (v *Validator) formatError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[fieldName(e)] = friendlyMessage(e)
	}
	return domainerrors.ValidationWithDetails("validation failed", fields)
}

// fieldName keeps the index for slice elements: "flavors[1]".
func fieldName(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "flavor":
		return fmt.Sprintf("%q is not a known flavor", e.Value())
	default:
		return "is invalid"
	}
}
