package tracker

import (
	"errors"

	v "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/creatorstation/tracker/internal/models"
)

// FieldErrors maps a JSON field name to a user-facing message.
type FieldErrors map[string]string

func (f FieldErrors) Valid() bool {
	return len(f) == 0
}

// Validate checks a draft without side effects. An empty result means valid.
func Validate(d models.Draft) FieldErrors {
	out := FieldErrors{}

	err := d.Validate()
	if err == nil {
		return out
	}

	var errs v.Errors
	if !errors.As(err, &errs) {
		out["draft"] = err.Error()
		return out
	}
	for field, fieldErr := range errs {
		out[field] = fieldErr.Error()
	}
	return out
}
