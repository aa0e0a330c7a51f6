package feedback

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rana-ox/testing-d1/internal/errs"
	"github.com/rana-ox/testing-d1/internal/params"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report failures under the wire names clients send.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Postgres TEXT cannot hold NUL bytes.
	validate.RegisterValidation("nonul", func(fl validator.FieldLevel) bool {
		return !strings.ContainsRune(fl.Field().String(), 0)
	})
}

var fieldMessages = map[string]string{
	"page_slug": "page_slug must not be empty",
	"rating":    "rating must be an integer between 1 and 5",
	"comment":   "comment must not be empty",
}

// Validate applies the submission schema to decoded fields:
//
//	page_slug  optional string, "index" when missing or blank
//	username   optional string, "" when missing
//	comment    required string, trimmed, non-empty
//	rating     required integer in [1,5]
//
// No string field may contain a NUL character.
// Defaults are filled in first, then the whole draft is checked at once.
func Validate(fields params.Fields) (Draft, error) {
	draft := Draft{
		PageSlug: params.DefaultPageSlug,
	}

	if slug, ok := fields.String("page_slug"); ok && strings.TrimSpace(slug) != "" {
		draft.PageSlug = slug
	}
	if username, ok := fields.String("username"); ok {
		draft.Username = username
	}
	if comment, ok := fields.String("comment"); ok {
		draft.Comment = strings.TrimSpace(comment)
	}
	// Anything that is not a whole number is left at 0 and fails the range check.
	if rating, ok := fields.Number("rating"); ok && isWholeNumber(rating) && math.Abs(rating) <= 1e9 {
		draft.Rating = int(rating)
	}

	if err := validate.Struct(draft); err != nil {
		return Draft{}, invalidInput(err)
	}
	return draft, nil
}

func isWholeNumber(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f)
}

func invalidInput(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.Wrap(errs.KindInvalidInput, err)
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()]
		if fe.Tag() == "nonul" {
			msg, ok = fe.Field()+" must not contain NUL characters", true
		}
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		details = append(details, msg)
	}
	return errs.Wrap(errs.KindInvalidInput, err, details...)
}
