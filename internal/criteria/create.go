package criteria

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Number is a numeric input field that accepts either a JSON number or a
// numeric string. An empty string (or null/absent) leaves it unset so that
// form-style payloads can submit "" for untouched fields. A non-numeric,
// non-empty string marks the field invalid rather than failing the whole
// decode, so validation can report it alongside other field errors.
type Number struct {
	value   float64
	set     bool
	invalid bool
}

// NumberOf returns a set Number, for building inputs in code.
func NumberOf(v float64) Number {
	return Number{value: v, set: true}
}

// UnmarshalJSON implements the coercion rule: number or numeric string sets
// the value, empty string and null leave it unset.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			n.invalid = true
			return nil
		}
		*n = Number{value: v, set: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		n.invalid = true
		return nil
	}
	*n = Number{value: v, set: true}
	return nil
}

// MarshalJSON writes the value, or null when unset.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.set {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

// IsSet reports whether a value was provided.
func (n Number) IsSet() bool { return n.set }

// Int returns the value truncated to int; zero when unset.
func (n Number) Int() int { return int(n.value) }

// IntOr returns the value, or fallback when unset.
func (n Number) IntOr(fallback int) int {
	if !n.set {
		return fallback
	}
	return int(n.value)
}

// CreateInput is the raw input for creating a video record. Tags are passed
// through as given; lowercasing and de-duplication happen at the persistence
// boundary via upsert-by-name.
type CreateInput struct {
	Title        string   `json:"title" validate:"required"`
	ThumbnailURL string   `json:"thumbnailUrl" validate:"required,url"`
	Views        Number   `json:"views" validate:"omitempty,gte=0"`
	Duration     Number   `json:"duration" validate:"required,gte=1"`
	Tags         []string `json:"tags"`
}

// ValidationError reports every offending field of an input at once.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// validate is configured once: JSON tag names in errors, and Number fields
// exposed to the validator as float64 (nil when unset, which trips
// "required" and is skipped by "omitempty").
var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		if i := strings.IndexByte(name, ','); i >= 0 {
			return name[:i]
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		n, ok := field.Interface().(Number)
		if !ok || !n.set {
			return nil
		}
		return n.value
	}, Number{})
	return v
}

// Validate checks the input against the schema and returns a
// *ValidationError enumerating every failing field, or nil.
func (in CreateInput) Validate() error {
	fields := make(map[string]string)
	if in.Views.invalid {
		fields["views"] = "must be a number"
	}
	if in.Duration.invalid {
		fields["duration"] = "must be a number"
	}
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !asValidationErrors(err, &verrs) {
			return err
		}
		for _, e := range verrs {
			if _, seen := fields[e.Field()]; !seen {
				fields[e.Field()] = friendlyMessage(e)
			}
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
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

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", e.Param())
	default:
		return "is invalid"
	}
}
