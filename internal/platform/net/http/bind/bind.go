// Package bind decodes and validates JSON request bodies
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"

	perr "toxlens/internal/platform/errors"
)

// MaxBody caps a JSON body, uploads do not go through here
const MaxBody = 1 << 20

var (
	once     sync.Once
	validate *validator.Validate
	trans    ut.Translator
)

// custom rules and the short english messages shown for them
var rules = []struct {
	tag string
	fn  validator.Func
	msg string
}{
	{"notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}, "{0} must not be blank"},
	{"display_mode", func(fl validator.FieldLevel) bool {
		m := strings.ToLower(fl.Field().String())
		return m == "highlight" || m == "redact"
	}, "{0} must be highlight or redact"},
	{"min", nil, "{0} must be at least {1}"},
	{"max", nil, "{0} must be at most {1}"},
}

func setup() {
	once.Do(func() {
		loc := en.New()
		trans, _ = ut.New(loc, loc).GetTranslator("en")

		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
		_ = entrans.RegisterDefaultTranslations(validate, trans)

		for _, r := range rules {
			if r.fn != nil {
				_ = validate.RegisterValidation(r.tag, r.fn)
			}
			tag, msg := r.tag, r.msg
			_ = validate.RegisterTranslation(tag, trans,
				func(t ut.Translator) error { return t.Add(tag, msg, true) },
				func(t ut.Translator, fe validator.FieldError) string {
					s, _ := t.T(tag, fe.Field(), fe.Param())
					return s
				})
		}
	})
}

// jsonName reports fields under their json key
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// ParseJSON decodes one JSON object into T and validates it
// decode problems are JSON errors, failed rules are Validation errors naming the field
func ParseJSON[T any](r *http.Request) (T, error) {
	var v T
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return v, perr.JSONErrf("empty body")
		}
		return v, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return v, perr.JSONErrf("unexpected trailing data")
	}
	if err := Validate(v); err != nil {
		return v, err
	}
	return v, nil
}

// Validate runs the struct rules on v
func Validate(v any) error {
	setup()
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "validation error")
	}
	fe := fields[0]
	return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", fe.Translate(trans)), fe.Field())
}
