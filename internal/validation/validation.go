// Package validation wraps go-playground/validator with English messages and
// JSON field names.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	once     sync.Once
	validate *govalidator.Validate
	trans    ut.Translator
)

func setup() {
	validate = govalidator.New(govalidator.WithRequiredStructEnabled())

	// Use JSON tag name for field names in error messages.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, trans)
}

// Engine returns the shared validator.
func Engine() *govalidator.Validate {
	once.Do(setup)
	return validate
}

// RegisterMessage sets the English message for a custom tag. The message may
// use {0} for the field name and {1} for the tag parameter.
func RegisterMessage(tag, message string) {
	v := Engine()
	_ = v.RegisterTranslation(tag, trans, func(u ut.Translator) error {
		return u.Add(tag, message, true)
	}, func(u ut.Translator, fe govalidator.FieldError) string {
		t, err := u.T(tag, fe.Field(), fe.Param())
		if err != nil {
			return fe.Error()
		}
		return t
	})
}

// Struct validates v and returns a map of field path → message, or nil.
func Struct(v any) map[string]string {
	if err := Engine().Struct(v); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// TranslateErrors takes a validation error and returns a map of field path →
// human-readable message. Paths drop the top-level struct name, e.g.
// "mappings[0].fallbackProgram". Other errors land under "detail".
func TranslateErrors(err error) map[string]string {
	Engine()
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fieldPath(fe.Namespace())] = fe.Translate(trans)
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}

func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
