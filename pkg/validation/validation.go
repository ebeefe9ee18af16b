// Package validation provides the shared request validator with German error messages.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/de"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	de_translations "github.com/go-playground/validator/v10/translations/de"

	"github.com/kita-portal/kita-api/pkg/calendar"
)

const (
	dateTag = "isodate"
	timeTag = "hhmm"
)

var (
	timeRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
)

// Default returns the process wide validator configured with custom tags and German translations.
func Default() *validator.Validate {
	once.Do(initialise)
	return validate
}

// Translator returns the German translator used for validation messages.
func Translator() ut.Translator {
	once.Do(initialise)
	return translator
}

// Messages maps each failing field to a translated message. Non validation errors yield nil.
func Messages(err error) map[string]string {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return nil
	}
	trans := Translator()
	messages := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		messages[fe.Field()] = fe.Translate(trans)
	}
	return messages
}

// FailedOn reports whether the given field failed validation.
func FailedOn(err error, field string) bool {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return false
	}
	for _, fe := range vErrs {
		if fe.Field() == field {
			return true
		}
	}
	return false
}

// IsDate reports whether value is a YYYY-MM-DD calendar date.
func IsDate(value string) bool {
	if len(value) != len(calendar.DateLayout) {
		return false
	}
	_, err := time.Parse(calendar.DateLayout, value)
	return err == nil
}

// IsTime reports whether value is a zero padded 24h HH:MM clock value.
func IsTime(value string) bool {
	return timeRegex.MatchString(value)
}

func initialise() {
	locale := de.New()
	uni := ut.New(locale, locale)
	translator, _ = uni.GetTranslator("de")

	validate = validator.New()
	_ = de_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(tagName)

	_ = validate.RegisterValidation(dateTag, func(fl validator.FieldLevel) bool { return IsDate(fl.Field().String()) })
	_ = validate.RegisterValidation(timeTag, func(fl validator.FieldLevel) bool { return IsTime(fl.Field().String()) })

	registerCustomTranslation(dateTag, "{0} muss ein Datum im Format JJJJ-MM-TT sein", false)
	registerCustomTranslation(timeTag, "{0} muss eine Uhrzeit im Format HH:MM sein", false)
	registerCustomTranslation("required", "{0} ist ein Pflichtfeld", true)
}

// tagName reports form field names, falling back to JSON names.
func tagName(fld reflect.StructField) string {
	for _, key := range []string{"form", "json"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}

func registerCustomTranslation(tag, text string, override bool) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}
