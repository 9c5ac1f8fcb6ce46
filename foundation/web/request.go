package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// validate holds the settings and caches for validating request struct
// values.
var validate = validator.New()

// translator is a cache of locale and translation information.
var translator *ut.UniversalTranslator

func init() {
	en := en.New()
	translator = ut.New(en, en)

	lt, _ := translator.GetTranslator("en")
	en_translations.RegisterDefaultTranslations(validate, lt)
}

// Decode reads the body of an HTTP request looking for a JSON document and
// unmarshals it into val. If val contains fields tagged with "validate"
// then the check is performed.
func Decode(r *http.Request, val any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(val); err != nil {
		return &decodeError{fmt.Sprintf("payload:%s", err)}
	}

	if err := validate.Struct(val); err != nil {
		verrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		lt, _ := translator.GetTranslator("en")

		var fields strings.Builder
		for i, verror := range verrors {
			if i > 0 {
				fields.WriteString(",")
			}
			field := verror.Field()
			fields.WriteString(fmt.Sprintf("%s:%s", field, verror.Translate(lt)))
		}

		return &decodeError{fields.String()}
	}

	return nil
}

// decodeError is returned when Decode cannot parse a request body as JSON
// or when validation of the decoded value fails.
type decodeError struct {
	Fields string
}

// Error implements the error interface.
func (de *decodeError) Error() string {
	return de.Fields
}

// IsDecodeError checks if the given error is a decode error.
func IsDecodeError(err error) bool {
	_, ok := err.(*decodeError)
	return ok
}

// GetDecodeErrorFields returns the fields that failed validation, if err is
// a decode error.
func GetDecodeErrorFields(err error) string {
	de, ok := err.(*decodeError)
	if !ok {
		return ""
	}
	return de.Fields
}
