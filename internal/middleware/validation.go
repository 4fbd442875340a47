package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "signaldash/internal/errors"
)

// RequestValidator binds query parameters onto request structs and checks
// their validate tags.
type RequestValidator struct {
	validator *validator.Validate
}

// NewRequestValidator creates a validator that names fields by their query
// tag, falling back to the json tag.
func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := tagName(fld, "query"); name != "" {
			return name
		}
		return tagName(fld, "json")
	})
	return &RequestValidator{validator: v}
}

func tagName(fld reflect.StructField, key string) string {
	name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// BindQuery fills the string and bool fields of dst, a pointer to struct,
// from r's query string using their query tags, then validates dst.
// Failures are returned as a 400 *apierrors.APIError.
func (rv *RequestValidator) BindQuery(r *http.Request, dst interface{}) error {
	val := reflect.ValueOf(dst)
	if val.Kind() != reflect.Pointer || val.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind query: destination must be a pointer to struct, got %T", dst)
	}
	elem := val.Elem()
	query := r.URL.Query()

	var fieldErrs []apierrors.ValidationError
	for i := 0; i < elem.NumField(); i++ {
		fld := elem.Type().Field(i)
		name := tagName(fld, "query")
		if name == "" || !query.Has(name) {
			continue
		}
		raw := strings.TrimSpace(query.Get(name))
		switch fld.Type.Kind() {
		case reflect.String:
			elem.Field(i).SetString(strings.ToLower(raw))
		case reflect.Bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				fieldErrs = append(fieldErrs, apierrors.ValidationError{
					Field:   name,
					Message: fmt.Sprintf("%s must be true or false", name),
				})
				continue
			}
			elem.Field(i).SetBool(b)
		}
	}
	if len(fieldErrs) > 0 {
		return apierrors.NewValidationErrors(fieldErrs)
	}
	return rv.ValidateStruct(dst)
}

// ValidateStruct validates v and reports every failing field.
func (rv *RequestValidator) ValidateStruct(v interface{}) error {
	err := rv.validator.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierrors.ErrValidation("request", err.Error())
	}
	fieldErrs := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fieldErrs = append(fieldErrs, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(fieldErrs)
}

func formatValidationError(err validator.FieldError) string {
	field, param := err.Field(), err.Param()
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}
