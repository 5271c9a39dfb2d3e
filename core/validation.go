package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"net/http"

	"github.com/go-playground/validator/v10"
)

// Validator defines an interface for request validation operations
type Validator interface {
	// ContentType checks if the request's Content-Type matches the allowed type
	ContentType(r *http.Request, allowedType string) (jsonResponse, error)

	// Struct validates a decoded request body against its validate tags
	Struct(s any) error

	// Email validates a single email address
	Email(email string) error
}

// DefaultValidator implements the Validator interface on top of
// go-playground/validator.
type DefaultValidator struct {
	validate *validator.Validate
}

func NewValidator() *DefaultValidator {
	validate := validator.New()
	// Report failing fields by their json names so error responses match the
	// wire format, not the Go struct.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &DefaultValidator{validate: validate}
}

// FieldError names the first field that failed struct validation, with a
// message safe to return to the client.
type FieldError struct {
	Field   string
	Message string
}

// FirstFieldError extracts a FieldError from a Struct validation failure.
// Returns false for errors that carry no field information.
func FirstFieldError(err error) (FieldError, bool) {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return FieldError{}, false
	}

	fe := vErrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "This field is required"
	case "email":
		msg = "Invalid email address"
	case "min":
		msg = fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		msg = fmt.Sprintf("Must be at most %s characters", fe.Param())
	default:
		msg = "Invalid value"
	}
	return FieldError{Field: fe.Field(), Message: msg}, true
}

var errInvalidContentType = errors.New("invalid content type")

// ContentType checks the request's Content-Type, ignoring parameters such as
// charset. Returns the precomputed 415 response on mismatch.
func (v *DefaultValidator) ContentType(r *http.Request, allowedType string) (jsonResponse, error) {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return errorInvalidContentType, errInvalidContentType
	}

	mediaType := strings.TrimSpace(strings.Split(contentType, ";")[0])
	if mediaType != allowedType {
		return errorInvalidContentType, errInvalidContentType
	}

	return jsonResponse{}, nil
}

func (v *DefaultValidator) Struct(s any) error {
	return v.validate.Struct(s)
}

func (v *DefaultValidator) Email(email string) error {
	return v.validate.Var(email, "required,email")
}
