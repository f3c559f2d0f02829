package validators

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
)

// MaxBodyBytes caps every JSON request body.
const MaxBodyBytes = 1 << 20

var validate = newValidator()

// newValidator reports fields by their json names so details match the
// request payload.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return v
}

// DecodeJSONBody decodes a single JSON document into dest, rejecting unknown
// fields and trailing data, then applies dest's validate tags.
func DecodeJSONBody(r *http.Request, dest any) error {
	payload, err := readLimited(r.Body)
	if err != nil {
		return err
	}
	return DecodeJSONBytes(payload, dest)
}

// ReadJSONBody returns the raw payload for handlers that branch on its shape
// before decoding.
func ReadJSONBody(r *http.Request) ([]byte, error) {
	payload, err := readLimited(r.Body)
	if err != nil {
		return nil, err
	}
	payload = bytes.TrimSpace(payload)
	switch {
	case len(payload) == 0:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request body required")
	case !json.Valid(payload):
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid request body")
	}
	return payload, nil
}

// DecodeJSONBytes applies DecodeJSONBody's rules to an already read payload.
func DecodeJSONBytes(payload []byte, dest any) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return malformed(err)
	}
	if dec.More() {
		return malformed(errors.New("unexpected data after JSON document"))
	}
	return ValidateStruct(dest)
}

// ValidateStruct runs the struct tag rules on dest.
func ValidateStruct(dest any) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fieldPath(fe)] = describe(fe)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}

func readLimited(body io.ReadCloser) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	defer body.Close()
	payload, err := io.ReadAll(io.LimitReader(body, MaxBodyBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
	}
	if len(payload) > MaxBodyBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request body too large").
			WithDetails(map[string]any{"max_bytes": MaxBodyBytes})
	}
	return payload, nil
}

func malformed(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
		WithDetails(map[string]any{"error": err.Error()})
}

// fieldPath drops the root struct name: "items[0].quantity" rather than
// "AddItemRequest.items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

var tagMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"url":      "must be a valid URL",
	"min":      "must be at least %s",
	"max":      "must be at most %s",
	"gt":       "must be greater than %s",
	"oneof":    "must be one of %s",
}

func describe(fe validator.FieldError) string {
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, fe.Param())
	}
	return msg
}
