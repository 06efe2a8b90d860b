package domainpack

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks pack content against the DomainPack schema. It is safe for
// concurrent use.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Validate returns human-readable "field: problem" issues, nil when valid.
func (x *Validator) Validate(content []byte) []string {
	_, issues := x.Decode(content)
	return issues
}

// Decode parses and validates content. The pack is nil whenever issues is non-empty.
func (x *Validator) Decode(content []byte) (*DomainPack, []string) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, []string{"pack: must be a JSON object"}
	}

	var pack DomainPack
	if err := json.Unmarshal(trimmed, &pack); err != nil {
		return nil, []string{decodeIssue(err)}
	}

	if err := x.v.Struct(&pack); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, []string{"pack: " + err.Error()}
		}
		issues := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			issues = append(issues, fieldPath(fe)+": "+describe(fe))
		}
		return nil, issues
	}
	return &pack, nil
}

func decodeIssue(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "pack"
		}
		return fmt.Sprintf("%s: expected %s, got %s", field, kindName(typeErr.Type), typeErr.Value)
	}
	return "pack: " + err.Error()
}

func kindName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int64:
		return "integer"
	case reflect.Float64:
		return "number"
	case reflect.Slice:
		return "array"
	case reflect.Struct:
		return "object"
	default:
		return t.Kind().String()
	}
}

// fieldPath drops the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
