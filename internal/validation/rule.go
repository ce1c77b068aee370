// Package validation provides a small declarative validator for request bodies and query parameters.
package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"unicode/utf8"
)

// ValueType names a runtime JSON type.
type ValueType string

// Recognized value types.
const (
	TypeAny     ValueType = ""
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
	TypeObject  ValueType = "object"
	TypeArray   ValueType = "array"
)

// Rule is a constraint on a single field. It is one of Presence, String, Number, or List.
type Rule interface {
	isRequired() bool
	expectedType() ValueType
	check(field string, value any, errs []string) []string
}

// Presence only asserts that a field is set and, optionally, of a given type.
type Presence struct {
	Required bool
	Type     ValueType
}

// String constrains textual values. Lengths count characters, not bytes.
type String struct {
	Required  bool
	MinLength *int
	MaxLength *int
	Pattern   *regexp.Regexp
}

// Number constrains numeric values.
type Number struct {
	Required bool
	Min      *float64
	Max      *float64
}

// List constrains array values.
type List struct {
	Required bool
	MinItems *int
	MaxItems *int
}

// Ptr returns a pointer to v, for optional rule bounds.
func Ptr[T any](v T) *T {
	return &v
}

func (r Presence) isRequired() bool        { return r.Required }
func (r Presence) expectedType() ValueType { return r.Type }
func (r Presence) check(_ string, _ any, errs []string) []string {
	return errs
}

func (r String) isRequired() bool        { return r.Required }
func (r String) expectedType() ValueType { return TypeString }
func (r String) check(field string, value any, errs []string) []string {
	s, _ := value.(string)
	n := utf8.RuneCountInString(s)
	if r.MinLength != nil && n < *r.MinLength {
		errs = append(errs, fmt.Sprintf("Field '%s' must be at least %d characters", field, *r.MinLength))
	}
	if r.MaxLength != nil && n > *r.MaxLength {
		errs = append(errs, fmt.Sprintf("Field '%s' must be at most %d characters", field, *r.MaxLength))
	}
	if r.Pattern != nil && !r.Pattern.MatchString(s) {
		errs = append(errs, fmt.Sprintf("Field '%s' format is invalid", field))
	}
	return errs
}

func (r Number) isRequired() bool        { return r.Required }
func (r Number) expectedType() ValueType { return TypeNumber }
func (r Number) check(field string, value any, errs []string) []string {
	f, _ := toFloat(value)
	if r.Min != nil && f < *r.Min {
		errs = append(errs, fmt.Sprintf("Field '%s' must be at least %g", field, *r.Min))
	}
	if r.Max != nil && f > *r.Max {
		errs = append(errs, fmt.Sprintf("Field '%s' must be at most %g", field, *r.Max))
	}
	return errs
}

func (r List) isRequired() bool        { return r.Required }
func (r List) expectedType() ValueType { return TypeArray }
func (r List) check(field string, value any, errs []string) []string {
	n := reflect.ValueOf(value).Len()
	if r.MinItems != nil && n < *r.MinItems {
		errs = append(errs, fmt.Sprintf("Field '%s' must have at least %d items", field, *r.MinItems))
	}
	if r.MaxItems != nil && n > *r.MaxItems {
		errs = append(errs, fmt.Sprintf("Field '%s' must have at most %d items", field, *r.MaxItems))
	}
	return errs
}

// typeOf classifies a decoded JSON value.
func typeOf(value any) ValueType {
	switch value.(type) {
	case string:
		return TypeString
	case bool:
		return TypeBoolean
	case map[string]any:
		return TypeObject
	}
	if _, ok := toFloat(value); ok {
		return TypeNumber
	}
	kind := reflect.ValueOf(value).Kind()
	switch kind {
	case reflect.Slice, reflect.Array:
		return TypeArray
	case reflect.Map, reflect.Struct:
		return TypeObject
	}
	return TypeAny
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}
