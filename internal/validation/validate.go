package validation

import "fmt"

// Field pairs a field name with its rule.
type Field struct {
	Name string
	Rule Rule
}

// Schema is an ordered list of field rules. Order only affects error order.
type Schema []Field

// Result is the outcome of validating an object against a Schema.
type Result struct {
	Valid  bool
	Errors []string
}

// Err returns nil for a valid result and a *Error otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &Error{Errors: r.Errors}
}

// Validate checks obj against schema and reports every violated rule.
// A field that fails the required or type gate gets no further checks.
func Validate(obj map[string]any, schema Schema) Result {
	var errs []string

	for _, f := range schema {
		value, present := obj[f.Name]
		empty := !present || isEmpty(value)

		if f.Rule.isRequired() && empty {
			errs = append(errs, fmt.Sprintf("Field '%s' is required", f.Name))
			continue
		}
		if empty {
			continue
		}

		if want := f.Rule.expectedType(); want != TypeAny && typeOf(value) != want {
			errs = append(errs, fmt.Sprintf("Field '%s' must be of type %s", f.Name, want))
			continue
		}

		errs = f.Rule.check(f.Name, value, errs)
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// isEmpty reports whether a value counts as unset: nil or the empty string.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok && s == "" {
		return true
	}
	return false
}
