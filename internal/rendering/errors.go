package rendering

import "fmt"

// TemplateError reports a résumé template that could not be loaded, parsed
// or executed. Custom templates passed with WithTemplate or LoadTemplate
// fail here, as does an embedded template missing from the binary.
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	return describe("template error", e.Message, e.Cause)
}

func (e *TemplateError) Unwrap() error { return e.Cause }

// RenderError reports input the synthesizers cannot turn into a document,
// such as a nil profile.
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	return describe("render error", e.Message, e.Cause)
}

func (e *RenderError) Unwrap() error { return e.Cause }

func describe(kind, msg string, cause error) string {
	if cause == nil {
		return kind + ": " + msg
	}
	return fmt.Sprintf("%s: %s: %v", kind, msg, cause)
}
