package types

// SuccessResponse is the envelope for every successful API response.
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorResponse is the envelope for every failed API response.
// Details is either a list of field errors or a single upstream message.
type ErrorResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	Details    any    `json:"details,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// DocumentResponse is the payload for generated LaTeX and HTML documents.
type DocumentResponse struct {
	ID       string `json:"id,omitempty"`
	LaTeX    string `json:"latex,omitempty"`
	HTML     string `json:"html,omitempty"`
	Filename string `json:"filename"`
}

// PDFResponse is the payload for compiled PDFs (base64 encoded).
type PDFResponse struct {
	PDF      string `json:"pdf"`
	Filename string `json:"filename"`
}

// CompileRequest is the body of the compile endpoint.
type CompileRequest struct {
	LaTeXContent string `json:"latexContent" validate:"required"`
	Filename     string `json:"filename,omitempty"`
}
