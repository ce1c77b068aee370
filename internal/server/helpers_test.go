package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
)

type httpResult struct {
	*httptest.ResponseRecorder
}

func newRequest(method, target string, body io.Reader) *http.Request {
	return httptest.NewRequest(method, target, body)
}

func serve(h http.Handler, req *http.Request) *httpResult {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return &httpResult{ResponseRecorder: rec}
}

// envelope is the decoded response body.
type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Details    json.RawMessage `json:"details"`
	RetryAfter int             `json:"retryAfter"`
}

func (r *httpResult) envelope() envelope {
	var env envelope
	_ = json.Unmarshal(r.Body.Bytes(), &env)
	return env
}

func (r *httpResult) details() []string {
	var out []string
	_ = json.Unmarshal(r.envelope().Details, &out)
	return out
}

func (r *httpResult) data(v any) error {
	return json.Unmarshal(r.envelope().Data, v)
}
