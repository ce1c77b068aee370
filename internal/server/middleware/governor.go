package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/github-resume/internal/server/ratelimit"
	"github.com/jonathan/github-resume/internal/types"
	"github.com/jonathan/github-resume/internal/validation"
)

// MaxBodyBytes bounds how much of a request body the governor reads.
const MaxBodyBytes = 10 << 20

// RateLimit is a fixed-window budget: MaxRequests per Window.
type RateLimit struct {
	Window      time.Duration
	MaxRequests int
}

// Policy declares how an endpoint is governed. Zero values disable a check.
type Policy struct {
	RequireAuth bool
	RateLimit   *RateLimit
	BodySchema  validation.Schema
	ParamSchema validation.Schema
}

// Outcome classifies an admission decision.
type Outcome int

// Admission outcomes.
const (
	OutcomeAdmitted Outcome = iota
	OutcomeUnauthenticated
	OutcomeRateLimited
	OutcomeInvalidBody
	OutcomeInvalidParams
	OutcomeInternal
	OutcomeBodyTooLarge
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdmitted:
		return "admitted"
	case OutcomeUnauthenticated:
		return "unauthenticated"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeInvalidBody:
		return "invalid_body"
	case OutcomeInvalidParams:
		return "invalid_params"
	case OutcomeInternal:
		return "internal"
	case OutcomeBodyTooLarge:
		return "body_too_large"
	default:
		return "unknown"
	}
}

// Decision is the result of Admit. It carries everything needed to render
// the response without re-deriving it.
type Decision struct {
	Outcome    Outcome
	Credential Credential
	Identity   string
	RateLimit  *ratelimit.Decision // nil when the policy has no rate limit
	Errors     []string            // validation errors, all of them
	Cause      error               // set for OutcomeInternal
}

// Admitted reports whether the request may proceed.
func (d Decision) Admitted() bool {
	return d.Outcome == OutcomeAdmitted
}

// Err maps a rejection to its typed error, or nil when admitted.
func (d Decision) Err() error {
	switch d.Outcome {
	case OutcomeAdmitted:
		return nil
	case OutcomeUnauthenticated:
		return &UnauthenticatedError{Message: "Authentication required"}
	case OutcomeRateLimited:
		e := &RateLimitedError{}
		if d.RateLimit != nil {
			e.RetryAfter = d.RateLimit.RetryAfterSeconds
			e.Limit = d.RateLimit.Limit
			e.ResetAt = d.RateLimit.ResetAt
		}
		return e
	case OutcomeInvalidBody, OutcomeBodyTooLarge:
		return &validation.Error{Source: "body", Errors: d.Errors}
	case OutcomeInvalidParams:
		return &validation.Error{Source: "params", Errors: d.Errors}
	default:
		return &GovernorError{Message: "admission failed", Cause: d.Cause}
	}
}

// Governor admits or rejects requests according to a Policy.
type Governor struct {
	Auth    Authenticator
	Limiter ratelimit.Store
	Logger  *slog.Logger
}

func (g *Governor) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// Admit runs the policy checks in a fixed order: authentication, rate
// limit, body schema, parameter schema. The first failure wins and no
// later check runs, so a rejected caller never consumes rate budget it
// was not entitled to.
func (g *Governor) Admit(r *http.Request, policy Policy) Decision {
	d := Decision{Outcome: OutcomeAdmitted}

	if policy.RequireAuth {
		if g.Auth == nil {
			d.Outcome = OutcomeInternal
			d.Cause = errNoAuthenticator
			return d
		}
		cred, ok := g.Auth.Authenticate(r)
		if !ok {
			d.Outcome = OutcomeUnauthenticated
			return d
		}
		d.Credential = cred
	}

	if policy.RateLimit != nil {
		d.Identity = ClientIdentity(r)
		if g.Limiter == nil {
			d.Outcome = OutcomeInternal
			d.Cause = errNoLimiter
			return d
		}
		rl, err := g.Limiter.CheckAndConsume(r.Context(), d.Identity, policy.RateLimit.Window, policy.RateLimit.MaxRequests)
		if err != nil {
			d.Outcome = OutcomeInternal
			d.Cause = err
			return d
		}
		d.RateLimit = &rl
		if !rl.Allowed {
			d.Outcome = OutcomeRateLimited
			return d
		}
	}

	if len(policy.BodySchema) > 0 {
		obj, err := readBodyObject(r)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			d.Outcome = OutcomeBodyTooLarge
			d.Errors = []string{fmt.Sprintf("Request body must not exceed %d bytes", tooLarge.Limit)}
			return d
		}
		if err != nil {
			d.Outcome = OutcomeInternal
			d.Cause = err
			return d
		}
		if res := validation.Validate(obj, policy.BodySchema); !res.Valid {
			d.Outcome = OutcomeInvalidBody
			d.Errors = res.Errors
			return d
		}
	}

	if len(policy.ParamSchema) > 0 {
		if res := validation.Validate(queryObject(r), policy.ParamSchema); !res.Valid {
			d.Outcome = OutcomeInvalidParams
			d.Errors = res.Errors
			return d
		}
	}

	return d
}

// Wrap returns a handler that admits requests under policy before calling
// next. Rejections are written as error envelopes; admitted requests carry
// their credential in the request context.
func (g *Governor) Wrap(policy Policy, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.Admit(r, policy)
		if d.RateLimit != nil {
			setRateLimitHeaders(w, d.RateLimit)
		}

		if !d.Admitted() {
			g.reject(w, r, d)
			return
		}

		if policy.RequireAuth {
			r = r.WithContext(WithCredential(r.Context(), d.Credential))
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Governor) reject(w http.ResponseWriter, r *http.Request, d Decision) {
	resp := types.ErrorResponse{Success: false}
	status := http.StatusInternalServerError

	switch d.Outcome {
	case OutcomeUnauthenticated:
		status = http.StatusUnauthorized
		resp.Error = "Authentication required"
	case OutcomeRateLimited:
		status = http.StatusTooManyRequests
		resp.Error = "Rate limit exceeded"
		resp.RetryAfter = d.RateLimit.RetryAfterSeconds
		w.Header().Set("Retry-After", strconv.Itoa(d.RateLimit.RetryAfterSeconds))
		w.Header().Set("X-RateLimit-Remaining", "0")
	case OutcomeInvalidBody:
		status = http.StatusBadRequest
		resp.Error = "Invalid request body"
		resp.Details = d.Errors
	case OutcomeInvalidParams:
		status = http.StatusBadRequest
		resp.Error = "Invalid request parameters"
		resp.Details = d.Errors
	case OutcomeBodyTooLarge:
		status = http.StatusRequestEntityTooLarge
		resp.Error = "Request body too large"
		resp.Details = d.Errors
	default:
		resp.Error = "Internal server error"
		g.logger().Error("request governance failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", d.Cause,
		)
	}

	if d.Outcome != OutcomeInternal {
		g.logger().Info("request rejected",
			"method", r.Method,
			"path", r.URL.Path,
			"outcome", d.Outcome.String(),
			"client", d.Identity,
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, d *ratelimit.Decision) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	if !d.ResetAt.IsZero() {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
	}
}

// readBodyObject reads the body as a JSON object and restores it for the
// handler. A body that is not a JSON object yields an empty object; one
// longer than MaxBodyBytes fails with *http.MaxBytesError.
func readBodyObject(r *http.Request) (map[string]any, error) {
	obj := map[string]any{}
	if r.Body == nil {
		return obj, nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, MaxBodyBytes))
	_ = r.Body.Close()
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var parsed map[string]any
	if err := dec.Decode(&parsed); err != nil || parsed == nil {
		return obj, nil
	}
	return parsed, nil
}

// queryObject flattens the query string, keeping the first value per key.
func queryObject(r *http.Request) map[string]any {
	obj := map[string]any{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			obj[key] = values[0]
		}
	}
	return obj
}
