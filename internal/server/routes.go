package server

import (
	"net/http"
	"time"

	"github.com/jonathan/github-resume/internal/server/middleware"
	"github.com/jonathan/github-resume/internal/validation"
)

func perMinute(n int) *middleware.RateLimit {
	return &middleware.RateLimit{Window: time.Minute, MaxRequests: n}
}

// Admission policies. Heavier endpoints get smaller budgets.
var (
	githubPolicy = middleware.Policy{
		RequireAuth: true,
		RateLimit:   perMinute(30),
	}
	usernamePolicy = middleware.Policy{
		RequireAuth: true,
		RateLimit:   perMinute(30),
		ParamSchema: validation.UsernameParams,
	}
	latexPolicy = middleware.Policy{
		RequireAuth: true,
		RateLimit:   perMinute(5),
		BodySchema:  validation.GenerateBody,
	}
	compilePolicy = middleware.Policy{
		RequireAuth: true,
		RateLimit:   perMinute(3),
		BodySchema:  validation.CompileBody,
	}
	htmlPolicy = middleware.Policy{
		RequireAuth: true,
		RateLimit:   perMinute(10),
		BodySchema:  validation.GenerateBody,
	}
	pdfPolicy = middleware.Policy{
		RequireAuth: true,
		RateLimit:   perMinute(3),
		BodySchema:  validation.GenerateBody,
	}
	resumePolicy = middleware.Policy{
		RequireAuth: true,
		RateLimit:   perMinute(5),
	}
	archivePolicy = middleware.Policy{
		RequireAuth: true,
		RateLimit:   perMinute(30),
	}
)

// Handler returns the full middleware chain around the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.Handle("GET /api/github/profile", s.governed(githubPolicy, s.handleProfile))
	mux.Handle("GET /api/github/repos", s.governed(usernamePolicy, s.handleRepos))
	mux.Handle("GET /api/github/languages", s.governed(usernamePolicy, s.handleLanguages))

	mux.Handle("POST /api/latex/generate", s.governed(latexPolicy, s.handleGenerateLaTeX))
	mux.Handle("POST /api/latex/compile", s.governed(compilePolicy, s.handleCompile))
	mux.Handle("POST /api/html/generate", s.governed(htmlPolicy, s.handleGenerateHTML))
	mux.Handle("POST /api/pdf/generate", s.governed(pdfPolicy, s.handleGeneratePDF))

	mux.Handle("GET /api/resume", s.governed(resumePolicy, s.handleResume))
	mux.Handle("GET /api/resumes/{id}", s.governed(archivePolicy, s.handleGetDocument))

	return s.withSecurityHeaders(s.withLogging(s.withCORS(mux)))
}

func (s *Server) governed(policy middleware.Policy, h http.HandlerFunc) http.Handler {
	return s.governor.Wrap(policy, h)
}
