package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/github-resume/internal/compile"
	"github.com/jonathan/github-resume/internal/db"
	"github.com/jonathan/github-resume/internal/github"
	"github.com/jonathan/github-resume/internal/ranking"
	"github.com/jonathan/github-resume/internal/rendering"
	"github.com/jonathan/github-resume/internal/sanitize"
	"github.com/jonathan/github-resume/internal/server/middleware"
	"github.com/jonathan/github-resume/internal/types"
)

// topRepositoryCount is how many repositories the repos endpoint returns.
const topRepositoryCount = 6

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	cred, _ := middleware.CredentialFrom(r.Context())

	profile, err := s.github.FetchProfile(r.Context(), cred.AccessToken)
	if err != nil {
		s.upstreamError(w, r, err, "Failed to fetch profile")
		return
	}
	s.success(w, profile)
}

func (s *Server) handleRepos(w http.ResponseWriter, r *http.Request) {
	cred, _ := middleware.CredentialFrom(r.Context())
	username := sanitize.Username(r.URL.Query().Get("username"))

	repos, err := s.github.FetchRepositories(r.Context(), cred.AccessToken, username)
	if err != nil {
		s.upstreamError(w, r, err, "Failed to fetch repositories")
		return
	}
	s.success(w, ranking.MostStarred(repos, topRepositoryCount))
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	cred, _ := middleware.CredentialFrom(r.Context())
	username := sanitize.Username(r.URL.Query().Get("username"))

	repos, err := s.github.FetchRepositories(r.Context(), cred.AccessToken, username)
	if err != nil {
		s.upstreamError(w, r, err, "Failed to fetch language data")
		return
	}
	agg := github.AggregateLanguages(r.Context(), s.github, cred.AccessToken, repos, s.concurrency)
	s.success(w, agg.Languages)
}

func (s *Server) handleGenerateLaTeX(w http.ResponseWriter, r *http.Request) {
	input, ok := s.decodeResumeInput(w, r)
	if !ok {
		return
	}

	doc, err := rendering.Synthesize(&input.Profile, input.Repos, input.Languages, s.now())
	if err != nil {
		s.internalError(w, r, err, "Failed to generate LaTeX")
		return
	}

	s.success(w, types.DocumentResponse{
		ID:       s.archiveDocument(r.Context(), db.KindLaTeX, doc),
		LaTeX:    doc.Text,
		Filename: doc.Filename,
	})
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req types.CompileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body", []string{"body must be a JSON object"})
		return
	}
	if s.latex == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "LaTeX compilation is not available on this server", nil)
		return
	}

	pdf, err := s.latex.Compile(r.Context(), req.LaTeXContent)
	if err != nil {
		s.compileError(w, r, err, "Failed to compile LaTeX to PDF. Please ensure LaTeX is properly installed on the server.")
		return
	}

	s.success(w, types.PDFResponse{
		PDF:      base64.StdEncoding.EncodeToString(pdf),
		Filename: pdfFilename(req.Filename),
	})
}

func (s *Server) handleGenerateHTML(w http.ResponseWriter, r *http.Request) {
	input, ok := s.decodeResumeInput(w, r)
	if !ok {
		return
	}

	doc, err := s.renderHTML(input)
	if err != nil {
		s.internalError(w, r, err, "Failed to generate HTML")
		return
	}

	s.success(w, types.DocumentResponse{
		ID:       s.archiveDocument(r.Context(), db.KindHTML, doc),
		HTML:     doc.Text,
		Filename: doc.Filename,
	})
}

func (s *Server) handleGeneratePDF(w http.ResponseWriter, r *http.Request) {
	input, ok := s.decodeResumeInput(w, r)
	if !ok {
		return
	}
	if s.printer == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "PDF printing is not available on this server", nil)
		return
	}

	doc, err := s.renderHTML(input)
	if err != nil {
		s.internalError(w, r, err, "Failed to generate PDF")
		return
	}

	pdf, err := s.printer.Compile(r.Context(), doc.Text)
	if err != nil {
		s.compileError(w, r, err, "Failed to generate PDF")
		return
	}

	s.success(w, types.PDFResponse{
		PDF:      base64.StdEncoding.EncodeToString(pdf),
		Filename: rendering.Filename(input.Profile.Login, ".pdf"),
	})
}

// handleResume fetches everything for the authenticated account and
// synthesizes its LaTeX résumé in one call.
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cred, _ := middleware.CredentialFrom(ctx)

	profile, err := s.github.FetchProfile(ctx, cred.AccessToken)
	if err != nil {
		s.upstreamError(w, r, err, "Failed to fetch profile")
		return
	}
	repos, err := s.github.FetchRepositories(ctx, cred.AccessToken, sanitize.Username(profile.Login))
	if err != nil {
		s.upstreamError(w, r, err, "Failed to fetch repositories")
		return
	}
	agg := github.AggregateLanguages(ctx, s.github, cred.AccessToken, repos, s.concurrency)

	doc, err := rendering.Synthesize(profile, repos, agg.Languages, s.now())
	if err != nil {
		s.internalError(w, r, err, "Failed to generate LaTeX")
		return
	}

	s.success(w, types.DocumentResponse{
		ID:       s.archiveDocument(ctx, db.KindLaTeX, doc),
		LaTeX:    doc.Text,
		Filename: doc.Filename,
	})
}

// handleGetDocument returns an archived document. Documents of other
// accounts are reported as missing.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.errorResponse(w, http.StatusNotFound, "Document not found", nil)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request parameters", []string{"id must be a UUID"})
		return
	}

	doc, err := s.archive.GetDocument(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err, "Failed to load document")
		return
	}
	cred, _ := middleware.CredentialFrom(r.Context())
	if doc == nil || cred.Login == "" || doc.Login != sanitize.Username(cred.Login) {
		s.errorResponse(w, http.StatusNotFound, "Document not found", nil)
		return
	}

	resp := types.DocumentResponse{ID: doc.ID.String(), Filename: doc.Filename}
	if doc.Kind == db.KindHTML {
		resp.HTML = doc.Content
	} else {
		resp.LaTeX = doc.Content
	}
	s.success(w, resp)
}

// decodeResumeInput decodes and validates the profile/repos/languages body.
// The governor has already checked the shape; this catches typed errors
// such as a negative star count.
func (s *Server) decodeResumeInput(w http.ResponseWriter, r *http.Request) (*types.ResumeInput, bool) {
	var input types.ResumeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body", []string{err.Error()})
		return nil, false
	}
	if err := input.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body", validatorMessages(err))
		return nil, false
	}
	return &input, true
}

// renderHTML strips markup characters from free text before rendering.
func (s *Server) renderHTML(input *types.ResumeInput) (*rendering.Document, error) {
	profile, repos := rendering.StripMarkup(&input.Profile, input.Repos)
	return rendering.RenderHTML(profile, repos, input.Languages, s.now())
}

// archiveDocument stores doc under the authenticated login when an archive
// is configured and returns its ID, or "" when nothing was stored. The login
// in the request body is never trusted as the owner.
func (s *Server) archiveDocument(ctx context.Context, kind string, doc *rendering.Document) string {
	cred, _ := middleware.CredentialFrom(ctx)
	if s.archive == nil || cred.Login == "" {
		return ""
	}
	id, err := s.archive.SaveDocument(ctx, sanitize.Username(cred.Login), kind, doc.Filename, doc.Text)
	if err != nil {
		s.logger.Warn("failed to archive document", "kind", kind, "error", err)
		return ""
	}
	return id.String()
}

// upstreamError reports a GitHub failure with its mapped status.
func (s *Server) upstreamError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := HTTPStatus(err)
	ghStatus := github.StatusOf(err)
	s.logger.Error("GitHub request failed",
		"path", r.URL.Path,
		"github_status", ghStatus,
		"error", err,
	)

	if status == http.StatusInternalServerError {
		s.errorResponse(w, status, fallback, err.Error())
		return
	}
	s.errorResponse(w, status, upstreamMessage(ghStatus, fallback), nil)
}

// compileError reports a compiler failure; a missing engine is a 503.
func (s *Server) compileError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, compile.ErrUnavailable) {
		s.errorResponse(w, http.StatusServiceUnavailable, "Compiler is not available on this server", nil)
		return
	}

	var compileErr *compile.Error
	if errors.As(err, &compileErr) {
		s.logger.Error("compilation failed",
			"path", r.URL.Path,
			"error", err,
			"log", compileErr.LogOutput,
		)
		s.errorResponse(w, http.StatusInternalServerError, message, compileErr.Message)
		return
	}
	s.internalError(w, r, err, message)
}

// internalError logs err and reports a generic failure.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	s.errorResponse(w, http.StatusInternalServerError, message, nil)
}

// pdfFilename swaps a trailing .tex for .pdf, defaulting to resume.pdf.
func pdfFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "resume.pdf"
	}
	return strings.TrimSuffix(name, ".tex") + ".pdf"
}
