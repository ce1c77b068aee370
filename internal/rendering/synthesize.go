package rendering

import (
	"embed"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/jonathan/github-resume/internal/ranking"
	"github.com/jonathan/github-resume/internal/sanitize"
	"github.com/jonathan/github-resume/internal/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const defaultTemplateName = "templates/resume.tex.tmpl"

// Display limits.
const (
	rankedLanguageLimit  = 10
	breakdownLimit       = 8
	skillLanguageLimit   = 6
	focusLanguageLimit   = 3
	topicsPerProject     = 3
	strongInterestStars  = 5
	fallbackFilenameStem = "resume"
)

// Document is a synthesized résumé.
type Document struct {
	Text     string
	Filename string
}

// Synthesizer turns a profile, its repositories and a language histogram
// into a LaTeX document. It is safe for concurrent use.
type Synthesizer struct {
	tmpl *template.Template
	now  func() time.Time
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithClock sets the clock used for tenure. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) {
		s.now = now
	}
}

// WithTemplate replaces the embedded skeleton with a parsed template.
func WithTemplate(tmpl *template.Template) Option {
	return func(s *Synthesizer) {
		s.tmpl = tmpl
	}
}

// NewSynthesizer returns a Synthesizer using the embedded skeleton unless
// WithTemplate is given.
func NewSynthesizer(opts ...Option) (*Synthesizer, error) {
	s := &Synthesizer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.tmpl == nil {
		tmpl, err := defaultTemplate()
		if err != nil {
			return nil, err
		}
		s.tmpl = tmpl
	}
	return s, nil
}

// Synthesize renders with the embedded skeleton and a fixed reference time.
func Synthesize(profile *types.Profile, repos []types.Repository, languages types.LanguageHistogram, asOf time.Time) (*Document, error) {
	s, err := NewSynthesizer(WithClock(func() time.Time { return asOf }))
	if err != nil {
		return nil, err
	}
	return s.Synthesize(profile, repos, languages)
}

// Synthesize renders the résumé. Output is byte-identical for identical
// inputs and clock readings. The repos slice is not modified.
func (s *Synthesizer) Synthesize(profile *types.Profile, repos []types.Repository, languages types.LanguageHistogram) (*Document, error) {
	if profile == nil {
		return nil, &RenderError{Message: "profile is required"}
	}

	data := buildResumeData(profile, repos, languages, s.now(), topicsPerProject)

	var out strings.Builder
	if err := s.tmpl.Execute(&out, data); err != nil {
		return nil, &TemplateError{
			Message: "failed to execute template",
			Cause:   err,
		}
	}

	return &Document{
		Text:     out.String(),
		Filename: Filename(profile.Login, ".tex"),
	}, nil
}

// Filename builds "<login>_resume<ext>" from a sanitized login.
func Filename(login, ext string) string {
	stem := sanitize.Username(login)
	if stem == "" {
		return fallbackFilenameStem + ext
	}
	return stem + "_resume" + ext
}

// SplitName splits a display name into first token and remaining tokens.
// An empty name yields the login as first name and an empty last name.
func SplitName(name, login string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return login, ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// Stats are the aggregate figures shown on a résumé.
type Stats struct {
	TotalStars  int
	TotalForks  int
	TotalBytes  int64
	MemberSince int
	Tenure      int
}

// ComputeStats sums engagement across repos and derives tenure in whole
// years, counting the creation year. A missing creation date counts as asOf.
func ComputeStats(profile *types.Profile, repos []types.Repository, languages types.LanguageHistogram, asOf time.Time) Stats {
	st := Stats{TotalBytes: languages.Total()}
	for i := range repos {
		st.TotalStars += repos[i].StargazersCount
		st.TotalForks += repos[i].ForksCount
	}

	st.MemberSince = asOf.Year()
	if !profile.CreatedAt.IsZero() {
		st.MemberSince = profile.CreatedAt.Year()
	}
	st.Tenure = asOf.Year() - st.MemberSince + 1
	return st
}

// resumeData carries raw, unescaped values. The template escapes untrusted
// strings at substitution.
type resumeData struct {
	Login       string
	FirstName   string
	LastName    string
	Location    string
	Blog        string
	Bio         string
	PublicRepos int
	Followers   int
	Stats

	FocusLanguages []string
	Languages      []string
	Breakdown      []ranking.LanguageShare
	Projects       []projectData
}

type projectData struct {
	Name        string
	URL         string
	Language    string
	Description string
	Topics      []string
	Stars       int
	Forks       int
	Interest    string
}

func buildResumeData(profile *types.Profile, repos []types.Repository, languages types.LanguageHistogram, asOf time.Time, topicLimit int) *resumeData {
	login := sanitize.Username(profile.Login)
	first, last := SplitName(profile.Name, login)

	ranked := ranking.RankLanguages(languages)
	if len(ranked) > rankedLanguageLimit {
		ranked = ranked[:rankedLanguageLimit]
	}

	data := &resumeData{
		Login:          login,
		FirstName:      first,
		LastName:       last,
		Location:       profile.Location,
		Blog:           profile.Blog,
		Bio:            profile.Bio,
		PublicRepos:    profile.PublicRepos,
		Followers:      profile.Followers,
		Stats:          ComputeStats(profile, repos, languages, asOf),
		FocusLanguages: languageNames(ranked, focusLanguageLimit),
		Languages:      languageNames(ranked, skillLanguageLimit),
		Breakdown:      head(ranked, breakdownLimit),
	}

	for _, repo := range ranking.TopRepositories(repos, ranking.FeaturedProjectCount) {
		data.Projects = append(data.Projects, newProjectData(&repo, topicLimit))
	}

	return data
}

func newProjectData(repo *types.Repository, topicLimit int) projectData {
	p := projectData{
		Name:        repo.Name,
		URL:         repo.HTMLURL,
		Language:    repo.Language,
		Description: repo.Description,
		Topics:      head(repo.Topics, topicLimit),
		Stars:       repo.StargazersCount,
		Forks:       repo.ForksCount,
		Interest:    "growing",
	}
	if p.URL == "" {
		if owner := sanitize.Username(repo.OwnerLogin()); owner != "" {
			p.URL = "https://github.com/" + owner + "/" + repo.Name
		}
	}
	if repo.StargazersCount > strongInterestStars {
		p.Interest = "strong"
	}
	return p
}

func languageNames(shares []ranking.LanguageShare, n int) []string {
	shares = head(shares, n)
	names := make([]string, len(shares))
	for i, s := range shares {
		names[i] = s.Language
	}
	return names
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// templateFuncs are shared by the embedded and user-supplied templates.
var templateFuncs = template.FuncMap{
	"escape": EscapeLaTeX,
	"escapeJoin": func(items []string) Escaped {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = string(EscapeLaTeX(item))
		}
		return Escaped(strings.Join(parts, ", "))
	},
	"href":       SafeURL,
	"displayURL": DisplayURL,
	"percent": func(p float64) string {
		return strconv.FormatFloat(math.Round(p), 'f', 0, 64)
	},
}

// ParseTemplate parses a LaTeX skeleton. Actions use [[ ]] delimiters so
// they do not collide with LaTeX braces.
func ParseTemplate(name, content string) (*template.Template, error) {
	tmpl, err := template.New(name).Delims("[[", "]]").Funcs(templateFuncs).Parse(content)
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse template",
			Cause:   err,
		}
	}
	return tmpl, nil
}

// LoadTemplate reads and parses a LaTeX skeleton from disk.
func LoadTemplate(path string) (*template.Template, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{
				Message: fmt.Sprintf("template file not found: %s", path),
				Cause:   err,
			}
		}
		return nil, &TemplateError{
			Message: fmt.Sprintf("failed to read template file: %s", path),
			Cause:   err,
		}
	}
	return ParseTemplate(path, string(content))
}

var defaultTemplate = sync.OnceValues(func() (*template.Template, error) {
	content, err := templateFS.ReadFile(defaultTemplateName)
	if err != nil {
		return nil, &TemplateError{Message: "embedded template missing", Cause: err}
	}
	return ParseTemplate("resume.tex", string(content))
})
