package rendering

import (
	htmltemplate "html/template"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/github-resume/internal/ranking"
	"github.com/jonathan/github-resume/internal/sanitize"
	"github.com/jonathan/github-resume/internal/types"
)

const (
	htmlTemplateName = "templates/resume.html.tmpl"
	skillBarLimit    = 6
	htmlTopicLimit   = 5
)

type htmlData struct {
	resumeData
	DisplayName    string
	SkillBars      []ranking.LanguageShare
	ExtraLanguages []string
}

var htmlTemplate = sync.OnceValues(func() (*htmltemplate.Template, error) {
	content, err := templateFS.ReadFile(htmlTemplateName)
	if err != nil {
		return nil, &TemplateError{Message: "embedded template missing", Cause: err}
	}
	tmpl, err := htmltemplate.New("resume.html").Funcs(htmltemplate.FuncMap{
		"displayURL": DisplayURL,
		"percent1": func(p float64) string {
			return strconv.FormatFloat(p, 'f', 1, 64)
		},
	}).Parse(string(content))
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse template", Cause: err}
	}
	return tmpl, nil
})

// RenderHTML renders the HTML preview of a résumé. html/template escapes
// every field for its context, so untrusted text is passed through raw.
func RenderHTML(profile *types.Profile, repos []types.Repository, languages types.LanguageHistogram, asOf time.Time) (*Document, error) {
	if profile == nil {
		return nil, &RenderError{Message: "profile is required"}
	}

	tmpl, err := htmlTemplate()
	if err != nil {
		return nil, err
	}

	base := buildResumeData(profile, repos, languages, asOf, htmlTopicLimit)
	for i := range base.Projects {
		base.Projects[i].URL = htmlURL(base.Projects[i].URL)
	}

	data := &htmlData{
		resumeData:  *base,
		DisplayName: strings.TrimSpace(profile.Name),
		SkillBars:   head(base.Breakdown, skillBarLimit),
	}
	if data.DisplayName == "" {
		data.DisplayName = base.Login
	}
	if len(base.Breakdown) > skillBarLimit {
		for _, s := range base.Breakdown[skillBarLimit:] {
			data.ExtraLanguages = append(data.ExtraLanguages, s.Language)
		}
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return nil, &TemplateError{
			Message: "failed to execute template",
			Cause:   err,
		}
	}

	return &Document{
		Text:     out.String(),
		Filename: Filename(profile.Login, ".html"),
	}, nil
}

// htmlURL keeps only http(s) links; html/template handles the escaping.
func htmlURL(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://") {
		return s
	}
	return ""
}

// StripMarkup returns copies of profile and repos with markup characters
// removed from their free-text fields. Callers apply it to input bound
// for HTML; the LaTeX path escapes instead.
func StripMarkup(profile *types.Profile, repos []types.Repository) (*types.Profile, []types.Repository) {
	p := *profile
	p.Name = sanitize.FreeText(p.Name)
	p.Bio = sanitize.FreeText(p.Bio)
	p.Location = sanitize.FreeText(p.Location)
	p.Company = sanitize.FreeText(p.Company)
	p.Blog = sanitize.FreeText(p.Blog)

	out := make([]types.Repository, len(repos))
	for i, repo := range repos {
		repo.Name = sanitize.FreeText(repo.Name)
		repo.Description = sanitize.FreeText(repo.Description)
		out[i] = repo
	}
	return &p, out
}
