package server

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/github-resume/internal/db"
	"github.com/jonathan/github-resume/internal/github"
	"github.com/jonathan/github-resume/internal/server/middleware"
	"github.com/jonathan/github-resume/internal/server/ratelimit"
	"github.com/jonathan/github-resume/internal/types"
)

const testToken = "gho_test"

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeGitHub struct {
	profile      *types.Profile
	profileErr   error
	repos        map[string][]types.Repository
	reposErr     error
	languages    map[string]types.LanguageHistogram
	credentials  []string
	requestedFor []string
	mu           sync.Mutex
}

func (f *fakeGitHub) FetchProfile(_ context.Context, credential string) (*types.Profile, error) {
	f.mu.Lock()
	f.credentials = append(f.credentials, credential)
	f.mu.Unlock()
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeGitHub) FetchRepositories(_ context.Context, _ string, handle string) ([]types.Repository, error) {
	f.mu.Lock()
	f.requestedFor = append(f.requestedFor, handle)
	f.mu.Unlock()
	if f.reposErr != nil {
		return nil, f.reposErr
	}
	repos, ok := f.repos[handle]
	if !ok {
		return nil, &github.Error{URL: "/users/" + handle + "/repos", Status: http.StatusNotFound, Message: "HTTP status 404: Not Found"}
	}
	return repos, nil
}

func (f *fakeGitHub) FetchLanguageBytes(_ context.Context, _ string, owner, repo string) (types.LanguageHistogram, error) {
	langs, ok := f.languages[owner+"/"+repo]
	if !ok {
		return nil, &github.Error{URL: "/repos/" + owner + "/" + repo + "/languages", Status: http.StatusForbidden, Message: "forbidden"}
	}
	return langs, nil
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		profile: &types.Profile{
			Login:       "ada",
			Name:        "Ada Lovelace",
			PublicRepos: 3,
			Followers:   10,
			CreatedAt:   types.Timestamp{Time: time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		repos: map[string][]types.Repository{
			"ada": {
				{Name: "engine", FullName: "ada/engine", Owner: types.RepositoryOwner{Login: "ada"}, StargazersCount: 50, ForksCount: 5, Language: "TypeScript", Description: "analytic engine"},
				{Name: "notes", FullName: "ada/notes", Owner: types.RepositoryOwner{Login: "ada"}, StargazersCount: 2, Language: "Python"},
				{Name: "private-ish", FullName: "ada/private-ish", Owner: types.RepositoryOwner{Login: "ada"}, StargazersCount: 7},
			},
		},
		languages: map[string]types.LanguageHistogram{
			"ada/engine": {{Language: "TypeScript", Bytes: 1000}, {Language: "Python", Bytes: 200}},
			"ada/notes":  {{Language: "Python", Bytes: 300}},
		},
	}
}

// bearerAuth accepts "Bearer gho_test" as the login "ada".
var bearerAuth = middleware.AuthenticatorFunc(func(r *http.Request) (middleware.Credential, bool) {
	token, ok := middleware.BearerToken(r)
	if !ok || token != testToken {
		return middleware.Credential{}, false
	}
	return middleware.Credential{Login: "ada", AccessToken: token}, true
})

type fakeCompiler struct {
	out     []byte
	err     error
	sources []string
}

func (f *fakeCompiler) Compile(_ context.Context, source string) ([]byte, error) {
	f.sources = append(f.sources, source)
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

type fakeArchive struct {
	docs    map[uuid.UUID]*db.Document
	saveErr error
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{docs: map[uuid.UUID]*db.Document{}}
}

func (f *fakeArchive) SaveDocument(_ context.Context, login, kind, filename, content string) (uuid.UUID, error) {
	if f.saveErr != nil {
		return uuid.Nil, f.saveErr
	}
	id := uuid.New()
	f.docs[id] = &db.Document{ID: id, Login: login, Kind: kind, Filename: filename, Content: content, CreatedAt: testNow}
	return id, nil
}

func (f *fakeArchive) GetDocument(_ context.Context, id uuid.UUID) (*db.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	return doc, nil
}

type testEnv struct {
	server  *Server
	handler http.Handler
	github  *fakeGitHub
	limiter *ratelimit.MemoryStore
	latex   *fakeCompiler
	printer *fakeCompiler
	archive *fakeArchive
}

type envOption func(*Options)

func withoutCompilers() envOption {
	return func(o *Options) {
		o.LaTeX = nil
		o.Printer = nil
	}
}

func withAuth(auth middleware.Authenticator) envOption {
	return func(o *Options) { o.Auth = auth }
}

func withoutArchive() envOption {
	return func(o *Options) { o.Archive = nil }
}

func newTestEnv(opts ...envOption) *testEnv {
	env := &testEnv{
		github:  newFakeGitHub(),
		limiter: ratelimit.NewMemoryStore(ratelimit.WithClock(func() time.Time { return testNow })),
		latex:   &fakeCompiler{out: []byte("%PDF-1.5 latex")},
		printer: &fakeCompiler{out: []byte("%PDF-1.5 chrome")},
		archive: newFakeArchive(),
	}

	o := Options{
		GitHub:  env.github,
		Auth:    bearerAuth,
		Limiter: env.limiter,
		LaTeX:   env.latex,
		Printer: env.printer,
		Archive: env.archive,
		Clock:   func() time.Time { return testNow },
	}
	for _, opt := range opts {
		opt(&o)
	}

	env.server = New(o)
	env.handler = env.server.Handler()
	return env
}

func (e *testEnv) do(method, target, body string, authenticated bool) *httpResult {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := newRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	return serve(e.handler, req)
}
