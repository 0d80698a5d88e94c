package github

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/switchyard/pkg/api"
	"github.com/platinummonkey/switchyard/pkg/apperrors"
	"github.com/platinummonkey/switchyard/pkg/plugins"
)

const testToken = "ghp_test"

const issueJSON = `{
	"number": 42,
	"title": "Crash on startup",
	"state": "open",
	"html_url": "https://github.com/acme/widgets/issues/42",
	"body": "Stack trace attached",
	"comments": 3,
	"user": {"login": "reporter"},
	"assignees": [{"login": "sam"}],
	"labels": [{"name": "bug"}],
	"repository": {"full_name": "acme/widgets"},
	"created_at": "2024-03-01T10:00:00Z",
	"updated_at": "2024-03-02T11:30:00Z"
}`

const pullRequestJSON = `{
	"number": 43,
	"title": "Fix crash",
	"state": "open",
	"pull_request": {"url": "https://api.github.com/repos/acme/widgets/pulls/43"},
	"repository": {"full_name": "acme/widgets"},
	"created_at": "2024-03-01T10:00:00Z",
	"updated_at": "2024-03-02T11:30:00Z"
}`

// fakeGitHub serves the Enterprise REST layout under /api/v3
type fakeGitHub struct {
	server      *httptest.Server
	requests    atomic.Int32
	lastQuery   string
	wantAuth    string
	issueStatus int
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	f := &fakeGitHub{wantAuth: "Bearer " + testToken}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/user", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"login": "sam"}`)
	})
	mux.HandleFunc("GET /api/v3/issues", func(w http.ResponseWriter, r *http.Request) {
		f.lastQuery = r.URL.RawQuery
		io.WriteString(w, "["+issueJSON+","+pullRequestJSON+"]")
	})
	mux.HandleFunc("GET /api/v3/repos/{owner}/{repo}/issues/{number}", func(w http.ResponseWriter, r *http.Request) {
		if f.issueStatus != 0 {
			w.WriteHeader(f.issueStatus)
			io.WriteString(w, `{"message": "Not Found"}`)
			return
		}
		io.WriteString(w, issueJSON)
	})
	mux.HandleFunc("POST /api/v3/app/installations/{id}/access_tokens", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"token": "ghs_installation", "expires_at": "2099-01-01T00:00:00Z"}`)
	})

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		isTokenExchange := r.Method == http.MethodPost
		if !isTokenExchange && r.Header.Get("Authorization") != f.wantAuth {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"message": "Bad credentials"}`)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func tokenConfig(f *fakeGitHub, token string) Config {
	return Config{Token: token, BaseURL: f.server.URL + "/"}
}

func initializedPlugin(t *testing.T, f *fakeGitHub) *Plugin {
	t.Helper()
	p := New(tokenConfig(f, testToken), discardLogger())
	require.NoError(t, p.Initialize(context.Background()))
	return p
}

func TestPlugin_Metadata(t *testing.T) {
	p := New(Config{}, nil)

	assert.Equal(t, "github", p.Name())
	assert.Empty(t, plugins.LintPlugin(p))
	assert.Len(t, p.Paths(), 2)
}

func TestPlugin_InitializeWithoutCredentials(t *testing.T) {
	f := newFakeGitHub(t)
	p := New(Config{BaseURL: f.server.URL + "/"}, discardLogger())

	err := p.Initialize(context.Background())

	assert.ErrorContains(t, err, "credentials are not configured")
	assert.Zero(t, f.requests.Load())
}

func TestPlugin_InitializeBadToken(t *testing.T) {
	f := newFakeGitHub(t)
	p := New(tokenConfig(f, "wrong"), discardLogger())

	err := p.Initialize(context.Background())

	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))

	healthy, err := p.HealthCheck(context.Background())
	assert.False(t, healthy)
	assert.Error(t, err)
}

func TestPlugin_InitializeWithToken(t *testing.T) {
	f := newFakeGitHub(t)
	p := initializedPlugin(t, f)

	healthy, err := p.HealthCheck(context.Background())
	assert.NoError(t, err)
	assert.True(t, healthy)
}

func TestPlugin_InitializeWithApp(t *testing.T) {
	f := newFakeGitHub(t)
	f.wantAuth = "token ghs_installation"

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keyPath := filepath.Join(t.TempDir(), "app.pem")
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), 0o600))

	p := New(Config{
		AppID:          1,
		InstallationID: 2,
		PrivateKeyPath: keyPath,
		BaseURL:        f.server.URL + "/",
	}, discardLogger())
	require.NoError(t, p.Initialize(context.Background()))

	data, err := p.issue(context.Background(), &plugins.Request{
		Params: map[string]string{"owner": "acme", "repo": "widgets", "number": "42"},
	})
	require.NoError(t, err)
	assert.Equal(t, 42, data.(map[string]any)["issue"].(Issue).Number)
}

func TestPlugin_InitializeWithMissingKeyFile(t *testing.T) {
	p := New(Config{AppID: 1, InstallationID: 2, PrivateKeyPath: "/nonexistent/key.pem"}, discardLogger())

	err := p.Initialize(context.Background())

	assert.ErrorContains(t, err, "github app installation token")
}

func TestPlugin_MyIssues(t *testing.T) {
	f := newFakeGitHub(t)
	p := initializedPlugin(t, f)

	data, err := p.myIssues(context.Background(), &plugins.Request{
		Query: map[string]any{"state": "all", "limit": 10},
	})

	require.NoError(t, err)
	result := data.(map[string]any)
	assert.Equal(t, 1, result["count"], "pull requests are filtered out")

	issues := result["issues"].([]Issue)
	assert.Equal(t, Issue{
		Number:     42,
		Title:      "Crash on startup",
		State:      "open",
		Repository: "acme/widgets",
		URL:        "https://github.com/acme/widgets/issues/42",
		Author:     "reporter",
		Assignees:  []string{"sam"},
		Labels:     []string{"bug"},
		Comments:   3,
		Body:       "Stack trace attached",
		CreatedAt:  issues[0].CreatedAt,
		UpdatedAt:  issues[0].UpdatedAt,
	}, issues[0])
	assert.Equal(t, 2024, issues[0].CreatedAt.Year())

	assert.Contains(t, f.lastQuery, "filter=assigned")
	assert.Contains(t, f.lastQuery, "state=all")
	assert.Contains(t, f.lastQuery, "per_page=10")
}

func TestPlugin_Issue(t *testing.T) {
	f := newFakeGitHub(t)
	p := initializedPlugin(t, f)

	data, err := p.issue(context.Background(), &plugins.Request{
		Params: map[string]string{"owner": "acme", "repo": "widgets", "number": "42"},
	})

	require.NoError(t, err)
	issue := data.(map[string]any)["issue"].(Issue)
	assert.Equal(t, 42, issue.Number)
	assert.Equal(t, "acme/widgets", issue.Repository)
}

func TestPlugin_IssueErrors(t *testing.T) {
	tests := []struct {
		name        string
		number      string
		issueStatus int
		status      int
		kind        apperrors.Kind
		message     string
	}{
		{
			name:    "invalid number",
			number:  "0",
			status:  http.StatusBadRequest,
			kind:    apperrors.KindPlugin,
			message: "Invalid issue number '0'",
		},
		{
			name:        "not found",
			number:      "7",
			issueStatus: http.StatusNotFound,
			status:      http.StatusNotFound,
			kind:        apperrors.KindPlugin,
			message:     "Issue 'acme/widgets#7' not found",
		},
		{
			name:        "upstream failure",
			number:      "7",
			issueStatus: http.StatusInternalServerError,
			status:      http.StatusBadGateway,
			kind:        apperrors.KindAPI,
			message:     "Failed to fetch issue from GitHub",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeGitHub(t)
			p := initializedPlugin(t, f)
			f.issueStatus = tt.issueStatus

			_, err := p.issue(context.Background(), &plugins.Request{
				Params: map[string]string{"owner": "acme", "repo": "widgets", "number": tt.number},
			})

			var appErr *apperrors.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.status, appErr.StatusCode)
			assert.Equal(t, tt.kind, appErr.Kind)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestPlugin_HandlersRequireInitialization(t *testing.T) {
	p := New(Config{Token: testToken}, nil)

	_, err := p.myIssues(context.Background(), &plugins.Request{})

	assert.Equal(t, http.StatusServiceUnavailable, apperrors.StatusCode(err))
}

func TestUpstreamErrorCredentials(t *testing.T) {
	f := newFakeGitHub(t)
	p := initializedPlugin(t, f)
	f.wantAuth = "Bearer rotated"

	_, err := p.myIssues(context.Background(), &plugins.Request{})

	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadGateway, appErr.StatusCode)
	assert.Equal(t, "GitHub rejected the configured credentials", appErr.Message)
}

func TestEnterpriseAPIURL(t *testing.T) {
	assert.Equal(t, "https://ghe.example.com/api/v3", enterpriseAPIURL("https://ghe.example.com/"))
	assert.Equal(t, "https://ghe.example.com/api/v3", enterpriseAPIURL("https://ghe.example.com/api/v3/"))
}

func TestRouted_Issue(t *testing.T) {
	f := newFakeGitHub(t)
	logger := discardLogger()
	registry := plugins.NewRegistry(logger)
	registry.Discover(context.Background(), Factory(tokenConfig(f, testToken), logger))
	h := api.NewServer(registry, logger).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/github/issue/acme/widgets/42", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "github", body["app"])
	assert.Equal(t, "issue/{owner}/{repo}/{number:[0-9]+}", body["path"])
	issue := body["data"].(map[string]any)["issue"].(map[string]any)
	assert.Equal(t, float64(42), issue["number"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/github/issue/acme/widgets/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "non-numeric issue numbers do not match the route")
}
