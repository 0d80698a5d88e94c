package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	gh "github.com/google/go-github/v61/github"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/switchyard/pkg/apperrors"
	"github.com/platinummonkey/switchyard/pkg/plugins"
)

// PluginName is the routing name of the GitHub plugin
const PluginName = "github"

const (
	defaultLimit = 30
	maxLimit     = 100
)

// Plugin exposes GitHub issues
type Plugin struct {
	cfg    Config
	logger logrus.FieldLogger

	mu     sync.RWMutex
	client *gh.Client
	check  credentialCheck
}

var (
	_ plugins.Plugin        = (*Plugin)(nil)
	_ plugins.HealthChecker = (*Plugin)(nil)
)

// New creates the plugin. It does not contact GitHub or read key files.
func New(cfg Config, logger logrus.FieldLogger) *Plugin {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Plugin{
		cfg:    cfg,
		logger: logger.WithField("plugin", PluginName),
	}
}

// Factory returns a registry factory for the plugin
func Factory(cfg Config, logger logrus.FieldLogger) plugins.Factory {
	return plugins.Factory{
		Name: PluginName,
		New: func() (plugins.Plugin, error) {
			return New(cfg, logger), nil
		},
	}
}

func (p *Plugin) Name() string        { return PluginName }
func (p *Plugin) Version() string     { return "1.0.0" }
func (p *Plugin) Description() string { return "GitHub issues integration" }

func (p *Plugin) Paths() []plugins.PathDescriptor {
	return []plugins.PathDescriptor{
		{
			Name:        "my-issues",
			Description: "Get issues assigned to the authenticated user across repositories",
			Handler:     p.myIssues,
			Schema: plugins.NewSchema(map[string]plugins.Param{
				"state": plugins.Enum("Issue state", "open", "closed", "all").WithDefault("open"),
				"limit": plugins.Int("Maximum number of issues to return").
					WithRange(1, maxLimit).WithDefault(defaultLimit),
			}),
		},
		{
			Name:        "issue/{owner}/{repo}/{number:[0-9]+}",
			Description: "Get a single issue by repository and number",
			Handler:     p.issue,
			Schema:      plugins.NewSchema(nil),
		},
	}
}

// Initialize builds the client and validates the credentials
func (p *Plugin) Initialize(ctx context.Context) error {
	client, check, err := newClient(p.cfg)
	if err != nil {
		return err
	}

	identity, err := check(ctx)
	if err != nil {
		return fmt.Errorf("validate GitHub credentials: %w", err)
	}

	p.mu.Lock()
	p.client = client
	p.check = check
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{
		"identity": identity,
		"app_auth": p.cfg.usesApp(),
	}).Info("Connected to GitHub")
	return nil
}

// HealthCheck verifies the credentials are still accepted
func (p *Plugin) HealthCheck(ctx context.Context) (bool, error) {
	p.mu.RLock()
	check := p.check
	p.mu.RUnlock()

	if check == nil {
		return false, errors.New("github client is not initialized")
	}
	if _, err := check(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Plugin) getClient() (*gh.Client, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.client == nil {
		return nil, apperrors.NewPlugin(PluginName, http.StatusServiceUnavailable, "GitHub client is not initialized")
	}
	return p.client, nil
}

// myIssues handles my-issues. Pull requests are filtered out.
func (p *Plugin) myIssues(ctx context.Context, req *plugins.Request) (any, error) {
	client, err := p.getClient()
	if err != nil {
		return nil, err
	}

	limit, ok := req.Int("limit")
	if !ok {
		limit = defaultLimit
	}
	state := req.String("state")
	if state == "" {
		state = "open"
	}

	found, _, err := client.Issues.List(ctx, true, &gh.IssueListOptions{
		Filter:      "assigned",
		State:       state,
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: limit},
	})
	if err != nil {
		return nil, upstreamError("Failed to fetch issues from GitHub", err)
	}

	issues := make([]Issue, 0, len(found))
	for _, issue := range found {
		if issue.IsPullRequest() {
			continue
		}
		issues = append(issues, sanitizeIssue(issue, ""))
	}

	return map[string]any{
		"issues": issues,
		"count":  len(issues),
	}, nil
}

// issue handles issue/{owner}/{repo}/{number}
func (p *Plugin) issue(ctx context.Context, req *plugins.Request) (any, error) {
	client, err := p.getClient()
	if err != nil {
		return nil, err
	}

	owner, repo := req.Param("owner"), req.Param("repo")
	number, err := strconv.Atoi(req.Param("number"))
	if err != nil || number <= 0 {
		return nil, apperrors.NewPlugin(PluginName, http.StatusBadRequest,
			fmt.Sprintf("Invalid issue number '%s'", req.Param("number")))
	}

	issue, _, err := client.Issues.Get(ctx, owner, repo, number)
	if statusOf(err) == http.StatusNotFound {
		return nil, apperrors.NewPlugin(PluginName, http.StatusNotFound,
			fmt.Sprintf("Issue '%s/%s#%d' not found", owner, repo, number))
	}
	if err != nil {
		return nil, upstreamError("Failed to fetch issue from GitHub", err)
	}

	sanitized := sanitizeIssue(issue, owner+"/"+repo)
	return map[string]any{"issue": sanitized}, nil
}

func upstreamError(message string, err error) *apperrors.Error {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return apperrors.NewAPIWithStatus(PluginName, http.StatusServiceUnavailable, "GitHub rate limit exceeded", err)
	}
	switch statusOf(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.NewAPI(PluginName, "GitHub rejected the configured credentials", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewAPIWithStatus(PluginName, http.StatusGatewayTimeout, message, err)
	}
	return apperrors.NewAPI(PluginName, message, err)
}
