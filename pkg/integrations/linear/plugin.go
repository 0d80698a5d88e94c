package linear

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/switchyard/pkg/apperrors"
	"github.com/platinummonkey/switchyard/pkg/plugins"
)

// PluginName is the routing name of the Linear plugin
const PluginName = "linear"

const (
	defaultLimit = 50
	maxLimit     = 100
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*-[0-9]+$`)

// Config configures the Linear plugin
type Config struct {
	APIKey  string
	APIURL  string
	Timeout time.Duration
	// HTTPClient overrides the instrumented default client
	HTTPClient *http.Client
}

// Plugin exposes Linear issues
type Plugin struct {
	cfg    Config
	logger logrus.FieldLogger

	mu     sync.RWMutex
	client *Client
}

var (
	_ plugins.Plugin        = (*Plugin)(nil)
	_ plugins.HealthChecker = (*Plugin)(nil)
)

// New creates the plugin. It does not contact Linear.
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
func (p *Plugin) Description() string { return "Linear issue tracking integration" }

func (p *Plugin) Paths() []plugins.PathDescriptor {
	return []plugins.PathDescriptor{
		{
			Name:        "my-issues",
			Description: "Get issues assigned to the authenticated user",
			Handler:     p.myIssues,
			Schema: plugins.NewSchema(map[string]plugins.Param{
				"limit": plugins.Int("Maximum number of issues to return").
					WithRange(1, maxLimit).WithDefault(defaultLimit),
				"includeCompleted": plugins.Bool("Include completed and canceled issues").
					WithDefault(false),
			}),
		},
		{
			Name:        "issue/{identifier}",
			Description: "Get a single issue by identifier (e.g. ENG-123) or ID",
			Handler:     p.issue,
			Schema:      plugins.NewSchema(nil),
		},
	}
}

// Initialize creates the client and validates the API key against Linear
func (p *Plugin) Initialize(ctx context.Context) error {
	if p.cfg.APIKey == "" {
		return errors.New("linear API key is not configured (set SWITCHYARD_LINEAR_API_KEY)")
	}

	httpClient := p.cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   p.cfg.Timeout,
		}
	}
	client := NewClient(p.cfg.APIURL, p.cfg.APIKey, httpClient)

	viewer, err := client.Viewer(ctx)
	if err != nil {
		return fmt.Errorf("validate Linear credentials: %w", err)
	}

	p.mu.Lock()
	p.client = client
	p.mu.Unlock()

	p.logger.WithField("viewer", viewer.Name).Info("Connected to Linear")
	return nil
}

// HealthCheck verifies the API key is still accepted
func (p *Plugin) HealthCheck(ctx context.Context) (bool, error) {
	client, err := p.getClient()
	if err != nil {
		return false, err
	}
	if _, err := client.Viewer(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Plugin) getClient() (*Client, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.client == nil {
		return nil, apperrors.NewPlugin(PluginName, http.StatusServiceUnavailable, "Linear client is not initialized")
	}
	return p.client, nil
}

// myIssues handles my-issues
func (p *Plugin) myIssues(ctx context.Context, req *plugins.Request) (any, error) {
	client, err := p.getClient()
	if err != nil {
		return nil, err
	}

	limit, ok := req.Int("limit")
	if !ok {
		limit = defaultLimit
	}

	issues, err := client.AssignedIssues(ctx, limit, req.Bool("includeCompleted"))
	if err != nil {
		return nil, upstreamError("Failed to fetch issues from Linear", err)
	}

	return map[string]any{
		"issues": issues,
		"count":  len(issues),
	}, nil
}

// issue handles issue/{identifier}
func (p *Plugin) issue(ctx context.Context, req *plugins.Request) (any, error) {
	client, err := p.getClient()
	if err != nil {
		return nil, err
	}

	id := req.Param("identifier")
	if !validIdentifier(id) {
		return nil, apperrors.NewPlugin(PluginName, http.StatusBadRequest,
			fmt.Sprintf("Invalid issue identifier '%s'", id))
	}

	issue, err := client.Issue(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperrors.NewPlugin(PluginName, http.StatusNotFound,
			fmt.Sprintf("Issue '%s' not found", id))
	}
	if err != nil {
		return nil, upstreamError("Failed to fetch issue from Linear", err)
	}

	return map[string]any{"issue": issue}, nil
}

// validIdentifier accepts TEAM-123 keys and issue UUIDs
func validIdentifier(id string) bool {
	if identifierRegex.MatchString(id) {
		return true
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func upstreamError(message string, err error) *apperrors.Error {
	if errors.Is(err, ErrUnauthorized) {
		return apperrors.NewAPI(PluginName, "Linear rejected the configured API key", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewAPIWithStatus(PluginName, http.StatusGatewayTimeout, message, err)
	}
	return apperrors.NewAPI(PluginName, message, err)
}
