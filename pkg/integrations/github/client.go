package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	gh "github.com/google/go-github/v61/github"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

// Config configures the GitHub plugin. Token takes precedence over App auth.
type Config struct {
	Token string

	AppID          int64
	InstallationID int64
	PrivateKeyPath string

	// BaseURL points at a GitHub Enterprise Server, e.g. https://ghe.example.com/
	BaseURL string
	Timeout time.Duration

	// Transport overrides the instrumented default transport
	Transport http.RoundTripper
}

func (c Config) usesApp() bool {
	return c.Token == "" && c.AppID != 0
}

// credentialCheck validates the configured credentials against GitHub
type credentialCheck func(ctx context.Context) (string, error)

// newClient builds a go-github client layered as
// rate-limit waiter -> auth transport -> base transport.
func newClient(cfg Config) (*gh.Client, credentialCheck, error) {
	base := cfg.Transport
	if base == nil {
		base = otelhttp.NewTransport(http.DefaultTransport)
	}

	var (
		auth  http.RoundTripper
		check credentialCheck
	)
	switch {
	case cfg.Token != "":
		auth = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
			Base:   base,
		}
	case cfg.usesApp():
		itr, err := ghinstallation.NewKeyFromFile(base, cfg.AppID, cfg.InstallationID, cfg.PrivateKeyPath)
		if err != nil {
			return nil, nil, fmt.Errorf("error creating github app installation token: %w", err)
		}
		if cfg.BaseURL != "" {
			itr.BaseURL = enterpriseAPIURL(cfg.BaseURL)
		}
		auth = itr
		check = func(ctx context.Context) (string, error) {
			if _, err := itr.Token(ctx); err != nil {
				return "", err
			}
			return fmt.Sprintf("installation/%d", cfg.InstallationID), nil
		}
	default:
		return nil, nil, errors.New("github credentials are not configured (set SWITCHYARD_GITHUB_TOKEN or app credentials)")
	}

	rateLimiter, err := github_ratelimit.NewRateLimitWaiterClient(auth)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating github_ratelimit.NewRateLimitWaiterClient: %w", err)
	}
	rateLimiter.Timeout = cfg.Timeout

	client := gh.NewClient(rateLimiter)
	if cfg.BaseURL != "" {
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid github base url: %w", err)
		}
	}

	if check == nil {
		check = func(ctx context.Context) (string, error) {
			user, _, err := client.Users.Get(ctx, "")
			if err != nil {
				return "", err
			}
			return user.GetLogin(), nil
		}
	}
	return client, check, nil
}

// enterpriseAPIURL is the REST root ghinstallation uses for token exchange
func enterpriseAPIURL(baseURL string) string {
	u := strings.TrimSuffix(baseURL, "/")
	if !strings.HasSuffix(u, "/api/v3") {
		u += "/api/v3"
	}
	return u
}

// statusOf returns the upstream HTTP status carried by a go-github error
func statusOf(err error) int {
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode
	}
	return 0
}
