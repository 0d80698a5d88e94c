package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultAPIURL is Linear's GraphQL endpoint
const DefaultAPIURL = "https://api.linear.app/graphql"

var (
	// ErrNotFound is returned when Linear reports that an entity does not exist
	ErrNotFound = errors.New("linear: entity not found")
	// ErrUnauthorized is returned when Linear rejects the API key
	ErrUnauthorized = errors.New("linear: invalid or missing API key")
)

// GraphQLError carries the errors array of a GraphQL response
type GraphQLError struct {
	Messages []string
	Codes    []string
}

func (e *GraphQLError) Error() string {
	return "linear graphql: " + strings.Join(e.Messages, "; ")
}

// Is lets errors.Is(err, ErrNotFound) match Linear's "Entity not found"
func (e *GraphQLError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		for _, m := range e.Messages {
			if strings.Contains(strings.ToLower(m), "not found") {
				return true
			}
		}
	case ErrUnauthorized:
		for _, c := range e.Codes {
			if c == "AUTHENTICATION_ERROR" {
				return true
			}
		}
	}
	return false
}

// Client is a minimal Linear GraphQL client
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client. httpClient may be nil.
func NewClient(endpoint, apiKey string, httpClient *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultAPIURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message    string `json:"message"`
		Extensions struct {
			Code string `json:"code"`
		} `json:"extensions"`
	} `json:"errors"`
}

// Do executes one GraphQL operation and decodes its data into out
func (c *Client) Do(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Personal API keys are sent bare, without a Bearer prefix.
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w (status %d)", ErrUnauthorized, resp.StatusCode)
	}

	var gr graphQLResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("request returned non-2xx status: %d", resp.StatusCode)
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(gr.Errors) > 0 {
		gqlErr := &GraphQLError{}
		for _, e := range gr.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
			if e.Extensions.Code != "" {
				gqlErr.Codes = append(gqlErr.Codes, e.Extensions.Code)
			}
		}
		return gqlErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request returned non-2xx status: %d", resp.StatusCode)
	}

	if out != nil && len(gr.Data) > 0 {
		if err := json.Unmarshal(gr.Data, out); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
	}
	return nil
}

const issueFields = `
fragment IssueFields on Issue {
  id
  identifier
  title
  description
  priority
  priorityLabel
  url
  createdAt
  updatedAt
  dueDate
  state { name type }
  team { key name }
  assignee { name }
  labels { nodes { name } }
}`

const viewerQuery = `query Viewer { viewer { id name email } }`

const assignedIssuesQuery = `
query AssignedIssues($first: Int!, $filter: IssueFilter) {
  viewer {
    assignedIssues(first: $first, filter: $filter, orderBy: updatedAt) {
      nodes { ...IssueFields }
    }
  }
}` + issueFields

const issueQuery = `
query Issue($id: String!) {
  issue(id: $id) { ...IssueFields }
}` + issueFields

// Viewer returns the user that owns the API key
func (c *Client) Viewer(ctx context.Context) (*User, error) {
	var data struct {
		Viewer *User `json:"viewer"`
	}
	if err := c.Do(ctx, viewerQuery, nil, &data); err != nil {
		return nil, err
	}
	if data.Viewer == nil {
		return nil, ErrUnauthorized
	}
	return data.Viewer, nil
}

// AssignedIssues lists issues assigned to the viewer, most recently updated
// first. Completed and canceled issues are excluded unless includeCompleted.
func (c *Client) AssignedIssues(ctx context.Context, first int, includeCompleted bool) ([]Issue, error) {
	variables := map[string]any{"first": first}
	if !includeCompleted {
		variables["filter"] = map[string]any{
			"state": map[string]any{
				"type": map[string]any{"nin": []string{"completed", "canceled"}},
			},
		}
	}

	var data struct {
		Viewer struct {
			AssignedIssues struct {
				Nodes []issueNode `json:"nodes"`
			} `json:"assignedIssues"`
		} `json:"viewer"`
	}
	if err := c.Do(ctx, assignedIssuesQuery, variables, &data); err != nil {
		return nil, err
	}

	nodes := data.Viewer.AssignedIssues.Nodes
	issues := make([]Issue, 0, len(nodes))
	for _, n := range nodes {
		issues = append(issues, n.sanitize())
	}
	return issues, nil
}

// Issue fetches one issue by identifier (ENG-123) or UUID
func (c *Client) Issue(ctx context.Context, id string) (*Issue, error) {
	var data struct {
		Issue *issueNode `json:"issue"`
	}
	if err := c.Do(ctx, issueQuery, map[string]any{"id": id}, &data); err != nil {
		return nil, err
	}
	if data.Issue == nil {
		return nil, ErrNotFound
	}
	issue := data.Issue.sanitize()
	return &issue, nil
}
