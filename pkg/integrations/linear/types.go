package linear

import "time"

// User is the owner of an API key
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Issue is the sanitized issue shape returned to callers
type Issue struct {
	ID            string    `json:"id"`
	Identifier    string    `json:"identifier"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Priority      int       `json:"priority"`
	PriorityLabel string    `json:"priorityLabel"`
	State         string    `json:"state"`
	StateType     string    `json:"stateType"`
	Team          string    `json:"team,omitempty"`
	Assignee      string    `json:"assignee,omitempty"`
	Labels        []string  `json:"labels"`
	URL           string    `json:"url"`
	DueDate       string    `json:"dueDate,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// issueNode mirrors the GraphQL IssueFields fragment
type issueNode struct {
	ID            string    `json:"id"`
	Identifier    string    `json:"identifier"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	Priority      float64   `json:"priority"`
	PriorityLabel string    `json:"priorityLabel"`
	URL           string    `json:"url"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	DueDate       *string   `json:"dueDate"`
	State         *struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"state"`
	Team *struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"team"`
	Assignee *struct {
		Name string `json:"name"`
	} `json:"assignee"`
	Labels struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"labels"`
}

func (n issueNode) sanitize() Issue {
	issue := Issue{
		ID:            n.ID,
		Identifier:    n.Identifier,
		Title:         n.Title,
		Priority:      int(n.Priority),
		PriorityLabel: n.PriorityLabel,
		URL:           n.URL,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
		Labels:        make([]string, 0, len(n.Labels.Nodes)),
	}
	if n.Description != nil {
		issue.Description = *n.Description
	}
	if n.DueDate != nil {
		issue.DueDate = *n.DueDate
	}
	if n.State != nil {
		issue.State = n.State.Name
		issue.StateType = n.State.Type
	}
	if n.Team != nil {
		issue.Team = n.Team.Key
	}
	if n.Assignee != nil {
		issue.Assignee = n.Assignee.Name
	}
	for _, l := range n.Labels.Nodes {
		issue.Labels = append(issue.Labels, l.Name)
	}
	return issue
}
