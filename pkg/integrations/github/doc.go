// Package github integrates GitHub issues.
//
// The plugin serves two paths:
//
//	GET /github/my-issues?state=all&limit=20
//	GET /github/issue/{owner}/{repo}/{number}
//
// Requests go through a go-github client whose transport waits out secondary
// rate limits and authenticates with either a personal access token (oauth2)
// or a GitHub App installation (ghinstallation). Set BaseURL to talk to a
// GitHub Enterprise Server.
package github
