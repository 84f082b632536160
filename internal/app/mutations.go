package app

import (
	"context"
	"net/http"
	"strings"
)

const sessionTitleMaxRunes = 30

type CreateSessionOptions struct {
	Source              string // source resource name, e.g. "sources/github/..."
	Prompt              string
	StartingBranch      string // optional branch override for the source context
	RequirePlanApproval bool
}

type createSessionRequest struct {
	Prompt              string        `json:"prompt"`
	Title               string        `json:"title"`
	SourceContext       sourceContext `json:"sourceContext"`
	RequirePlanApproval bool          `json:"requirePlanApproval,omitempty"`
}

type sourceContext struct {
	Source            string             `json:"source"`
	GitHubRepoContext *githubRepoContext `json:"githubRepoContext,omitempty"`
}

type githubRepoContext struct {
	StartingBranch string `json:"startingBranch"`
}

type sendMessageRequest struct {
	Prompt string `json:"prompt"`
}

// deriveSessionTitle builds the session title from the trimmed prompt: the
// first 30 runes, "..."-suffixed when truncated.
func deriveSessionTitle(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= sessionTitleMaxRunes {
		return prompt
	}
	return string(runes[:sessionTitleMaxRunes]) + "..."
}

// CreateSession starts a new agent session against a source. Returns nil with
// the error slot set on failure; a create failure is terminal for the attempt
// so no error is re-raised.
func (c *Client) CreateSession(ctx context.Context, opts CreateSessionOptions) *Session {
	c.mu.Lock()
	c.loading = true
	c.lastErr = ""
	c.mu.Unlock()

	prompt := strings.TrimSpace(opts.Prompt)
	body := createSessionRequest{
		Prompt:        prompt,
		Title:         deriveSessionTitle(prompt),
		SourceContext: sourceContext{Source: opts.Source},
	}
	if opts.StartingBranch != "" {
		body.SourceContext.GitHubRepoContext = &githubRepoContext{StartingBranch: opts.StartingBranch}
	}
	if opts.RequirePlanApproval {
		body.RequirePlanApproval = true
	}

	var sess Session
	err := c.do(ctx, http.MethodPost, "/sessions", body, &sess)

	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.lastErr = c.message(err, "createSessionFailed")
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	return &sess
}

// ApprovePlan approves the pending plan on a session. Failure both sets the
// error slot and is returned, so callers chaining a refresh can abort.
func (c *Client) ApprovePlan(ctx context.Context, sessionName string) error {
	return c.mutate(ctx, "/"+sessionName+":approvePlan", struct{}{}, "approvePlanFailed")
}

// SendMessage posts a user message to a session. Same failure propagation as
// ApprovePlan.
func (c *Client) SendMessage(ctx context.Context, sessionName, text string) error {
	return c.mutate(ctx, "/"+sessionName+":sendMessage", sendMessageRequest{Prompt: text}, "sendMessageFailed")
}

func (c *Client) mutate(ctx context.Context, path string, body any, fallbackKey string) error {
	c.mu.Lock()
	c.loading = true
	c.lastErr = ""
	c.mu.Unlock()

	err := c.do(ctx, http.MethodPost, path, body, nil)

	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.lastErr = c.message(err, fallbackKey)
	}
	c.mu.Unlock()
	return err
}
