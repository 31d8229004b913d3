package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every round trip to Jira.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 2048

// ErrInvalidPayload is returned when an IssuePayload would not be accepted,
// e.g. its description is not a well-formed document.
var ErrInvalidPayload = errors.New("invalid issue payload")

type Client struct {
	creds Credentials
	http  *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is kept
// unless WithTimeout follows.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

func NewClient(creds Credentials, opts ...Option) *Client {
	creds.BaseURL = strings.TrimRight(strings.TrimSpace(creds.BaseURL), "/")
	c := &Client{
		creds: creds,
		http:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ValidateConfiguration reports whether the client can make remote calls.
func (c *Client) ValidateConfiguration() bool {
	return c.creds.Validate()
}

func (c *Client) ProjectKey() string {
	return c.creds.ProjectKey
}

// CreateIssue files a new issue and returns its key, e.g. "FEED-123".
func (c *Client) CreateIssue(ctx context.Context, p IssuePayload) (string, error) {
	const op = "create issue"

	if !c.creds.Validate() {
		return "", fmt.Errorf("%s: %w", op, ErrMisconfigured)
	}
	if !p.Description.Valid() {
		return "", fmt.Errorf("%s: %w: description is not a valid document", op, ErrInvalidPayload)
	}

	fields := issueFields{
		Project:     keyRef{Key: p.ProjectKey},
		Summary:     p.Summary,
		Description: p.Description,
		IssueType:   nameRef{Name: p.IssueType},
	}
	if p.Priority != "" {
		fields.Priority = &nameRef{Name: p.Priority}
	}

	body, err := json.Marshal(createIssueRequest{Fields: fields})
	if err != nil {
		return "", fmt.Errorf("%s: marshal payload: %w", op, err)
	}

	respBody, err := c.do(ctx, op, http.MethodPost, "/rest/api/3/issue", body)
	if err != nil {
		return "", err
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(respBody, &obj); err != nil || obj == nil {
		return "", invalidResponse(op, "body is not a JSON object")
	}
	raw, ok := obj["key"]
	if !ok {
		return "", invalidResponse(op, "missing key")
	}
	var key string
	if err := json.Unmarshal(raw, &key); err != nil || key == "" {
		return "", invalidResponse(op, "key is not a non-empty string")
	}

	return key, nil
}

// fetchProject returns the issue types listed on a project.
func (c *Client) fetchProject(ctx context.Context, projectKey string) ([]IssueTypeEntry, error) {
	const op = "get project"

	if !c.creds.Validate() {
		return nil, fmt.Errorf("%s: %w", op, ErrMisconfigured)
	}

	respBody, err := c.do(ctx, op, http.MethodGet, "/rest/api/3/project/"+url.PathEscape(projectKey), nil)
	if err != nil {
		return nil, err
	}

	var pr projectResponse
	if err := json.Unmarshal(respBody, &pr); err != nil {
		return nil, invalidResponse(op, "body is not a JSON object")
	}
	if pr.IssueTypes == nil {
		return nil, invalidResponse(op, "missing issueTypes")
	}

	entries := make([]IssueTypeEntry, 0, len(*pr.IssueTypes))
	for _, it := range *pr.IssueTypes {
		entries = append(entries, IssueTypeEntry{
			Name:      it.Name,
			ID:        it.ID,
			IsSubtask: it.Subtask,
		})
	}
	return entries, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.creds.BaseURL+path, reader)
	if err != nil {
		return nil, &RemoteCallError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}

	req.SetBasicAuth(c.creds.Email, c.creds.APIToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RemoteCallError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteCallError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt := string(respBody)
		if len(excerpt) > maxErrorBody {
			excerpt = excerpt[:maxErrorBody]
		}
		return nil, &RemoteCallError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       excerpt,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	return respBody, nil
}
