package jira

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"jira-feedback/internal/cache"
)

// DefaultIssueTypesTTL is how long a project's issue types stay cached.
const DefaultIssueTypesTTL = time.Hour

const issueTypesKeyPrefix = "issue_types_"

// Directory lists the issue types of a project, caching the result.
// Two callers racing on an expired entry may both fetch; the last write wins.
type Directory struct {
	client *Client
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewDirectory(client *Client, c cache.Cache, ttl time.Duration) *Directory {
	if ttl <= 0 {
		ttl = DefaultIssueTypesTTL
	}
	return &Directory{
		client: client,
		cache:  c,
		ttl:    ttl,
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets where cache backend failures are reported.
func (d *Directory) WithLogger(l *slog.Logger) *Directory {
	if l != nil {
		d.logger = l
	}
	return d
}

func issueTypesKey(projectKey string) string {
	return issueTypesKeyPrefix + projectKey
}

// ListIssueTypes returns issue type name -> id for the project, subtasks
// excluded.
func (d *Directory) ListIssueTypes(ctx context.Context, projectKey string) (map[string]string, error) {
	key := issueTypesKey(projectKey)

	cached, ok, err := d.cache.Get(ctx, key)
	if err != nil {
		d.logger.Warn("issue types cache read failed", "project_key", projectKey, "error", err)
	}
	if ok {
		var types map[string]string
		if err := json.Unmarshal(cached, &types); err == nil {
			return types, nil
		}
		d.logger.Warn("discarding undecodable issue types cache entry", "project_key", projectKey)
	}

	entries, err := d.client.fetchProject(ctx, projectKey)
	if err != nil {
		return nil, err
	}

	types := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsSubtask {
			continue
		}
		types[e.Name] = e.ID
	}

	if raw, err := json.Marshal(types); err == nil {
		if err := d.cache.Set(ctx, key, raw, d.ttl); err != nil {
			d.logger.Warn("issue types cache write failed", "project_key", projectKey, "error", err)
		}
	}

	return types, nil
}

// IssueTypes is ListIssueTypes as a slice sorted by name.
func (d *Directory) IssueTypes(ctx context.Context, projectKey string) ([]IssueTypeEntry, error) {
	types, err := d.ListIssueTypes(ctx, projectKey)
	if err != nil {
		return nil, err
	}
	entries := make([]IssueTypeEntry, 0, len(types))
	for name, id := range types {
		entries = append(entries, IssueTypeEntry{Name: name, ID: id})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Invalidate drops the cached issue types for projectKey, present or not.
func (d *Directory) Invalidate(ctx context.Context, projectKey string) error {
	return d.cache.Delete(ctx, issueTypesKey(projectKey))
}
