package jira

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"jira-feedback/internal/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectBody = `{
	"key": "FEED",
	"issueTypes": [
		{"id": "1", "name": "Bug", "subtask": false},
		{"id": "2", "name": "Task"},
		{"id": "3", "name": "Sub-task", "subtask": true},
		{"id": "4", "name": "Story", "subtask": false}
	]
}`

func projectServer(t *testing.T, calls *atomic.Int32, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/api/3/project/FEED", r.URL.Path)
		respondWith(status, body)(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestListIssueTypes_FiltersSubtasks(t *testing.T) {
	var calls atomic.Int32
	server := projectServer(t, &calls, http.StatusOK, projectBody)

	dir := NewDirectory(NewClient(testCreds(server.URL)), cache.NewMemory(), 0)
	types, err := dir.ListIssueTypes(context.Background(), "FEED")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Bug": "1", "Task": "2", "Story": "4"}, types)
}

func TestListIssueTypes_CachedWithinTTL(t *testing.T) {
	var calls atomic.Int32
	server := projectServer(t, &calls, http.StatusOK, projectBody)
	ctx := context.Background()

	dir := NewDirectory(NewClient(testCreds(server.URL)), cache.NewMemory(), time.Hour)

	_, err := dir.ListIssueTypes(ctx, "FEED")
	require.NoError(t, err)
	_, err = dir.ListIssueTypes(ctx, "FEED")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, dir.Invalidate(ctx, "FEED"))
	_, err = dir.ListIssueTypes(ctx, "FEED")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestListIssueTypes_RefetchAfterExpiry(t *testing.T) {
	var calls atomic.Int32
	server := projectServer(t, &calls, http.StatusOK, projectBody)
	ctx := context.Background()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mem := cache.NewMemory().WithClock(func() time.Time { return now })
	dir := NewDirectory(NewClient(testCreds(server.URL)), mem, DefaultIssueTypesTTL)

	_, err := dir.ListIssueTypes(ctx, "FEED")
	require.NoError(t, err)

	now = now.Add(DefaultIssueTypesTTL)
	_, err = dir.ListIssueTypes(ctx, "FEED")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestListIssueTypes_UsesProjectKeyInCacheKey(t *testing.T) {
	var calls atomic.Int32
	server := projectServer(t, &calls, http.StatusOK, projectBody)
	ctx := context.Background()
	mem := cache.NewMemory()

	dir := NewDirectory(NewClient(testCreds(server.URL)), mem, time.Hour)
	_, err := dir.ListIssueTypes(ctx, "FEED")
	require.NoError(t, err)

	raw, ok, err := mem.Get(ctx, "issue_types_FEED")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"Bug":"1","Task":"2","Story":"4"}`, string(raw))
}

func TestListIssueTypes_FailuresNotCached(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusInternalServerError, `{"errorMessages":["boom"]}`, ErrRemoteCallFailed},
		{"not found", http.StatusNotFound, `{}`, ErrRemoteCallFailed},
		{"missing issueTypes", http.StatusOK, `{"key":"FEED"}`, ErrInvalidResponse},
		{"not json", http.StatusOK, `nope`, ErrInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := projectServer(t, &calls, tt.status, tt.body)
			ctx := context.Background()
			mem := cache.NewMemory()

			dir := NewDirectory(NewClient(testCreds(server.URL)), mem, time.Hour)
			_, err := dir.ListIssueTypes(ctx, "FEED")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))

			_, ok, _ := mem.Get(ctx, "issue_types_FEED")
			assert.False(t, ok)
		})
	}
}

func TestInvalidate_AbsentEntry(t *testing.T) {
	dir := NewDirectory(NewClient(testCreds("https://x.atlassian.net")), cache.NewMemory(), time.Hour)
	assert.NoError(t, dir.Invalidate(context.Background(), "NOPE"))
}

func TestIssueTypes_Sorted(t *testing.T) {
	var calls atomic.Int32
	server := projectServer(t, &calls, http.StatusOK, projectBody)

	dir := NewDirectory(NewClient(testCreds(server.URL)), cache.NewMemory(), time.Hour)
	entries, err := dir.IssueTypes(context.Background(), "FEED")
	require.NoError(t, err)
	assert.Equal(t, []IssueTypeEntry{
		{Name: "Bug", ID: "1"},
		{Name: "Story", ID: "4"},
		{Name: "Task", ID: "2"},
	}, entries)
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("down")
}

func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("down")
}

func (failingCache) Delete(context.Context, string) error { return errors.New("down") }

func TestListIssueTypes_CacheBackendDown(t *testing.T) {
	var calls atomic.Int32
	server := projectServer(t, &calls, http.StatusOK, projectBody)

	dir := NewDirectory(NewClient(testCreds(server.URL)), failingCache{}, time.Hour)
	types, err := dir.ListIssueTypes(context.Background(), "FEED")
	require.NoError(t, err)
	assert.Len(t, types, 3)
}
