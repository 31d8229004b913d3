package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"jira-feedback/internal/adf"
	"jira-feedback/internal/jira"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJira struct {
	valid   bool
	key     string
	err     error
	calls   int
	payload jira.IssuePayload
}

func (f *fakeJira) ValidateConfiguration() bool { return f.valid }

func (f *fakeJira) ProjectKey() string { return "FEED" }

func (f *fakeJira) CreateIssue(_ context.Context, p jira.IssuePayload) (string, error) {
	f.calls++
	f.payload = p
	return f.key, f.err
}

func newTestService(fj *fakeJira, opts Options) (*Service, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	svc := NewService(fj, opts, logger)
	svc.newID = func() string { return "sub-1" }
	return svc, &buf
}

func defaultOptions() Options {
	return Options{
		Enabled:         true,
		DefaultPriority: "Medium",
		Limits:          Limits{IssueTypes: []string{"Bug", "Task"}},
	}
}

func validSubmission() Submission {
	return Submission{IssueType: "Bug", Summary: "Save fails", Description: "Clicked save\nnothing"}
}

func TestSubmission_Validate(t *testing.T) {
	limits := Limits{SummaryMaxLength: 5, DescriptionMaxLength: 10, IssueTypes: []string{"Bug"}}

	tests := []struct {
		name  string
		sub   Submission
		field string
		want  error
	}{
		{"ok", Submission{"Bug", "short", "fine"}, "", nil},
		{"missing type", Submission{"", "s", "d"}, "issue_type", ErrEmptyField},
		{"unknown type", Submission{"Epic", "s", "d"}, "issue_type", ErrUnknownIssueType},
		{"blank summary", Submission{"Bug", "   ", "d"}, "summary", ErrEmptyField},
		{"long summary", Submission{"Bug", "toolong", "d"}, "summary", ErrTooLong},
		{"blank description", Submission{"Bug", "s", "\n\n"}, "description", ErrEmptyField},
		{"long description", Submission{"Bug", "s", strings.Repeat("x", 11)}, "description", ErrTooLong},
		{"runes not bytes", Submission{"Bug", "ééééé", "d"}, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sub.Validate(limits)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestLimits_Defaults(t *testing.T) {
	var l Limits
	assert.NoError(t, l.ValidateSummary(strings.Repeat("a", DefaultSummaryMaxLength)))
	assert.ErrorIs(t, l.ValidateSummary(strings.Repeat("a", DefaultSummaryMaxLength+1)), ErrTooLong)
	assert.NoError(t, l.ValidateDescription(strings.Repeat("a", DefaultDescriptionMaxLength)))
	assert.ErrorIs(t, l.ValidateDescription(strings.Repeat("a", DefaultDescriptionMaxLength+1)), ErrTooLong)
	assert.NoError(t, Submission{"Anything", "s", "d"}.Validate(l))
}

func TestBuildSummary(t *testing.T) {
	u := &User{ProjectKey: "ACME"}
	assert.Equal(t, "[ACME] Broken", BuildSummary("Broken", u, true))
	assert.Equal(t, "Broken", BuildSummary("Broken", u, false))
	assert.Equal(t, "Broken", BuildSummary("Broken", &User{}, true))
	assert.Equal(t, "Broken", BuildSummary("Broken", nil, true))
}

func TestBuildDescription(t *testing.T) {
	assert.Equal(t, "Anonymous feedback\n\nbody", BuildDescription("body", nil))
	assert.Equal(t, "Feedback submitted by: Ann (ann@example.com)\n\nbody",
		BuildDescription("body", &User{Name: "Ann", Email: "ann@example.com"}))
	assert.Equal(t, "Feedback submitted by: Unknown (Unknown)\n\nbody", BuildDescription("body", &User{}))
}

func TestSubmit_Success(t *testing.T) {
	fj := &fakeJira{valid: true, key: "FEED-7"}
	opts := defaultOptions()
	opts.IncludeProjectKey = true
	svc, logs := newTestService(fj, opts)

	user := &User{ID: "42", Name: "Ann", Email: "ann@example.com", ProjectKey: "ACME"}
	res, err := svc.Submit(context.Background(), validSubmission(), user)
	require.NoError(t, err)
	assert.Equal(t, Result{SubmissionID: "sub-1", IssueKey: "FEED-7"}, res)

	assert.Equal(t, "FEED", fj.payload.ProjectKey)
	assert.Equal(t, "[ACME] Save fails", fj.payload.Summary)
	assert.Equal(t, "Bug", fj.payload.IssueType)
	assert.Equal(t, "Medium", fj.payload.Priority)
	assert.Equal(t, adf.Convert("Feedback submitted by: Ann (ann@example.com)\n\nClicked save\nnothing"), fj.payload.Description)
	assert.True(t, fj.payload.Description.Valid())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "feedback submitted", entry["msg"])
	assert.Equal(t, "FEED-7", entry["issue_key"])
	assert.Equal(t, "42", entry["user_id"])
	assert.Equal(t, "sub-1", entry["submission_id"])
}

func TestSubmit_Anonymous(t *testing.T) {
	fj := &fakeJira{valid: true, key: "FEED-8"}
	svc, logs := newTestService(fj, defaultOptions())

	_, err := svc.Submit(context.Background(), validSubmission(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Anonymous feedback", fj.payload.Description.Content[0].Content[0].Text)
	assert.Contains(t, logs.String(), `"user_email":"anonymous"`)
}

func TestSubmit_Guards(t *testing.T) {
	tests := []struct {
		name   string
		fj     *fakeJira
		mutate func(*Options)
		sub    Submission
		want   error
	}{
		{"disabled", &fakeJira{valid: true}, func(o *Options) { o.Enabled = false }, validSubmission(), ErrDisabled},
		{"misconfigured", &fakeJira{valid: false}, nil, validSubmission(), jira.ErrMisconfigured},
		{"auth required", &fakeJira{valid: true}, func(o *Options) { o.RequireAuthentication = true }, validSubmission(), ErrAuthRequired},
		{"invalid", &fakeJira{valid: true}, nil, Submission{IssueType: "Bug"}, ErrEmptyField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			if tt.mutate != nil {
				tt.mutate(&opts)
			}
			svc, _ := newTestService(tt.fj, opts)

			res, err := svc.Submit(context.Background(), tt.sub, nil)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, res.IssueKey)
			assert.Zero(t, tt.fj.calls)
		})
	}
}

func TestSubmit_RemoteFailure(t *testing.T) {
	cause := &jira.RemoteCallError{Op: "create issue", Err: fmt.Errorf("dial tcp: timeout")}
	fj := &fakeJira{valid: true, err: cause}
	svc, logs := newTestService(fj, defaultOptions())

	res, err := svc.Submit(context.Background(), validSubmission(), &User{ID: "7", Email: "bo@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, jira.ErrRemoteCallFailed)
	assert.Equal(t, "sub-1", res.SubmissionID)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "feedback submission failed", entry["msg"])
	assert.Equal(t, "bo@example.com", entry["user_email"])
	assert.Contains(t, entry["error"], "dial tcp")
}

func TestUserMessage(t *testing.T) {
	title, body := UserMessage(Result{IssueKey: "FEED-1"}, nil)
	assert.Equal(t, "Feedback Submitted!", title)
	assert.Contains(t, body, "FEED-1")

	title, _ = UserMessage(Result{}, fmt.Errorf("submit feedback: %w", jira.ErrMisconfigured))
	assert.Equal(t, "Configuration Error", title)

	title, _ = UserMessage(Result{}, ErrDisabled)
	assert.Equal(t, "Feedback Disabled", title)

	title, _ = UserMessage(Result{}, ErrAuthRequired)
	assert.Equal(t, "Authentication Required", title)

	title, body = UserMessage(Result{}, &FieldError{Field: "summary", Err: ErrEmptyField})
	assert.Equal(t, "Invalid Feedback", title)
	assert.Equal(t, "summary: field is required", body)

	title, body = UserMessage(Result{}, fmt.Errorf("submit feedback: %w", jira.ErrInvalidResponse))
	assert.Equal(t, "Submission Failed", title)
	assert.Equal(t, "Failed to submit feedback. Please try again later.", body)
}

func TestSubmit_FailureLogsDescriptionLengthInRunes(t *testing.T) {
	fj := &fakeJira{valid: true, err: &jira.RemoteCallError{Op: "create issue", StatusCode: 500}}
	svc, logs := newTestService(fj, defaultOptions())
	sub := validSubmission()
	sub.Description = "ошибка"

	_, err := svc.Submit(context.Background(), sub, nil)
	require.Error(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, float64(6), entry["description_length"])
}
