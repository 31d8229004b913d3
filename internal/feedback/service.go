package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"jira-feedback/internal/adf"
	"jira-feedback/internal/jira"

	"github.com/google/uuid"
)

var (
	ErrDisabled     = errors.New("feedback submission is disabled")
	ErrAuthRequired = errors.New("authentication required")
)

// IssueCreator is the part of the Jira client the service needs.
type IssueCreator interface {
	ValidateConfiguration() bool
	ProjectKey() string
	CreateIssue(ctx context.Context, p jira.IssuePayload) (string, error)
}

type Options struct {
	Enabled               bool
	RequireAuthentication bool
	IncludeProjectKey     bool
	DefaultPriority       string
	Limits                Limits
}

type Service struct {
	jira   IssueCreator
	opts   Options
	logger *slog.Logger
	newID  func() string
}

func NewService(creator IssueCreator, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		jira:   creator,
		opts:   opts,
		logger: logger,
		newID:  func() string { return uuid.NewString() },
	}
}

// Result identifies a filed submission.
type Result struct {
	SubmissionID string
	IssueKey     string
}

// Submit files sub as a Jira issue on behalf of u (nil for anonymous).
func (s *Service) Submit(ctx context.Context, sub Submission, u *User) (Result, error) {
	res := Result{SubmissionID: s.newID()}

	if !s.opts.Enabled {
		return res, ErrDisabled
	}
	if !s.jira.ValidateConfiguration() {
		s.logger.Error("jira feedback configuration is invalid", "submission_id", res.SubmissionID)
		return res, fmt.Errorf("submit feedback: %w", jira.ErrMisconfigured)
	}
	if s.opts.RequireAuthentication && u == nil {
		return res, ErrAuthRequired
	}
	if err := sub.Validate(s.opts.Limits); err != nil {
		return res, err
	}

	summary := BuildSummary(sub.Summary, u, s.opts.IncludeProjectKey)
	payload := jira.IssuePayload{
		ProjectKey:  s.jira.ProjectKey(),
		Summary:     summary,
		Description: adf.Convert(BuildDescription(sub.Description, u)),
		IssueType:   sub.IssueType,
		Priority:    s.opts.DefaultPriority,
	}

	key, err := s.jira.CreateIssue(ctx, payload)
	if err != nil {
		s.logger.Error("feedback submission failed",
			"submission_id", res.SubmissionID,
			"user_id", u.logID(),
			"user_email", u.logEmail(),
			"issue_type", sub.IssueType,
			"summary", summary,
			"description_length", utf8.RuneCountInString(sub.Description),
			"error", err,
		)
		return res, fmt.Errorf("submit feedback: %w", err)
	}

	res.IssueKey = key
	s.logger.Info("feedback submitted",
		"submission_id", res.SubmissionID,
		"user_id", u.logID(),
		"user_email", u.logEmail(),
		"issue_key", key,
		"issue_type", sub.IssueType,
		"summary", summary,
	)
	return res, nil
}
