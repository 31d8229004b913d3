// Package feedback turns a user's form input into a Jira issue: it validates
// the submission, attaches the reporter's identity and audit-logs the outcome.
package feedback

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	DefaultSummaryMaxLength     = 200
	DefaultDescriptionMaxLength = 2000
)

var (
	ErrEmptyField       = errors.New("field is required")
	ErrTooLong          = errors.New("field is too long")
	ErrUnknownIssueType = errors.New("unknown issue type")
)

// Submission is what the user typed into the feedback form.
type Submission struct {
	IssueType   string `json:"issue_type"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

// Limits bounds a submission. Zero lengths fall back to the defaults; an
// empty IssueTypes list accepts any type.
type Limits struct {
	SummaryMaxLength     int
	DescriptionMaxLength int
	IssueTypes           []string
}

func (l Limits) summaryMax() int {
	if l.SummaryMaxLength > 0 {
		return l.SummaryMaxLength
	}
	return DefaultSummaryMaxLength
}

func (l Limits) descriptionMax() int {
	if l.DescriptionMaxLength > 0 {
		return l.DescriptionMaxLength
	}
	return DefaultDescriptionMaxLength
}

// FieldError names the form field a validation error belongs to.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e *FieldError) Unwrap() error { return e.Err }

// Validate checks s against l and returns the first problem found.
func (s Submission) Validate(l Limits) error {
	if strings.TrimSpace(s.IssueType) == "" {
		return &FieldError{Field: "issue_type", Err: ErrEmptyField}
	}
	if len(l.IssueTypes) > 0 && !slices.Contains(l.IssueTypes, s.IssueType) {
		return &FieldError{Field: "issue_type", Err: fmt.Errorf("%w: %q", ErrUnknownIssueType, s.IssueType)}
	}
	if err := checkText("summary", s.Summary, l.summaryMax()); err != nil {
		return err
	}
	return checkText("description", s.Description, l.descriptionMax())
}

// ValidateSummary and ValidateDescription are the per-field checks used by
// interactive forms.
func (l Limits) ValidateSummary(v string) error { return checkText("summary", v, l.summaryMax()) }

func (l Limits) ValidateDescription(v string) error {
	return checkText("description", v, l.descriptionMax())
}

func checkText(field, v string, limit int) error {
	if strings.TrimSpace(v) == "" {
		return &FieldError{Field: field, Err: ErrEmptyField}
	}
	if n := utf8.RuneCountInString(v); n > limit {
		return &FieldError{Field: field, Err: fmt.Errorf("%w: %d characters, max %d", ErrTooLong, n, limit)}
	}
	return nil
}
