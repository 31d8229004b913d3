package feedback

import (
	"errors"
	"fmt"

	"jira-feedback/internal/jira"
)

// UserMessage maps a Submit outcome to a notification title and body.
func UserMessage(res Result, err error) (title, body string) {
	var fe *FieldError
	switch {
	case err == nil:
		return "Feedback Submitted!", fmt.Sprintf("Your feedback has been submitted successfully. Issue %s has been created.", res.IssueKey)
	case errors.Is(err, ErrDisabled):
		return "Feedback Disabled", "Feedback submission is currently disabled."
	case errors.Is(err, jira.ErrMisconfigured):
		return "Configuration Error", "Feedback service is not properly configured."
	case errors.Is(err, ErrAuthRequired):
		return "Authentication Required", "You must be logged in to submit feedback."
	case errors.As(err, &fe):
		return "Invalid Feedback", fe.Error()
	default:
		return "Submission Failed", "Failed to submit feedback. Please try again later."
	}
}
