package ui

import (
	"errors"
	"fmt"

	"jira-feedback/internal/config"
	"jira-feedback/internal/feedback"

	"github.com/charmbracelet/huh"
)

// ErrCancelled is returned when the user aborts a form.
var ErrCancelled = errors.New("cancelled")

func issueTypeOptions(types []config.IssueType) []huh.Option[string] {
	opts := make([]huh.Option[string], len(types))
	for i, t := range types {
		label := t.Label
		if label == "" {
			label = t.Name
		}
		opts[i] = huh.NewOption(label, t.Name)
	}
	return opts
}

// ReadFeedback shows the feedback form. The title may be left empty when
// allowEmptyTitle is set; the caller then fills it in.
func ReadFeedback(types []config.IssueType, limits feedback.Limits, allowEmptyTitle bool) (feedback.Submission, error) {
	var sub feedback.Submission

	summaryMax, descriptionMax := limits.SummaryMaxLength, limits.DescriptionMaxLength
	if summaryMax <= 0 {
		summaryMax = feedback.DefaultSummaryMaxLength
	}
	if descriptionMax <= 0 {
		descriptionMax = feedback.DefaultDescriptionMaxLength
	}

	titleDescription := ""
	if allowEmptyTitle {
		titleDescription = "Leave empty to get a suggestion."
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Issue Type").
				Options(issueTypeOptions(types)...).
				Value(&sub.IssueType),
			huh.NewInput().
				Title("Title").
				Description(titleDescription).
				Placeholder("Brief description of the issue or request").
				CharLimit(summaryMax).
				Value(&sub.Summary).
				Validate(func(s string) error {
					if allowEmptyTitle && s == "" {
						return nil
					}
					return limits.ValidateSummary(s)
				}),
			huh.NewText().
				Title("Description").
				Placeholder("Provide detailed information about your feedback, issue, or request").
				Lines(4).
				CharLimit(descriptionMax).
				Value(&sub.Description).
				Validate(limits.ValidateDescription),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return sub, ErrCancelled
		}
		return sub, fmt.Errorf("feedback form: %w", err)
	}
	return sub, nil
}

// EditTitle lets the user accept or change a suggested title.
func EditTitle(suggested string, limits feedback.Limits) (string, error) {
	title := suggested
	err := huh.NewInput().
		Title("Title").
		Description("Suggested from your description, edit if needed.").
		Value(&title).
		Validate(limits.ValidateSummary).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("title input: %w", err)
	}
	return title, nil
}

func Confirm(question string) bool {
	ok := true
	if err := huh.NewConfirm().Title(question).Affirmative("Submit").Negative("Cancel").Value(&ok).Run(); err != nil {
		return false
	}
	return ok
}
