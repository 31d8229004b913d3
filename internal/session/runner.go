package session

import (
	"context"
	"errors"
	"fmt"

	"jira-feedback/internal/adf"
	"jira-feedback/internal/config"
	"jira-feedback/internal/feedback"
	"jira-feedback/internal/ui"

	"github.com/pterm/pterm"
)

// ErrReported wraps failures that were already shown to the user.
var ErrReported = errors.New("already reported")

// TitleSuggester proposes a title for a description.
type TitleSuggester interface {
	SuggestTitle(ctx context.Context, description string, maxLen int) (string, error)
}

// Submitter files a submission.
type Submitter interface {
	Submit(ctx context.Context, sub feedback.Submission, u *feedback.User) (feedback.Result, error)
}

type Runner struct {
	cfg       *config.Config
	service   Submitter
	suggester TitleSuggester
}

// NewRunner wires the interactive flow. suggester may be nil.
func NewRunner(cfg *config.Config, service Submitter, suggester TitleSuggester) *Runner {
	return &Runner{
		cfg:       cfg,
		service:   service,
		suggester: suggester,
	}
}

// Run shows the banner, collects feedback through the form and submits it.
func (r *Runner) Run(ctx context.Context) error {
	if !r.cfg.Enabled {
		ui.PrintResult(feedback.Result{}, feedback.ErrDisabled)
		return nil
	}

	if !ui.ShowBanner(r.cfg.Banner.Message, r.cfg.Banner.ButtonLabel) {
		return nil
	}

	ui.PrintWelcome()

	limits := r.cfg.Limits()
	sub, err := ui.ReadFeedback(r.cfg.Issue.Types, limits, r.suggester != nil)
	if errors.Is(err, ui.ErrCancelled) {
		ui.PrintCancelled()
		return nil
	}
	if err != nil {
		return err
	}

	if sub.Summary == "" {
		sub.Summary, err = r.suggestTitle(ctx, sub.Description, limits)
		if errors.Is(err, ui.ErrCancelled) {
			ui.PrintCancelled()
			return nil
		}
		if err != nil {
			return err
		}
	}

	user := r.cfg.User()
	summary := feedback.BuildSummary(sub.Summary, user, r.cfg.UserContext.IncludeProjectKey)
	ui.PrintPreview(sub, summary, adf.Convert(feedback.BuildDescription(sub.Description, user)))

	if !ui.Confirm("Send this feedback to Jira?") {
		ui.PrintCancelled()
		return nil
	}

	if _, err := r.Submit(ctx, sub); err != nil {
		return fmt.Errorf("%w: %w", ErrReported, err)
	}
	return nil
}

// Submit files sub with a spinner and prints the outcome. The returned error
// is the submission error, already shown to the user.
func (r *Runner) Submit(ctx context.Context, sub feedback.Submission) (feedback.Result, error) {
	spinner, _ := pterm.DefaultSpinner.Start("Submitting feedback...")
	res, err := r.service.Submit(ctx, sub, r.cfg.User())
	spinner.Stop()
	ui.PrintResult(res, err)
	return res, err
}

func (r *Runner) suggestTitle(ctx context.Context, description string, limits feedback.Limits) (string, error) {
	spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start("Suggesting a title...")
	suggested, err := r.suggester.SuggestTitle(ctx, description, r.cfg.Validation.SummaryMaxLength)
	spinner.Stop()
	if err != nil {
		ui.PrintError("Could not suggest a title: " + err.Error())
		suggested = ""
	}
	return ui.EditTitle(suggested, limits)
}
