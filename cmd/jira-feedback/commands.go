package main

import (
	"fmt"
	"io"
	"os"

	"jira-feedback/internal/config"
	"jira-feedback/internal/feedback"
	"jira-feedback/internal/jira"
	"jira-feedback/internal/session"
	"jira-feedback/internal/ui"

	"github.com/spf13/cobra"
)

func newSubmitCmd() *cobra.Command {
	var (
		issueType   string
		summary     string
		description string
		file        string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit feedback without the interactive form",
		Example: `  jira-feedback submit --type Bug --summary "Export fails" --description "CSV export returns 500"
  git log -1 --format=%B | jira-feedback submit --type Task --summary "Follow up" --file -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file != "" {
				text, err := readDescription(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
				description = text
			}

			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireJira(); err != nil {
				return err
			}

			runner := session.NewRunner(a.cfg, a.service, nil)
			sub := feedback.Submission{IssueType: issueType, Summary: summary, Description: description}
			if _, err := runner.Submit(cmd.Context(), sub); err != nil {
				return fmt.Errorf("%w: %w", session.ErrReported, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&issueType, "type", "t", "Bug", "Issue type")
	cmd.Flags().StringVarP(&summary, "summary", "s", "", "Issue title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Feedback text")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the description from a file ('-' for stdin)")
	_ = cmd.MarkFlagRequired("summary")
	cmd.MarkFlagsOneRequired("description", "file")
	cmd.MarkFlagsMutuallyExclusive("description", "file")

	return cmd
}

func readDescription(stdin io.Reader, file string) (string, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("read description: %w", err)
	}
	return string(data), nil
}

func newIssueTypesCmd() *cobra.Command {
	var (
		refresh bool
		project string
	)

	cmd := &cobra.Command{
		Use:   "issue-types",
		Short: "List the issue types of the Jira project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireJira(); err != nil {
				return err
			}
			if project == "" {
				project = a.cfg.Jira.ProjectKey
			}

			ttl, err := a.cfg.CacheTTL()
			if err != nil {
				return err
			}
			dir := jira.NewDirectory(a.client, a.cache, ttl).WithLogger(a.logger)

			if refresh {
				if err := dir.Invalidate(ctx, project); err != nil {
					a.logger.Warn("could not clear issue types cache", "project_key", project, "error", err)
				}
			}

			entries, err := dir.IssueTypes(ctx, project)
			if err != nil {
				a.logger.Error("failed to fetch jira issue types", "project_key", project, "error", err)
				return fmt.Errorf("failed to fetch issue types: %w", err)
			}

			ui.PrintIssueTypesTable(project, entries)
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore the cached list and fetch it again")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project key (defaults to the configured one)")

	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Set up the Jira connection interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := config.RunSetup(configPath)
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "jira-feedback version", Version)
		},
	}
}
