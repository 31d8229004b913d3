package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// RunSetup asks for the Jira connection and reporter details and saves them
// to path.
func RunSetup(path string) (*Config, error) {
	cfg := *loadForSetup(path)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Jira URL").
				Placeholder("https://your-org.atlassian.net").
				Value(&cfg.Jira.URL).
				Validate(func(s string) error {
					if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
						return fmt.Errorf("URL must start with http:// or https://")
					}
					return nil
				}),
			huh.NewInput().
				Title("Jira Email").
				Placeholder("feedback-bot@company.com").
				Value(&cfg.Jira.Email).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return fmt.Errorf("must be a valid email address")
					}
					return nil
				}),
			huh.NewInput().
				Title("Jira API Token").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Jira.APIToken),
			huh.NewInput().
				Title("Project Key").
				Placeholder(DefaultProjectKey).
				Value(&cfg.Jira.ProjectKey).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("project key is required")
					}
					return nil
				}),
		).Title("Jira Connection"),

		huh.NewGroup(
			huh.NewInput().
				Title("Your name").
				Description("Leave name and email empty to send feedback anonymously.").
				Value(&cfg.UserContext.Name),
			huh.NewInput().
				Title("Your email").
				Value(&cfg.UserContext.Email),
			huh.NewConfirm().
				Title("Require a name or email before submitting?").
				Value(&cfg.RequireAuthentication),
		).Title("Reporter"),

		huh.NewGroup(
			huh.NewInput().
				Title("Gemini API Key (optional)").
				Description("Used to suggest a title when you leave it empty.").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Gemini.APIKey),
		).Title("Title Suggestions"),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := Save(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("\nConfig saved to %s\n", path)
	return &cfg, nil
}
