package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"
)

type bannerKeys struct {
	Open    key.Binding
	Dismiss key.Binding
}

func defaultBannerKeys() bannerKeys {
	return bannerKeys{
		Open: key.NewBinding(
			key.WithKeys("enter", " ", "f"),
			key.WithHelp("enter", "open form"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc", "q", "ctrl+c"),
			key.WithHelp("esc", "dismiss"),
		),
	}
}

type bannerModel struct {
	message     string
	buttonLabel string
	keys        bannerKeys
	opened      bool
	dismissed   bool
}

func newBannerModel(message, buttonLabel string) bannerModel {
	return bannerModel{
		message:     message,
		buttonLabel: buttonLabel,
		keys:        defaultBannerKeys(),
	}
}

func (m bannerModel) Init() tea.Cmd {
	return nil
}

func (m bannerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Open):
			m.opened = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Dismiss):
			m.dismissed = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m bannerModel) View() string {
	if m.opened || m.dismissed {
		return ""
	}
	return pterm.Info.Sprint(m.message) + "\n\n" +
		pterm.Bold.Sprint(pterm.Cyan("[ "+m.buttonLabel+" ]")) + "  " +
		pterm.Gray(m.keys.Open.Help().Key+" "+m.keys.Open.Help().Desc+" · "+
			m.keys.Dismiss.Help().Key+" "+m.keys.Dismiss.Help().Desc) + "\n"
}

// ShowBanner displays the feedback banner and reports whether the user
// chose to open the form.
func ShowBanner(message, buttonLabel string) bool {
	p := tea.NewProgram(newBannerModel(message, buttonLabel))
	final, err := p.Run()
	if err != nil {
		return false
	}
	return final.(bannerModel).opened
}
