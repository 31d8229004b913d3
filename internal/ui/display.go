package ui

import (
	"jira-feedback/internal/adf"
	"jira-feedback/internal/feedback"
	"jira-feedback/internal/jira"

	"github.com/pterm/pterm"
)

func PrintWelcome() {
	pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack, pterm.Bold)).
		Println("Submit Feedback")
	pterm.Println(pterm.Gray("Help us improve the application by sharing your feedback."))
	pterm.Println()
}

func PrintIssueTypesTable(projectKey string, entries []jira.IssueTypeEntry) {
	pterm.Success.Printfln("Issue types in %s: %d", projectKey, len(entries))
	pterm.Println()

	tableData := pterm.TableData{
		{"Name", "ID"},
	}
	for _, e := range entries {
		tableData = append(tableData, []string{e.Name, e.ID})
	}

	pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(tableData).Render()
	pterm.Println()
}

// PrintPreview shows the submission the way Jira will render it.
func PrintPreview(sub feedback.Submission, summary string, doc adf.Document) {
	pterm.DefaultSection.WithStyle(pterm.NewStyle(pterm.FgCyan, pterm.Bold)).Println("Preview")

	tableData := pterm.TableData{
		{"Type", sub.IssueType},
		{"Title", summary},
	}
	pterm.DefaultTable.WithBoxed().WithData(tableData).Render()
	pterm.DefaultBox.WithTitle("Description").Println(doc.PlainText())
	pterm.Println()
}

// PrintResult shows the notification for a submission outcome.
func PrintResult(res feedback.Result, err error) {
	title, body := feedback.UserMessage(res, err)
	if err == nil {
		pterm.Success.WithPrefix(pterm.Prefix{Text: title, Style: pterm.Success.Prefix.Style}).Println(body)
		return
	}
	pterm.Error.WithPrefix(pterm.Prefix{Text: title, Style: pterm.Error.Prefix.Style}).Println(body)
	if res.SubmissionID != "" {
		pterm.Println(pterm.Gray("Reference: " + res.SubmissionID))
	}
}

func PrintCancelled() {
	pterm.Warning.Println("Cancelled.")
}

func PrintError(msg string) {
	pterm.Println(pterm.Gray("⚠ " + msg))
}

func PrintStatus(msg string) {
	pterm.Println(pterm.Gray(msg))
}
