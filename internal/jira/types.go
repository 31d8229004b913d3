package jira

import "jira-feedback/internal/adf"

// Credentials identify the Jira site, the account used to file issues and
// the target project.
type Credentials struct {
	BaseURL    string
	Email      string
	APIToken   string
	ProjectKey string
}

// Validate reports whether every credential field is non-empty.
func (c Credentials) Validate() bool {
	for _, v := range []string{c.BaseURL, c.Email, c.APIToken, c.ProjectKey} {
		if v == "" {
			return false
		}
	}
	return true
}

// IssuePayload is the data needed to create one issue. Description is always
// a document, never raw text.
type IssuePayload struct {
	ProjectKey  string
	Summary     string
	Description adf.Document
	IssueType   string
	Priority    string
}

// IssueTypeEntry describes one issue type of a project.
type IssueTypeEntry struct {
	Name      string
	ID        string
	IsSubtask bool
}

type createIssueRequest struct {
	Fields issueFields `json:"fields"`
}

type issueFields struct {
	Project     keyRef       `json:"project"`
	Summary     string       `json:"summary"`
	Description adf.Document `json:"description"`
	IssueType   nameRef      `json:"issuetype"`
	Priority    *nameRef     `json:"priority,omitempty"`
}

type keyRef struct {
	Key string `json:"key"`
}

type nameRef struct {
	Name string `json:"name"`
}

type projectResponse struct {
	Key        string              `json:"key"`
	IssueTypes *[]issueTypeElement `json:"issueTypes"`
}

type issueTypeElement struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subtask bool   `json:"subtask"`
}
