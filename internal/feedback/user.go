package feedback

import "fmt"

// User is the reporter of a submission. A nil *User means anonymous.
type User struct {
	ID         string
	Name       string
	Email      string
	ProjectKey string
}

func (u *User) logID() string {
	if u == nil || u.ID == "" {
		return "anonymous"
	}
	return u.ID
}

func (u *User) logEmail() string {
	if u == nil || u.Email == "" {
		return "anonymous"
	}
	return u.Email
}

// BuildSummary prefixes the summary with the user's project key tag, e.g.
// "[ACME] Login broken", when enabled and the user has one.
func BuildSummary(summary string, u *User, includeProjectKey bool) string {
	if u != nil && includeProjectKey && u.ProjectKey != "" {
		return fmt.Sprintf("[%s] %s", u.ProjectKey, summary)
	}
	return summary
}

// BuildDescription prepends who sent the feedback.
func BuildDescription(description string, u *User) string {
	if u == nil {
		return "Anonymous feedback\n\n" + description
	}
	name, email := u.Name, u.Email
	if name == "" {
		name = "Unknown"
	}
	if email == "" {
		email = "Unknown"
	}
	return fmt.Sprintf("Feedback submitted by: %s (%s)\n\n%s", name, email, description)
}
