package domain

import "strings"

// TicketDraft is the intake-form payload for a new ticket. Validation happens
// before any persistence or network call touches the draft.
type TicketDraft struct {
	Location    string
	IssueType   IssueType
	Subject     string
	Description string
	Urgency     Urgency
	ChatEnabled bool
}

// Validate returns the list of required fields that are empty. A nil return
// means the draft is submittable.
func (d TicketDraft) Validate() []string {
	var missing []string
	if strings.TrimSpace(d.Location) == "" {
		missing = append(missing, "location")
	}
	if strings.TrimSpace(string(d.IssueType)) == "" {
		missing = append(missing, "issueType")
	}
	if strings.TrimSpace(d.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(d.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(string(d.Urgency)) == "" {
		missing = append(missing, "urgency")
	}
	return missing
}
