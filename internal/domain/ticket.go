package domain

import "time"

// TicketStatus enumerates workflow states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
)

// TicketStatuses lists every legal status value in canonical order.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Valid reports whether the status is one of the four known values.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Urgency enumerates ticket severity as an ordinal scale.
type Urgency string

const (
	UrgencyLow      Urgency = "Low"
	UrgencyMedium   Urgency = "Medium"
	UrgencyHigh     Urgency = "High"
	UrgencyCritical Urgency = "Critical"
)

// Rank maps urgency onto its ordinal position, Low=1 through Critical=4.
// Unknown values rank at 0 so they sort below Low.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyLow:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyHigh:
		return 3
	case UrgencyCritical:
		return 4
	}
	return 0
}

// Valid reports whether the urgency is a known value.
func (u Urgency) Valid() bool {
	return u.Rank() > 0
}

// IssueType enumerates ticket categories offered by the intake form.
type IssueType string

const (
	IssueTypeHardware IssueType = "Hardware issue"
	IssueTypeSoftware IssueType = "Software issue"
	IssueTypeNetwork  IssueType = "Network Connectivity"
	IssueTypeAccount  IssueType = "Account Access"
	IssueTypeOther    IssueType = "Other"
)

// SLABreachThreshold is how long an unassigned ticket may stay open before it
// counts as an SLA breach.
const SLABreachThreshold = 7 * 24 * time.Hour

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID               string
	Location         string
	IssueType        IssueType
	Subject          string
	Description      string
	Urgency          Urgency
	Status           TicketStatus
	RaisedBy         *UserRef
	AssignedTo       *UserRef
	Attachments      []Attachment
	Comments         []Comment
	ChatEnabled      bool
	IsAutomated      bool
	ResolutionMethod string
	AutoResolvedAt   *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DisplayID returns the short human-facing ticket id: the last six characters
// of the opaque id, uppercased.
func (t *Ticket) DisplayID() string {
	id := t.ID
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	upper := []byte(id)
	for i := range upper {
		if upper[i] >= 'a' && upper[i] <= 'z' {
			upper[i] -= 'a' - 'A'
		}
	}
	return string(upper)
}

// EffectiveUpdatedAt returns UpdatedAt, falling back to CreatedAt when the
// ticket has never been touched after creation.
func (t *Ticket) EffectiveUpdatedAt() time.Time {
	if t.UpdatedAt.IsZero() {
		return t.CreatedAt
	}
	return t.UpdatedAt
}

// Attachment stores metadata for a file uploaded with a ticket.
type Attachment struct {
	ID       string
	TicketID string
	Filename string
	Size     int64
	MimeType string
}

// UserRef is the slice of a user embedded in tickets and comments for gating
// and display. The full profile is owned by the user subsystem.
type UserRef struct {
	ID       string
	Username string
	Name     string
	Role     Role
}
