package dto

import (
	"time"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Location    string           `json:"location"`
	IssueType   domain.IssueType `json:"issueType"`
	Subject     string           `json:"subject"`
	Description string           `json:"description"`
	Urgency     domain.Urgency   `json:"urgency"`
	ChatEnabled bool             `json:"chatEnabled"`
}

// Draft converts the request into a validatable draft.
func (r CreateTicketRequest) Draft() domain.TicketDraft {
	return domain.TicketDraft{
		Location:    r.Location,
		IssueType:   r.IssueType,
		Subject:     r.Subject,
		Description: r.Description,
		Urgency:     r.Urgency,
		ChatEnabled: r.ChatEnabled,
	}
}

// UpdateTicketRequest carries the partial fields the frontend mutates.
type UpdateTicketRequest struct {
	Status     *domain.TicketStatus `json:"status,omitempty"`
	AssignedTo *string              `json:"assignedTo,omitempty"`
}

// HideCommentRequest payload; reason is mandatory.
type HideCommentRequest struct {
	Reason string `json:"reason"`
}

// InterveneRequest payload for the manager intervention reply.
type InterveneRequest struct {
	Content string `json:"content"`
}

// UserRefResponse is the embedded user slice.
type UserRefResponse struct {
	ID       string      `json:"_id"`
	Username string      `json:"username"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID       string `json:"_id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimetype"`
}

// ReplyResponse is a threaded response below a comment.
type ReplyResponse struct {
	ID          string           `json:"_id"`
	Content     string           `json:"content"`
	User        *UserRefResponse `json:"user"`
	AIGenerated bool             `json:"aiGenerated"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// CommentResponse is a feedback entry with its moderation state.
type CommentResponse struct {
	ID           string           `json:"_id"`
	Content      string           `json:"content"`
	User         *UserRefResponse `json:"user"`
	Hidden       bool             `json:"hidden"`
	HiddenReason string           `json:"hiddenReason,omitempty"`
	Replies      []ReplyResponse  `json:"replies"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// TicketResponse is the full wire shape of a ticket.
type TicketResponse struct {
	ID               string               `json:"_id"`
	Location         string               `json:"location"`
	IssueType        domain.IssueType     `json:"issueType"`
	Subject          string               `json:"subject"`
	Description      string               `json:"description"`
	Urgency          domain.Urgency       `json:"urgency"`
	Status           domain.TicketStatus  `json:"status"`
	RaisedBy         *UserRefResponse     `json:"raisedBy"`
	AssignedTo       *UserRefResponse     `json:"assignedTo"`
	Attachments      []AttachmentResponse `json:"attachments"`
	Comments         []CommentResponse    `json:"comments"`
	ChatEnabled      bool                 `json:"chatEnabled"`
	IsAutomated      bool                 `json:"isAutomated,omitempty"`
	ResolutionMethod string               `json:"resolutionMethod,omitempty"`
	AutoResolvedAt   *time.Time           `json:"autoResolvedAt,omitempty"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// TicketListResponse wraps the list endpoint body.
type TicketListResponse struct {
	Tickets []TicketResponse `json:"tickets"`
}

// TicketEnvelope wraps single-ticket endpoint bodies.
type TicketEnvelope struct {
	Ticket TicketResponse `json:"ticket"`
}

// FromTicket maps a domain ticket onto the wire shape.
func FromTicket(t *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:               t.ID,
		Location:         t.Location,
		IssueType:        t.IssueType,
		Subject:          t.Subject,
		Description:      t.Description,
		Urgency:          t.Urgency,
		Status:           t.Status,
		RaisedBy:         fromUserRef(t.RaisedBy),
		AssignedTo:       fromUserRef(t.AssignedTo),
		Attachments:      make([]AttachmentResponse, 0, len(t.Attachments)),
		Comments:         make([]CommentResponse, 0, len(t.Comments)),
		ChatEnabled:      t.ChatEnabled,
		IsAutomated:      t.IsAutomated,
		ResolutionMethod: t.ResolutionMethod,
		AutoResolvedAt:   t.AutoResolvedAt,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
	for _, att := range t.Attachments {
		resp.Attachments = append(resp.Attachments, AttachmentResponse{
			ID:       att.ID,
			Filename: att.Filename,
			Size:     att.Size,
			MimeType: att.MimeType,
		})
	}
	for i := range t.Comments {
		resp.Comments = append(resp.Comments, fromComment(&t.Comments[i]))
	}
	return resp
}

// ToDomain maps the wire shape back into a domain ticket; the client store
// uses this after decoding responses.
func (r TicketResponse) ToDomain() domain.Ticket {
	ticket := domain.Ticket{
		ID:               r.ID,
		Location:         r.Location,
		IssueType:        r.IssueType,
		Subject:          r.Subject,
		Description:      r.Description,
		Urgency:          r.Urgency,
		Status:           r.Status,
		RaisedBy:         toUserRef(r.RaisedBy),
		AssignedTo:       toUserRef(r.AssignedTo),
		ChatEnabled:      r.ChatEnabled,
		IsAutomated:      r.IsAutomated,
		ResolutionMethod: r.ResolutionMethod,
		AutoResolvedAt:   r.AutoResolvedAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	for _, att := range r.Attachments {
		ticket.Attachments = append(ticket.Attachments, domain.Attachment{
			ID:       att.ID,
			TicketID: r.ID,
			Filename: att.Filename,
			Size:     att.Size,
			MimeType: att.MimeType,
		})
	}
	for _, c := range r.Comments {
		comment := domain.Comment{
			ID:           c.ID,
			TicketID:     r.ID,
			Content:      c.Content,
			User:         toUserRef(c.User),
			Hidden:       c.Hidden,
			HiddenReason: c.HiddenReason,
			CreatedAt:    c.CreatedAt,
		}
		for _, rp := range c.Replies {
			comment.Replies = append(comment.Replies, domain.Reply{
				ID:          rp.ID,
				CommentID:   c.ID,
				Content:     rp.Content,
				User:        toUserRef(rp.User),
				AIGenerated: rp.AIGenerated,
				CreatedAt:   rp.CreatedAt,
			})
		}
		ticket.Comments = append(ticket.Comments, comment)
	}
	return ticket
}

func fromComment(c *domain.Comment) CommentResponse {
	resp := CommentResponse{
		ID:           c.ID,
		Content:      c.Content,
		User:         fromUserRef(c.User),
		Hidden:       c.Hidden,
		HiddenReason: c.HiddenReason,
		Replies:      make([]ReplyResponse, 0, len(c.Replies)),
		CreatedAt:    c.CreatedAt,
	}
	for _, rp := range c.Replies {
		resp.Replies = append(resp.Replies, ReplyResponse{
			ID:          rp.ID,
			Content:     rp.Content,
			User:        fromUserRef(rp.User),
			AIGenerated: rp.AIGenerated,
			CreatedAt:   rp.CreatedAt,
		})
	}
	return resp
}

func fromUserRef(ref *domain.UserRef) *UserRefResponse {
	if ref == nil {
		return nil
	}
	return &UserRefResponse{
		ID:       ref.ID,
		Username: ref.Username,
		Name:     ref.Name,
		Role:     ref.Role,
	}
}

func toUserRef(ref *UserRefResponse) *domain.UserRef {
	if ref == nil {
		return nil
	}
	return &domain.UserRef{
		ID:       ref.ID,
		Username: ref.Username,
		Name:     ref.Name,
		Role:     ref.Role,
	}
}
