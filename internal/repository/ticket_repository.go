package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// TicketScope narrows the visible ticket set for a caller. Fine-grained
// filtering (search text, urgency, date) happens in the filter package over
// the returned snapshot; the scope only enforces visibility.
type TicketScope struct {
	RaisedBy   *string
	AssignedTo *string
	Statuses   []domain.TicketStatus
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, automated bool, resolutionMethod string) error
	Assign(ctx context.Context, id string, assigneeID *string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, scope TicketScope) ([]domain.Ticket, error)
	ListOpenAssignedBefore(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error)

	SetCommentHidden(ctx context.Context, ticketID, commentID string, hidden bool, reason string) error
	FirstCommentID(ctx context.Context, ticketID string) (string, error)
	AddReply(ctx context.Context, reply *domain.Reply) error
	AddAttachment(ctx context.Context, att *domain.Attachment) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (location, issue_type, subject, description, urgency, status, raised_by, chat_enabled)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	raisedBy := ""
	if ticket.RaisedBy != nil {
		raisedBy = ticket.RaisedBy.ID
	}
	return r.pool.QueryRow(ctx, query,
		ticket.Location,
		ticket.IssueType,
		ticket.Subject,
		ticket.Description,
		ticket.Urgency,
		ticket.Status,
		raisedBy,
		ticket.ChatEnabled,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, automated bool, resolutionMethod string) error {
	const query = `
        UPDATE tickets SET status=$1, is_automated=$2, resolution_method=$3,
            auto_resolved_at = CASE WHEN $2 THEN NOW() ELSE auto_resolved_at END,
            updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, status, automated, resolutionMethod, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Assign(ctx context.Context, id string, assigneeID *string) error {
	const query = `UPDATE tickets SET assigned_to=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, assigneeID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const ticketColumns = `
        t.id, t.location, t.issue_type, t.subject, t.description, t.urgency, t.status,
        t.chat_enabled, t.is_automated, t.resolution_method, t.auto_resolved_at,
        t.created_at, t.updated_at,
        rb.id, rb.username, rb.name, rb.role,
        au.id, au.username, au.name, au.role`

const ticketJoins = `
        FROM tickets t
        JOIN users rb ON rb.id = t.raised_by
        LEFT JOIN users au ON au.id = t.assigned_to`

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ticketJoins + ` WHERE t.id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadComments(ctx, ticket); err != nil {
		return nil, err
	}
	if err := r.loadAttachments(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, scope TicketScope) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if scope.RaisedBy != nil {
		args = append(args, *scope.RaisedBy)
		clauses = append(clauses, fmt.Sprintf("t.raised_by=$%d", len(args)))
	}
	if scope.AssignedTo != nil {
		args = append(args, *scope.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("t.assigned_to=$%d", len(args)))
	}
	if len(scope.Statuses) > 0 {
		placeholders := make([]string, len(scope.Statuses))
		for i, status := range scope.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := `SELECT ` + ticketColumns + ticketJoins +
		` WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY t.created_at DESC`
	if scope.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", scope.Limit)
	}
	if scope.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", scope.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListOpenAssignedBefore(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ticketJoins + `
        WHERE t.status=$1 AND t.assigned_to IS NOT NULL AND t.created_at <= $2`
	rows, err := r.pool.Query(ctx, query, domain.TicketStatusOpen, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) SetCommentHidden(ctx context.Context, ticketID, commentID string, hidden bool, reason string) error {
	const query = `
        UPDATE ticket_comments SET hidden=$1, hidden_reason=$2
        WHERE id=$3 AND ticket_id=$4`
	cmd, err := r.pool.Exec(ctx, query, hidden, reason, commentID, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) FirstCommentID(ctx context.Context, ticketID string) (string, error) {
	const query = `
        SELECT id FROM ticket_comments WHERE ticket_id=$1
        ORDER BY created_at ASC LIMIT 1`
	var id string
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *ticketRepository) AddReply(ctx context.Context, reply *domain.Reply) error {
	const query = `
        INSERT INTO comment_replies (comment_id, author_id, content, ai_generated)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	authorID := ""
	if reply.User != nil {
		authorID = reply.User.ID
	}
	return r.pool.QueryRow(ctx, query,
		reply.CommentID,
		authorID,
		reply.Content,
		reply.AIGenerated,
	).Scan(&reply.ID, &reply.CreatedAt)
}

func (r *ticketRepository) AddAttachment(ctx context.Context, att *domain.Attachment) error {
	const query = `
        INSERT INTO ticket_attachments (ticket_id, filename, size, mimetype)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		att.TicketID,
		att.Filename,
		att.Size,
		att.MimeType,
	).Scan(&att.ID)
}

func (r *ticketRepository) loadComments(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        SELECT c.id, c.content, c.hidden, c.hidden_reason, c.created_at,
               u.id, u.username, u.name, u.role
        FROM ticket_comments c
        JOIN users u ON u.id = c.author_id
        WHERE c.ticket_id=$1
        ORDER BY c.created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticket.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		comment := domain.Comment{TicketID: ticket.ID, User: &domain.UserRef{}}
		if err := rows.Scan(
			&comment.ID,
			&comment.Content,
			&comment.Hidden,
			&comment.HiddenReason,
			&comment.CreatedAt,
			&comment.User.ID,
			&comment.User.Username,
			&comment.User.Name,
			&comment.User.Role,
		); err != nil {
			return err
		}
		ticket.Comments = append(ticket.Comments, comment)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range ticket.Comments {
		if err := r.loadReplies(ctx, &ticket.Comments[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *ticketRepository) loadReplies(ctx context.Context, comment *domain.Comment) error {
	const query = `
        SELECT rp.id, rp.content, rp.ai_generated, rp.created_at,
               u.id, u.username, u.name, u.role
        FROM comment_replies rp
        JOIN users u ON u.id = rp.author_id
        WHERE rp.comment_id=$1
        ORDER BY rp.created_at ASC`
	rows, err := r.pool.Query(ctx, query, comment.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		reply := domain.Reply{CommentID: comment.ID, User: &domain.UserRef{}}
		if err := rows.Scan(
			&reply.ID,
			&reply.Content,
			&reply.AIGenerated,
			&reply.CreatedAt,
			&reply.User.ID,
			&reply.User.Username,
			&reply.User.Name,
			&reply.User.Role,
		); err != nil {
			return err
		}
		comment.Replies = append(comment.Replies, reply)
	}
	return rows.Err()
}

func (r *ticketRepository) loadAttachments(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        SELECT id, filename, size, mimetype FROM ticket_attachments WHERE ticket_id=$1`
	rows, err := r.pool.Query(ctx, query, ticket.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		att := domain.Attachment{TicketID: ticket.ID}
		if err := rows.Scan(&att.ID, &att.Filename, &att.Size, &att.MimeType); err != nil {
			return err
		}
		ticket.Attachments = append(ticket.Attachments, att)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		ticket   domain.Ticket
		raisedBy domain.UserRef
		auID     *string
		auUser   *string
		auName   *string
		auRole   *domain.Role
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Location,
		&ticket.IssueType,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Urgency,
		&ticket.Status,
		&ticket.ChatEnabled,
		&ticket.IsAutomated,
		&ticket.ResolutionMethod,
		&ticket.AutoResolvedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&raisedBy.ID,
		&raisedBy.Username,
		&raisedBy.Name,
		&raisedBy.Role,
		&auID,
		&auUser,
		&auName,
		&auRole,
	); err != nil {
		return nil, err
	}
	ticket.RaisedBy = &raisedBy
	if auID != nil {
		assignee := domain.UserRef{ID: *auID}
		if auUser != nil {
			assignee.Username = *auUser
		}
		if auName != nil {
			assignee.Name = *auName
		}
		if auRole != nil {
			assignee.Role = *auRole
		}
		ticket.AssignedTo = &assignee
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
