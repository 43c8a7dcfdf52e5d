package domain

import "time"

// Comment is a feedback entry on a ticket. Hiding a comment is a soft
// moderation flag: the content stays intact, only visibility changes.
type Comment struct {
	ID           string
	TicketID     string
	Content      string
	User         *UserRef
	Hidden       bool
	HiddenReason string
	Replies      []Reply
	CreatedAt    time.Time
}

// Reply is a threaded response below a comment.
type Reply struct {
	ID          string
	CommentID   string
	Content     string
	User        *UserRef
	AIGenerated bool
	CreatedAt   time.Time
}
