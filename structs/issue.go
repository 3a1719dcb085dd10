// Package structs defines the issue domain model shared by the store
// service and its clients.
package structs

import (
	"time"
)

// Status is the workflow state of an issue.
type Status string

const (
	StatusNew        Status = "New"
	StatusAssigned   Status = "Assigned"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusNew, StatusAssigned, StatusInProgress, StatusResolved, StatusClosed}

// IsValid reports whether s is one of the five known statuses.
func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Next returns the status after s, wrapping around; unknown values start over at New.
func (s Status) Next() Status {
	for i, known := range Statuses {
		if s == known {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusNew
}

// Issue is a tracked work item.
type Issue struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Owner     string    `json:"owner"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	Effort    float64   `json:"effort"`
	DueDate   *Date     `json:"dueDate"`
}

// CreateIssueRequest is the body of POST /issues.
type CreateIssueRequest struct {
	Title   string   `json:"title" validate:"required"`
	Owner   string   `json:"owner" validate:"required"`
	Status  Status   `json:"status,omitempty" validate:"omitempty,issue_status"`
	Effort  *float64 `json:"effort,omitempty" validate:"omitempty,gte=0"`
	DueDate *Date    `json:"dueDate,omitempty"`
}

// UpdateIssueRequest is the body of PUT /issues/:id. Members left out of
// the body are left unchanged.
type UpdateIssueRequest struct {
	Title   Field[string]  `json:"title,omitzero"`
	Owner   Field[string]  `json:"owner,omitzero"`
	Status  Field[Status]  `json:"status,omitzero"`
	Effort  Field[float64] `json:"effort,omitzero"`
	DueDate Field[Date]    `json:"dueDate,omitzero"`
}

// IssuePatch is a validated set of replacements. Nil members are left
// unchanged; ClearDueDate removes the due date.
type IssuePatch struct {
	Title        *string
	Owner        *string
	Status       *Status
	Effort       *float64
	DueDate      *Date
	ClearDueDate bool
}

// IsEmpty reports whether the patch changes nothing.
func (p IssuePatch) IsEmpty() bool {
	return p.Title == nil && p.Owner == nil && p.Status == nil &&
		p.Effort == nil && p.DueDate == nil && !p.ClearDueDate
}

// Apply writes the patch over issue in place.
func (p IssuePatch) Apply(issue *Issue) {
	if p.Title != nil {
		issue.Title = *p.Title
	}
	if p.Owner != nil {
		issue.Owner = *p.Owner
	}
	if p.Status != nil {
		issue.Status = *p.Status
	}
	if p.Effort != nil {
		issue.Effort = *p.Effort
	}
	if p.ClearDueDate {
		issue.DueDate = nil
	}
	if p.DueDate != nil {
		d := *p.DueDate
		issue.DueDate = &d
	}
}
