// Package tracker holds the issue tracker client state: the loaded issues,
// the form draft and the issue being edited.
package tracker

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/ncobase/issues/client"
	"github.com/ncobase/issues/structs"
)

// User-facing notices.
const (
	MsgRequired      = "Title and Owner are required"
	MsgInvalidEffort = "Effort must be a non-negative number"
	MsgInvalidDate   = "Due date must be YYYY-MM-DD"
	MsgLoadFailed    = "Error loading issues. Check backend."
	MsgSaveFailed    = "Error saving issue."
	MsgDeleteFailed  = "Error deleting issue."
)

var (
	// ErrBusy is returned when a mutation is already in flight.
	ErrBusy = errors.New("another request is in progress")
	// ErrInvalidDraft is returned when the form fails client-side checks.
	ErrInvalidDraft = errors.New("invalid draft")
	// ErrUnknownIssue is returned by StartEdit for an id not in the list.
	ErrUnknownIssue = errors.New("issue not in list")
)

// API is the subset of the store API the tracker needs.
type API interface {
	List(ctx context.Context) ([]*structs.Issue, error)
	Create(ctx context.Context, req *structs.CreateIssueRequest) (*structs.Issue, error)
	Update(ctx context.Context, id string, req *structs.UpdateIssueRequest) (*structs.Issue, error)
	Delete(ctx context.Context, id string) error
}

// Notifier shows a message to the user.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) {
	f(message)
}

// Draft is the raw text of the issue form.
type Draft struct {
	Title   string
	Owner   string
	Status  string
	Effort  string
	DueDate string
}

// EmptyDraft returns a blank form with the default status.
func EmptyDraft() Draft {
	return Draft{Status: string(structs.StatusNew)}
}

// State is a snapshot of the tracker.
type State struct {
	Issues  []*structs.Issue
	Loading bool
	Draft   Draft
	EditID  string
}

// Editing reports whether the form edits an existing issue.
func (s State) Editing() bool {
	return s.EditID != ""
}

// Tracker is safe for use from multiple goroutines.
type Tracker struct {
	api      API
	notifier Notifier

	mu    sync.Mutex
	state State
	busy  bool
}

// New creates a tracker with an empty draft.
func New(api API, notifier Notifier) *Tracker {
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	return &Tracker{
		api:      api,
		notifier: notifier,
		state:    State{Draft: EmptyDraft()},
	}
}

// State returns a snapshot of the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.state
	s.Issues = append([]*structs.Issue(nil), t.state.Issues...)
	return s
}

// SetDraft replaces the form content.
func (t *Tracker) SetDraft(d Draft) {
	t.mu.Lock()
	t.state.Draft = d
	t.mu.Unlock()
}

// Load refreshes the issue list. On failure the previous list is kept.
func (t *Tracker) Load(ctx context.Context) error {
	t.mu.Lock()
	t.state.Loading = true
	t.mu.Unlock()

	issues, err := t.api.List(ctx)

	t.mu.Lock()
	t.state.Loading = false
	if err == nil {
		t.state.Issues = issues
	}
	t.mu.Unlock()

	if err != nil {
		t.notifier.Notify(MsgLoadFailed)
		return err
	}
	return nil
}

// Submit creates a new issue, or updates the one being edited, from the
// draft. On success the form is reset and the returned record is merged
// into the list: a created issue goes first, an updated one keeps its
// position.
func (t *Tracker) Submit(ctx context.Context) error {
	t.mu.Lock()
	draft, editID := t.state.Draft, t.state.EditID
	t.mu.Unlock()

	title, owner := strings.TrimSpace(draft.Title), strings.TrimSpace(draft.Owner)
	if title == "" || owner == "" {
		t.notifier.Notify(MsgRequired)
		return ErrInvalidDraft
	}
	effort, err := parseEffort(draft.Effort)
	if err != nil {
		t.notifier.Notify(MsgInvalidEffort)
		return ErrInvalidDraft
	}
	due, err := parseDueDate(draft.DueDate)
	if err != nil {
		t.notifier.Notify(MsgInvalidDate)
		return ErrInvalidDraft
	}
	status := structs.Status(draft.Status)
	if status == "" {
		status = structs.StatusNew
	}

	if !t.acquire() {
		return ErrBusy
	}
	defer t.release()

	var saved *structs.Issue
	if editID == "" {
		saved, err = t.api.Create(ctx, &structs.CreateIssueRequest{
			Title:   title,
			Owner:   owner,
			Status:  status,
			Effort:  &effort,
			DueDate: due,
		})
	} else {
		req := &structs.UpdateIssueRequest{
			Title:   structs.Some(title),
			Owner:   structs.Some(owner),
			Status:  structs.Some(status),
			Effort:  structs.Some(effort),
			DueDate: structs.Null[structs.Date](),
		}
		if due != nil {
			req.DueDate = structs.Some(*due)
		}
		saved, err = t.api.Update(ctx, editID, req)
	}
	if err != nil {
		t.notifier.Notify(failureMessage(err, MsgSaveFailed))
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Draft = EmptyDraft()
	t.state.EditID = ""
	if saved == nil {
		return nil
	}
	if editID == "" {
		t.state.Issues = append([]*structs.Issue{saved}, t.state.Issues...)
		return nil
	}
	issues := make([]*structs.Issue, len(t.state.Issues))
	for i, issue := range t.state.Issues {
		if issue.ID == editID {
			issue = saved
		}
		issues[i] = issue
	}
	t.state.Issues = issues
	return nil
}

// StartEdit fills the form from a listed issue.
func (t *Tracker) StartEdit(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, issue := range t.state.Issues {
		if issue.ID != id {
			continue
		}
		d := Draft{
			Title:  issue.Title,
			Owner:  issue.Owner,
			Status: string(issue.Status),
		}
		if issue.Effort != 0 {
			d.Effort = strconv.FormatFloat(issue.Effort, 'f', -1, 64)
		}
		if issue.DueDate != nil {
			d.DueDate = issue.DueDate.String()
		}
		t.state.Draft = d
		t.state.EditID = id
		return nil
	}
	return ErrUnknownIssue
}

// CancelEdit leaves edit mode and clears the form.
func (t *Tracker) CancelEdit() {
	t.mu.Lock()
	t.state.Draft = EmptyDraft()
	t.state.EditID = ""
	t.mu.Unlock()
}

// Delete removes id after confirm approves; a declined confirmation does
// nothing. On success the issue is dropped from the list.
func (t *Tracker) Delete(ctx context.Context, id string, confirm func() bool) error {
	if confirm != nil && !confirm() {
		return nil
	}
	if !t.acquire() {
		return ErrBusy
	}
	defer t.release()

	if err := t.api.Delete(ctx, id); err != nil {
		t.notifier.Notify(failureMessage(err, MsgDeleteFailed))
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.EditID == id {
		t.state.Draft = EmptyDraft()
		t.state.EditID = ""
	}
	issues := make([]*structs.Issue, 0, len(t.state.Issues))
	for _, issue := range t.state.Issues {
		if issue.ID != id {
			issues = append(issues, issue)
		}
	}
	t.state.Issues = issues
	return nil
}

func (t *Tracker) acquire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.busy {
		return false
	}
	t.busy = true
	return true
}

func (t *Tracker) release() {
	t.mu.Lock()
	t.busy = false
	t.mu.Unlock()
}

// failureMessage prefers the server's message; transport errors get the
// generic text.
func failureMessage(err error, generic string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return generic
}

func parseEffort(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}

func parseDueDate(s string) (*structs.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := structs.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
