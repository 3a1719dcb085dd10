package tracker_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ncobase/issues/client"
	"github.com/ncobase/issues/structs"
	"github.com/ncobase/issues/tracker"
)

type mockAPI struct {
	listFn   func(ctx context.Context) ([]*structs.Issue, error)
	createFn func(ctx context.Context, req *structs.CreateIssueRequest) (*structs.Issue, error)
	updateFn func(ctx context.Context, id string, req *structs.UpdateIssueRequest) (*structs.Issue, error)
	deleteFn func(ctx context.Context, id string) error

	listCalls int
}

func (m *mockAPI) List(ctx context.Context) ([]*structs.Issue, error) {
	m.listCalls++
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockAPI) Create(ctx context.Context, req *structs.CreateIssueRequest) (*structs.Issue, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return &structs.Issue{}, nil
}

func (m *mockAPI) Update(ctx context.Context, id string, req *structs.UpdateIssueRequest) (*structs.Issue, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return &structs.Issue{}, nil
}

func (m *mockAPI) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

var _ = Describe("Tracker", func() {
	var (
		api     *mockAPI
		notices []string
		t       *tracker.Tracker
		ctx     context.Context
		due     structs.Date
		listed  []*structs.Issue
	)

	BeforeEach(func() {
		ctx = context.Background()
		notices = nil
		due = structs.NewDate(2024, time.August, 15)
		listed = []*structs.Issue{
			{ID: "b", Title: "Newer", Owner: "bob", Status: structs.StatusAssigned, Effort: 2.5, DueDate: &due},
			{ID: "a", Title: "Older", Owner: "alice", Status: structs.StatusNew},
		}
		api = &mockAPI{
			listFn: func(context.Context) ([]*structs.Issue, error) { return listed, nil },
		}
		t = tracker.New(api, tracker.NotifierFunc(func(msg string) { notices = append(notices, msg) }))
	})

	Describe("initial state", func() {
		It("starts with an empty draft defaulting to New", func() {
			s := t.State()
			Expect(s.Issues).To(BeEmpty())
			Expect(s.Loading).To(BeFalse())
			Expect(s.Draft).To(Equal(tracker.Draft{Status: "New"}))
			Expect(s.Editing()).To(BeFalse())
		})
	})

	Describe("Load", func() {
		It("replaces the issue list in server order", func() {
			Expect(t.Load(ctx)).To(Succeed())
			s := t.State()
			Expect(s.Issues).To(HaveLen(2))
			Expect(s.Issues[0].ID).To(Equal("b"))
			Expect(s.Loading).To(BeFalse())
			Expect(notices).To(BeEmpty())
		})

		It("reports loading while the request is in flight", func() {
			api.listFn = func(context.Context) ([]*structs.Issue, error) {
				Expect(t.State().Loading).To(BeTrue())
				return listed, nil
			}
			Expect(t.Load(ctx)).To(Succeed())
		})

		It("keeps the previous list and notifies when the backend fails", func() {
			Expect(t.Load(ctx)).To(Succeed())
			api.listFn = func(context.Context) ([]*structs.Issue, error) { return nil, errors.New("connection refused") }

			Expect(t.Load(ctx)).NotTo(Succeed())
			Expect(t.State().Issues).To(HaveLen(2))
			Expect(t.State().Loading).To(BeFalse())
			Expect(notices).To(ConsistOf(tracker.MsgLoadFailed))
		})
	})

	Describe("Submit", func() {
		Context("when creating", func() {
			It("sends trimmed fields with defaults and resets the form", func() {
				var captured *structs.CreateIssueRequest
				api.createFn = func(_ context.Context, req *structs.CreateIssueRequest) (*structs.Issue, error) {
					captured = req
					return &structs.Issue{ID: "c"}, nil
				}
				t.SetDraft(tracker.Draft{Title: "  Crash  ", Owner: " dan ", Status: "", Effort: "", DueDate: ""})

				Expect(t.Submit(ctx)).To(Succeed())
				Expect(captured.Title).To(Equal("Crash"))
				Expect(captured.Owner).To(Equal("dan"))
				Expect(captured.Status).To(Equal(structs.StatusNew))
				Expect(*captured.Effort).To(BeZero())
				Expect(captured.DueDate).To(BeNil())
				Expect(t.State().Draft).To(Equal(tracker.EmptyDraft()))
			})

			It("puts the returned record first without reloading", func() {
				Expect(t.Load(ctx)).To(Succeed())
				api.listFn = func(context.Context) ([]*structs.Issue, error) { return nil, errors.New("list down") }
				api.listCalls = 0
				api.createFn = func(context.Context, *structs.CreateIssueRequest) (*structs.Issue, error) {
					return &structs.Issue{ID: "c", Title: "From server", Owner: "dan", Status: structs.StatusNew}, nil
				}
				t.SetDraft(tracker.Draft{Title: "Crash", Owner: "dan"})

				Expect(t.Submit(ctx)).To(Succeed())
				s := t.State()
				Expect(s.Issues).To(HaveLen(3))
				Expect(s.Issues[0].ID).To(Equal("c"))
				Expect(s.Issues[0].Title).To(Equal("From server"))
				Expect(s.Issues[1].ID).To(Equal("b"))
				Expect(api.listCalls).To(BeZero())
				Expect(notices).To(BeEmpty())
			})

			It("parses effort and due date", func() {
				var captured *structs.CreateIssueRequest
				api.createFn = func(_ context.Context, req *structs.CreateIssueRequest) (*structs.Issue, error) {
					captured = req
					return &structs.Issue{}, nil
				}
				t.SetDraft(tracker.Draft{Title: "a", Owner: "b", Status: "Resolved", Effort: "1.5", DueDate: "2024-08-15"})

				Expect(t.Submit(ctx)).To(Succeed())
				Expect(*captured.Effort).To(Equal(1.5))
				Expect(captured.DueDate.String()).To(Equal("2024-08-15"))
				Expect(captured.Status).To(Equal(structs.StatusResolved))
			})
		})

		Context("when the form is incomplete", func() {
			It("notifies and sends nothing", func() {
				api.createFn = func(context.Context, *structs.CreateIssueRequest) (*structs.Issue, error) {
					Fail("Create must not be called")
					return nil, nil
				}
				t.SetDraft(tracker.Draft{Title: "   ", Owner: "x"})

				Expect(t.Submit(ctx)).To(MatchError(tracker.ErrInvalidDraft))
				Expect(notices).To(ConsistOf(tracker.MsgRequired))
				Expect(t.State().Draft.Owner).To(Equal("x"))
			})

			It("rejects a non-numeric effort", func() {
				t.SetDraft(tracker.Draft{Title: "a", Owner: "b", Effort: "lots"})
				Expect(t.Submit(ctx)).To(MatchError(tracker.ErrInvalidDraft))
				Expect(notices).To(ConsistOf(tracker.MsgInvalidEffort))
			})

			It("rejects a negative effort", func() {
				t.SetDraft(tracker.Draft{Title: "a", Owner: "b", Effort: "-2"})
				Expect(t.Submit(ctx)).To(MatchError(tracker.ErrInvalidDraft))
				Expect(notices).To(ConsistOf(tracker.MsgInvalidEffort))
			})

			It("rejects a malformed due date", func() {
				t.SetDraft(tracker.Draft{Title: "a", Owner: "b", DueDate: "15/08/2024"})
				Expect(t.Submit(ctx)).To(MatchError(tracker.ErrInvalidDraft))
				Expect(notices).To(ConsistOf(tracker.MsgInvalidDate))
			})
		})

		Context("when the server rejects the issue", func() {
			It("shows the server message and keeps the draft", func() {
				api.createFn = func(context.Context, *structs.CreateIssueRequest) (*structs.Issue, error) {
					return nil, &client.APIError{Status: 400, Message: "Failed to create issue: title is required"}
				}
				t.SetDraft(tracker.Draft{Title: "a", Owner: "b"})

				Expect(t.Submit(ctx)).NotTo(Succeed())
				Expect(notices).To(ConsistOf("Failed to create issue: title is required"))
				Expect(t.State().Draft.Title).To(Equal("a"))
				Expect(api.listCalls).To(BeZero())
			})
		})

		Context("when the network fails", func() {
			It("shows the generic save error", func() {
				api.createFn = func(context.Context, *structs.CreateIssueRequest) (*structs.Issue, error) {
					return nil, errors.New("dial tcp: connection refused")
				}
				t.SetDraft(tracker.Draft{Title: "a", Owner: "b"})

				Expect(t.Submit(ctx)).NotTo(Succeed())
				Expect(notices).To(ConsistOf(tracker.MsgSaveFailed))
			})
		})

		Context("when editing", func() {
			BeforeEach(func() {
				Expect(t.Load(ctx)).To(Succeed())
				Expect(t.StartEdit("b")).To(Succeed())
			})

			It("replaces the edited record in place without reloading", func() {
				api.listFn = func(context.Context) ([]*structs.Issue, error) { return nil, errors.New("list down") }
				api.listCalls = 0
				api.updateFn = func(_ context.Context, id string, _ *structs.UpdateIssueRequest) (*structs.Issue, error) {
					return &structs.Issue{ID: id, Title: "Renamed by server", Owner: "bob", Status: structs.StatusResolved}, nil
				}

				Expect(t.Submit(ctx)).To(Succeed())
				s := t.State()
				Expect(s.Issues).To(HaveLen(2))
				Expect(s.Issues[0].ID).To(Equal("b"))
				Expect(s.Issues[0].Title).To(Equal("Renamed by server"))
				Expect(s.Issues[1].ID).To(Equal("a"))
				Expect(listed[0].Title).To(Equal("Newer"))
				Expect(api.listCalls).To(BeZero())
				Expect(notices).To(BeEmpty())
			})

			It("sends every form field to the edited issue and leaves edit mode", func() {
				var (
					gotID  string
					gotReq *structs.UpdateIssueRequest
				)
				api.updateFn = func(_ context.Context, id string, req *structs.UpdateIssueRequest) (*structs.Issue, error) {
					gotID, gotReq = id, req
					return &structs.Issue{ID: id}, nil
				}
				d := t.State().Draft
				d.Status = "Closed"
				d.DueDate = ""
				t.SetDraft(d)

				Expect(t.Submit(ctx)).To(Succeed())
				Expect(gotID).To(Equal("b"))
				Expect(gotReq.Title.Value).To(Equal("Newer"))
				Expect(gotReq.Status.Value).To(Equal(structs.StatusClosed))
				Expect(gotReq.Effort.Value).To(Equal(2.5))
				Expect(gotReq.DueDate.Null).To(BeTrue())
				Expect(t.State().Editing()).To(BeFalse())
				Expect(t.State().Draft).To(Equal(tracker.EmptyDraft()))
			})
		})
	})

	Describe("StartEdit and CancelEdit", func() {
		BeforeEach(func() {
			Expect(t.Load(ctx)).To(Succeed())
		})

		It("copies the issue into the form", func() {
			Expect(t.StartEdit("b")).To(Succeed())
			s := t.State()
			Expect(s.EditID).To(Equal("b"))
			Expect(s.Draft).To(Equal(tracker.Draft{Title: "Newer", Owner: "bob", Status: "Assigned", Effort: "2.5", DueDate: "2024-08-15"}))
		})

		It("renders a missing due date as empty", func() {
			Expect(t.StartEdit("a")).To(Succeed())
			Expect(t.State().Draft.DueDate).To(BeEmpty())
			Expect(t.State().Draft.Effort).To(BeEmpty())
		})

		It("rejects an id that is not listed", func() {
			Expect(t.StartEdit("zzz")).To(MatchError(tracker.ErrUnknownIssue))
			Expect(t.State().Editing()).To(BeFalse())
		})

		It("clears the form on cancel", func() {
			Expect(t.StartEdit("b")).To(Succeed())
			t.CancelEdit()
			Expect(t.State().Editing()).To(BeFalse())
			Expect(t.State().Draft).To(Equal(tracker.EmptyDraft()))
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			Expect(t.Load(ctx)).To(Succeed())
			api.listCalls = 0
		})

		It("does nothing when the user declines", func() {
			api.deleteFn = func(context.Context, string) error {
				Fail("Delete must not be called")
				return nil
			}
			Expect(t.Delete(ctx, "a", func() bool { return false })).To(Succeed())
			Expect(api.listCalls).To(BeZero())
		})

		It("drops the issue locally after confirmation", func() {
			var deleted string
			api.deleteFn = func(_ context.Context, id string) error {
				deleted = id
				return nil
			}
			api.listFn = func(context.Context) ([]*structs.Issue, error) { return nil, errors.New("list down") }

			Expect(t.Delete(ctx, "b", func() bool { return true })).To(Succeed())
			Expect(deleted).To(Equal("b"))
			s := t.State()
			Expect(s.Issues).To(HaveLen(1))
			Expect(s.Issues[0].ID).To(Equal("a"))
			Expect(api.listCalls).To(BeZero())
			Expect(notices).To(BeEmpty())
		})

		It("keeps the list when the server rejects the delete", func() {
			api.deleteFn = func(context.Context, string) error { return errors.New("timeout") }
			Expect(t.Delete(ctx, "a", nil)).NotTo(Succeed())
			Expect(t.State().Issues).To(HaveLen(2))
		})

		It("leaves edit mode when the edited issue is deleted", func() {
			Expect(t.StartEdit("b")).To(Succeed())
			Expect(t.Delete(ctx, "b", nil)).To(Succeed())
			Expect(t.State().Editing()).To(BeFalse())
		})

		It("shows the server message on rejection", func() {
			api.deleteFn = func(context.Context, string) error {
				return &client.APIError{Status: 404, Message: "Issue not found"}
			}
			Expect(t.Delete(ctx, "a", nil)).NotTo(Succeed())
			Expect(notices).To(ConsistOf("Issue not found"))
		})

		It("shows the generic delete error on network failure", func() {
			api.deleteFn = func(context.Context, string) error { return errors.New("timeout") }
			Expect(t.Delete(ctx, "a", nil)).NotTo(Succeed())
			Expect(notices).To(ConsistOf(tracker.MsgDeleteFailed))
		})
	})

	Describe("concurrent mutations", func() {
		It("rejects a second mutation while one is in flight", func() {
			release := make(chan struct{})
			started := make(chan struct{})
			api.createFn = func(context.Context, *structs.CreateIssueRequest) (*structs.Issue, error) {
				close(started)
				<-release
				return &structs.Issue{}, nil
			}
			t.SetDraft(tracker.Draft{Title: "a", Owner: "b"})

			done := make(chan error, 1)
			go func() { done <- t.Submit(ctx) }()
			Eventually(started).Should(BeClosed())

			Expect(t.Delete(ctx, "a", nil)).To(MatchError(tracker.ErrBusy))

			close(release)
			Eventually(done).Should(Receive(BeNil()))
		})
	})
})
