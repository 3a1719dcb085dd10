package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ncobase/issues/ctxutil"
	"github.com/ncobase/issues/structs"
)

func TestClient_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/issues" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get(ctxutil.TraceIDHeader); got != "abc" {
			t.Errorf("trace header = %q, want abc", got)
		}
		io.WriteString(w, `[{"id":"1","title":"a","owner":"b","status":"New","createdAt":"2024-01-02T03:04:05.678Z","effort":1.5,"dueDate":"2024-02-01"}]`)
	}))
	defer srv.Close()

	ctx := ctxutil.SetTraceID(context.Background(), "abc")
	issues, err := New(srv.URL + "/").List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(issues) != 1 || issues[0].Effort != 1.5 || issues[0].DueDate.String() != "2024-02-01" {
		t.Errorf("List() = %+v", issues[0])
	}
	if want := time.Date(2024, 1, 2, 3, 4, 5, 678_000_000, time.UTC); !issues[0].CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", issues[0].CreatedAt, want)
	}
}

func TestClient_CreateSendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["title"] != "a" || body["effort"] != 0.0 || body["dueDate"] != "2024-03-01" {
			t.Errorf("body = %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"x","title":"a","owner":"b","status":"New","effort":0,"dueDate":null}`)
	}))
	defer srv.Close()

	effort := 0.0
	due := structs.NewDate(2024, time.March, 1)
	issue, err := New(srv.URL).Create(context.Background(), &structs.CreateIssueRequest{Title: "a", Owner: "b", Effort: &effort, DueDate: &due})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if issue.ID != "x" || issue.DueDate != nil {
		t.Errorf("Create() = %+v", issue)
	}
}

func TestClient_UpdateOmitsAbsentFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/issues/42" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		b, _ := io.ReadAll(r.Body)
		if string(b) != `{"status":"Closed","dueDate":null}` {
			t.Errorf("body = %s", b)
		}
		io.WriteString(w, `{"id":"42","status":"Closed"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Update(context.Background(), "42", &structs.UpdateIssueRequest{
		Status:  structs.Some(structs.StatusClosed),
		DueDate: structs.Null[structs.Date](),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/issues":
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"Failed to create issue: title is required"}`)
		default:
			w.WriteHeader(http.StatusBadGateway)
			io.WriteString(w, `<html>bad gateway</html>`)
		}
	}))
	defer srv.Close()
	c := New(srv.URL)

	_, err := c.Create(context.Background(), &structs.CreateIssueRequest{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Create() error = %v, want APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "Failed to create issue: title is required" {
		t.Errorf("APIError = %+v", apiErr)
	}

	err = c.Delete(context.Background(), "1")
	if !errors.As(err, &apiErr) || apiErr.Message != "Failed to delete" {
		t.Errorf("Delete() error = %v, want Failed to delete", err)
	}

	_, err = c.Update(context.Background(), "1", &structs.UpdateIssueRequest{})
	if !errors.As(err, &apiErr) || apiErr.Message != "Request failed" {
		t.Errorf("Update() error = %v, want Request failed", err)
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, WithTimeout(time.Second)).List(context.Background())
	if err == nil {
		t.Fatal("List() expected error against closed server")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("List() error = %v, transport failure reported as APIError", err)
	}
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error":"Storage unavailable"}`)
	}))
	defer srv.Close()

	err := New(srv.URL).Health(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusServiceUnavailable {
		t.Errorf("Health() error = %v", err)
	}
}
