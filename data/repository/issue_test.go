package repository

import (
	"testing"
	"time"

	"github.com/ncobase/issues/structs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPatchDocument_SetAndUnset(t *testing.T) {
	title := "t"
	effort := 2.0
	update := patchDocument(structs.IssuePatch{Title: &title, Effort: &effort, ClearDueDate: true})

	set, ok := update["$set"].(bson.M)
	if !ok {
		t.Fatalf("$set missing: %v", update)
	}
	if set["title"] != "t" || set["effort"] != 2.0 {
		t.Errorf("$set = %v", set)
	}
	if _, ok := set["owner"]; ok {
		t.Error("$set contains absent field owner")
	}
	if _, ok := update["$unset"].(bson.M)["dueDate"]; !ok {
		t.Errorf("$unset = %v, want dueDate", update["$unset"])
	}
}

func TestPatchDocument_DueDateOnly(t *testing.T) {
	due := structs.NewDate(2024, time.July, 4)
	update := patchDocument(structs.IssuePatch{DueDate: &due})
	if _, ok := update["$unset"]; ok {
		t.Errorf("update = %v, unexpected $unset", update)
	}
}

func TestIssueDocument_RoundTrip(t *testing.T) {
	due := structs.NewDate(2024, time.July, 4)
	doc := issueDocument{
		ID:        primitive.NewObjectID(),
		Title:     "t",
		Owner:     "o",
		Status:    structs.StatusInProgress,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC),
		Effort:    1.5,
		DueDate:   &due,
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var back issueDocument
	if err := bson.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	issue := back.toIssue()
	if issue.ID != doc.ID.Hex() || issue.Status != structs.StatusInProgress || issue.DueDate.String() != "2024-07-04" {
		t.Errorf("toIssue() = %+v", issue)
	}
	if !issue.CreatedAt.Equal(doc.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", issue.CreatedAt, doc.CreatedAt)
	}
}
