package github

import (
	"encoding/json"
	"testing"
)

func TestIssue_UnmarshalKeepsPassthroughFields(t *testing.T) {
	raw := `{
		"number": 3,
		"title": "Crash on start",
		"comments_url": "https://api/repos/alice/demo/issues/3/comments",
		"state": "open",
		"labels": [{"name": "bug"}]
	}`

	var issue Issue
	if err := json.Unmarshal([]byte(raw), &issue); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if issue.Number != 3 || issue.Title != "Crash on start" {
		t.Errorf("issue = %+v", issue)
	}
	if issue.CommentsURL != "https://api/repos/alice/demo/issues/3/comments" {
		t.Errorf("CommentsURL = %q", issue.CommentsURL)
	}
	if state, ok := issue.Field("state"); !ok || string(state) != `"open"` {
		t.Errorf("Field(state) = %s, %v", state, ok)
	}
	if issue.String() != "#3 Crash on start" {
		t.Errorf("String() = %q", issue.String())
	}
}

func TestIssue_MarshalIncludesCommentAndRecord(t *testing.T) {
	var issue Issue
	raw := `{"number":1,"title":"t","comments_url":"https://api/c","state":"open","labels":[{"name":"bug"}]}`
	if err := json.Unmarshal([]byte(raw), &issue); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	issue.Comment = "LGTM"

	data, err := json.Marshal(issue)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal(out) error = %v", err)
	}

	if out["comment"] != "LGTM" {
		t.Errorf("comment = %v, want LGTM", out["comment"])
	}
	if out["state"] != "open" {
		t.Errorf("state = %v, want passthrough open", out["state"])
	}
	if out["comments_url"] != "https://api/c" {
		t.Errorf("comments_url = %v", out["comments_url"])
	}
	labels, ok := out["labels"].([]interface{})
	if !ok || len(labels) != 1 {
		t.Errorf("labels = %v, want one passthrough label", out["labels"])
	}
}

func TestIssue_MarshalOmitsEmptyComment(t *testing.T) {
	issue := Issue{Number: 2, Title: "x", CommentsURL: "https://api/c"}

	data, err := json.Marshal(issue)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var out map[string]interface{}
	_ = json.Unmarshal(data, &out)
	if _, ok := out["comment"]; ok {
		t.Errorf("comment present in %s", data)
	}
}
