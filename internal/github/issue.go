package github

import (
	"encoding/json"
	"fmt"
)

// Issue is an issue record. Fields the client does not interpret are kept
// verbatim and written back when the issue is serialized.
type Issue struct {
	Number      int
	Title       string
	CommentsURL string

	// Comment is the text posted by PostComment. It is not part of the
	// server record.
	Comment string

	fields map[string]json.RawMessage
}

// UnmarshalJSON keeps every field of the record.
func (i *Issue) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var known struct {
		Number      int    `json:"number"`
		Title       string `json:"title"`
		CommentsURL string `json:"comments_url"`
		Comment     string `json:"comment"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	*i = Issue{
		Number:      known.Number,
		Title:       known.Title,
		CommentsURL: known.CommentsURL,
		Comment:     known.Comment,
		fields:      fields,
	}
	return nil
}

// MarshalJSON writes the original record with the known fields and, when
// set, the comment.
func (i Issue) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(i.fields)+4)
	for k, v := range i.fields {
		out[k] = v
	}
	if i.Number != 0 {
		out["number"] = i.Number
	}
	if i.Title != "" {
		out["title"] = i.Title
	}
	if i.CommentsURL != "" {
		out["comments_url"] = i.CommentsURL
	}
	if i.Comment != "" {
		out["comment"] = i.Comment
	} else {
		delete(out, "comment")
	}
	return json.Marshal(out)
}

// Field returns a passthrough field as raw JSON.
func (i Issue) Field(name string) (json.RawMessage, bool) {
	v, ok := i.fields[name]
	return v, ok
}

func (i Issue) String() string {
	if i.Number == 0 {
		return i.Title
	}
	return fmt.Sprintf("#%d %s", i.Number, i.Title)
}
