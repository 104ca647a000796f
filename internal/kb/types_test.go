// File path: internal/kb/types_test.go
package kb

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestRecordJSONRoundTripKeepsExtraVariant(t *testing.T) {
	original := Record{
		Text:   "ISSUE TITLE: Editor stuck\nRELATED QUESTION: Spinner forever\nSOLUTION: Clear cache.",
		Title:  "Editor stuck",
		Source: SourceCommonIssue,
		Extra: CommonIssueExtra{
			IssueType:        "common_issue",
			ExpectedResponse: "Clear cache.",
			HumanValidation:  true,
		},
	}
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Record
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round trip changed record:\n%+v\n%+v", original, decoded)
	}
	extra, ok := decoded.CommonIssue()
	if !ok || extra.ExpectedResponse != "Clear cache." {
		t.Fatalf("typed extra lost: %+v", decoded.Extra)
	}
}

func TestRecordUnmarshalUnknownSourceDropsExtra(t *testing.T) {
	var decoded Record
	raw := `{"text":"body","title":"t","source":"mystery","extra":{"anything":1}}`
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Extra != nil {
		t.Fatalf("unknown source should carry no extra, got %+v", decoded.Extra)
	}
	if decoded.Source.Valid() {
		t.Fatalf("unexpected valid source %q", decoded.Source)
	}
}

func TestSourceValid(t *testing.T) {
	for _, source := range []Source{
		SourceCommonIssue, SourceKBArticle, SourceThemeDoc, SourceThemeInfo,
		SourceThemeNote, SourceSupportTicket, SourceTicketExample,
	} {
		if !source.Valid() {
			t.Fatalf("%q should be valid", source)
		}
	}
	if Source("faq").Valid() {
		t.Fatalf("unknown source accepted")
	}
}
