// File path: internal/resolver/resolver_test.go
package resolver

import (
	"errors"
	"strings"
	"testing"

	"github.com/wolfthemes/supportkb/internal/kb"
	"github.com/wolfthemes/supportkb/internal/retriever"
)

func match(source kb.Source, title, text string, score float32) retriever.Match {
	return retriever.Match{
		Record: kb.Record{Text: text, Title: title, Source: source},
		Score:  score,
	}
}

func TestResolveSearchErrorYieldsErrorSource(t *testing.T) {
	answer := Resolve(nil, errors.New("index gone"))
	if answer.Source != SourceError {
		t.Fatalf("expected %q, got %q", SourceError, answer.Source)
	}
	if answer.IsStrict || answer.Content != "" {
		t.Fatalf("error answer must carry no content: %+v", answer)
	}
}

func TestResolveNoMatchesYieldsNoneSource(t *testing.T) {
	answer := Resolve(nil, nil)
	if answer.Source != SourceNone {
		t.Fatalf("expected %q, got %q", SourceNone, answer.Source)
	}
}

func TestResolveStrictMatchReturnsResponseVerbatim(t *testing.T) {
	canned := "Please clear your cache and reload. — Support"
	matches := []retriever.Match{
		match(kb.SourceKBArticle, "Caching article", "Long explanation of caching.", 0.95),
		{
			Record: kb.Record{
				Text:   "ISSUE TITLE: Editor stuck\nRELATED QUESTION: spinner\nSOLUTION: " + canned,
				Title:  "Editor stuck",
				Source: kb.SourceCommonIssue,
				Extra: kb.CommonIssueExtra{
					IssueType:        "common_issue",
					ExpectedResponse: canned,
				},
			},
			Score: 0.62,
		},
	}
	answer := Resolve(matches, nil)
	if !answer.IsStrict {
		t.Fatalf("expected strict answer: %+v", answer)
	}
	if answer.Content != canned {
		t.Fatalf("canned response altered:\n%q\n%q", canned, answer.Content)
	}
	if answer.Source != string(kb.SourceCommonIssue) {
		t.Fatalf("unexpected source: %q", answer.Source)
	}
	if len(answer.Supporting) != 0 {
		t.Fatalf("strict answers carry no supporting snippets: %+v", answer.Supporting)
	}
}

func TestResolveStrictRequiresBothSourceAndIssueType(t *testing.T) {
	// Source says common_issue but metadata disagrees: no strict treatment.
	matches := []retriever.Match{
		{
			Record: kb.Record{
				Text:   "ISSUE TITLE: Misc\nRELATED QUESTION: q\nSOLUTION: s",
				Title:  "Misc",
				Source: kb.SourceCommonIssue,
				Extra: kb.CommonIssueExtra{
					IssueType:        "customization",
					ExpectedResponse: "s",
				},
			},
			Score: 0.9,
		},
	}
	answer := Resolve(matches, nil)
	if answer.IsStrict {
		t.Fatalf("issue_type mismatch must not go strict: %+v", answer)
	}

	// Metadata says common_issue but the record came from another source.
	matches = []retriever.Match{
		match(kb.SourceSupportTicket, "Old ticket", "ISSUE TITLE: looks like one", 0.9),
	}
	answer = Resolve(matches, nil)
	if answer.IsStrict {
		t.Fatalf("non common_issue source must not go strict: %+v", answer)
	}
}

func TestResolvePriorityOrderBeatsSimilarity(t *testing.T) {
	matches := []retriever.Match{
		match(kb.SourceSupportTicket, "Similar ticket", "Customer had the same problem.", 0.97),
		match(kb.SourceThemeDoc, "Updating guide", "Download the new zip and install it.", 0.71),
	}
	answer := Resolve(matches, nil)
	if answer.IsStrict {
		t.Fatalf("unexpected strict answer")
	}
	if answer.Source != string(kb.SourceThemeDoc) {
		t.Fatalf("theme_doc outranks support_ticket, got %q", answer.Source)
	}
	if answer.Title != "Updating guide" {
		t.Fatalf("unexpected primary: %q", answer.Title)
	}
	if len(answer.Supporting) != 1 || answer.Supporting[0].Source != string(kb.SourceSupportTicket) {
		t.Fatalf("demoted match should appear as supporting: %+v", answer.Supporting)
	}
}

func TestResolveSimilarityBreaksTiesWithinTier(t *testing.T) {
	matches := []retriever.Match{
		match(kb.SourceKBArticle, "Closest article", "a", 0.9),
		match(kb.SourceKBArticle, "Farther article", "b", 0.5),
	}
	answer := Resolve(matches, nil)
	if answer.Title != "Closest article" {
		t.Fatalf("similarity order lost within tier: %+v", answer)
	}
}

func TestResolveUnrankedSourcesSortLast(t *testing.T) {
	matches := []retriever.Match{
		match(kb.SourceThemeInfo, "Builder info", "Vonzot uses the Elementor page builder.", 0.99),
		match(kb.SourceSupportTicket, "Ticket", "transcript", 0.40),
	}
	answer := Resolve(matches, nil)
	if answer.Source != string(kb.SourceSupportTicket) {
		t.Fatalf("ranked source should beat unranked theme_info, got %q", answer.Source)
	}
}

func TestResolveCapsSupportingSnippets(t *testing.T) {
	matches := []retriever.Match{
		match(kb.SourceKBArticle, "Primary", "primary body", 0.9),
		match(kb.SourceThemeNote, "Note", "note body", 0.8),
		match(kb.SourceThemeDoc, "Doc", "doc body", 0.7),
		match(kb.SourceSupportTicket, "Ticket", "ticket body", 0.6),
	}
	answer := Resolve(matches, nil)
	if len(answer.Supporting) != 2 {
		t.Fatalf("expected at most 2 supporting snippets, got %d", len(answer.Supporting))
	}
	if answer.Supporting[0].Source != string(kb.SourceThemeNote) {
		t.Fatalf("supporting order should follow the ranked order: %+v", answer.Supporting)
	}
}

func TestResolveTruncatesPreviews(t *testing.T) {
	long := strings.Repeat("é", 1500)
	matches := []retriever.Match{
		match(kb.SourceKBArticle, "Long", long, 0.9),
		match(kb.SourceThemeNote, "Also long", long, 0.8),
	}
	answer := Resolve(matches, nil)
	if got := len([]rune(answer.Content)); got != 1000 {
		t.Fatalf("primary preview should cap at 1000 runes, got %d", got)
	}
	if got := len([]rune(answer.Supporting[0].Snippet)); got != 300 {
		t.Fatalf("supporting snippet should cap at 300 runes, got %d", got)
	}
	if !strings.HasPrefix(long, answer.Content) {
		t.Fatalf("truncation split a rune")
	}
}
