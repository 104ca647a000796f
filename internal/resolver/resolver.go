// File path: internal/resolver/resolver.go
package resolver

import (
	"sort"

	"github.com/wolfthemes/supportkb/internal/kb"
	"github.com/wolfthemes/supportkb/internal/retriever"
)

// Degenerate answer sources: the index could not be queried at all, or it
// was queried and returned nothing. Callers must treat both as "no content
// to build on", never fabricate from them.
const (
	SourceError = "error"
	SourceNone  = "none"
)

const (
	primaryPreviewRunes   = 1000
	supportingSnipRunes   = 300
	maxSupportingSnippets = 2
)

// sourcePriorities is the single canonical precedence table. Lower ranks
// win. Sources absent from the table (theme_info, ticket_example, anything
// unrecognized) sort last.
var sourcePriorities = map[kb.Source]int{
	kb.SourceCommonIssue:   1,
	kb.SourceKBArticle:     2,
	kb.SourceThemeNote:     3,
	kb.SourceThemeDoc:      4,
	kb.SourceSupportTicket: 5,
}

const unrankedPriority = 99

// Snippet is a supporting result attached to a non-strict answer.
type Snippet struct {
	Title   string `json:"title"`
	Source  string `json:"source"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet"`
}

// Answer is the resolver's structured output. When IsStrict is true,
// Content is a pre-approved canned response and must be forwarded to the
// customer character-for-character.
type Answer struct {
	IsStrict   bool      `json:"is_strict"`
	Title      string    `json:"title,omitempty"`
	Source     string    `json:"source"`
	URL        string    `json:"url,omitempty"`
	Content    string    `json:"content,omitempty"`
	Supporting []Snippet `json:"supporting,omitempty"`
}

// Resolve applies the fixed source-priority policy to a candidate set.
// searchErr carries the query engine's outcome: non-nil means the index was
// unavailable (or the query could not run), which is distinct from an empty
// candidate list.
func Resolve(matches []retriever.Match, searchErr error) Answer {
	if searchErr != nil {
		return Answer{Source: SourceError}
	}
	if len(matches) == 0 {
		return Answer{Source: SourceNone}
	}

	ranked := make([]retriever.Match, len(matches))
	copy(ranked, matches)
	// Stable sort: similarity rank is the tie-break within a source tier.
	sort.SliceStable(ranked, func(i, j int) bool {
		return sourcePriority(ranked[i].Record.Source) < sourcePriority(ranked[j].Record.Source)
	})

	for _, match := range ranked {
		if match.Record.Source != kb.SourceCommonIssue {
			continue
		}
		extra, ok := match.Record.CommonIssue()
		// Both the source tag and issue_type must agree before trusting the
		// canned response; either field alone can be stale in the source data.
		if !ok || extra.IssueType != "common_issue" {
			continue
		}
		return Answer{
			IsStrict: true,
			Title:    match.Record.Title,
			Source:   string(kb.SourceCommonIssue),
			Content:  extra.ExpectedResponse,
		}
	}

	top := ranked[0]
	answer := Answer{
		Title:   top.Record.Title,
		Source:  string(top.Record.Source),
		URL:     top.Record.URL,
		Content: truncateRunes(top.Record.Text, primaryPreviewRunes),
	}
	for _, match := range ranked[1:] {
		if len(answer.Supporting) == maxSupportingSnippets {
			break
		}
		answer.Supporting = append(answer.Supporting, Snippet{
			Title:   match.Record.Title,
			Source:  string(match.Record.Source),
			URL:     match.Record.URL,
			Snippet: truncateRunes(match.Record.Text, supportingSnipRunes),
		})
	}
	return answer
}

func sourcePriority(source kb.Source) int {
	if rank, ok := sourcePriorities[source]; ok {
		return rank
	}
	return unrankedPriority
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
