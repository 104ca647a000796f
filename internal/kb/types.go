// File path: internal/kb/types.go
package kb

import (
	"encoding/json"
	"fmt"
)

// Source identifies which collection a normalized record came from. The set
// is closed; the priority resolver and downstream formatting both key off it.
type Source string

const (
	SourceCommonIssue   Source = "common_issue"
	SourceKBArticle     Source = "kb_article"
	SourceThemeDoc      Source = "theme_doc"
	SourceThemeInfo     Source = "theme_info"
	SourceThemeNote     Source = "theme_note"
	SourceSupportTicket Source = "support_ticket"
	SourceTicketExample Source = "ticket_example"
)

// Valid reports whether the source belongs to the closed set.
func (s Source) Valid() bool {
	switch s {
	case SourceCommonIssue, SourceKBArticle, SourceThemeDoc, SourceThemeInfo,
		SourceThemeNote, SourceSupportTicket, SourceTicketExample:
		return true
	}
	return false
}

// Record is the uniform representation of a document regardless of which
// collection it came from. Text is already sanitized plain text and is never
// empty; records without usable content are dropped at normalization time.
type Record struct {
	Text   string
	Title  string
	Source Source
	URL    string
	Extra  Extra
}

// Extra carries the source-specific metadata variant for a record.
type Extra interface {
	extraSource() Source
}

// CommonIssueExtra holds the strict-match payload for a recognized common
// issue. ExpectedResponse is the pre-approved reply that must reach the
// customer verbatim.
type CommonIssueExtra struct {
	IssueType            string `json:"issue_type"`
	ExpectedResponse     string `json:"expected_response"`
	HumanValidation      bool   `json:"human_validation,omitempty"`
	CustomizationSummary string `json:"customization_summary,omitempty"`
}

func (CommonIssueExtra) extraSource() Source { return SourceCommonIssue }

type ThemeDocExtra struct {
	Slug string `json:"slug,omitempty"`
}

func (ThemeDocExtra) extraSource() Source { return SourceThemeDoc }

// ThemeInfoExtra carries the full structured metadata for a theme entry.
type ThemeInfoExtra struct {
	Slug      string `json:"slug"`
	Name      string `json:"name,omitempty"`
	Builder   string `json:"builder,omitempty"`
	Version   string `json:"version,omitempty"`
	Updated   string `json:"updated,omitempty"`
	Category  string `json:"category,omitempty"`
	DemoURL   string `json:"demourl,omitempty"`
	Shortlink string `json:"shortlink,omitempty"`
}

func (ThemeInfoExtra) extraSource() Source { return SourceThemeInfo }

type ThemeNoteExtra struct {
	Theme   string `json:"theme,omitempty"`
	Version string `json:"version,omitempty"`
}

func (ThemeNoteExtra) extraSource() Source { return SourceThemeNote }

type SupportTicketExtra struct {
	TicketID string `json:"ticket_id,omitempty"`
	Theme    string `json:"theme,omitempty"`
}

func (SupportTicketExtra) extraSource() Source { return SourceSupportTicket }

type TicketExampleExtra struct {
	IssueType string `json:"issue_type,omitempty"`
}

func (TicketExampleExtra) extraSource() Source { return SourceTicketExample }

// CommonIssue returns the strict-match metadata when the record carries it.
func (r Record) CommonIssue() (CommonIssueExtra, bool) {
	extra, ok := r.Extra.(CommonIssueExtra)
	return extra, ok
}

type recordEnvelope struct {
	Text   string          `json:"text"`
	Title  string          `json:"title"`
	Source Source          `json:"source"`
	URL    string          `json:"url,omitempty"`
	Extra  json.RawMessage `json:"extra,omitempty"`
}

// MarshalJSON serializes the record with its extra variant inlined; the
// source tag decides which variant is decoded back on the way in.
func (r Record) MarshalJSON() ([]byte, error) {
	env := recordEnvelope{Text: r.Text, Title: r.Title, Source: r.Source, URL: r.URL}
	if r.Extra != nil {
		data, err := json.Marshal(r.Extra)
		if err != nil {
			return nil, fmt.Errorf("marshal %s extra: %w", r.Source, err)
		}
		env.Extra = data
	}
	return json.Marshal(env)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var env recordEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	r.Text = env.Text
	r.Title = env.Title
	r.Source = env.Source
	r.URL = env.URL
	r.Extra = nil
	if len(env.Extra) == 0 {
		return nil
	}
	extra, err := decodeExtra(env.Source, env.Extra)
	if err != nil {
		return err
	}
	r.Extra = extra
	return nil
}

func decodeExtra(source Source, data json.RawMessage) (Extra, error) {
	var target Extra
	switch source {
	case SourceCommonIssue:
		var extra CommonIssueExtra
		if err := json.Unmarshal(data, &extra); err != nil {
			return nil, fmt.Errorf("decode %s extra: %w", source, err)
		}
		target = extra
	case SourceThemeDoc:
		var extra ThemeDocExtra
		if err := json.Unmarshal(data, &extra); err != nil {
			return nil, fmt.Errorf("decode %s extra: %w", source, err)
		}
		target = extra
	case SourceThemeInfo:
		var extra ThemeInfoExtra
		if err := json.Unmarshal(data, &extra); err != nil {
			return nil, fmt.Errorf("decode %s extra: %w", source, err)
		}
		target = extra
	case SourceThemeNote:
		var extra ThemeNoteExtra
		if err := json.Unmarshal(data, &extra); err != nil {
			return nil, fmt.Errorf("decode %s extra: %w", source, err)
		}
		target = extra
	case SourceSupportTicket:
		var extra SupportTicketExtra
		if err := json.Unmarshal(data, &extra); err != nil {
			return nil, fmt.Errorf("decode %s extra: %w", source, err)
		}
		target = extra
	case SourceTicketExample:
		var extra TicketExampleExtra
		if err := json.Unmarshal(data, &extra); err != nil {
			return nil, fmt.Errorf("decode %s extra: %w", source, err)
		}
		target = extra
	default:
		// Unknown sources keep no structured extra rather than failing the load.
		return nil, nil
	}
	return target, nil
}
