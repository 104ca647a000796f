// File path: internal/kb/loader.go
package kb

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wolfthemes/supportkb/internal/common"
)

// Well-known collection file names under the data root.
const (
	CommonIssuesFile   = "common_issues.json"
	KBArticlesFile     = "kb_articles.json"
	ThemeDocsFile      = "theme_docs.json"
	ThemeInfoFile      = "theme_info.json"
	ThemeNotesFile     = "theme_notes.json"
	ClosedTicketsFile  = "closed_tickets.json"
	TicketExamplesFile = "ticket_examples.json"
)

const ticketTurnDelimiter = "\n\n---\n\n"

// FileResult records the outcome of loading one collection file. Err is
// non-nil for missing, empty, or malformed files; the load still proceeds
// with an empty slice for that source.
type FileResult struct {
	Path  string
	Count int
	Err   error
}

// LoadReport aggregates per-file outcomes so callers can surface load
// problems without the loader aborting the whole corpus.
type LoadReport struct {
	Files []FileResult
}

// Warnings returns a human-readable line per file that failed to load.
func (r LoadReport) Warnings() []string {
	var out []string
	for _, file := range r.Files {
		if file.Err != nil {
			out = append(out, fmt.Sprintf("%s: %v", file.Path, file.Err))
		}
	}
	return out
}

// Total returns the number of records loaded across all files.
func (r LoadReport) Total() int {
	total := 0
	for _, file := range r.Files {
		total += file.Count
	}
	return total
}

var (
	errFileMissing = errors.New("file missing")
	errFileEmpty   = errors.New("file empty")
)

// LoadCorpus normalizes every collection under dataDir into one record
// slice. A missing, empty, or malformed file degrades to an empty slice for
// that source and is reported; it never aborts the load. Records lacking a
// usable text field are silently dropped.
func LoadCorpus(dataDir string) ([]Record, LoadReport) {
	logger := common.Logger()
	var records []Record
	var report LoadReport

	load := func(name string, fn func(path string) ([]Record, error)) {
		path := filepath.Join(dataDir, name)
		loaded, err := fn(path)
		if err != nil {
			logger.Warn("kb: collection load failed", "path", path, "error", err)
			report.Files = append(report.Files, FileResult{Path: name, Err: err})
			return
		}
		report.Files = append(report.Files, FileResult{Path: name, Count: len(loaded)})
		records = append(records, loaded...)
	}

	// Same concatenation order the index has always been built with.
	load(ThemeInfoFile, loadThemeInfo)
	load(ThemeNotesFile, loadThemeNotes)
	load(CommonIssuesFile, loadCommonIssues)
	load(KBArticlesFile, loadKBArticles)
	load(ThemeDocsFile, loadThemeDocs)
	load(ClosedTicketsFile, loadClosedTickets)
	if _, err := os.Stat(filepath.Join(dataDir, TicketExamplesFile)); err == nil {
		load(TicketExamplesFile, loadTicketExamples)
	}

	logger.Info("kb: corpus loaded", "records", len(records), "files", len(report.Files))
	return records, report
}

// parseJSONFile reads and decodes one collection file into out. Missing and
// zero-length files are distinguished from parse failures so the report can
// say which happened.
func parseJSONFile(path string, out interface{}) error {
	info, err := os.Stat(path)
	if err != nil {
		return errFileMissing
	}
	if info.Size() == 0 {
		return errFileEmpty
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	return nil
}

type rawArticle struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
	Slug    string `json:"slug"`
}

func loadKBArticles(path string) ([]Record, error) {
	var raw []rawArticle
	if err := parseJSONFile(path, &raw); err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		text := CleanHTML(item.Content)
		if text == "" {
			continue
		}
		records = append(records, Record{
			Text:   text,
			Title:  defaultString(item.Title, "Untitled"),
			Source: SourceKBArticle,
			URL:    item.URL,
		})
	}
	return records, nil
}

func loadThemeDocs(path string) ([]Record, error) {
	var raw []rawArticle
	if err := parseJSONFile(path, &raw); err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		text := strings.TrimSpace(item.Content)
		if text == "" {
			continue
		}
		records = append(records, Record{
			Text:   text,
			Title:  defaultString(item.Title, "Untitled"),
			Source: SourceThemeDoc,
			URL:    item.URL,
			Extra:  ThemeDocExtra{Slug: item.Slug},
		})
	}
	return records, nil
}

type rawCommonIssue struct {
	Title                string `json:"title"`
	CustomerMessage      string `json:"customer_message"`
	ExpectedResponse     string `json:"expected_response"`
	IssueType            string `json:"issue_type"`
	HumanValidation      bool   `json:"human_validation"`
	CustomizationSummary string `json:"customization_summary"`
}

func loadCommonIssues(path string) ([]Record, error) {
	var raw []rawCommonIssue
	if err := parseJSONFile(path, &raw); err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		// A common issue without its canned response has no strict-match
		// payload to forward, so it never enters the index.
		if strings.TrimSpace(item.ExpectedResponse) == "" {
			continue
		}
		text := fmt.Sprintf(
			"ISSUE TITLE: %s\nRELATED QUESTION: %s\nSOLUTION: %s",
			item.Title, item.CustomerMessage, item.ExpectedResponse,
		)
		records = append(records, Record{
			Text:   text,
			Title:  defaultString(item.Title, "Untitled"),
			Source: SourceCommonIssue,
			Extra: CommonIssueExtra{
				IssueType:            defaultString(item.IssueType, "common_issue"),
				ExpectedResponse:     item.ExpectedResponse,
				HumanValidation:      item.HumanValidation,
				CustomizationSummary: item.CustomizationSummary,
			},
		})
	}
	return records, nil
}

type rawThemeInfo struct {
	Name      string `json:"name"`
	Builder   string `json:"builder"`
	Version   string `json:"version"`
	Updated   string `json:"updated"`
	URL       string `json:"url"`
	DemoURL   string `json:"demourl"`
	Shortlink string `json:"shortlink"`
	Category  string `json:"category"`
}

func loadThemeInfo(path string) ([]Record, error) {
	var raw map[string]rawThemeInfo
	if err := parseJSONFile(path, &raw); err != nil {
		return nil, err
	}
	// Map iteration order is random; emit by sorted slug so record order is
	// stable across rebuilds.
	slugs := make([]string, 0, len(raw))
	for slug := range raw {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	records := make([]Record, 0, len(raw))
	for _, slug := range slugs {
		meta := raw[slug]
		name := defaultString(meta.Name, slug)
		builder := defaultString(meta.Builder, "Unknown")
		records = append(records, Record{
			Text:   fmt.Sprintf("%s uses the %s page builder.", name, builder),
			Title:  name + " Builder Info",
			Source: SourceThemeInfo,
			URL:    meta.URL,
			Extra: ThemeInfoExtra{
				Slug:      slug,
				Name:      name,
				Builder:   builder,
				Version:   meta.Version,
				Updated:   meta.Updated,
				Category:  meta.Category,
				DemoURL:   meta.DemoURL,
				Shortlink: meta.Shortlink,
			},
		})
	}
	return records, nil
}

type rawThemeNote struct {
	Title   string `json:"title"`
	Note    string `json:"note"`
	Theme   string `json:"theme"`
	Version string `json:"version"`
}

func loadThemeNotes(path string) ([]Record, error) {
	var raw []rawThemeNote
	if err := parseJSONFile(path, &raw); err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		text := strings.TrimSpace(item.Note)
		if text == "" {
			continue
		}
		records = append(records, Record{
			Text:   text,
			Title:  defaultString(item.Title, "Untitled"),
			Source: SourceThemeNote,
			Extra:  ThemeNoteExtra{Theme: item.Theme, Version: item.Version},
		})
	}
	return records, nil
}

type rawTicketComment struct {
	Comment       string `json:"comment"`
	CommenterName string `json:"commenter_name"`
	Private       string `json:"private"`
	UserType      string `json:"user_type"`
}

type rawTicket struct {
	TicketID             flexString         `json:"ticket_id"`
	TicketTitle          string             `json:"ticket_title"`
	RelatedURL           string             `json:"related_url"`
	EnvatoVerifiedString string             `json:"envato_verified_string"`
	TicketComments       []rawTicketComment `json:"ticket_comments"`
}

// closedTicketsEnvelope unwraps the {"closed-tickets": [...]} export variant
// transparently; a bare array decodes the same way.
type closedTicketsEnvelope struct {
	ClosedTickets []rawTicket `json:"closed-tickets"`
}

func loadClosedTickets(path string) ([]Record, error) {
	data, err := readNonEmpty(path)
	if err != nil {
		return nil, err
	}
	var tickets []rawTicket
	if err := json.Unmarshal(data, &tickets); err != nil {
		var envelope closedTicketsEnvelope
		if envErr := json.Unmarshal(data, &envelope); envErr != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		tickets = envelope.ClosedTickets
	}

	logger := common.Logger()
	records := make([]Record, 0, len(tickets))
	for _, ticket := range tickets {
		transcript := buildTranscript(ticket.TicketComments)
		if transcript == "" {
			continue
		}
		theme := "Unknown Theme"
		if envato := strings.TrimSpace(ticket.EnvatoVerifiedString); envato != "" {
			var purchase struct {
				ItemName string `json:"item_name"`
			}
			if err := json.Unmarshal([]byte(envato), &purchase); err != nil {
				logger.Warn("kb: malformed envato metadata on ticket",
					"ticket_id", ticket.TicketID.String(), "error", err)
			} else if purchase.ItemName != "" {
				theme = purchase.ItemName
			}
		}
		records = append(records, Record{
			Text:   transcript,
			Title:  defaultString(ticket.TicketTitle, "Untitled Ticket"),
			Source: SourceSupportTicket,
			URL:    ticket.RelatedURL,
			Extra:  SupportTicketExtra{TicketID: ticket.TicketID.String(), Theme: theme},
		})
	}
	return records, nil
}

// buildTranscript concatenates a ticket's comment exchange into one
// conversational text. Private comments are excluded entirely rather than
// redacted, so internal notes never reach the index.
func buildTranscript(comments []rawTicketComment) string {
	var turns []string
	for _, comment := range comments {
		if comment.Private == "1" {
			continue
		}
		body := CleanHTML(comment.Comment)
		if body == "" {
			continue
		}
		name := defaultString(comment.CommenterName, "User")
		turns = append(turns, name+":\n"+body)
	}
	return strings.TrimSpace(strings.Join(turns, ticketTurnDelimiter))
}

type rawTicketExample struct {
	Title            string `json:"title"`
	CustomerMessage  string `json:"customer_message"`
	ExpectedResponse string `json:"expected_response"`
	IssueType        string `json:"issue_type"`
}

func loadTicketExamples(path string) ([]Record, error) {
	var raw []rawTicketExample
	if err := parseJSONFile(path, &raw); err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		if strings.TrimSpace(item.CustomerMessage) == "" && strings.TrimSpace(item.ExpectedResponse) == "" {
			continue
		}
		records = append(records, Record{
			Text:   fmt.Sprintf("CUSTOMER MESSAGE: %s EXPECTED RESPONSE: %s", item.CustomerMessage, item.ExpectedResponse),
			Title:  defaultString(item.Title, "Untitled"),
			Source: SourceTicketExample,
			Extra:  TicketExampleExtra{IssueType: defaultString(item.IssueType, "unknown")},
		})
	}
	return records, nil
}

// LookupThemeBuilder answers which page builder a theme uses, keyed by slug.
func LookupThemeBuilder(dataDir, slug string) (string, error) {
	var raw map[string]rawThemeInfo
	if err := parseJSONFile(filepath.Join(dataDir, ThemeInfoFile), &raw); err != nil {
		return "", err
	}
	meta, ok := raw[slug]
	if !ok {
		return "", fmt.Errorf("no info found for theme %q", slug)
	}
	name := defaultString(meta.Name, slug)
	builder := defaultString(meta.Builder, "Unknown")
	return fmt.Sprintf("%s uses %s.", name, builder), nil
}

func readNonEmpty(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errFileMissing
	}
	if info.Size() == 0 {
		return nil, errFileEmpty
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return data, nil
}

func defaultString(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

// flexString decodes a JSON value that may arrive as a string or a number;
// ticket exports are inconsistent about the ticket_id type.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string { return string(f) }
