package event

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/cchalm/upcoming-events/internal/github"
)

var (
	ErrMalformedSection = fmt.Errorf("malformed section")
	ErrDuplicateSection = fmt.Errorf("duplicate section")
)

var (
	// headingDelimiter matches a "### " section heading at the start of a line
	headingDelimiter = regexp.MustCompile(`(?m)^###[ \t]+`)
	// blankLine matches one or more blank lines, tolerating CRLF line endings and whitespace-only lines
	blankLine = regexp.MustCompile(`(?:\r?\n[ \t]*){2,}`)
)

// noResponse is what GitHub issue forms write for inputs left empty
const noResponse = "_No response_"

// dateTimeKey keys the combined date and time in ParseError.Invalid
const dateTimeKey = "date/time"

// dateTimeLayouts are tried in order against "<date> <time>"
var dateTimeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 3:04 PM",
	"2006-01-02 3:04PM",
	"2006-01-02 3:04 pm",
	"2006-01-02 3:04pm",
}

// Parse converts one announcement issue into a Record. The combined date and time are interpreted in loc
func Parse(issue github.Issue, loc *time.Location) (Record, error) {
	sections, err := splitSections(issue.Body)
	if err != nil {
		return Record{}, &ParseError{IssueNumber: issue.Number, Err: err}
	}

	fields := map[string]string{}
	for _, s := range sections {
		if !isKnownField(s.key) {
			log.Printf("[parse] Issue #%d: ignoring unrecognized section %q", issue.Number, s.key)
			continue
		}
		if s.value == noResponse {
			continue
		}
		fields[s.key] = s.value
	}

	perr := &ParseError{IssueNumber: issue.Number}
	for _, f := range schema {
		if f.required && fields[f.name] == "" {
			perr.Missing = append(perr.Missing, f.name)
		}
	}

	if link, ok := fields[FieldLink]; ok {
		if reason := checkLink(link); reason != "" {
			perr.addInvalid(FieldLink, reason)
		}
	}

	var dateTime time.Time
	if fields[FieldDate] != "" && fields[FieldTime] != "" {
		dateTime, err = parseDateTime(fields[FieldDate], fields[FieldTime], loc)
		if err != nil {
			perr.addInvalid(dateTimeKey, err.Error())
		}
	}

	if !perr.empty() {
		return Record{}, perr
	}

	return Record{
		Title: issue.Title,
		Venue: fields[FieldVenue],
		City:  fields[FieldCity],
		Date:  fields[FieldDate],
		Time:  fields[FieldTime],
		Link:  fields[FieldLink],

		Number: issue.Number,
		URL:    issue.URL,

		Organizer: Organizer{
			Login: issue.Author.Login,
			URL:   issue.Author.URL,
		},

		DateTime: dateTime,
	}, nil
}

// ParseAll parses every issue. If any issue fails to parse, the returned error joins the errors of all failing issues
// and no records are returned
func ParseAll(issues []github.Issue, loc *time.Location) ([]Record, error) {
	records := make([]Record, 0, len(issues))
	var errs []error
	for _, issue := range issues {
		record, err := Parse(issue, loc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, record)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return records, nil
}

type section struct {
	key   string
	value string
}

func splitSections(body string) ([]section, error) {
	// The first fragment is whatever precedes the first heading
	fragments := headingDelimiter.Split(body, -1)[1:]

	var sections []section
	seen := map[string]bool{}
	for _, fragment := range fragments {
		if strings.TrimSpace(fragment) == "" {
			continue
		}

		var parts []string
		for _, p := range blankLine.Split(fragment, -1) {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}

		heading := strings.ToLower(strings.TrimSpace(firstLine(fragment)))
		switch {
		case len(parts) == 1:
			return nil, fmt.Errorf("section %q has no value: %w", heading, ErrMalformedSection)
		case len(parts) > 2:
			return nil, fmt.Errorf("section %q has %d paragraphs, expected 1: %w", heading, len(parts)-1, ErrMalformedSection)
		case strings.Contains(parts[0], "\n"):
			return nil, fmt.Errorf("section %q heading spans multiple lines: %w", heading, ErrMalformedSection)
		}

		key := strings.ToLower(parts[0])
		if seen[key] {
			return nil, fmt.Errorf("section %q: %w", key, ErrDuplicateSection)
		}
		seen[key] = true

		sections = append(sections, section{key: key, value: parts[1]})
	}

	return sections, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSuffix(line, "\r")
}

func parseDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	combined := date + " " + clock
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, combined, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date and time", combined)
}

func checkLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return err.Error()
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("%q is not an http(s) URL", link)
	}
	if u.Host == "" {
		return fmt.Sprintf("%q has no host", link)
	}
	return ""
}
