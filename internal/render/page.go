package render

import (
	"fmt"
	"path"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/cchalm/upcoming-events/internal/event"
)

// DefaultPagesDir is where generated event pages live in the repository
const DefaultPagesDir = "content/events"

const frontMatterDelimiter = "+++"

// Page is a generated content page and its repository path
type Page struct {
	Path    string
	Content string
}

type frontMatter struct {
	Title string    `toml:"title"`
	Extra pageExtra `toml:"extra"`
}

type pageExtra struct {
	Organizer   string `toml:"organizer"`
	Location    string `toml:"location"`
	City        string `toml:"city"`
	EventDate   string `toml:"event_date"`
	EventTime   string `toml:"event_time"`
	EventLink   string `toml:"event_link"`
	IssueNumber int    `toml:"issue_number"`
}

// Pages renders one front matter document per record, placed under dir
func Pages(records []event.Record, dir string) ([]Page, error) {
	pages := make([]Page, 0, len(records))
	for _, r := range records {
		content, err := pageContent(r)
		if err != nil {
			return nil, fmt.Errorf("failed to render page for issue #%d: %w", r.Number, err)
		}
		pages = append(pages, Page{
			Path:    PagePath(r, dir),
			Content: content,
		})
	}
	return pages, nil
}

// PagePath returns dir/{date}--{name}--{number}.md for a record
func PagePath(r event.Record, dir string) string {
	name := fmt.Sprintf("%s--%s--%d.md", r.DateTime.Format("2006-01-02"), slugify(r.Title), r.Number)
	return path.Join(dir, name)
}

func pageContent(r event.Record) (string, error) {
	fm := frontMatter{
		Title: r.Title,
		Extra: pageExtra{
			Organizer:   r.Organizer.Login,
			Location:    r.Venue,
			City:        r.City,
			EventDate:   r.Date,
			EventTime:   r.Time,
			EventLink:   r.Link,
			IssueNumber: r.Number,
		},
	}

	b, err := toml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(frontMatterDelimiter + "\n")
	sb.Write(b)
	if len(b) > 0 && b[len(b)-1] != '\n' {
		sb.WriteString("\n")
	}
	sb.WriteString(frontMatterDelimiter + "\n")
	return sb.String(), nil
}

// slugify lower-cases s and joins its ASCII letter and digit runs with "-"
func slugify(s string) string {
	var sb strings.Builder
	pendingDash := false
	for _, c := range strings.ToLower(s) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if pendingDash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(c)
			pendingDash = false
		} else {
			pendingDash = true
		}
	}
	if sb.Len() == 0 {
		return "event"
	}
	return sb.String()
}
