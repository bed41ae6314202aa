// Package render formats sorted event records as markdown.
package render

import (
	"fmt"
	"strings"

	"github.com/cchalm/upcoming-events/internal/event"
)

const (
	DefaultHeader       = "## Join Socal Nug at an upcoming event"
	NoEventsPlaceholder = "There are currently no upcoming events scheduled."

	longDateTimeLayout = "Monday, January 2, 2006 3:04 PM"
)

// List renders records as a markdown bullet list under header, one line per event in the given order
func List(records []event.Record, header string) string {
	return header + "\n\n" + listBody(records)
}

func listBody(records []event.Record) string {
	if len(records) == 0 {
		return NoEventsPlaceholder
	}

	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, listLine(r))
	}
	return strings.Join(lines, "\n")
}

func listLine(r event.Record) string {
	return strings.Join([]string{
		"-",
		fmt.Sprintf("[#%d](%s)", r.Number, r.URL),
		fmt.Sprintf("[%s](%s)", r.Venue, r.Link),
		fmt.Sprintf("in %s", r.City),
		fmt.Sprintf("on %s", r.DateTime.Format(longDateTimeLayout)),
		fmt.Sprintf("championed by [@%s](%s)", r.Organizer.Login, r.Organizer.URL),
	}, " ")
}
