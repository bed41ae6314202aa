package render

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cchalm/upcoming-events/internal/event"
)

func testRecord(t *testing.T, number int, venue string, dt string) event.Record {
	loc, err := time.LoadLocation(event.DefaultTimezone)
	require.NoError(t, err)
	when, err := time.ParseInLocation("2006-01-02 15:04", dt, loc)
	require.NoError(t, err)

	date, clock, _ := strings.Cut(dt, " ")
	return event.Record{
		Title:  "Nix Meetup: Flakes & You",
		Venue:  venue,
		City:   "Irvine",
		Date:   date,
		Time:   clock,
		Link:   "http://x",
		Number: number,
		URL:    "https://github.com/socal/nug/issues/" + strconv.Itoa(number),
		Organizer: event.Organizer{
			Login: "alice",
			URL:   "https://github.com/alice",
		},
		DateTime: when,
	}
}

func TestList_Empty(t *testing.T) {
	require.Equal(t,
		"## Join Socal Nug at an upcoming event\n\nThere are currently no upcoming events scheduled.",
		List(nil, DefaultHeader))
}

func TestList_SingleEvent(t *testing.T) {
	records := []event.Record{testRecord(t, 42, "Cafe X", "2024-05-07 18:30")}

	expected := "## Join Socal Nug at an upcoming event\n\n" +
		"- [#42](https://github.com/socal/nug/issues/42) [Cafe X](http://x) in Irvine on Tuesday, May 7, 2024 6:30 PM championed by [@alice](https://github.com/alice)"
	require.Equal(t, expected, List(records, DefaultHeader))
}

func TestList_SortedOrder(t *testing.T) {
	later := testRecord(t, 2, "Later Venue", "2024-06-01 10:00")
	earlier := testRecord(t, 1, "Earlier Venue", "2024-05-07 18:30")

	output := List(event.Sort([]event.Record{later, earlier}), "## Events")

	expected := "## Events\n\n" +
		"- [#1](https://github.com/socal/nug/issues/1) [Earlier Venue](http://x) in Irvine on Tuesday, May 7, 2024 6:30 PM championed by [@alice](https://github.com/alice)\n" +
		"- [#2](https://github.com/socal/nug/issues/2) [Later Venue](http://x) in Irvine on Saturday, June 1, 2024 10:00 AM championed by [@alice](https://github.com/alice)"
	require.Equal(t, expected, output)
}

func TestList_Deterministic(t *testing.T) {
	records := []event.Record{
		testRecord(t, 1, "A", "2024-05-07 18:30"),
		testRecord(t, 2, "B", "2024-05-08 18:30"),
	}
	require.Equal(t, List(records, DefaultHeader), List(records, DefaultHeader))
}
