package event

import (
	"time"
)

// DefaultTimezone is the zone event dates and times are interpreted in unless configured otherwise
const DefaultTimezone = "America/Los_Angeles"

// Record is one upcoming event derived from an announcement issue
type Record struct {
	Title string
	Venue string
	City  string
	Date  string
	Time  string
	Link  string

	Number int
	URL    string

	Organizer Organizer

	// DateTime combines Date and Time in the configured time zone
	DateTime time.Time
}

// Organizer is the user who announced the event
type Organizer struct {
	Login string
	URL   string
}

// Field names recognized in an issue body
const (
	FieldDate  = "date"
	FieldTime  = "time"
	FieldVenue = "venue"
	FieldCity  = "city"
	FieldLink  = "link"
)

type fieldSpec struct {
	name     string
	required bool
}

// schema lists the recognized sections in the order they are reported when missing
var schema = []fieldSpec{
	{name: FieldDate, required: true},
	{name: FieldTime, required: true},
	{name: FieldVenue, required: true},
	{name: FieldCity, required: true},
	{name: FieldLink, required: true},
}

func isKnownField(name string) bool {
	for _, f := range schema {
		if f.name == name {
			return true
		}
	}
	return false
}
