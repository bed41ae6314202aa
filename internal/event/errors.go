package event

import (
	"fmt"
	"strings"
)

// ParseError reports why an issue body could not be turned into a Record
type ParseError struct {
	IssueNumber int

	// Missing lists required sections that were absent or empty
	Missing []string
	// Invalid maps a section name to what is wrong with it
	Invalid map[string]string

	// Err is set for structural problems that are not tied to a single field
	Err error
}

func (e *ParseError) Error() string {
	var problems []string
	if e.Err != nil {
		problems = append(problems, e.Err.Error())
	}
	if len(e.Missing) > 0 {
		problems = append(problems, fmt.Sprintf("missing sections: %s", strings.Join(e.Missing, ", ")))
	}
	for _, f := range schema {
		if reason, ok := e.Invalid[f.name]; ok {
			problems = append(problems, fmt.Sprintf("invalid %s: %s", f.name, reason))
		}
	}
	if reason, ok := e.Invalid[dateTimeKey]; ok {
		problems = append(problems, fmt.Sprintf("invalid date/time: %s", reason))
	}
	return fmt.Sprintf("failed to parse issue #%d: %s", e.IssueNumber, strings.Join(problems, "; "))
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) addInvalid(field, reason string) {
	if e.Invalid == nil {
		e.Invalid = map[string]string{}
	}
	e.Invalid[field] = reason
}

func (e *ParseError) empty() bool {
	return e.Err == nil && len(e.Missing) == 0 && len(e.Invalid) == 0
}
