package pipeline

import (
	"fmt"
)

// Mode selects which outputs a run publishes
type Mode string

const (
	ModeReadme Mode = "readme"
	ModePages  Mode = "pages"
	ModeAll    Mode = "all"
)

// ParseMode parses a mode name
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeReadme, ModePages, ModeAll:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q, expected one of %s, %s, %s", s, ModeReadme, ModePages, ModeAll)
	}
}

func (m Mode) IncludesReadme() bool {
	return m == ModeReadme || m == ModeAll
}

func (m Mode) IncludesPages() bool {
	return m == ModePages || m == ModeAll
}
