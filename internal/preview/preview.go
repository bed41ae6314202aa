// Package preview prints line diffs of pending file changes for dry runs.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/cchalm/upcoming-events/internal/filesystem"
	"github.com/cchalm/upcoming-events/internal/git"
)

// contextLines is how many unchanged lines are kept around each change
const contextLines = 2

var (
	addedColor   = color.New(color.FgGreen).SprintFunc()
	removedColor = color.New(color.FgRed).SprintFunc()
	headerColor  = color.New(color.Bold).SprintFunc()
)

// Changelist writes a diff for every file in changelist against its content in base. New files diff against empty
// content. It returns the number of files that differ
func Changelist(ctx context.Context, w io.Writer, base filesystem.ReadOnlyFileSystem, changelist git.Changelist) (int, error) {
	changed := 0
	err := changelist.ForEachModified(func(path string, content string) error {
		before, err := base.Read(ctx, path)
		if errors.Is(err, filesystem.ErrFileNotFound) {
			before = ""
		} else if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		if before == content {
			return nil
		}
		changed++
		_, err = io.WriteString(w, File(path, before, content))
		return err
	})
	return changed, err
}

// File renders a line diff between before and after, headed by path. Identical inputs render as an empty string
func File(path string, before string, after string) string {
	if before == after {
		return ""
	}

	lines := diffLines(before, after)

	var sb strings.Builder
	sb.WriteString(headerColor(fmt.Sprintf("--- a/%s\n+++ b/%s", path, path)) + "\n")
	for i, l := range lines {
		switch l.op {
		case diffmatchpatch.DiffInsert:
			sb.WriteString(addedColor("+"+l.text) + "\n")
		case diffmatchpatch.DiffDelete:
			sb.WriteString(removedColor("-"+l.text) + "\n")
		default:
			if nearChange(lines, i) {
				sb.WriteString(" " + l.text + "\n")
			} else if i > 0 && nearChange(lines, i-1) {
				sb.WriteString("...\n")
			}
		}
	}
	return sb.String()
}

type line struct {
	op   diffmatchpatch.Operation
	text string
}

func diffLines(before, after string) []line {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), lineArray)

	var lines []line
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		for _, l := range strings.Split(text, "\n") {
			lines = append(lines, line{op: d.Type, text: l})
		}
	}
	return lines
}

// nearChange reports whether the line at i is within contextLines of an inserted or deleted line
func nearChange(lines []line, i int) bool {
	for j := max(0, i-contextLines); j <= min(len(lines)-1, i+contextLines); j++ {
		if lines[j].op != diffmatchpatch.DiffEqual {
			return true
		}
	}
	return false
}
