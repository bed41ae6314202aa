// Package readme maintains auto-updated sections of a markdown document.
//
// A managed section is delimited by a pair of HTML comments:
//
//	<!--START_SECTION:events-->
//	...generated content...
//	<!--END_SECTION:events-->
package readme

import (
	"fmt"
	"strings"
)

var ErrMarkerNotFound = fmt.Errorf("section marker not found")

// StartMarker returns the comment that opens the section named key
func StartMarker(key string) string {
	return fmt.Sprintf("<!--START_SECTION:%s-->", key)
}

// EndMarker returns the comment that closes the section named key
func EndMarker(key string) string {
	return fmt.Sprintf("<!--END_SECTION:%s-->", key)
}

// ReplaceSection replaces everything between the start and end markers for key with content. The markers themselves
// are kept. If either marker is missing, doc is returned unchanged along with an error wrapping ErrMarkerNotFound
func ReplaceSection(doc string, key string, content string) (string, error) {
	start, end := StartMarker(key), EndMarker(key)

	startIdx := strings.Index(doc, start)
	if startIdx < 0 {
		return doc, fmt.Errorf("%w: %s", ErrMarkerNotFound, start)
	}
	bodyStart := startIdx + len(start)

	endOffset := strings.Index(doc[bodyStart:], end)
	if endOffset < 0 {
		return doc, fmt.Errorf("%w: %s after %s", ErrMarkerNotFound, end, start)
	}
	bodyEnd := bodyStart + endOffset

	return doc[:bodyStart] + "\n" + content + "\n" + doc[bodyEnd:], nil
}
