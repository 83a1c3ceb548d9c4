// Package textutil holds small string helpers shared by the scrapers.
package textutil

import "strings"

// Between returns the text between the first occurrence of start and the
// first occurrence of end that follows it. It returns an empty string when
// either marker is missing.
func Between(source, start, end string) string {
	s := strings.Index(source, start)
	if s == -1 {
		return ""
	}
	s += len(start)

	e := strings.Index(source[s:], end)
	if e == -1 {
		return ""
	}
	return source[s : s+e]
}
