package graph

import (
	"regexp"
	"strings"
)

// ListEntry is one item of a numbered list.
type ListEntry struct {
	Label string `json:"label"` // e.g. "1."
	Text  string `json:"text"`
}

var listItemPattern = regexp.MustCompile(`^\s*(\d+\.)\s+(.+)`)

// ParseNumberedList recognizes text made of "N. content" lines. Blank
// lines are skipped; any other line disqualifies the whole input. At
// least two items are needed. ok is false when text is not a list.
func ParseNumberedList(text string) (items []ListEntry, ok bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		m := listItemPattern.FindStringSubmatch(line)
		if m == nil {
			return nil, false
		}
		content := strings.TrimSpace(m[2])
		if content == "" {
			return nil, false
		}
		items = append(items, ListEntry{Label: m[1], Text: content})
	}

	if len(items) < 2 {
		return nil, false
	}
	return items, true
}
