// Package outline reads indented outlines: one node per line, nested by
// two spaces or one tab per level.
package outline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrIndent reports indentation that skips a level or is not a whole
// number of levels.
var ErrIndent = errors.New("bad indentation")

// Item is one outline entry.
type Item struct {
	Text   string
	Depth  int
	Parent int // index of the parent item, -1 for roots
	Line   int
}

// Parse reads an outline. Blank lines are ignored.
func Parse(r io.Reader) ([]Item, error) {
	var (
		items []Item
		stack []int // item index per open depth
	)

	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		raw := strings.TrimRight(sc.Text(), " \t\r")
		if raw == "" {
			continue
		}

		depth, text, err := indent(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if depth > len(stack) {
			return nil, fmt.Errorf("line %d: %w: depth %d, at most %d allowed", line, ErrIndent, depth, len(stack))
		}

		stack = stack[:depth]
		parent := -1
		if depth > 0 {
			parent = stack[depth-1]
		}
		items = append(items, Item{Text: text, Depth: depth, Parent: parent, Line: line})
		stack = append(stack, len(items)-1)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read outline: %w", err)
	}
	return items, nil
}

func indent(s string) (int, string, error) {
	depth, spaces := 0, 0
	i := 0
	for ; i < len(s); i++ {
		switch s[i] {
		case '\t':
			if spaces%2 != 0 {
				return 0, "", fmt.Errorf("%w: odd spaces before tab", ErrIndent)
			}
			depth++
		case ' ':
			spaces++
			if spaces%2 == 0 {
				depth++
			}
			continue
		default:
			if spaces%2 != 0 {
				return 0, "", fmt.Errorf("%w: odd number of spaces", ErrIndent)
			}
			return depth, s[i:], nil
		}
		spaces = 0
	}
	return depth, "", nil
}
