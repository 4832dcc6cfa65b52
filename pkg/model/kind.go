package model

import "strings"

// BulletPrefix marks a label as a bullet point.
const BulletPrefix = "- "

// Placeholder content of a definition node whose fetch has not resolved.
const (
	DefinitionTitle       = "Definition"
	DefinitionPending     = "Fetching definition..."
	DefinitionUnavailable = "Could not fetch definition."
)

// Kind is the closed set of node variants. It is decided once when the
// node is created and carries the variant's payload.
type Kind interface {
	// Name returns the wire name of the variant.
	Name() string
	isKind()
}

// Plain is an ordinary node.
type Plain struct{}

// Bullet is a node whose label starts with "- ".
type Bullet struct{}

// ListItem is one entry of a numbered list batch.
type ListItem struct {
	Label string // e.g. "1."
}

// Definition holds fetched explanatory content for its parent's label.
type Definition struct {
	Content string
}

func (Plain) Name() string      { return "plain" }
func (Bullet) Name() string     { return "bullet" }
func (ListItem) Name() string   { return "list-item" }
func (Definition) Name() string { return "definition" }

func (Plain) isKind()      {}
func (Bullet) isKind()     {}
func (ListItem) isKind()   {}
func (Definition) isKind() {}

// Classify derives the kind of free text: bullet when it carries the
// bullet prefix, plain otherwise.
func Classify(text string) Kind {
	if strings.HasPrefix(text, BulletPrefix) {
		return Bullet{}
	}
	return Plain{}
}

// IsTextDerived reports whether k is one of the kinds derived from the
// label alone, and so may be re-derived when the label is edited.
func IsTextDerived(k Kind) bool {
	switch k.(type) {
	case Plain, Bullet:
		return true
	}
	return false
}
