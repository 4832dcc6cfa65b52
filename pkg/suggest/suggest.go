// Package suggest talks to the text-generation collaborator that
// brainstorms child ideas and writes short definitions.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable is returned when the collaborator cannot be reached
	// or refuses the request.
	ErrUnavailable = errors.New("suggestion service unavailable")
	// ErrMalformed is returned when a structured reply does not have the
	// expected shape.
	ErrMalformed = errors.New("malformed suggestion reply")
)

// Client sends a prompt to the collaborator. When structured is set the
// reply is a JSON document, otherwise plain text.
type Client interface {
	Complete(ctx context.Context, prompt string, structured bool) (string, error)
}

// IdeasPrompt asks for 3-5 child concepts of text as {"ideas": [...]}.
func IdeasPrompt(text string) string {
	return fmt.Sprintf(`Brainstorm some related concepts or child ideas for the following mind map node: "%s". `+
		`Return exactly 3-5 brief ideas as a JSON array of strings under the key "ideas". `+
		`Example: {"ideas": ["idea1", "idea2"]}`, text)
}

// DefinitionPrompt asks for a short plain-text explanation of text.
func DefinitionPrompt(text string) string {
	return fmt.Sprintf(`Provide a concise 2-3 line explanation (max 150 characters) for the term: "%s". `+
		`Do not use markdown or special formatting. Just the plain text explanation.`, text)
}

type ideasReply struct {
	Ideas []string `json:"ideas"`
}

// ParseIdeas decodes a {"ideas": [...]} reply. Blank ideas are dropped;
// a reply with no ideas left is malformed.
func ParseIdeas(reply string) ([]string, error) {
	var r ideasReply
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	ideas := make([]string, 0, len(r.Ideas))
	for _, idea := range r.Ideas {
		if idea = strings.TrimSpace(idea); idea != "" {
			ideas = append(ideas, idea)
		}
	}
	if len(ideas) == 0 {
		return nil, fmt.Errorf("%w: no ideas", ErrMalformed)
	}
	return ideas, nil
}

// Ideas asks c for child ideas of text.
func Ideas(ctx context.Context, c Client, text string) ([]string, error) {
	reply, err := c.Complete(ctx, IdeasPrompt(text), true)
	if err != nil {
		return nil, err
	}
	return ParseIdeas(reply)
}

// Define asks c for a definition of text.
func Define(ctx context.Context, c Client, text string) (string, error) {
	reply, err := c.Complete(ctx, DefinitionPrompt(text), false)
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("%w: empty definition", ErrMalformed)
	}
	return reply, nil
}
