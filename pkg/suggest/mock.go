package suggest

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MockIdeas is the canned reply of the mock collaborator.
var MockIdeas = []string{"LLM Idea 1", "LLM Concept 2", "LLM Thought 3", "Fourth Idea from LLM"}

// Mock answers locally after an optional delay. It is used when no
// endpoint is configured.
type Mock struct {
	Delay time.Duration
}

func (m Mock) Complete(ctx context.Context, prompt string, structured bool) (string, error) {
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.Delay):
		}
	}

	if structured {
		return `{"ideas": ["` + strings.Join(MockIdeas, `", "`) + `"]}`, nil
	}
	return fmt.Sprintf("This is a mock definition for %q. It is typically 2-3 lines long and gives a concise explanation.",
		quotedTerm(prompt)), nil
}

// quotedTerm extracts the first double-quoted span of a prompt.
func quotedTerm(prompt string) string {
	start := strings.IndexByte(prompt, '"')
	if start < 0 {
		return prompt
	}
	end := strings.IndexByte(prompt[start+1:], '"')
	if end < 0 {
		return prompt[start+1:]
	}
	return prompt[start+1 : start+1+end]
}
