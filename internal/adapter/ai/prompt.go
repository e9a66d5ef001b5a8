package ai

import (
	"fmt"
	"strings"
)

// withContext prepends the context chunks to the user prompt.
func withContext(userPrompt string, contextChunks []string) string {
	if len(contextChunks) == 0 {
		return userPrompt
	}

	var b strings.Builder
	b.WriteString("Reference information:\n")
	for i, chunk := range contextChunks {
		fmt.Fprintf(&b, "\n--- Context %d ---\n%s\n", i+1, chunk)
	}
	b.WriteString("\nRequest: ")
	b.WriteString(userPrompt)
	return b.String()
}
