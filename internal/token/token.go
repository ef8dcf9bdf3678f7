// Package token provides the canonical token counting used across the
// pipeline. Chunk budgets computed at ingestion time must match whatever
// a downstream consumer computes at query time, so the counter is a fixed
// whitespace-field count with no model-specific behaviour.
package token

import "strings"

// Count returns the number of whitespace-separated fields in s.
func Count(s string) int {
	return len(strings.Fields(s))
}

// Sum returns the total token count over texts.
func Sum(texts []string) int {
	total := 0
	for _, t := range texts {
		total += Count(t)
	}
	return total
}
