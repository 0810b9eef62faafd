// Package utils provides shared utilities for text, math, and logging.
package utils

import "strings"

const (
	snippetMaxLen     = 800
	snippetEllipsisAt = 700
)

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Snippet returns a one-line preview of a resume: the first 800 runes with
// newlines flattened to spaces, followed by "..." when the preview is longer than 700 runes.
func Snippet(text string) string {
	r := []rune(text)
	if len(r) > snippetMaxLen {
		r = r[:snippetMaxLen]
	}
	s := strings.ReplaceAll(string(r), "\n", " ")
	if len([]rune(s)) > snippetEllipsisAt {
		s += "..."
	}
	return s
}
