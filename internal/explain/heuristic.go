package explain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/screener/internal/ranking"
)

const maxKeywords = 6

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Heuristic explains a match from shared keywords and stated years of experience.
// Keywords appear in the order they first occur in queryText.
func Heuristic(queryText, candidateText string) string {
	resumeWords := make(map[string]bool)
	for _, w := range words(candidateText) {
		resumeWords[w] = true
	}

	var matched []string
	seen := make(map[string]bool)
	for _, w := range words(queryText) {
		if len(matched) == maxKeywords {
			break
		}
		if resumeWords[w] && !seen[w] {
			seen[w] = true
			matched = append(matched, w)
		}
	}

	years := "years not specified"
	if digits, ok := ranking.MatchYears(strings.ToLower(candidateText)); ok {
		years = digits + " years"
	}
	keywords := strings.Join(matched, ", ")
	if keywords == "" {
		keywords = "no exact keyword matches"
	}
	return fmt.Sprintf("%s experience; matched keywords: %s.", years, keywords)
}

// words returns the lowercase word tokens of text longer than two characters.
func words(text string) []string {
	var out []string
	for _, w := range wordPattern.FindAllString(text, -1) {
		if utf8.RuneCountInString(w) > 2 {
			out = append(out, strings.ToLower(w))
		}
	}
	return out
}
