package extract

import (
	"fmt"
	"strings"

	"github.com/lu4p/cat"
)

// extractCat reads ODT and RTF documents.
func extractCat(content []byte) (string, error) {
	text, err := cat.FromBytes(content)
	if err != nil {
		return "", fmt.Errorf("convert document: %w", err)
	}
	return strings.TrimSpace(text), nil
}
