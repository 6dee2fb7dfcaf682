package validators

import "strings"

// SanitizeString trims input, collapses inner whitespace and caps it at maxLen
// runes. A maxLen of zero or less disables the cap.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Join(strings.Fields(input), " ")
	if maxLen > 0 {
		if runes := []rune(cleaned); len(runes) > maxLen {
			return string(runes[:maxLen])
		}
	}
	return cleaned
}
