package enums

import (
	"fmt"
	"strings"
)

// Theme is the persisted display preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// String implements fmt.Stringer.
func (t Theme) String() string {
	return string(t)
}

// IsValid reports whether the value is a known Theme.
func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Opposite returns the other theme; unknown values flip to dark.
func (t Theme) Opposite() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ParseTheme converts raw input into a Theme.
func ParseTheme(value string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(value)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid theme %q", value)
	}
	return t, nil
}
