package enums

import (
	"fmt"
	"strings"
)

// SortOrder is the direction applied to listing queries.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

func (s SortOrder) String() string {
	return string(s)
}

func (s SortOrder) IsValid() bool {
	return s == SortOrderAsc || s == SortOrderDesc
}

// ParseSortOrder accepts any casing; empty input yields ascending.
func ParseSortOrder(value string) (SortOrder, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return SortOrderAsc, nil
	}
	s := SortOrder(value)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid sort order %q", value)
	}
	return s, nil
}
