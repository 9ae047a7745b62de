package utils

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// TrimmedLen counts the characters of s once surrounding whitespace is removed.
func TrimmedLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// ParseID parses a positive integer path parameter.
func ParseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
