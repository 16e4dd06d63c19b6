package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// PositiveIntOr parses s and returns fallback when it is not a positive integer.
func PositiveIntOr(s string, fallback int) int {
	if n := StringToInt(s); n > 0 {
		return n
	}
	return fallback
}
