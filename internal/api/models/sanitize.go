package models

import "strings"

// SanitizeUsername trims, lowercases and removes every whitespace rune.
func SanitizeUsername(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}

func SanitizePassword(s string) string {
	return strings.TrimSpace(s)
}

// SanitizeTitle trims and collapses each whitespace run to a single space.
func SanitizeTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SanitizeDescription collapses every whitespace run, newlines included, to a
// single space. A description that is empty after cleaning becomes nil.
func SanitizeDescription(s *string) *string {
	if s == nil {
		return nil
	}
	cleaned := strings.Join(strings.Fields(*s), " ")
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
