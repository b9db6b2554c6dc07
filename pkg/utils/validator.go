package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)

// SanitizeString removes control characters from free-form input
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}

// ValidateUserID validates a user identifier
func ValidateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id must not be empty")
	}
	return nil
}

// ValidateTaskName validates a task display name
func ValidateTaskName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("task name must not be empty")
	}
	if len(trimmed) > 200 {
		return fmt.Errorf("task name exceeds 200 characters")
	}
	return nil
}
