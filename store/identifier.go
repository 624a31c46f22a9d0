package store

import (
	"fmt"
	"regexp"
)

var identifierRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// IsIdentifier reports whether name is safe to interpolate into SQL as a table name.
func IsIdentifier(name string) bool {
	return identifierRegex.MatchString(name)
}

// ValidateIdentifier ensures an identifier contains only safe characters for SQL.
// Returns an error wrapping ErrInvalidIdentifier otherwise.
func ValidateIdentifier(name, fieldName string) error {
	if name == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalidIdentifier, fieldName)
	}
	if !IsIdentifier(name) {
		return fmt.Errorf("%w: %s must start with a letter and contain only letters, numbers, and underscores (got: %s)", ErrInvalidIdentifier, fieldName, name)
	}
	return nil
}
