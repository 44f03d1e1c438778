package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds component names, type keys and variable names.
const maxNameLength = 256

// ValidateComponentName validates a human-readable component name.
//
// Component names are free-form labels, but they end up as map keys, log
// fields and DOT node identifiers, so the rules reject what would break those:
//   - No empty names
//   - No leading or trailing whitespace
//   - No control characters
//   - Maximum length of 256 characters
func ValidateComponentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "component name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "component name too long (max %d characters)", maxNameLength)
	}

	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidName, "component name %q has surrounding whitespace", name)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "component name contains invalid control characters")
		}
	}

	return nil
}

// typeKeyRegex matches dotted identifiers such as "qmetal.library.Rectangle".
var typeKeyRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ValidateTypeKey validates a fully qualified component type key.
func ValidateTypeKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidType, "type key cannot be empty")
	}

	if len(key) > maxNameLength {
		return New(ErrCodeInvalidType, "type key too long (max %d characters)", maxNameLength)
	}

	if !typeKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidType, "invalid type key: %q", key)
	}

	return nil
}

// identifierRegex matches names usable as design variables.
var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateVariableName validates a design variable name.
// Variables are referenced from option strings, so they must be identifiers.
func ValidateVariableName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "variable name cannot be empty")
	}

	if !identifierRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid variable name: %q", name)
	}

	return nil
}
