package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIDLength bounds node and workflow identifiers.
const maxIDLength = 256

// ValidateNodeID validates a node identifier from a workflow definition.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No leading or trailing whitespace
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNode, "node id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidNode, "node id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNode, "node id %q contains control characters", id)
		}
	}
	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidNode, "node id %q has surrounding whitespace", id)
	}
	return nil
}

// workflowIDRegex matches workflow identifiers such as "msat", "rd" or "r-and-d".
var workflowIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidateWorkflowID validates the syntax of a workflow identifier.
// It does not check that the workflow is known: unknown workflows are valid
// and resolve to the common node subset.
func ValidateWorkflowID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidWorkflow, "workflow id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidWorkflow, "workflow id too long (max %d characters)", maxIDLength)
	}
	if !workflowIDRegex.MatchString(id) {
		return New(ErrCodeInvalidWorkflow, "invalid workflow id: %q", id)
	}
	return nil
}

// ValidatePath validates a definition file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateDefinitionName validates a definition name used as a lookup key in
// definition stores (file names in a directory, document ids in MongoDB).
func ValidateDefinitionName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "definition name cannot be empty")
	}
	if len(name) > maxIDLength {
		return New(ErrCodeInvalidInput, "definition name too long (max %d characters)", maxIDLength)
	}
	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "definition name contains invalid characters: %q", pattern)
		}
	}
	return nil
}
