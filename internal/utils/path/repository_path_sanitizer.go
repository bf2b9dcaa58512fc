package pathutils

import (
	"path/filepath"
	"strings"
)

// RepositoryPathSanitizer normalizes a repository path input consistently across commands.
type RepositoryPathSanitizer struct {
	homeExpander *HomeExpander
}

// NewRepositoryPathSanitizer constructs a RepositoryPathSanitizer with default behavior.
func NewRepositoryPathSanitizer() *RepositoryPathSanitizer {
	return NewRepositoryPathSanitizerWithExpander(nil)
}

// NewRepositoryPathSanitizerWithExpander constructs a RepositoryPathSanitizer using the provided expander.
func NewRepositoryPathSanitizerWithExpander(homeExpander *HomeExpander) *RepositoryPathSanitizer {
	resolvedExpander := homeExpander
	if resolvedExpander == nil {
		resolvedExpander = NewHomeExpander()
	}
	return &RepositoryPathSanitizer{homeExpander: resolvedExpander}
}

// Sanitize trims whitespace, expands the user's home directory, and cleans the path.
// A blank candidate yields an empty string so callers can apply their own default.
func (sanitizer *RepositoryPathSanitizer) Sanitize(candidatePath string) string {
	trimmedCandidate := strings.TrimSpace(candidatePath)
	if len(trimmedCandidate) == 0 {
		return ""
	}

	var expander *HomeExpander
	if sanitizer != nil {
		expander = sanitizer.homeExpander
	}
	if expander == nil {
		expander = NewHomeExpander()
	}

	expandedPath := expander.Expand(trimmedCandidate)
	return filepath.Clean(expandedPath)
}
