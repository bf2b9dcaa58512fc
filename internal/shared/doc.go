// Package shared declares the small set of collaborator interfaces used by the
// analysis services: shell execution of git and the GitHub CLI, and a clock
// abstraction for deterministic status classification in tests.
package shared
