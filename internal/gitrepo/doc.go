// Package gitrepo contains helpers for interrogating local Git repositories.
//
// It exposes RepositoryManager for reading branch topology, divergence counts,
// merge history, and remotes, along with remote URL parsing shared by the
// analysis services.
package gitrepo
