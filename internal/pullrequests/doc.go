// Package pullrequests correlates merged pull requests with their commits
// using the GitHub CLI: merged-PR listing filtered from the closed set, and a
// concurrent batch lookup of per-PR commit short hashes.
package pullrequests
