// Package mergenodes pages through a branch's merge commits and extracts
// pull-request references from their subject lines.
package mergenodes
