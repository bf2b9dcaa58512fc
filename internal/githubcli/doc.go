// Package githubcli wraps the GitHub CLI for pull-request correlation.
//
// It layers typed request and response structures over gh api calls, exposes
// interfaces consumed by other packages, and integrates with execshell so
// interactions with GitHub can be mocked during testing.
package githubcli
