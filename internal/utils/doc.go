// Package utils houses the cross-command plumbing of the branchscope CLI:
// the Viper-backed ConfigurationLoader, the zap LoggerFactory, and the
// context accessor that threads the configuration file path through command
// execution.
package utils
