// Package cli wires the branchscope root command, configuration loading, and logging.
package cli
