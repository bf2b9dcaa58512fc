package mergenodes

import "strings"

const (
	configurationRepositoryKeyConstant = "repository"
	configurationBranchKeyConstant     = "branch"
	configurationPerPageKeyConstant    = "per_page"
	configurationKeySeparatorConstant  = "."
)

// CommandConfiguration captures configuration values for the merge listing command.
type CommandConfiguration struct {
	RepositoryPath string `mapstructure:"repository"`
	BranchName     string `mapstructure:"branch"`
	PerPage        int    `mapstructure:"per_page"`
}

// DefaultCommandConfiguration provides baseline configuration values for merge listing.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RepositoryPath: "",
		BranchName:     "",
		PerPage:        defaultPerPageCountConstant,
	}
}

// DefaultConfigurationValues exposes loader defaults for the merge listing command keyed beneath rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationRepositoryKeyConstant: defaults.RepositoryPath,
		rootKey + configurationKeySeparatorConstant + configurationBranchKeyConstant:     defaults.BranchName,
		rootKey + configurationKeySeparatorConstant + configurationPerPageKeyConstant:    defaults.PerPage,
	}
}

// Sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.RepositoryPath = strings.TrimSpace(configuration.RepositoryPath)
	sanitized.BranchName = strings.TrimSpace(configuration.BranchName)
	return sanitized
}
