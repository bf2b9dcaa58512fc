package divergence

import "strings"

const (
	configurationRepositoryKeyConstant = "repository"
	configurationBaseKeyConstant       = "base"
	configurationKeySeparatorConstant  = "."
)

// CommandConfiguration captures configuration values for the branch listing command.
type CommandConfiguration struct {
	RepositoryPath string `mapstructure:"repository"`
	BaseBranch     string `mapstructure:"base"`
}

// DefaultCommandConfiguration provides baseline configuration values for branch listing.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RepositoryPath: "",
		BaseBranch:     "",
	}
}

// DefaultConfigurationValues exposes loader defaults for the branch listing command keyed beneath rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationRepositoryKeyConstant: defaults.RepositoryPath,
		rootKey + configurationKeySeparatorConstant + configurationBaseKeyConstant:       defaults.BaseBranch,
	}
}

// Sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.RepositoryPath = strings.TrimSpace(configuration.RepositoryPath)
	sanitized.BaseBranch = strings.TrimSpace(configuration.BaseBranch)
	return sanitized
}
