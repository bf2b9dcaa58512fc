package pullrequests

import "strings"

const (
	configurationRepositoryKeyConstant  = "repository"
	configurationOwnerKeyConstant       = "owner"
	configurationNameKeyConstant        = "name"
	configurationBaseKeyConstant        = "base"
	configurationLimitKeyConstant       = "limit"
	configurationIncludeSHAsKeyConstant = "shas"
	configurationKeySeparatorConstant   = "."
)

// CommandConfiguration captures configuration values for the merged PR listing command.
type CommandConfiguration struct {
	RepositoryPath string `mapstructure:"repository"`
	Owner          string `mapstructure:"owner"`
	RepositoryName string `mapstructure:"name"`
	BaseBranch     string `mapstructure:"base"`
	Limit          int    `mapstructure:"limit"`
	IncludeSHAs    bool   `mapstructure:"shas"`
}

// DefaultCommandConfiguration provides baseline configuration values for merged PR listing.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RepositoryPath: "",
		Owner:          "",
		RepositoryName: "",
		BaseBranch:     "",
		Limit:          defaultMergedLimitConstant,
		IncludeSHAs:    false,
	}
}

// DefaultConfigurationValues exposes loader defaults for the merged PR listing command keyed beneath rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationRepositoryKeyConstant:  defaults.RepositoryPath,
		rootKey + configurationKeySeparatorConstant + configurationOwnerKeyConstant:       defaults.Owner,
		rootKey + configurationKeySeparatorConstant + configurationNameKeyConstant:        defaults.RepositoryName,
		rootKey + configurationKeySeparatorConstant + configurationBaseKeyConstant:        defaults.BaseBranch,
		rootKey + configurationKeySeparatorConstant + configurationLimitKeyConstant:       defaults.Limit,
		rootKey + configurationKeySeparatorConstant + configurationIncludeSHAsKeyConstant: defaults.IncludeSHAs,
	}
}

// Sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.RepositoryPath = strings.TrimSpace(configuration.RepositoryPath)
	sanitized.Owner = strings.TrimSpace(configuration.Owner)
	sanitized.RepositoryName = strings.TrimSpace(configuration.RepositoryName)
	sanitized.BaseBranch = strings.TrimSpace(configuration.BaseBranch)
	return sanitized
}
