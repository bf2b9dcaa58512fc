package divergence

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/branchscope/internal/execshell"
	"github.com/temirov/branchscope/internal/githubcli"
	"github.com/temirov/branchscope/internal/gitrepo"
	"github.com/temirov/branchscope/internal/shared"
	pathutils "github.com/temirov/branchscope/internal/utils/path"
)

const (
	commandUseConstant                    = "branches"
	commandShortDescriptionConstant       = "List local branches with divergence from the mainline"
	commandLongDescriptionConstant        = "branches compares every local branch against the repository mainline and reports ahead/behind counts, fork points, and freshness status as JSON."
	commandExecutionErrorTemplateConstant = "branch listing failed: %w"
	flagRepositoryNameConstant            = "repo"
	flagRepositoryDescriptionConstant     = "Path to the repository to analyze"
	flagBaseNameConstant                  = "base"
	flagBaseDescriptionConstant           = "Mainline branch to compare against (detected when omitted)"
	flagDetailsNameConstant               = "details"
	flagDetailsDescriptionConstant        = "Wrap the listing in an envelope carrying repository identity"
	defaultRepositoryPathConstant         = "."
	jsonIndentConstant                    = "  "
	jsonPrefixConstant                    = ""
	outputTrailingNewlineConstant         = "\n"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// BranchReport couples the repository identity with its branch listing.
type BranchReport struct {
	Repository RepositoryDetails `json:"repository"`
	Branches   []BranchInsight   `json:"branches"`
}

// CommandBuilder assembles the Cobra command for branch divergence listing.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  shared.GitExecutor
	Clock                        shared.Clock
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the branches command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(flagRepositoryNameConstant, "", flagRepositoryDescriptionConstant)
	command.Flags().String(flagBaseNameConstant, "", flagBaseDescriptionConstant)
	command.Flags().Bool(flagDetailsNameConstant, false, flagDetailsDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	gitExecutor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(gitExecutor)
	if managerError != nil {
		return managerError
	}

	availabilityProbe, probeError := githubcli.NewClient(gitExecutor)
	if probeError != nil {
		return probeError
	}

	service, serviceError := NewService(logger, repositoryManager, builder.Clock, availabilityProbe)
	if serviceError != nil {
		return serviceError
	}

	branchInsights, listError := service.ListBranches(command.Context(), options)
	if listError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, listError)
	}

	var reportValue any = branchInsights
	if detailsRequested, detailsError := command.Flags().GetBool(flagDetailsNameConstant); detailsError == nil && detailsRequested {
		repositoryDetails, describeError := service.DescribeRepository(command.Context(), options.RepositoryPath)
		if describeError != nil {
			return fmt.Errorf(commandExecutionErrorTemplateConstant, describeError)
		}
		reportValue = BranchReport{Repository: repositoryDetails, Branches: branchInsights}
	}

	encodedReport, encodeError := json.MarshalIndent(reportValue, jsonPrefixConstant, jsonIndentConstant)
	if encodeError != nil {
		return encodeError
	}

	fmt.Fprint(command.OutOrStdout(), string(encodedReport)+outputTrailingNewlineConstant)
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (Options, error) {
	configuration := builder.resolveConfiguration()

	repositoryPath := configuration.RepositoryPath
	if flagValue, flagError := command.Flags().GetString(flagRepositoryNameConstant); flagError == nil {
		trimmedFlagValue := strings.TrimSpace(flagValue)
		if len(trimmedFlagValue) > 0 {
			repositoryPath = trimmedFlagValue
		}
	}
	repositoryPath = pathutils.NewRepositoryPathSanitizer().Sanitize(repositoryPath)
	if len(repositoryPath) == 0 {
		repositoryPath = defaultRepositoryPathConstant
	}

	baseBranch := configuration.BaseBranch
	if flagValue, flagError := command.Flags().GetString(flagBaseNameConstant); flagError == nil {
		trimmedFlagValue := strings.TrimSpace(flagValue)
		if len(trimmedFlagValue) > 0 {
			baseBranch = trimmedFlagValue
		}
	}

	return Options{RepositoryPath: repositoryPath, BaseBranch: baseBranch}, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (shared.GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, humanReadableLogging)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}
