package mergenodes

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/branchscope/internal/execshell"
	"github.com/temirov/branchscope/internal/gitrepo"
	"github.com/temirov/branchscope/internal/shared"
	pathutils "github.com/temirov/branchscope/internal/utils/path"
)

const (
	commandUseConstant                    = "merges"
	commandShortDescriptionConstant       = "List merge commits with their pull-request references"
	commandLongDescriptionConstant        = "merges pages through a branch's merge commits, extracting pull-request numbers and titles from the commit subjects, and reports the page as JSON."
	commandExecutionErrorTemplateConstant = "merge listing failed: %w"
	flagRepositoryNameConstant            = "repo"
	flagRepositoryDescriptionConstant     = "Path to the repository to analyze"
	flagBranchNameConstant                = "branch"
	flagBranchDescriptionConstant         = "Branch whose merge history is listed (mainline when omitted)"
	flagPageNameConstant                  = "page"
	flagPageDescriptionConstant           = "Zero-based page number"
	flagPerPageNameConstant               = "per-page"
	flagPerPageDescriptionConstant        = "Number of merge commits per page"
	defaultRepositoryPathConstant         = "."
	jsonIndentConstant                    = "  "
	jsonPrefixConstant                    = ""
	outputTrailingNewlineConstant         = "\n"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// MergeNodePage is the JSON envelope emitted by the merges command.
type MergeNodePage struct {
	Nodes   []MergeNode `json:"nodes"`
	Page    int         `json:"page"`
	HasMore bool        `json:"hasMore"`
}

// CommandBuilder assembles the Cobra command for merge commit listing.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  shared.GitExecutor
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the merges command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(flagRepositoryNameConstant, "", flagRepositoryDescriptionConstant)
	command.Flags().String(flagBranchNameConstant, "", flagBranchDescriptionConstant)
	command.Flags().Int(flagPageNameConstant, 0, flagPageDescriptionConstant)
	command.Flags().Int(flagPerPageNameConstant, 0, flagPerPageDescriptionConstant)

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

	service, serviceError := NewService(logger, repositoryManager)
	if serviceError != nil {
		return serviceError
	}

	mergeNodes, hasMore, listError := service.ListMergeNodes(command.Context(), options)
	if listError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, listError)
	}

	pageEnvelope := MergeNodePage{Nodes: mergeNodes, Page: options.Page, HasMore: hasMore}
	encodedPage, encodeError := json.MarshalIndent(pageEnvelope, jsonPrefixConstant, jsonIndentConstant)
	if encodeError != nil {
		return encodeError
	}

	fmt.Fprint(command.OutOrStdout(), string(encodedPage)+outputTrailingNewlineConstant)
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

	branchName := configuration.BranchName
	if flagValue, flagError := command.Flags().GetString(flagBranchNameConstant); flagError == nil {
		trimmedFlagValue := strings.TrimSpace(flagValue)
		if len(trimmedFlagValue) > 0 {
			branchName = trimmedFlagValue
		}
	}

	pageNumber, _ := command.Flags().GetInt(flagPageNameConstant)

	perPageCount := configuration.PerPage
	if flagValue, flagError := command.Flags().GetInt(flagPerPageNameConstant); flagError == nil && flagValue > 0 {
		perPageCount = flagValue
	}

	return Options{
		RepositoryPath: repositoryPath,
		BranchName:     branchName,
		Page:           pageNumber,
		PerPage:        perPageCount,
	}, nil
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
