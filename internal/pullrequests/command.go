package pullrequests

import (
	"context"
	"encoding/json"
	"errors"
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
	commandUseConstant                     = "prs"
	commandShortDescriptionConstant        = "List pull requests merged into the mainline"
	commandLongDescriptionConstant         = "prs lists recently merged pull requests for a GitHub repository, optionally resolving the repository from the local origin remote and attaching per-PR commit short hashes."
	commandExecutionErrorTemplateConstant  = "merged pull request listing failed: %w"
	flagRepositoryNameConstant             = "repo"
	flagRepositoryDescriptionConstant      = "Path to the repository whose origin remote identifies the GitHub project"
	flagOwnerNameConstant                  = "owner"
	flagOwnerDescriptionConstant           = "GitHub repository owner (bypasses remote detection)"
	flagNameNameConstant                   = "name"
	flagNameDescriptionConstant            = "GitHub repository name (bypasses remote detection)"
	flagBaseNameConstant                   = "base"
	flagBaseDescriptionConstant            = "Base branch the pull requests were merged into"
	flagLimitNameConstant                  = "limit"
	flagLimitDescriptionConstant           = "Maximum number of merged pull requests to report"
	flagIncludeSHAsNameConstant            = "shas"
	flagIncludeSHAsDescriptionConstant     = "Attach commit short hashes for each pull request"
	defaultRepositoryPathConstant          = "."
	fallbackBaseBranchNameConstant         = "main"
	remoteResolutionFailedMessageConstant  = "could not determine GitHub repository; supply --owner and --name"
	jsonIndentConstant                     = "  "
	jsonPrefixConstant                     = ""
	outputTrailingNewlineConstant          = "\n"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// MergedPullRequestReport is the JSON envelope emitted by the prs command.
type MergedPullRequestReport struct {
	PullRequests      []MergedPullRequest `json:"pullRequests"`
	CommitShortHashes map[int][]string    `json:"commitShas,omitempty"`
}

// CommandBuilder assembles the Cobra command for merged pull request listing.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  shared.GitExecutor
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

type resolvedTarget struct {
	owner      string
	repository string
	baseBranch string
}

// Build constructs the prs command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(flagRepositoryNameConstant, "", flagRepositoryDescriptionConstant)
	command.Flags().String(flagOwnerNameConstant, "", flagOwnerDescriptionConstant)
	command.Flags().String(flagNameNameConstant, "", flagNameDescriptionConstant)
	command.Flags().String(flagBaseNameConstant, "", flagBaseDescriptionConstant)
	command.Flags().Int(flagLimitNameConstant, 0, flagLimitDescriptionConstant)
	command.Flags().Bool(flagIncludeSHAsNameConstant, false, flagIncludeSHAsDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	logger := builder.resolveLogger()
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	target, targetError := builder.resolveTarget(command, configuration, executor)
	if targetError != nil {
		return targetError
	}

	client, clientError := githubcli.NewClient(executor)
	if clientError != nil {
		return clientError
	}

	service, serviceError := NewService(logger, client)
	if serviceError != nil {
		return serviceError
	}

	limitValue := configuration.Limit
	if flagValue, flagError := command.Flags().GetInt(flagLimitNameConstant); flagError == nil && flagValue > 0 {
		limitValue = flagValue
	}

	mergedPullRequests, listError := service.ListMerged(command.Context(), Options{
		Owner:      target.owner,
		Repository: target.repository,
		BaseBranch: target.baseBranch,
		Limit:      limitValue,
	})
	if listError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, listError)
	}

	report := MergedPullRequestReport{PullRequests: mergedPullRequests}

	includeSHAs := configuration.IncludeSHAs
	if flagValue, flagError := command.Flags().GetBool(flagIncludeSHAsNameConstant); flagError == nil && flagValue {
		includeSHAs = true
	}
	if includeSHAs {
		pullRequestNumbers := make([]int, 0, len(mergedPullRequests))
		for _, mergedPullRequest := range mergedPullRequests {
			pullRequestNumbers = append(pullRequestNumbers, mergedPullRequest.Number)
		}
		report.CommitShortHashes = service.CommitShortHashes(command.Context(), target.owner, target.repository, pullRequestNumbers)
	}

	encodedReport, encodeError := json.MarshalIndent(report, jsonPrefixConstant, jsonIndentConstant)
	if encodeError != nil {
		return encodeError
	}

	fmt.Fprint(command.OutOrStdout(), string(encodedReport)+outputTrailingNewlineConstant)
	return nil
}

func (builder *CommandBuilder) resolveTarget(command *cobra.Command, configuration CommandConfiguration, executor shared.GitExecutor) (resolvedTarget, error) {
	ownerValue := configuration.Owner
	if flagValue, flagError := command.Flags().GetString(flagOwnerNameConstant); flagError == nil && len(strings.TrimSpace(flagValue)) > 0 {
		ownerValue = strings.TrimSpace(flagValue)
	}
	repositoryValue := configuration.RepositoryName
	if flagValue, flagError := command.Flags().GetString(flagNameNameConstant); flagError == nil && len(strings.TrimSpace(flagValue)) > 0 {
		repositoryValue = strings.TrimSpace(flagValue)
	}
	baseBranchValue := configuration.BaseBranch
	if flagValue, flagError := command.Flags().GetString(flagBaseNameConstant); flagError == nil && len(strings.TrimSpace(flagValue)) > 0 {
		baseBranchValue = strings.TrimSpace(flagValue)
	}

	if len(ownerValue) > 0 && len(repositoryValue) > 0 {
		if len(baseBranchValue) == 0 {
			baseBranchValue = fallbackBaseBranchNameConstant
		}
		return resolvedTarget{owner: ownerValue, repository: repositoryValue, baseBranch: baseBranchValue}, nil
	}

	repositoryPath := configuration.RepositoryPath
	if flagValue, flagError := command.Flags().GetString(flagRepositoryNameConstant); flagError == nil && len(strings.TrimSpace(flagValue)) > 0 {
		repositoryPath = strings.TrimSpace(flagValue)
	}
	repositoryPath = pathutils.NewRepositoryPathSanitizer().Sanitize(repositoryPath)
	if len(repositoryPath) == 0 {
		repositoryPath = defaultRepositoryPathConstant
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	if managerError != nil {
		return resolvedTarget{}, managerError
	}

	remoteOwner, remoteRepository, remoteError := resolveRemoteIdentity(command.Context(), repositoryManager, repositoryPath)
	if remoteError != nil {
		return resolvedTarget{}, remoteError
	}

	if len(baseBranchValue) == 0 {
		resolvedBase, resolveError := repositoryManager.ResolveDefaultBranch(command.Context(), repositoryPath)
		if resolveError != nil {
			return resolvedTarget{}, resolveError
		}
		baseBranchValue = resolvedBase
	}

	return resolvedTarget{owner: remoteOwner, repository: remoteRepository, baseBranch: baseBranchValue}, nil
}

func resolveRemoteIdentity(executionContext context.Context, repositoryManager *gitrepo.RepositoryManager, repositoryPath string) (string, string, error) {
	remoteURL, remoteError := repositoryManager.GetRemoteURL(executionContext, repositoryPath, shared.OriginRemoteNameConstant)
	if remoteError != nil {
		return "", "", errors.New(remoteResolutionFailedMessageConstant)
	}

	parsedRemote, parseError := gitrepo.ParseRemoteURL(remoteURL)
	if parseError != nil {
		return "", "", errors.New(remoteResolutionFailedMessageConstant)
	}

	return parsedRemote.Owner, parsedRemote.Repository, nil
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
