package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/branchscope/internal/execshell"
)

const (
	requiredValueMessageConstant                = "value required"
	executorMissingMessageConstant              = "command executor not configured"
	repositoryPathRequiredMessageConstant       = "repository path required"
	notARepositoryMessageTemplateConstant       = "%s is not a git repository"
	notARepositoryStderrFragmentConstant        = "not a git repository"
	gitBranchSubcommandConstant                 = "branch"
	gitBranchFormatFlagConstant                 = "--format=%(refname:short)"
	gitRevListSubcommandConstant                = "rev-list"
	gitLeftRightFlagConstant                    = "--left-right"
	gitCountFlagConstant                        = "--count"
	gitRevisionRangeTemplateConstant            = "%s...%s"
	gitLogSubcommandConstant                    = "log"
	gitSingleCommitFlagConstant                 = "-1"
	gitCommitDescriptionFormatFlagConstant      = "--format=%H|%an|%aI"
	gitCommitDateFormatFlagConstant             = "--format=%aI"
	gitMergeHistoryFormatFlagConstant           = "--format=%H|%h|%s|%aI"
	gitMergesFlagConstant                       = "--merges"
	gitMaxCountFlagTemplateConstant             = "--max-count=%d"
	gitSkipFlagTemplateConstant                 = "--skip=%d"
	gitMergeBaseSubcommandConstant              = "merge-base"
	gitRevParseSubcommandConstant               = "rev-parse"
	gitShowToplevelFlagConstant                 = "--show-toplevel"
	gitVerifyFlagConstant                       = "--verify"
	gitSymbolicRefSubcommandConstant            = "symbolic-ref"
	gitOriginHeadReferenceConstant              = "refs/remotes/origin/HEAD"
	gitOriginReferencePrefixConstant            = "refs/remotes/origin/"
	gitRemoteSubcommandConstant                 = "remote"
	gitRemoteGetURLSubcommandConstant           = "get-url"
	mainBranchNameConstant                      = "main"
	masterBranchNameConstant                    = "master"
	headFallbackReferenceConstant               = "HEAD"
	unknownAuthorNameConstant                   = "Unknown"
	commitFieldSeparatorConstant                = "|"
	divergenceFieldCountConstant                = 2
	commitDescriptionFieldCountConstant         = 3
	mergeHistoryFieldCountConstant              = 4
	lineSeparatorConstant                       = "\n"
)

// ErrCommandExecutorNotConfigured indicates the manager was constructed without an executor.
var ErrCommandExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// ErrRepositoryPathRequired indicates an operation received a blank repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// NotARepositoryError indicates the supplied path is not inside a git work tree.
type NotARepositoryError struct {
	Path string
}

// Error describes the offending path.
func (repositoryError NotARepositoryError) Error() string {
	return fmt.Sprintf(notARepositoryMessageTemplateConstant, repositoryError.Path)
}

// CommandExecutor runs git commands on behalf of the repository manager.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CommitDescription captures the identity, author, and timestamp of one commit.
type CommitDescription struct {
	SHA        string
	AuthorName string
	CommitDate string
}

// ForkPoint identifies the common ancestor of a branch and its base.
type ForkPoint struct {
	SHA        string
	CommitDate string
}

// MergeRecord is one merge commit read from branch history.
type MergeRecord struct {
	FullSHA    string
	ShortSHA   string
	Subject    string
	CommitDate string
}

// DefaultBranchProbes holds the raw outcomes of the default-branch detection commands.
type DefaultBranchProbes struct {
	OriginHeadReference string
	MainVerified        bool
	MasterVerified      bool
}

// SelectDefaultBranch applies the default-branch preference order to probe outcomes.
// It is total: when every probe came back empty the symbolic HEAD reference is used.
func SelectDefaultBranch(probes DefaultBranchProbes) string {
	trimmedReference := strings.TrimSpace(probes.OriginHeadReference)
	if len(trimmedReference) > 0 {
		return strings.TrimPrefix(trimmedReference, gitOriginReferencePrefixConstant)
	}
	if probes.MainVerified {
		return mainBranchNameConstant
	}
	if probes.MasterVerified {
		return masterBranchNameConstant
	}
	return headFallbackReferenceConstant
}

// RepositoryManager exposes structured read operations over a local git repository.
type RepositoryManager struct {
	executor CommandExecutor
}

// NewRepositoryManager constructs a RepositoryManager from the provided executor.
func NewRepositoryManager(executor CommandExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrCommandExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// ResolveRepositoryRoot returns the absolute toplevel directory of the work tree at repositoryPath.
func (manager *RepositoryManager) ResolveRepositoryRoot(executionContext context.Context, repositoryPath string) (string, error) {
	commandOutput, executionError := manager.runGit(executionContext, repositoryPath, []string{gitRevParseSubcommandConstant, gitShowToplevelFlagConstant})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(commandOutput), nil
}

// ResolveDefaultBranch detects the repository's mainline branch name.
// Probe failures are treated as negative outcomes; the result always names a usable reference.
func (manager *RepositoryManager) ResolveDefaultBranch(executionContext context.Context, repositoryPath string) (string, error) {
	if validationError := validateRepositoryPath(repositoryPath); validationError != nil {
		return "", validationError
	}

	probes := DefaultBranchProbes{}
	symbolicReferenceOutput, symbolicReferenceError := manager.runGit(executionContext, repositoryPath, []string{gitSymbolicRefSubcommandConstant, gitOriginHeadReferenceConstant})
	if symbolicReferenceError == nil {
		probes.OriginHeadReference = symbolicReferenceOutput
	}
	if _, mainProbeError := manager.runGit(executionContext, repositoryPath, []string{gitRevParseSubcommandConstant, gitVerifyFlagConstant, mainBranchNameConstant}); mainProbeError == nil {
		probes.MainVerified = true
	}
	if _, masterProbeError := manager.runGit(executionContext, repositoryPath, []string{gitRevParseSubcommandConstant, gitVerifyFlagConstant, masterBranchNameConstant}); masterProbeError == nil {
		probes.MasterVerified = true
	}

	return SelectDefaultBranch(probes), nil
}

// ListLocalBranchNames returns the short names of every local branch.
func (manager *RepositoryManager) ListLocalBranchNames(executionContext context.Context, repositoryPath string) ([]string, error) {
	commandOutput, executionError := manager.runGit(executionContext, repositoryPath, []string{gitBranchSubcommandConstant, gitBranchFormatFlagConstant})
	if executionError != nil {
		return nil, executionError
	}

	branchNames := make([]string, 0)
	for _, outputLine := range strings.Split(commandOutput, lineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(outputLine)
		if len(trimmedLine) > 0 {
			branchNames = append(branchNames, trimmedLine)
		}
	}
	return branchNames, nil
}

// CountDivergence reports how many commits the branch is behind and ahead of the base.
// The base reference occupies the left side of the symmetric-difference range, so the
// left count is the behind value. Unparseable counts degrade to zero.
func (manager *RepositoryManager) CountDivergence(executionContext context.Context, repositoryPath string, baseBranch string, branchName string) (int, int, error) {
	revisionRange := fmt.Sprintf(gitRevisionRangeTemplateConstant, baseBranch, branchName)
	commandOutput, executionError := manager.runGit(executionContext, repositoryPath, []string{gitRevListSubcommandConstant, gitLeftRightFlagConstant, gitCountFlagConstant, revisionRange})
	if executionError != nil {
		return 0, 0, executionError
	}

	countFields := strings.Fields(strings.TrimSpace(commandOutput))
	commitsBehind := 0
	commitsAhead := 0
	if len(countFields) >= divergenceFieldCountConstant {
		if parsedBehind, parseError := strconv.Atoi(countFields[0]); parseError == nil {
			commitsBehind = parsedBehind
		}
		if parsedAhead, parseError := strconv.Atoi(countFields[1]); parseError == nil {
			commitsAhead = parsedAhead
		}
	}
	return commitsBehind, commitsAhead, nil
}

// DescribeLastCommit returns the tip commit of the supplied reference.
func (manager *RepositoryManager) DescribeLastCommit(executionContext context.Context, repositoryPath string, reference string) (CommitDescription, error) {
	commandOutput, executionError := manager.runGit(executionContext, repositoryPath, []string{gitLogSubcommandConstant, gitSingleCommitFlagConstant, gitCommitDescriptionFormatFlagConstant, reference})
	if executionError != nil {
		return CommitDescription{}, executionError
	}

	descriptionFields := strings.SplitN(strings.TrimSpace(commandOutput), commitFieldSeparatorConstant, commitDescriptionFieldCountConstant)
	description := CommitDescription{AuthorName: unknownAuthorNameConstant}
	if len(descriptionFields) > 0 {
		description.SHA = strings.TrimSpace(descriptionFields[0])
	}
	if len(descriptionFields) > 1 && len(strings.TrimSpace(descriptionFields[1])) > 0 {
		description.AuthorName = strings.TrimSpace(descriptionFields[1])
	}
	if len(descriptionFields) > 2 {
		description.CommitDate = strings.TrimSpace(descriptionFields[2])
	}
	return description, nil
}

// FindForkPoint locates the merge base of the branch and its base reference.
// A nil fork point without error means the histories are disjoint.
func (manager *RepositoryManager) FindForkPoint(executionContext context.Context, repositoryPath string, baseBranch string, branchName string) (*ForkPoint, error) {
	mergeBaseOutput, mergeBaseError := manager.runGit(executionContext, repositoryPath, []string{gitMergeBaseSubcommandConstant, baseBranch, branchName})
	if mergeBaseError != nil {
		commandFailure := execshell.CommandFailedError{}
		if errors.As(mergeBaseError, &commandFailure) {
			return nil, nil
		}
		return nil, mergeBaseError
	}

	forkPointSHA := strings.TrimSpace(mergeBaseOutput)
	if len(forkPointSHA) == 0 {
		return nil, nil
	}

	forkPoint := ForkPoint{SHA: forkPointSHA}
	dateOutput, dateError := manager.runGit(executionContext, repositoryPath, []string{gitLogSubcommandConstant, gitSingleCommitFlagConstant, gitCommitDateFormatFlagConstant, forkPointSHA})
	if dateError == nil {
		forkPoint.CommitDate = strings.TrimSpace(dateOutput)
	}
	return &forkPoint, nil
}

// ListMergeHistory reads a bounded window of merge commits from the branch history.
// Lines that do not carry all four fields are skipped.
func (manager *RepositoryManager) ListMergeHistory(executionContext context.Context, repositoryPath string, branchName string, skipCount int, maxCount int) ([]MergeRecord, error) {
	commandArguments := []string{
		gitLogSubcommandConstant,
		gitMergesFlagConstant,
		fmt.Sprintf(gitMaxCountFlagTemplateConstant, maxCount),
		fmt.Sprintf(gitSkipFlagTemplateConstant, skipCount),
		gitMergeHistoryFormatFlagConstant,
		branchName,
	}
	commandOutput, executionError := manager.runGit(executionContext, repositoryPath, commandArguments)
	if executionError != nil {
		return nil, executionError
	}

	mergeRecords := make([]MergeRecord, 0)
	for _, outputLine := range strings.Split(commandOutput, lineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(outputLine)
		if len(trimmedLine) == 0 {
			continue
		}
		recordFields := strings.SplitN(trimmedLine, commitFieldSeparatorConstant, mergeHistoryFieldCountConstant)
		if len(recordFields) < mergeHistoryFieldCountConstant {
			continue
		}
		mergeRecords = append(mergeRecords, MergeRecord{
			FullSHA:    recordFields[0],
			ShortSHA:   recordFields[1],
			Subject:    recordFields[2],
			CommitDate: recordFields[3],
		})
	}
	return mergeRecords, nil
}

// GetRemoteURL reads the configured URL of the named remote.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	commandOutput, executionError := manager.runGit(executionContext, repositoryPath, []string{gitRemoteSubcommandConstant, gitRemoteGetURLSubcommandConstant, remoteName})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(commandOutput), nil
}

func (manager *RepositoryManager) runGit(executionContext context.Context, repositoryPath string, arguments []string) (string, error) {
	if validationError := validateRepositoryPath(repositoryPath); validationError != nil {
		return "", validationError
	}

	commandDetails := execshell.CommandDetails{Arguments: arguments, WorkingDirectory: repositoryPath}
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		commandFailure := execshell.CommandFailedError{}
		if errors.As(executionError, &commandFailure) && strings.Contains(strings.ToLower(commandFailure.Result.StandardError), notARepositoryStderrFragmentConstant) {
			return "", NotARepositoryError{Path: repositoryPath}
		}
		return "", executionError
	}
	return executionResult.StandardOutput, nil
}

func validateRepositoryPath(repositoryPath string) error {
	if len(strings.TrimSpace(repositoryPath)) == 0 {
		return ErrRepositoryPathRequired
	}
	return nil
}
