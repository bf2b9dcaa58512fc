package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
)

const (
	gitRevListSubcommandNameConstant      = "rev-list"
	gitLogSubcommandNameConstant          = "log"
	gitMergeBaseSubcommandNameConstant    = "merge-base"
	gitBranchSubcommandNameConstant       = "branch"
	gitSymbolicRefSubcommandNameConstant  = "symbolic-ref"
	gitRevParseSubcommandNameConstant     = "rev-parse"
	gitRemoteSubcommandNameConstant       = "remote"
	gitRemoteGetURLSubcommandNameConstant = "get-url"
	gitMergesFlagConstant                 = "--merges"
	gitShowToplevelFlagConstant           = "--show-toplevel"
	githubAPISubcommandNameConstant       = "api"
)

const (
	gitDivergenceStartTemplateConstant             = "Counting divergence for %s in %s"
	gitDivergenceSuccessTemplateConstant           = "Counted divergence for %s in %s"
	gitDivergenceFailureTemplateConstant           = "Failed to count divergence for %s in %s (exit code %d%s)"
	gitDivergenceExecutionFailureTemplateConstant  = "Unable to count divergence for %s in %s: %s"
	gitMergeScanStartTemplateConstant              = "Scanning merge commits in %s"
	gitMergeScanSuccessTemplateConstant            = "Scanned merge commits in %s"
	gitMergeScanFailureTemplateConstant            = "Failed to scan merge commits in %s (exit code %d%s)"
	gitMergeScanExecutionFailureTemplateConstant   = "Unable to scan merge commits in %s: %s"
	gitHistoryStartTemplateConstant                = "Reading commit history in %s"
	gitHistorySuccessTemplateConstant              = "Read commit history in %s"
	gitHistoryFailureTemplateConstant              = "Failed to read commit history in %s (exit code %d%s)"
	gitHistoryExecutionFailureTemplateConstant     = "Unable to read commit history in %s: %s"
	gitForkPointStartTemplateConstant              = "Locating fork point of %s and %s in %s"
	gitForkPointSuccessTemplateConstant            = "Located fork point of %s and %s in %s"
	gitForkPointFailureTemplateConstant            = "Failed to locate fork point of %s and %s in %s (exit code %d%s)"
	gitForkPointExecutionFailureTemplateConstant   = "Unable to locate fork point of %s and %s in %s: %s"
	gitBranchListStartTemplateConstant             = "Listing local branches in %s"
	gitBranchListSuccessTemplateConstant           = "Listed local branches in %s"
	gitBranchListFailureTemplateConstant           = "Failed to list local branches in %s (exit code %d%s)"
	gitBranchListExecutionFailureTemplateConstant  = "Unable to list local branches in %s: %s"
	gitDefaultRefStartTemplateConstant             = "Probing default branch reference in %s"
	gitDefaultRefSuccessTemplateConstant           = "Probed default branch reference in %s"
	gitDefaultRefFailureTemplateConstant           = "Default branch reference unavailable in %s (exit code %d%s)"
	gitDefaultRefExecutionFailureTemplateConstant  = "Unable to probe default branch reference in %s: %s"
	gitRemoteReadStartTemplateConstant             = "Reading remote URL in %s"
	gitRemoteReadSuccessTemplateConstant           = "Read remote URL in %s"
	gitRemoteReadFailureTemplateConstant           = "Failed to read remote URL in %s (exit code %d%s)"
	gitRemoteReadExecutionFailureTemplateConstant  = "Unable to read remote URL in %s: %s"
	githubAPICallStartTemplateConstant             = "Requesting %s via GitHub CLI"
	githubAPICallSuccessTemplateConstant           = "Received response for %s via GitHub CLI"
	githubAPICallFailureTemplateConstant           = "GitHub CLI request %s failed (exit code %d%s)"
	githubAPICallExecutionFailureTemplateConstant  = "Unable to request %s via GitHub CLI: %s"
	githubAPIUnknownEndpointLabelConstant          = "endpoint"
)

// CommandMessageFormatter renders human-readable lifecycle messages for shell commands.
type CommandMessageFormatter struct{}

// BuildStartedMessage renders the message logged before a command runs.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, messageStageStart, ExecutionResult{}, nil)
}

// BuildSuccessMessage renders the message logged after a command succeeds.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, messageStageSuccess, ExecutionResult{}, nil)
}

// BuildFailureMessage renders the message describing a non-zero exit.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, messageStageFailure, result, nil)
}

// BuildExecutionFailureMessage renders the message describing a command that could not run.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, messageStageExecutionFailure, ExecutionResult{}, failure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, stage messageStage, result ExecutionResult, failure error) string {
	location := formatter.describeWorkingDirectory(command)
	errorSuffix := formatter.describeStandardError(result)
	failureText := formatter.describeFailure(failure)
	arguments := command.Details.Arguments

	if command.Name == CommandGit && len(arguments) > 0 {
		switch arguments[0] {
		case gitRevListSubcommandNameConstant:
			subject := formatter.lastArgument(arguments)
			switch stage {
			case messageStageStart:
				return fmt.Sprintf(gitDivergenceStartTemplateConstant, subject, location)
			case messageStageSuccess:
				return fmt.Sprintf(gitDivergenceSuccessTemplateConstant, subject, location)
			case messageStageFailure:
				return fmt.Sprintf(gitDivergenceFailureTemplateConstant, subject, location, result.ExitCode, errorSuffix)
			case messageStageExecutionFailure:
				return fmt.Sprintf(gitDivergenceExecutionFailureTemplateConstant, subject, location, failureText)
			}
		case gitLogSubcommandNameConstant:
			if formatter.containsArgument(arguments, gitMergesFlagConstant) {
				switch stage {
				case messageStageStart:
					return fmt.Sprintf(gitMergeScanStartTemplateConstant, location)
				case messageStageSuccess:
					return fmt.Sprintf(gitMergeScanSuccessTemplateConstant, location)
				case messageStageFailure:
					return fmt.Sprintf(gitMergeScanFailureTemplateConstant, location, result.ExitCode, errorSuffix)
				case messageStageExecutionFailure:
					return fmt.Sprintf(gitMergeScanExecutionFailureTemplateConstant, location, failureText)
				}
			}
			switch stage {
			case messageStageStart:
				return fmt.Sprintf(gitHistoryStartTemplateConstant, location)
			case messageStageSuccess:
				return fmt.Sprintf(gitHistorySuccessTemplateConstant, location)
			case messageStageFailure:
				return fmt.Sprintf(gitHistoryFailureTemplateConstant, location, result.ExitCode, errorSuffix)
			case messageStageExecutionFailure:
				return fmt.Sprintf(gitHistoryExecutionFailureTemplateConstant, location, failureText)
			}
		case gitMergeBaseSubcommandNameConstant:
			baseReference, branchReference := formatter.lastTwoArguments(arguments)
			switch stage {
			case messageStageStart:
				return fmt.Sprintf(gitForkPointStartTemplateConstant, baseReference, branchReference, location)
			case messageStageSuccess:
				return fmt.Sprintf(gitForkPointSuccessTemplateConstant, baseReference, branchReference, location)
			case messageStageFailure:
				return fmt.Sprintf(gitForkPointFailureTemplateConstant, baseReference, branchReference, location, result.ExitCode, errorSuffix)
			case messageStageExecutionFailure:
				return fmt.Sprintf(gitForkPointExecutionFailureTemplateConstant, baseReference, branchReference, location, failureText)
			}
		case gitBranchSubcommandNameConstant:
			switch stage {
			case messageStageStart:
				return fmt.Sprintf(gitBranchListStartTemplateConstant, location)
			case messageStageSuccess:
				return fmt.Sprintf(gitBranchListSuccessTemplateConstant, location)
			case messageStageFailure:
				return fmt.Sprintf(gitBranchListFailureTemplateConstant, location, result.ExitCode, errorSuffix)
			case messageStageExecutionFailure:
				return fmt.Sprintf(gitBranchListExecutionFailureTemplateConstant, location, failureText)
			}
		case gitSymbolicRefSubcommandNameConstant:
			switch stage {
			case messageStageStart:
				return fmt.Sprintf(gitDefaultRefStartTemplateConstant, location)
			case messageStageSuccess:
				return fmt.Sprintf(gitDefaultRefSuccessTemplateConstant, location)
			case messageStageFailure:
				return fmt.Sprintf(gitDefaultRefFailureTemplateConstant, location, result.ExitCode, errorSuffix)
			case messageStageExecutionFailure:
				return fmt.Sprintf(gitDefaultRefExecutionFailureTemplateConstant, location, failureText)
			}
		case gitRemoteSubcommandNameConstant:
			if formatter.containsArgument(arguments, gitRemoteGetURLSubcommandNameConstant) {
				switch stage {
				case messageStageStart:
					return fmt.Sprintf(gitRemoteReadStartTemplateConstant, location)
				case messageStageSuccess:
					return fmt.Sprintf(gitRemoteReadSuccessTemplateConstant, location)
				case messageStageFailure:
					return fmt.Sprintf(gitRemoteReadFailureTemplateConstant, location, result.ExitCode, errorSuffix)
				case messageStageExecutionFailure:
					return fmt.Sprintf(gitRemoteReadExecutionFailureTemplateConstant, location, failureText)
				}
			}
		}
	}

	if command.Name == CommandGitHub && len(arguments) > 0 && arguments[0] == githubAPISubcommandNameConstant {
		endpoint := githubAPIUnknownEndpointLabelConstant
		if len(arguments) > 1 {
			endpoint = arguments[1]
		}
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubAPICallStartTemplateConstant, endpoint)
		case messageStageSuccess:
			return fmt.Sprintf(githubAPICallSuccessTemplateConstant, endpoint)
		case messageStageFailure:
			return fmt.Sprintf(githubAPICallFailureTemplateConstant, endpoint, result.ExitCode, errorSuffix)
		case messageStageExecutionFailure:
			return fmt.Sprintf(githubAPICallExecutionFailureTemplateConstant, endpoint, failureText)
		}
	}

	commandLabel := formatter.describeCommand(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, errorSuffix)
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, failureText)
	}
}

func (formatter CommandMessageFormatter) describeCommand(command ShellCommand) string {
	joinedArguments := strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant)
	if len(joinedArguments) > 0 {
		joinedArguments = commandArgumentsJoinSeparatorConstant + joinedArguments
	}
	return fmt.Sprintf(commandLabelTemplateConstant, command.Name, joinedArguments)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedDirectory
}

func (formatter CommandMessageFormatter) describeStandardError(result ExecutionResult) string {
	trimmedStandardError := strings.TrimSpace(result.StandardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) lastArgument(arguments []string) string {
	for argumentIndex := len(arguments) - 1; argumentIndex > 0; argumentIndex-- {
		if !strings.HasPrefix(arguments[argumentIndex], "-") {
			return arguments[argumentIndex]
		}
	}
	return arguments[len(arguments)-1]
}

func (formatter CommandMessageFormatter) lastTwoArguments(arguments []string) (string, string) {
	positional := make([]string, 0, len(arguments))
	for _, argumentValue := range arguments[1:] {
		if !strings.HasPrefix(argumentValue, "-") {
			positional = append(positional, argumentValue)
		}
	}
	if len(positional) >= 2 {
		return positional[len(positional)-2], positional[len(positional)-1]
	}
	if len(positional) == 1 {
		return positional[0], positional[0]
	}
	return emptyStringConstant, emptyStringConstant
}

func (formatter CommandMessageFormatter) containsArgument(arguments []string, target string) bool {
	for _, argumentValue := range arguments {
		if argumentValue == target {
			return true
		}
	}
	return false
}
