package execshell

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	gitCommandNameConstant               = "git"
	githubCommandNameConstant            = "gh"
	loggerMissingMessageConstant         = "logger not configured"
	commandRunnerMissingMessageConstant  = "command runner not configured"
	executableNotFoundTemplateConstant   = "%s executable not found"
	invalidOutputMessageTemplateConstant = "%s produced non-text output"
	logFieldCommandConstant              = "command"
	logFieldArgumentsConstant            = "arguments"
	logFieldWorkingDirectoryConstant     = "working_directory"
	logFieldExitCodeConstant             = "exit_code"
)

// CommandName identifies an external executable supported by the executor.
type CommandName string

// Supported external commands.
const (
	CommandGit    CommandName = CommandName(gitCommandNameConstant)
	CommandGitHub CommandName = CommandName(githubCommandNameConstant)
)

// CommandDetails describes arguments and environment for a single invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand pairs an executable name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outcome of a completed process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands and reports their results.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerMissingMessageConstant)

// CommandNotFoundError indicates the underlying executable is not installed.
type CommandNotFoundError struct {
	Command ShellCommand
}

// Error describes the missing executable.
func (notFoundError CommandNotFoundError) Error() string {
	return fmt.Sprintf(executableNotFoundTemplateConstant, notFoundError.Command.Name)
}

// CommandFailedError indicates the process completed with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command including its diagnostic output.
func (failedError CommandFailedError) Error() string {
	formatter := CommandMessageFormatter{}
	return formatter.BuildFailureMessage(failedError.Command, failedError.Result)
}

// CommandExecutionError indicates the process could not be run at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (executionError CommandExecutionError) Error() string {
	formatter := CommandMessageFormatter{}
	return formatter.BuildExecutionFailureMessage(executionError.Command, executionError.Cause)
}

// Unwrap exposes the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// InvalidOutputError indicates the process emitted output that is not valid text.
type InvalidOutputError struct {
	Command ShellCommand
}

// Error describes the malformed output.
func (outputError InvalidOutputError) Error() string {
	return fmt.Sprintf(invalidOutputMessageTemplateConstant, outputError.Command.Name)
}

// ShellExecutor runs git and GitHub CLI commands with structured logging.
type ShellExecutor struct {
	logger               *zap.Logger
	commandRunner        CommandRunner
	messageFormatter     CommandMessageFormatter
	humanReadableLogging bool
}

// NewShellExecutor constructs a ShellExecutor from the provided collaborators.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, humanReadableLogging ...bool) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	humanReadable := false
	if len(humanReadableLogging) > 0 {
		humanReadable = humanReadableLogging[0]
	}

	return &ShellExecutor{
		logger:               logger,
		commandRunner:        commandRunner,
		messageFormatter:     CommandMessageFormatter{},
		humanReadableLogging: humanReadable,
	}, nil
}

// ExecuteGit runs a git command with the supplied details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteGitHubCLI runs a GitHub CLI command with the supplied details.
func (executor *ShellExecutor) ExecuteGitHubCLI(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGitHub, Details: details})
}

// Execute runs the supplied command, logging its lifecycle and classifying failures.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logCommandStarted(command)

	executionResult, runError := executor.commandRunner.Run(executionContext, command)
	if runError != nil {
		classifiedError := executor.classifyRunError(command, runError)
		executor.logCommandExecutionFailure(command, classifiedError)
		return ExecutionResult{}, classifiedError
	}

	if executionResult.ExitCode != 0 {
		failure := CommandFailedError{Command: command, Result: executionResult}
		executor.logCommandFailure(command, executionResult)
		return ExecutionResult{}, failure
	}

	if !utf8.ValidString(executionResult.StandardOutput) {
		invalidOutput := InvalidOutputError{Command: command}
		executor.logCommandExecutionFailure(command, invalidOutput)
		return ExecutionResult{}, invalidOutput
	}

	executor.logCommandCompleted(command, executionResult)
	return executionResult, nil
}

func (executor *ShellExecutor) classifyRunError(command ShellCommand, runError error) error {
	if errors.Is(runError, exec.ErrNotFound) {
		return CommandNotFoundError{Command: command}
	}
	return CommandExecutionError{Command: command, Cause: runError}
}

func (executor *ShellExecutor) logCommandStarted(command ShellCommand) {
	if executor.humanReadableLogging {
		executor.logger.Info(executor.messageFormatter.BuildStartedMessage(command))
		return
	}
	executor.logger.Debug(
		executor.messageFormatter.BuildStartedMessage(command),
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
}

func (executor *ShellExecutor) logCommandCompleted(command ShellCommand, result ExecutionResult) {
	if executor.humanReadableLogging {
		executor.logger.Info(executor.messageFormatter.BuildSuccessMessage(command))
		return
	}
	executor.logger.Debug(
		executor.messageFormatter.BuildSuccessMessage(command),
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
	)
}

func (executor *ShellExecutor) logCommandFailure(command ShellCommand, result ExecutionResult) {
	executor.logger.Debug(
		executor.messageFormatter.BuildFailureMessage(command, result),
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
	)
}

func (executor *ShellExecutor) logCommandExecutionFailure(command ShellCommand, failure error) {
	executor.logger.Debug(
		executor.messageFormatter.BuildExecutionFailureMessage(command, failure),
		zap.String(logFieldCommandConstant, string(command.Name)),
	)
}
