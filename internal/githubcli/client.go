package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/branchscope/internal/execshell"
)

const (
	apiSubcommandConstant                   = "api"
	versionFlagConstant                     = "--version"
	ownerFieldNameConstant                  = "owner"
	repositoryFieldNameConstant             = "repository"
	baseBranchFieldNameConstant             = "base_branch"
	pullRequestNumberFieldNameConstant      = "pull_request_number"
	requiredValueMessageConstant            = "value required"
	positiveValueMessageConstant            = "positive value required"
	executorNotConfiguredMessageConstant    = "github cli executor not configured"
	closedPullRequestsEndpointTemplate      = "repos/%s/%s/pulls?state=closed&base=%s&per_page=%d&sort=updated&direction=desc"
	pullRequestCommitsEndpointTemplate      = "repos/%s/%s/pulls/%d/commits?per_page=%d"
	pullRequestCommitsPageSizeConstant      = 100
	closedPullRequestsDefaultLimitConstant  = 100
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	listClosedPullRequestsOperationName     = OperationName("ListClosedPullRequests")
	listPullRequestCommitsOperationName     = OperationName("ListPullRequestCommits")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// ClosedPullRequest is one closed pull request returned by the GitHub API.
// The merge fields are nil for pull requests that were closed without merging;
// CommitCount is nil when the API record omits the commits field.
type ClosedPullRequest struct {
	Number          int
	Title           string
	HeadRefName     string
	AuthorLogin     string
	AuthorAvatarURL string
	CreatedAt       string
	MergedAt        *string
	MergeCommitSHA  *string
	CommitCount     *int
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
}

// ErrExecutorNotConfigured indicates the client was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// IsAvailable reports whether the gh executable responds to a version probe.
func (client *Client) IsAvailable(executionContext context.Context) bool {
	commandDetails := execshell.CommandDetails{Arguments: []string{versionFlagConstant}}
	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	return executionError == nil
}

// ListClosedPullRequests fetches recently updated closed pull requests targeting the base branch.
func (client *Client) ListClosedPullRequests(executionContext context.Context, owner string, repository string, baseBranch string, perPage int) ([]ClosedPullRequest, error) {
	trimmedOwner := strings.TrimSpace(owner)
	if len(trimmedOwner) == 0 {
		return nil, InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedRepository := strings.TrimSpace(repository)
	if len(trimmedRepository) == 0 {
		return nil, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedBaseBranch := strings.TrimSpace(baseBranch)
	if len(trimmedBaseBranch) == 0 {
		return nil, InvalidInputError{FieldName: baseBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if perPage <= 0 {
		perPage = closedPullRequestsDefaultLimitConstant
	}

	endpoint := fmt.Sprintf(closedPullRequestsEndpointTemplate, trimmedOwner, trimmedRepository, trimmedBaseBranch, perPage)
	commandDetails := execshell.CommandDetails{Arguments: []string{apiSubcommandConstant, endpoint}}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: listClosedPullRequestsOperationName, Cause: executionError}
	}

	var response []struct {
		Number         int     `json:"number"`
		Title          string  `json:"title"`
		CreatedAt      string  `json:"created_at"`
		MergedAt       *string `json:"merged_at"`
		MergeCommitSHA *string `json:"merge_commit_sha"`
		Commits        *int    `json:"commits"`
		Head           struct {
			Ref string `json:"ref"`
		} `json:"head"`
		User struct {
			Login     string `json:"login"`
			AvatarURL string `json:"avatar_url"`
		} `json:"user"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: listClosedPullRequestsOperationName, Cause: decodingError}
	}

	closedPullRequests := make([]ClosedPullRequest, 0, len(response))
	for _, pullRequestEntry := range response {
		closedPullRequests = append(closedPullRequests, ClosedPullRequest{
			Number:          pullRequestEntry.Number,
			Title:           pullRequestEntry.Title,
			HeadRefName:     pullRequestEntry.Head.Ref,
			AuthorLogin:     pullRequestEntry.User.Login,
			AuthorAvatarURL: pullRequestEntry.User.AvatarURL,
			CreatedAt:       pullRequestEntry.CreatedAt,
			MergedAt:        pullRequestEntry.MergedAt,
			MergeCommitSHA:  pullRequestEntry.MergeCommitSHA,
			CommitCount:     pullRequestEntry.Commits,
		})
	}

	return closedPullRequests, nil
}

// ListPullRequestCommits fetches the full commit SHAs belonging to one pull request.
func (client *Client) ListPullRequestCommits(executionContext context.Context, owner string, repository string, pullRequestNumber int) ([]string, error) {
	trimmedOwner := strings.TrimSpace(owner)
	if len(trimmedOwner) == 0 {
		return nil, InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedRepository := strings.TrimSpace(repository)
	if len(trimmedRepository) == 0 {
		return nil, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if pullRequestNumber <= 0 {
		return nil, InvalidInputError{FieldName: pullRequestNumberFieldNameConstant, Message: positiveValueMessageConstant}
	}

	endpoint := fmt.Sprintf(pullRequestCommitsEndpointTemplate, trimmedOwner, trimmedRepository, pullRequestNumber, pullRequestCommitsPageSizeConstant)
	commandDetails := execshell.CommandDetails{Arguments: []string{apiSubcommandConstant, endpoint}}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: listPullRequestCommitsOperationName, Cause: executionError}
	}

	var response []struct {
		SHA string `json:"sha"`
	}

	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return nil, ResponseDecodingError{Operation: listPullRequestCommitsOperationName, Cause: decodingError}
	}

	commitSHAs := make([]string, 0, len(response))
	for _, commitEntry := range response {
		commitSHAs = append(commitSHAs, commitEntry.SHA)
	}

	return commitSHAs, nil
}
