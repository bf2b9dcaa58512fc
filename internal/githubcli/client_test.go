package githubcli_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/branchscope/internal/execshell"
	"github.com/temirov/branchscope/internal/githubcli"
)

const (
	testOwnerNameConstant                        = "acme"
	testRepositoryNameConstant                   = "widgets"
	testBaseBranchConstant                       = "main"
	testListSuccessCaseNameConstant              = "list_success"
	testListDecodeFailureCaseNameConstant        = "list_decode_failure"
	testListCommandFailureCaseNameConstant       = "list_command_failure"
	testListOwnerValidationCaseNameConstant      = "list_owner_validation"
	testListRepositoryValidationCaseNameConstant = "list_repository_validation"
	testListBaseValidationCaseNameConstant       = "list_base_validation"
	testCommitsSuccessCaseNameConstant           = "commits_success"
	testCommitsNumberValidationCaseNameConstant  = "commits_number_validation"
	testCommitsCommandFailureCaseNameConstant    = "commits_command_failure"
	testClosedPullRequestsPayloadConstant        = `[
		{"number":7,"title":"Improve login","created_at":"2026-08-01T00:00:00Z","merged_at":"2026-08-02T00:00:00Z","merge_commit_sha":"abc123","commits":5,"head":{"ref":"feature/login"},"user":{"login":"alice","avatar_url":"https://example.com/alice.png"}},
		{"number":8,"title":"Abandoned work","created_at":"2026-08-01T00:00:00Z","merged_at":null,"merge_commit_sha":null,"head":{"ref":"feature/abandoned"},"user":{"login":"bob","avatar_url":""}}
	]`
	testPullRequestCommitsPayloadConstant = `[{"sha":"0123456789abcdef"},{"sha":"fedcba9876543210"}]`
)

type stubGitHubExecutor struct {
	executeFunc     func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error)
	recordedDetails []execshell.CommandDetails
}

func (executor *stubGitHubExecutor) ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	if executor.executeFunc != nil {
		return executor.executeFunc(executionContext, details)
	}
	return execshell.ExecutionResult{}, nil
}

func TestNewClientValidation(testInstance *testing.T) {
	testInstance.Run("nil_executor", func(testInstance *testing.T) {
		client, creationError := githubcli.NewClient(nil)
		require.Error(testInstance, creationError)
		require.ErrorIs(testInstance, creationError, githubcli.ErrExecutorNotConfigured)
		require.Nil(testInstance, client)
	})
}

func TestListClosedPullRequests(testInstance *testing.T) {
	testCases := []struct {
		name       string
		owner      string
		repository string
		baseBranch string
		executor   *stubGitHubExecutor
		errorType  any
		verify     func(testInstance *testing.T, pullRequests []githubcli.ClosedPullRequest, executor *stubGitHubExecutor)
	}{
		{
			name:       testListSuccessCaseNameConstant,
			owner:      testOwnerNameConstant,
			repository: testRepositoryNameConstant,
			baseBranch: testBaseBranchConstant,
			executor: &stubGitHubExecutor{
				executeFunc: func(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
					return execshell.ExecutionResult{StandardOutput: testClosedPullRequestsPayloadConstant}, nil
				},
			},
			verify: func(testInstance *testing.T, pullRequests []githubcli.ClosedPullRequest, executor *stubGitHubExecutor) {
				require.Len(testInstance, pullRequests, 2)
				require.Equal(testInstance, 7, pullRequests[0].Number)
				require.Equal(testInstance, "feature/login", pullRequests[0].HeadRefName)
				require.Equal(testInstance, "alice", pullRequests[0].AuthorLogin)
				require.NotNil(testInstance, pullRequests[0].MergedAt)
				require.NotNil(testInstance, pullRequests[0].MergeCommitSHA)
				require.NotNil(testInstance, pullRequests[0].CommitCount)
				require.Equal(testInstance, 5, *pullRequests[0].CommitCount)
				require.Nil(testInstance, pullRequests[1].MergedAt)
				require.Nil(testInstance, pullRequests[1].MergeCommitSHA)
				require.Nil(testInstance, pullRequests[1].CommitCount)

				require.Len(testInstance, executor.recordedDetails, 1)
				require.Equal(testInstance,
					[]string{"api", "repos/acme/widgets/pulls?state=closed&base=main&per_page=40&sort=updated&direction=desc"},
					executor.recordedDetails[0].Arguments,
				)
			},
		},
		{
			name:       testListDecodeFailureCaseNameConstant,
			owner:      testOwnerNameConstant,
			repository: testRepositoryNameConstant,
			baseBranch: testBaseBranchConstant,
			executor: &stubGitHubExecutor{
				executeFunc: func(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
					return execshell.ExecutionResult{StandardOutput: "not json"}, nil
				},
			},
			errorType: githubcli.ResponseDecodingError{},
		},
		{
			name:       testListCommandFailureCaseNameConstant,
			owner:      testOwnerNameConstant,
			repository: testRepositoryNameConstant,
			baseBranch: testBaseBranchConstant,
			executor: &stubGitHubExecutor{
				executeFunc: func(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
					return execshell.ExecutionResult{}, errors.New("api unavailable")
				},
			},
			errorType: githubcli.OperationError{},
		},
		{
			name:       testListOwnerValidationCaseNameConstant,
			owner:      "  ",
			repository: testRepositoryNameConstant,
			baseBranch: testBaseBranchConstant,
			executor:   &stubGitHubExecutor{},
			errorType:  githubcli.InvalidInputError{},
		},
		{
			name:       testListRepositoryValidationCaseNameConstant,
			owner:      testOwnerNameConstant,
			repository: "",
			baseBranch: testBaseBranchConstant,
			executor:   &stubGitHubExecutor{},
			errorType:  githubcli.InvalidInputError{},
		},
		{
			name:       testListBaseValidationCaseNameConstant,
			owner:      testOwnerNameConstant,
			repository: testRepositoryNameConstant,
			baseBranch: "",
			executor:   &stubGitHubExecutor{},
			errorType:  githubcli.InvalidInputError{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, creationError := githubcli.NewClient(testCase.executor)
			require.NoError(testInstance, creationError)

			pullRequests, listError := client.ListClosedPullRequests(context.Background(), testCase.owner, testCase.repository, testCase.baseBranch, 40)
			if testCase.errorType != nil {
				require.Error(testInstance, listError)
				require.IsType(testInstance, testCase.errorType, listError)
				return
			}

			require.NoError(testInstance, listError)
			testCase.verify(testInstance, pullRequests, testCase.executor)
		})
	}
}

func TestListPullRequestCommits(testInstance *testing.T) {
	testCases := []struct {
		name              string
		pullRequestNumber int
		executor          *stubGitHubExecutor
		errorType         any
		expectedSHAs      []string
	}{
		{
			name:              testCommitsSuccessCaseNameConstant,
			pullRequestNumber: 7,
			executor: &stubGitHubExecutor{
				executeFunc: func(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
					return execshell.ExecutionResult{StandardOutput: testPullRequestCommitsPayloadConstant}, nil
				},
			},
			expectedSHAs: []string{"0123456789abcdef", "fedcba9876543210"},
		},
		{
			name:              testCommitsNumberValidationCaseNameConstant,
			pullRequestNumber: 0,
			executor:          &stubGitHubExecutor{},
			errorType:         githubcli.InvalidInputError{},
		},
		{
			name:              testCommitsCommandFailureCaseNameConstant,
			pullRequestNumber: 7,
			executor: &stubGitHubExecutor{
				executeFunc: func(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
					return execshell.ExecutionResult{}, errors.New("api unavailable")
				},
			},
			errorType: githubcli.OperationError{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client, creationError := githubcli.NewClient(testCase.executor)
			require.NoError(testInstance, creationError)

			commitSHAs, listError := client.ListPullRequestCommits(context.Background(), testOwnerNameConstant, testRepositoryNameConstant, testCase.pullRequestNumber)
			if testCase.errorType != nil {
				require.Error(testInstance, listError)
				require.IsType(testInstance, testCase.errorType, listError)
				return
			}

			require.NoError(testInstance, listError)
			require.Equal(testInstance, testCase.expectedSHAs, commitSHAs)

			require.Len(testInstance, testCase.executor.recordedDetails, 1)
			require.Equal(testInstance,
				[]string{"api", "repos/acme/widgets/pulls/7/commits?per_page=100"},
				testCase.executor.recordedDetails[0].Arguments,
			)
		})
	}
}

func TestIsAvailable(testInstance *testing.T) {
	availableExecutor := &stubGitHubExecutor{}
	client, creationError := githubcli.NewClient(availableExecutor)
	require.NoError(testInstance, creationError)
	require.True(testInstance, client.IsAvailable(context.Background()))

	unavailableExecutor := &stubGitHubExecutor{
		executeFunc: func(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
			return execshell.ExecutionResult{}, errors.New("gh missing")
		},
	}
	unavailableClient, unavailableCreationError := githubcli.NewClient(unavailableExecutor)
	require.NoError(testInstance, unavailableCreationError)
	require.False(testInstance, unavailableClient.IsAvailable(context.Background()))
}
