package pullrequests_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/branchscope/internal/githubcli"
	"github.com/temirov/branchscope/internal/pullrequests"
)

const (
	testOwnerNameConstant      = "acme"
	testRepositoryNameConstant = "widgets"
	testBaseBranchConstant     = "main"
)

func stringPointer(value string) *string {
	return &value
}

func intPointer(value int) *int {
	return &value
}

type stubPullRequestClient struct {
	closedPullRequests []githubcli.ClosedPullRequest
	listError          error
	commitsByNumber    map[int][]string
	failingNumbers     map[int]error
	recordedPerPage    int

	mutex           sync.Mutex
	recordedNumbers []int
}

func (client *stubPullRequestClient) ListClosedPullRequests(executionContext context.Context, owner string, repository string, baseBranch string, perPage int) ([]githubcli.ClosedPullRequest, error) {
	client.recordedPerPage = perPage
	if client.listError != nil {
		return nil, client.listError
	}
	return client.closedPullRequests, nil
}

func (client *stubPullRequestClient) ListPullRequestCommits(executionContext context.Context, owner string, repository string, pullRequestNumber int) ([]string, error) {
	client.mutex.Lock()
	client.recordedNumbers = append(client.recordedNumbers, pullRequestNumber)
	client.mutex.Unlock()

	if lookupError, failureFound := client.failingNumbers[pullRequestNumber]; failureFound {
		return nil, lookupError
	}
	return client.commitsByNumber[pullRequestNumber], nil
}

func TestNewServiceValidation(testInstance *testing.T) {
	_, missingLoggerError := pullrequests.NewService(nil, &stubPullRequestClient{})
	require.ErrorIs(testInstance, missingLoggerError, pullrequests.ErrLoggerNotConfigured)

	_, missingClientError := pullrequests.NewService(zap.NewNop(), nil)
	require.ErrorIs(testInstance, missingClientError, pullrequests.ErrPullRequestClientNotConfigured)
}

func TestListMergedFiltersUnmergedRecords(testInstance *testing.T) {
	client := &stubPullRequestClient{
		closedPullRequests: []githubcli.ClosedPullRequest{
			{
				Number:         7,
				Title:          "Improve login",
				HeadRefName:    "feature/login",
				AuthorLogin:    "alice",
				CreatedAt:      "2026-08-01T00:00:00Z",
				MergedAt:       stringPointer("2026-08-02T00:00:00Z"),
				MergeCommitSHA: stringPointer("abc123def456"),
			},
			{
				Number:      8,
				Title:       "Closed without merging",
				HeadRefName: "feature/abandoned",
				AuthorLogin: "bob",
				CreatedAt:   "2026-08-01T00:00:00Z",
			},
			{
				Number:         9,
				Title:          "Merged but sha missing",
				HeadRefName:    "feature/partial",
				AuthorLogin:    "carol",
				CreatedAt:      "2026-08-01T00:00:00Z",
				MergedAt:       stringPointer("2026-08-03T00:00:00Z"),
			},
		},
	}

	service, creationError := pullrequests.NewService(zap.NewNop(), client)
	require.NoError(testInstance, creationError)

	mergedPullRequests, listError := service.ListMerged(context.Background(), pullrequests.Options{
		Owner:      testOwnerNameConstant,
		Repository: testRepositoryNameConstant,
		BaseBranch: testBaseBranchConstant,
		Limit:      5,
	})
	require.NoError(testInstance, listError)
	require.Len(testInstance, mergedPullRequests, 1)
	require.Equal(testInstance, 7, mergedPullRequests[0].Number)
	require.Equal(testInstance, "feature/login", mergedPullRequests[0].BranchName)
	require.Equal(testInstance, "2026-08-02T00:00:00Z", mergedPullRequests[0].MergedAt)
	require.Equal(testInstance, "abc123def456", mergedPullRequests[0].MergeCommitSHA)
	require.Equal(testInstance, 1, mergedPullRequests[0].CommitCount)
	require.Equal(testInstance, 10, client.recordedPerPage)
}

func TestListMergedCarriesReportedCommitCount(testInstance *testing.T) {
	client := &stubPullRequestClient{
		closedPullRequests: []githubcli.ClosedPullRequest{
			{
				Number:         11,
				HeadRefName:    "feature/counted",
				MergedAt:       stringPointer("2026-08-02T00:00:00Z"),
				MergeCommitSHA: stringPointer("abc123def456"),
				CommitCount:    intPointer(5),
			},
			{
				Number:         12,
				HeadRefName:    "feature/uncounted",
				MergedAt:       stringPointer("2026-08-03T00:00:00Z"),
				MergeCommitSHA: stringPointer("def456abc123"),
			},
		},
	}

	service, creationError := pullrequests.NewService(zap.NewNop(), client)
	require.NoError(testInstance, creationError)

	mergedPullRequests, listError := service.ListMerged(context.Background(), pullrequests.Options{
		Owner:      testOwnerNameConstant,
		Repository: testRepositoryNameConstant,
		BaseBranch: testBaseBranchConstant,
		Limit:      5,
	})
	require.NoError(testInstance, listError)
	require.Len(testInstance, mergedPullRequests, 2)
	require.Equal(testInstance, 5, mergedPullRequests[0].CommitCount)
	require.Equal(testInstance, 1, mergedPullRequests[1].CommitCount)
}

func TestListMergedTruncatesToLimit(testInstance *testing.T) {
	closedPullRequests := make([]githubcli.ClosedPullRequest, 0, 6)
	for pullRequestNumber := 1; pullRequestNumber <= 6; pullRequestNumber++ {
		closedPullRequests = append(closedPullRequests, githubcli.ClosedPullRequest{
			Number:         pullRequestNumber,
			MergedAt:       stringPointer("2026-08-02T00:00:00Z"),
			MergeCommitSHA: stringPointer("abc123"),
		})
	}

	client := &stubPullRequestClient{closedPullRequests: closedPullRequests}
	service, creationError := pullrequests.NewService(zap.NewNop(), client)
	require.NoError(testInstance, creationError)

	mergedPullRequests, listError := service.ListMerged(context.Background(), pullrequests.Options{
		Owner:      testOwnerNameConstant,
		Repository: testRepositoryNameConstant,
		BaseBranch: testBaseBranchConstant,
		Limit:      4,
	})
	require.NoError(testInstance, listError)
	require.Len(testInstance, mergedPullRequests, 4)
	require.Equal(testInstance, 8, client.recordedPerPage)
}

func TestListMergedPropagatesListingFailure(testInstance *testing.T) {
	client := &stubPullRequestClient{listError: githubcli.OperationError{Operation: "ListClosedPullRequests", Cause: errors.New("api unavailable")}}
	service, creationError := pullrequests.NewService(zap.NewNop(), client)
	require.NoError(testInstance, creationError)

	_, listError := service.ListMerged(context.Background(), pullrequests.Options{
		Owner:      testOwnerNameConstant,
		Repository: testRepositoryNameConstant,
		BaseBranch: testBaseBranchConstant,
	})
	require.Error(testInstance, listError)
	operationFailure := githubcli.OperationError{}
	require.ErrorAs(testInstance, listError, &operationFailure)
}

func TestCommitShortHashesPartialFailure(testInstance *testing.T) {
	client := &stubPullRequestClient{
		commitsByNumber: map[int][]string{
			1: {"0123456789abcdef", "fedcba9876543210"},
			2: {"aaaa"},
		},
		failingNumbers: map[int]error{
			3: errors.New("api unavailable"),
		},
	}

	service, creationError := pullrequests.NewService(zap.NewNop(), client)
	require.NoError(testInstance, creationError)

	shortHashesByNumber := service.CommitShortHashes(context.Background(), testOwnerNameConstant, testRepositoryNameConstant, []int{1, 2, 3})
	require.Len(testInstance, shortHashesByNumber, 2)
	require.Equal(testInstance, []string{"0123456", "fedcba9"}, shortHashesByNumber[1])
	require.Equal(testInstance, []string{"aaaa"}, shortHashesByNumber[2])
	require.NotContains(testInstance, shortHashesByNumber, 3)
	require.ElementsMatch(testInstance, []int{1, 2, 3}, client.recordedNumbers)
}
