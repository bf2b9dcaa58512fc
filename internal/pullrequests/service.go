package pullrequests

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/branchscope/internal/githubcli"
)

const (
	loggerMissingMessageConstant      = "logger not configured"
	clientMissingMessageConstant      = "pull request client not configured"
	commitLookupFailedDebugMessage    = "commit lookup skipped after request failure"
	logFieldPullRequestNumberConstant = "pull_request_number"
	logFieldFailureConstant           = "failure"
	defaultMergedLimitConstant        = 10
	overFetchMultiplierConstant       = 2
	shortHashLengthConstant           = 7
	fallbackCommitCountConstant       = 1
)

// ErrLoggerNotConfigured indicates the service was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)

// ErrPullRequestClientNotConfigured indicates the service was constructed without a client.
var ErrPullRequestClientNotConfigured = errors.New(clientMissingMessageConstant)

// PullRequestClient exposes the GitHub CLI operations the correlator relies on.
type PullRequestClient interface {
	ListClosedPullRequests(executionContext context.Context, owner string, repository string, baseBranch string, perPage int) ([]githubcli.ClosedPullRequest, error)
	ListPullRequestCommits(executionContext context.Context, owner string, repository string, pullRequestNumber int) ([]string, error)
}

// MergedPullRequest is a pull request that was merged into the base branch.
type MergedPullRequest struct {
	Number          int    `json:"number"`
	Title           string `json:"title"`
	BranchName      string `json:"branchName"`
	AuthorLogin     string `json:"authorLogin"`
	AuthorAvatarURL string `json:"authorAvatarUrl"`
	CreatedAt       string `json:"createdAt"`
	MergedAt        string `json:"mergedAt"`
	MergeCommitSHA  string `json:"mergeCommitSha"`
	CommitCount     int    `json:"commitCount"`
}

// Options configures a merged pull request listing request.
type Options struct {
	Owner      string
	Repository string
	BaseBranch string
	Limit      int
}

// Service correlates merged pull requests with repository history.
type Service struct {
	logger *zap.Logger
	client PullRequestClient
}

// NewService constructs a Service from the provided collaborators.
func NewService(logger *zap.Logger, client PullRequestClient) (*Service, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if client == nil {
		return nil, ErrPullRequestClientNotConfigured
	}
	return &Service{logger: logger, client: client}, nil
}

// ListMerged returns up to Limit merged pull requests targeting the base branch.
// The closed listing is over-fetched because it mixes merged and unmerged
// records; the doubled page size is a best-effort bound, not an exact count.
func (service *Service) ListMerged(executionContext context.Context, options Options) ([]MergedPullRequest, error) {
	resultLimit := options.Limit
	if resultLimit <= 0 {
		resultLimit = defaultMergedLimitConstant
	}

	closedPullRequests, listError := service.client.ListClosedPullRequests(
		executionContext,
		options.Owner,
		options.Repository,
		options.BaseBranch,
		resultLimit*overFetchMultiplierConstant,
	)
	if listError != nil {
		return nil, listError
	}

	mergedPullRequests := make([]MergedPullRequest, 0, resultLimit)
	for _, closedPullRequest := range closedPullRequests {
		if closedPullRequest.MergedAt == nil || closedPullRequest.MergeCommitSHA == nil {
			continue
		}
		commitCount := fallbackCommitCountConstant
		if closedPullRequest.CommitCount != nil {
			commitCount = *closedPullRequest.CommitCount
		}
		mergedPullRequests = append(mergedPullRequests, MergedPullRequest{
			Number:          closedPullRequest.Number,
			Title:           closedPullRequest.Title,
			BranchName:      closedPullRequest.HeadRefName,
			AuthorLogin:     closedPullRequest.AuthorLogin,
			AuthorAvatarURL: closedPullRequest.AuthorAvatarURL,
			CreatedAt:       closedPullRequest.CreatedAt,
			MergedAt:        *closedPullRequest.MergedAt,
			MergeCommitSHA:  *closedPullRequest.MergeCommitSHA,
			CommitCount:     commitCount,
		})
		if len(mergedPullRequests) == resultLimit {
			break
		}
	}

	return mergedPullRequests, nil
}

// CommitShortHashes fetches the commit short hashes of each pull request concurrently.
// A pull request whose lookup fails contributes no entry; the map always covers
// exactly the numbers that succeeded.
func (service *Service) CommitShortHashes(executionContext context.Context, owner string, repository string, pullRequestNumbers []int) map[int][]string {
	shortHashesByNumber := make(map[int][]string, len(pullRequestNumbers))
	var resultMutex sync.Mutex

	lookupGroup, groupContext := errgroup.WithContext(executionContext)
	for _, pullRequestNumber := range pullRequestNumbers {
		pullRequestNumber := pullRequestNumber
		lookupGroup.Go(func() error {
			commitSHAs, lookupError := service.client.ListPullRequestCommits(groupContext, owner, repository, pullRequestNumber)
			if lookupError != nil {
				service.logger.Debug(
					commitLookupFailedDebugMessage,
					zap.Int(logFieldPullRequestNumberConstant, pullRequestNumber),
					zap.String(logFieldFailureConstant, lookupError.Error()),
				)
				return nil
			}

			shortHashes := make([]string, 0, len(commitSHAs))
			for _, commitSHA := range commitSHAs {
				shortHashes = append(shortHashes, truncateToShortHash(commitSHA))
			}

			resultMutex.Lock()
			shortHashesByNumber[pullRequestNumber] = shortHashes
			resultMutex.Unlock()
			return nil
		})
	}

	_ = lookupGroup.Wait()
	return shortHashesByNumber
}

func truncateToShortHash(commitSHA string) string {
	if len(commitSHA) <= shortHashLengthConstant {
		return commitSHA
	}
	return commitSHA[:shortHashLengthConstant]
}
