package divergence

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/branchscope/internal/gitrepo"
	"github.com/temirov/branchscope/internal/shared"
)

const (
	loggerMissingMessageConstant      = "logger not configured"
	gatewayMissingMessageConstant     = "repository gateway not configured"
	branchSkippedDebugMessageConstant = "branch skipped after command failure"
	logFieldBranchNameConstant        = "branch"
	logFieldFailureConstant           = "failure"
)

// ErrLoggerNotConfigured indicates the service was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)

// ErrRepositoryGatewayNotConfigured indicates the service was constructed without a gateway.
var ErrRepositoryGatewayNotConfigured = errors.New(gatewayMissingMessageConstant)

// RepositoryGateway exposes the git read operations the analyzer relies on.
type RepositoryGateway interface {
	ResolveDefaultBranch(executionContext context.Context, repositoryPath string) (string, error)
	ListLocalBranchNames(executionContext context.Context, repositoryPath string) ([]string, error)
	CountDivergence(executionContext context.Context, repositoryPath string, baseBranch string, branchName string) (int, int, error)
	DescribeLastCommit(executionContext context.Context, repositoryPath string, reference string) (gitrepo.CommitDescription, error)
	FindForkPoint(executionContext context.Context, repositoryPath string, baseBranch string, branchName string) (*gitrepo.ForkPoint, error)
	ResolveRepositoryRoot(executionContext context.Context, repositoryPath string) (string, error)
	GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
}

// GitHubAvailabilityProbe reports whether the GitHub CLI can serve requests.
type GitHubAvailabilityProbe interface {
	IsAvailable(executionContext context.Context) bool
}

// BranchInsight describes one branch's relationship to the mainline.
type BranchInsight struct {
	Name             string  `json:"name"`
	CommitsAhead     int     `json:"commitsAhead"`
	CommitsBehind    int     `json:"commitsBehind"`
	HeadSHA          string  `json:"headSha"`
	LastCommitDate   string  `json:"lastCommitDate"`
	LastCommitAuthor string  `json:"lastCommitAuthor"`
	Status           Status  `json:"status"`
	ForkPointSHA     *string `json:"divergedFromSha,omitempty"`
	ForkPointDate    *string `json:"divergedFromDate,omitempty"`
}

// RepositoryDetails describes the repository under analysis.
type RepositoryDetails struct {
	Name               string `json:"name"`
	Path               string `json:"path"`
	Owner              string `json:"owner,omitempty"`
	Repository         string `json:"repository,omitempty"`
	RemoteURL          string `json:"remoteUrl,omitempty"`
	GitHubCLIAvailable bool   `json:"githubCliAvailable"`
}

// Options configures a branch listing request.
type Options struct {
	RepositoryPath string
	BaseBranch     string
}

// Service computes branch divergence insights for a repository.
type Service struct {
	logger            *zap.Logger
	gateway           RepositoryGateway
	clock             shared.Clock
	availabilityProbe GitHubAvailabilityProbe
}

// NewService constructs a Service from the provided collaborators.
// The clock defaults to system time and the availability probe is optional.
func NewService(logger *zap.Logger, gateway RepositoryGateway, clock shared.Clock, availabilityProbe GitHubAvailabilityProbe) (*Service, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if gateway == nil {
		return nil, ErrRepositoryGatewayNotConfigured
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}

	return &Service{
		logger:            logger,
		gateway:           gateway,
		clock:             clock,
		availabilityProbe: availabilityProbe,
	}, nil
}

// DefaultBranch resolves the mainline branch for the repository.
func (service *Service) DefaultBranch(executionContext context.Context, repositoryPath string) (string, error) {
	return service.gateway.ResolveDefaultBranch(executionContext, repositoryPath)
}

// ListBranches builds one insight per local branch, excluding the base branch.
// A branch whose underlying commands fail is omitted from the listing.
func (service *Service) ListBranches(executionContext context.Context, options Options) ([]BranchInsight, error) {
	baseBranch := strings.TrimSpace(options.BaseBranch)
	if len(baseBranch) == 0 {
		resolvedBase, resolveError := service.gateway.ResolveDefaultBranch(executionContext, options.RepositoryPath)
		if resolveError != nil {
			return nil, resolveError
		}
		baseBranch = resolvedBase
	}

	branchNames, listError := service.gateway.ListLocalBranchNames(executionContext, options.RepositoryPath)
	if listError != nil {
		return nil, listError
	}

	evaluationTime := service.clock.Now()
	branchInsights := make([]BranchInsight, 0, len(branchNames))
	for _, branchName := range branchNames {
		if branchName == baseBranch {
			continue
		}

		branchInsight, buildError := service.buildBranchInsight(executionContext, options.RepositoryPath, baseBranch, branchName, evaluationTime)
		if buildError != nil {
			service.logger.Debug(
				branchSkippedDebugMessageConstant,
				zap.String(logFieldBranchNameConstant, branchName),
				zap.String(logFieldFailureConstant, buildError.Error()),
			)
			continue
		}
		branchInsights = append(branchInsights, branchInsight)
	}

	sort.SliceStable(branchInsights, func(firstIndex int, secondIndex int) bool {
		return branchInsights[firstIndex].LastCommitDate > branchInsights[secondIndex].LastCommitDate
	})

	return branchInsights, nil
}

// DescribeRepository collects the repository identity reported alongside branch
// listings. Remote parsing failures leave the owner, repository, and remote
// URL fields empty; the remote URL is re-serialized so equivalent remote forms
// report one normalized spelling.
func (service *Service) DescribeRepository(executionContext context.Context, repositoryPath string) (RepositoryDetails, error) {
	repositoryRoot, rootError := service.gateway.ResolveRepositoryRoot(executionContext, repositoryPath)
	if rootError != nil {
		return RepositoryDetails{}, rootError
	}

	details := RepositoryDetails{
		Name: filepath.Base(repositoryRoot),
		Path: repositoryRoot,
	}

	remoteURL, remoteError := service.gateway.GetRemoteURL(executionContext, repositoryPath, shared.OriginRemoteNameConstant)
	if remoteError == nil {
		parsedRemote, parseError := gitrepo.ParseRemoteURL(remoteURL)
		if parseError == nil {
			details.Owner = parsedRemote.Owner
			details.Repository = parsedRemote.Repository
			if normalizedRemote, formatError := gitrepo.FormatRemoteURL(parsedRemote); formatError == nil {
				details.RemoteURL = normalizedRemote
			}
		}
	}

	if service.availabilityProbe != nil {
		details.GitHubCLIAvailable = service.availabilityProbe.IsAvailable(executionContext)
	}

	return details, nil
}

func (service *Service) buildBranchInsight(executionContext context.Context, repositoryPath string, baseBranch string, branchName string, evaluationTime time.Time) (BranchInsight, error) {
	commitsBehind, commitsAhead, divergenceError := service.gateway.CountDivergence(executionContext, repositoryPath, baseBranch, branchName)
	if divergenceError != nil {
		return BranchInsight{}, divergenceError
	}

	commitDescription, describeError := service.gateway.DescribeLastCommit(executionContext, repositoryPath, branchName)
	if describeError != nil {
		return BranchInsight{}, describeError
	}

	forkPoint, forkPointError := service.gateway.FindForkPoint(executionContext, repositoryPath, baseBranch, branchName)
	if forkPointError != nil {
		return BranchInsight{}, forkPointError
	}

	branchInsight := BranchInsight{
		Name:             branchName,
		CommitsAhead:     commitsAhead,
		CommitsBehind:    commitsBehind,
		HeadSHA:          commitDescription.SHA,
		LastCommitDate:   commitDescription.CommitDate,
		LastCommitAuthor: commitDescription.AuthorName,
		Status:           ClassifyStatus(commitsBehind, commitDescription.CommitDate, evaluationTime),
	}
	if forkPoint != nil {
		branchInsight.ForkPointSHA = &forkPoint.SHA
		branchInsight.ForkPointDate = &forkPoint.CommitDate
	}

	return branchInsight, nil
}
