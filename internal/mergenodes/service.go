package mergenodes

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/temirov/branchscope/internal/gitrepo"
)

const (
	loggerMissingMessageConstant  = "logger not configured"
	gatewayMissingMessageConstant = "repository gateway not configured"
	defaultPerPageCountConstant   = 20
)

// ErrLoggerNotConfigured indicates the service was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)

// ErrRepositoryGatewayNotConfigured indicates the service was constructed without a gateway.
var ErrRepositoryGatewayNotConfigured = errors.New(gatewayMissingMessageConstant)

// MergeHistoryGateway reads merge commit windows from a repository branch.
type MergeHistoryGateway interface {
	ResolveDefaultBranch(executionContext context.Context, repositoryPath string) (string, error)
	ListMergeHistory(executionContext context.Context, repositoryPath string, branchName string, skipCount int, maxCount int) ([]gitrepo.MergeRecord, error)
}

// MergeNode is one merge commit annotated with its pull-request reference.
type MergeNode struct {
	FullSHA           string  `json:"sha"`
	ShortSHA          string  `json:"shortSha"`
	PullRequestNumber *int    `json:"prNumber,omitempty"`
	PullRequestTitle  *string `json:"prTitle,omitempty"`
	CommitDate        string  `json:"commitDate"`
}

// Options configures a merge node listing request.
type Options struct {
	RepositoryPath string
	BranchName     string
	Page           int
	PerPage        int
}

// Service pages through merge commits on a branch.
type Service struct {
	logger  *zap.Logger
	gateway MergeHistoryGateway
}

// NewService constructs a Service from the provided collaborators.
func NewService(logger *zap.Logger, gateway MergeHistoryGateway) (*Service, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if gateway == nil {
		return nil, ErrRepositoryGatewayNotConfigured
	}
	return &Service{logger: logger, gateway: gateway}, nil
}

// ListMergeNodes returns one page of merge nodes for the branch together with
// a flag indicating whether another page exists. The gateway is asked for one
// record beyond the page size; that extra record is the has-more signal.
func (service *Service) ListMergeNodes(executionContext context.Context, options Options) ([]MergeNode, bool, error) {
	branchName := options.BranchName
	if len(branchName) == 0 {
		resolvedBranch, resolveError := service.gateway.ResolveDefaultBranch(executionContext, options.RepositoryPath)
		if resolveError != nil {
			return nil, false, resolveError
		}
		branchName = resolvedBranch
	}

	pageNumber := options.Page
	if pageNumber < 0 {
		pageNumber = 0
	}
	perPageCount := options.PerPage
	if perPageCount <= 0 {
		perPageCount = defaultPerPageCountConstant
	}

	skipCount := pageNumber * perPageCount
	mergeRecords, historyError := service.gateway.ListMergeHistory(executionContext, options.RepositoryPath, branchName, skipCount, perPageCount+1)
	if historyError != nil {
		return nil, false, historyError
	}

	hasMore := len(mergeRecords) > perPageCount
	if hasMore {
		mergeRecords = mergeRecords[:perPageCount]
	}

	mergeNodes := make([]MergeNode, 0, len(mergeRecords))
	for _, mergeRecord := range mergeRecords {
		mergeNode := MergeNode{
			FullSHA:    mergeRecord.FullSHA,
			ShortSHA:   mergeRecord.ShortSHA,
			CommitDate: mergeRecord.CommitDate,
		}
		if reference := ExtractPullRequestReference(mergeRecord.Subject); reference != nil {
			mergeNode.PullRequestNumber = &reference.Number
			mergeNode.PullRequestTitle = reference.Title
		}
		mergeNodes = append(mergeNodes, mergeNode)
	}

	return mergeNodes, hasMore, nil
}
