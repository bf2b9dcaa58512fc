package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/branchscope/internal/divergence"
	"github.com/temirov/branchscope/internal/execshell"
	"github.com/temirov/branchscope/internal/gitrepo"
	"github.com/temirov/branchscope/internal/mergenodes"
)

const (
	gitExecutableNameConstant          = "git"
	gitUnavailableSkipMessageConstant  = "git executable not available"
	integrationTimeoutConstant         = 30 * time.Second
	committerNameConfigConstant        = "user.name=Integration Tester"
	committerEmailConfigConstant       = "user.email=tester@example.com"
	committerNameConstant              = "Integration Tester"
	mainlineBranchNameConstant         = "main"
	topicBranchNameConstant            = "topic"
	featureBranchNameConstant          = "feature"
	mergeCommitSubjectConstant         = "Merge pull request #7 from alice/feature"
	expectedPullRequestNumberConstant  = 7
	expectedPullRequestTitleConstant   = "alice/feature"
	expectedTopicCommitsAheadConstant  = 1
	expectedTopicCommitsBehindConstant = 3
)

func runGitCommand(testInstance *testing.T, repositoryPath string, arguments ...string) {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), integrationTimeoutConstant)
	defer cancel()

	fullArguments := append([]string{"-C", repositoryPath, "-c", committerNameConfigConstant, "-c", committerEmailConfigConstant}, arguments...)
	command := exec.CommandContext(executionContext, gitExecutableNameConstant, fullArguments...)
	outputBytes, runError := command.CombinedOutput()
	require.NoError(testInstance, runError, string(outputBytes))
}

func writeRepositoryFile(testInstance *testing.T, repositoryPath string, fileName string, content string) {
	testInstance.Helper()

	writeError := os.WriteFile(filepath.Join(repositoryPath, fileName), []byte(content), 0o600)
	require.NoError(testInstance, writeError)
}

func prepareFixtureRepository(testInstance *testing.T) string {
	testInstance.Helper()

	repositoryPath := testInstance.TempDir()

	runGitCommand(testInstance, repositoryPath, "init")
	runGitCommand(testInstance, repositoryPath, "symbolic-ref", "HEAD", "refs/heads/"+mainlineBranchNameConstant)

	writeRepositoryFile(testInstance, repositoryPath, "a.txt", "a\n")
	runGitCommand(testInstance, repositoryPath, "add", ".")
	runGitCommand(testInstance, repositoryPath, "commit", "-m", "initial")

	runGitCommand(testInstance, repositoryPath, "checkout", "-b", topicBranchNameConstant)
	writeRepositoryFile(testInstance, repositoryPath, "b.txt", "b\n")
	runGitCommand(testInstance, repositoryPath, "add", ".")
	runGitCommand(testInstance, repositoryPath, "commit", "-m", "topic work")

	runGitCommand(testInstance, repositoryPath, "checkout", mainlineBranchNameConstant)
	writeRepositoryFile(testInstance, repositoryPath, "c.txt", "c\n")
	runGitCommand(testInstance, repositoryPath, "add", ".")
	runGitCommand(testInstance, repositoryPath, "commit", "-m", "mainline work")

	runGitCommand(testInstance, repositoryPath, "checkout", "-b", featureBranchNameConstant)
	writeRepositoryFile(testInstance, repositoryPath, "d.txt", "d\n")
	runGitCommand(testInstance, repositoryPath, "add", ".")
	runGitCommand(testInstance, repositoryPath, "commit", "-m", "feature work")

	runGitCommand(testInstance, repositoryPath, "checkout", mainlineBranchNameConstant)
	runGitCommand(testInstance, repositoryPath, "merge", "--no-ff", featureBranchNameConstant, "-m", mergeCommitSubjectConstant)

	return repositoryPath
}

func buildRepositoryManager(testInstance *testing.T) *gitrepo.RepositoryManager {
	testInstance.Helper()

	shellExecutor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner(), false)
	require.NoError(testInstance, executorError)

	repositoryManager, managerError := gitrepo.NewRepositoryManager(shellExecutor)
	require.NoError(testInstance, managerError)

	return repositoryManager
}

func TestBranchDivergenceAgainstRealRepository(testInstance *testing.T) {
	if _, lookupError := exec.LookPath(gitExecutableNameConstant); lookupError != nil {
		testInstance.Skip(gitUnavailableSkipMessageConstant)
	}

	repositoryPath := prepareFixtureRepository(testInstance)
	repositoryManager := buildRepositoryManager(testInstance)

	resolvedDefaultBranch, resolveError := repositoryManager.ResolveDefaultBranch(context.Background(), repositoryPath)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, mainlineBranchNameConstant, resolvedDefaultBranch)

	divergenceService, serviceError := divergence.NewService(zap.NewNop(), repositoryManager, nil, nil)
	require.NoError(testInstance, serviceError)

	branchInsights, listError := divergenceService.ListBranches(context.Background(), divergence.Options{
		RepositoryPath: repositoryPath,
		BaseBranch:     mainlineBranchNameConstant,
	})
	require.NoError(testInstance, listError)

	insightsByName := map[string]divergence.BranchInsight{}
	for _, branchInsight := range branchInsights {
		insightsByName[branchInsight.Name] = branchInsight
	}

	topicInsight, topicPresent := insightsByName[topicBranchNameConstant]
	require.True(testInstance, topicPresent)
	require.Equal(testInstance, expectedTopicCommitsAheadConstant, topicInsight.CommitsAhead)
	require.Equal(testInstance, expectedTopicCommitsBehindConstant, topicInsight.CommitsBehind)
	require.Equal(testInstance, committerNameConstant, topicInsight.LastCommitAuthor)
	require.Equal(testInstance, divergence.StatusFresh, topicInsight.Status)
	require.NotEmpty(testInstance, topicInsight.HeadSHA)

	featureInsight, featurePresent := insightsByName[featureBranchNameConstant]
	require.True(testInstance, featurePresent)
	require.Zero(testInstance, featureInsight.CommitsAhead)
}

func TestMergeNodeExtractionAgainstRealRepository(testInstance *testing.T) {
	if _, lookupError := exec.LookPath(gitExecutableNameConstant); lookupError != nil {
		testInstance.Skip(gitUnavailableSkipMessageConstant)
	}

	repositoryPath := prepareFixtureRepository(testInstance)
	repositoryManager := buildRepositoryManager(testInstance)

	mergeService, serviceError := mergenodes.NewService(zap.NewNop(), repositoryManager)
	require.NoError(testInstance, serviceError)

	mergeNodes, hasMore, listError := mergeService.ListMergeNodes(context.Background(), mergenodes.Options{
		RepositoryPath: repositoryPath,
		BranchName:     mainlineBranchNameConstant,
	})
	require.NoError(testInstance, listError)
	require.False(testInstance, hasMore)
	require.Len(testInstance, mergeNodes, 1)

	mergeNode := mergeNodes[0]
	require.NotNil(testInstance, mergeNode.PullRequestNumber)
	require.Equal(testInstance, expectedPullRequestNumberConstant, *mergeNode.PullRequestNumber)
	require.NotNil(testInstance, mergeNode.PullRequestTitle)
	require.Equal(testInstance, expectedPullRequestTitleConstant, *mergeNode.PullRequestTitle)
	require.NotEmpty(testInstance, mergeNode.ShortSHA)
	require.True(testInstance, strings.HasPrefix(mergeNode.FullSHA, mergeNode.ShortSHA))
}
