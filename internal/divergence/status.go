package divergence

import "time"

const (
	staleBehindThresholdConstant        = 50
	conflictRiskBehindThresholdConstant = 10
	staleAgeDaysConstant                = 14
	hoursPerDayConstant                 = 24
)

// Status describes how actionable a branch is relative to the mainline.
type Status string

// Branch status values in ascending order of urgency.
const (
	StatusFresh        Status = Status("fresh")
	StatusStale        Status = Status("stale")
	StatusConflictRisk Status = Status("conflict-risk")
)

// ClassifyStatus derives a branch status from its behind count and last commit time.
// Rules apply in priority order; a commit date that does not parse as RFC 3339
// contributes nothing and the branch stays fresh.
func ClassifyStatus(commitsBehind int, lastCommitDate string, evaluationTime time.Time) Status {
	if commitsBehind > staleBehindThresholdConstant {
		return StatusStale
	}
	if commitsBehind > conflictRiskBehindThresholdConstant {
		return StatusConflictRisk
	}

	parsedCommitTime, parseError := time.Parse(time.RFC3339, lastCommitDate)
	if parseError == nil {
		staleCutoff := evaluationTime.Add(-time.Duration(staleAgeDaysConstant*hoursPerDayConstant) * time.Hour)
		if parsedCommitTime.Before(staleCutoff) {
			return StatusStale
		}
	}

	return StatusFresh
}
