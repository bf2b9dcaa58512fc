package mergenodes

import (
	"strconv"
	"strings"
)

const (
	mergePullRequestPrefixConstant = "Merge pull request #"
	mergeTitleFromPrefixConstant   = "from "
	inlineReferenceOpenConstant    = "(#"
	inlineReferenceCloseConstant   = ")"
	bareReferenceMarkerConstant    = "#"
	subjectWordSeparatorConstant   = " "
	decimalDigitMinimumConstant    = byte('0')
	decimalDigitMaximumConstant    = byte('9')
)

// PullRequestReference is a pull-request number and optional title parsed from
// a merge commit subject.
type PullRequestReference struct {
	Number int
	Title  *string
}

// ExtractPullRequestReference parses a merge commit subject for a pull-request
// reference. Rules apply in order and the first match wins: the standard
// GitHub merge prefix, a trailing "(#N)" squash marker, then the first "#"
// occurrence anywhere in the subject that is followed by at least one digit
// (mid-word markers such as "PR#42" included). A nil result means the subject
// carries no reference.
func ExtractPullRequestReference(subject string) *PullRequestReference {
	if reference := parseMergePrefixSubject(subject); reference != nil {
		return reference
	}
	if reference := parseInlineReferenceSubject(subject); reference != nil {
		return reference
	}
	return parseBareReferenceSubject(subject)
}

func parseMergePrefixSubject(subject string) *PullRequestReference {
	if !strings.HasPrefix(subject, mergePullRequestPrefixConstant) {
		return nil
	}

	remainder := strings.TrimPrefix(subject, mergePullRequestPrefixConstant)
	separatorIndex := strings.Index(remainder, subjectWordSeparatorConstant)
	if separatorIndex == -1 {
		return nil
	}

	pullRequestNumber, parseError := strconv.Atoi(remainder[:separatorIndex])
	if parseError != nil {
		return nil
	}

	titleText := strings.TrimSpace(remainder[separatorIndex+1:])
	titleText = strings.TrimPrefix(titleText, mergeTitleFromPrefixConstant)

	reference := PullRequestReference{Number: pullRequestNumber}
	if len(titleText) > 0 {
		reference.Title = &titleText
	}
	return &reference
}

func parseInlineReferenceSubject(subject string) *PullRequestReference {
	openIndex := strings.Index(subject, inlineReferenceOpenConstant)
	if openIndex == -1 {
		return nil
	}

	closeOffset := strings.Index(subject[openIndex:], inlineReferenceCloseConstant)
	if closeOffset == -1 {
		return nil
	}

	numberText := subject[openIndex+len(inlineReferenceOpenConstant) : openIndex+closeOffset]
	pullRequestNumber, parseError := strconv.Atoi(numberText)
	if parseError != nil {
		return nil
	}

	reference := PullRequestReference{Number: pullRequestNumber}
	titleText := strings.TrimSpace(subject[:openIndex])
	if len(titleText) > 0 {
		reference.Title = &titleText
	}
	return &reference
}

func parseBareReferenceSubject(subject string) *PullRequestReference {
	searchOffset := 0
	for {
		markerOffset := strings.Index(subject[searchOffset:], bareReferenceMarkerConstant)
		if markerOffset == -1 {
			return nil
		}

		digitsStart := searchOffset + markerOffset + len(bareReferenceMarkerConstant)
		digitsEnd := digitsStart
		for digitsEnd < len(subject) && isDecimalDigit(subject[digitsEnd]) {
			digitsEnd++
		}

		if digitsEnd > digitsStart {
			pullRequestNumber, parseError := strconv.Atoi(subject[digitsStart:digitsEnd])
			if parseError == nil {
				return &PullRequestReference{Number: pullRequestNumber}
			}
		}

		searchOffset = digitsStart
	}
}

func isDecimalDigit(candidate byte) bool {
	return candidate >= decimalDigitMinimumConstant && candidate <= decimalDigitMaximumConstant
}
