package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshSchemePrefixConstant             = "ssh://"
	httpsSchemePrefixConstant           = "https://"
	sshUserInfoPrefixConstant           = "git@"
	userHostDelimiterConstant           = "@"
	scpPathDelimiterConstant            = ":"
	remotePathSeparatorConstant         = "/"
	repositorySuffixConstant            = ".git"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	invalidRemoteURLMessageConstant     = "invalid remote url"
	unknownProtocolMessageConstant      = "unsupported remote protocol"
	sshRemoteTemplateConstant           = "git@%s:%s/%s.git"
	httpsRemoteTemplateConstant         = "https://%s/%s/%s.git"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// UnsupportedProtocolError indicates the provided protocol cannot be formatted.
type UnsupportedProtocolError struct {
	Protocol RemoteProtocol
}

// Error describes the unsupported protocol.
func (protocolError UnsupportedProtocolError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, protocolError.Protocol, unknownProtocolMessageConstant)
}

// ParseRemoteURL converts a textual remote URL into a structured representation.
// Accepted spellings are scp-like SSH (git@host:owner/repo.git), scheme-prefixed
// SSH (ssh://git@host/owner/repo), and HTTPS with or without the .git suffix.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	switch {
	case len(trimmedRemote) == 0:
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	case strings.HasPrefix(trimmedRemote, sshSchemePrefixConstant):
		return parseSSHRemote(remote, strings.TrimPrefix(trimmedRemote, sshSchemePrefixConstant))
	case strings.HasPrefix(trimmedRemote, sshUserInfoPrefixConstant):
		return parseSSHRemote(remote, trimmedRemote)
	case strings.HasPrefix(trimmedRemote, httpsSchemePrefixConstant):
		return parseHTTPSRemote(remote, strings.TrimPrefix(trimmedRemote, httpsSchemePrefixConstant))
	default:
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
}

func parseSSHRemote(original string, remote string) (RemoteURL, error) {
	_, hostAndPath, userFound := strings.Cut(remote, userHostDelimiterConstant)
	if !userFound {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}

	// The scp-like form separates host from path with a colon, the scheme
	// form with a slash.
	host, ownerAndRepository, delimiterFound := strings.Cut(hostAndPath, scpPathDelimiterConstant)
	if !delimiterFound {
		host, ownerAndRepository, delimiterFound = strings.Cut(hostAndPath, remotePathSeparatorConstant)
	}
	if !delimiterFound {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}

	owner, repository, splitError := splitOwnerAndRepository(original, ownerAndRepository)
	if splitError != nil {
		return RemoteURL{}, splitError
	}
	return RemoteURL{Protocol: RemoteProtocolSSH, Host: host, Owner: owner, Repository: repository}, nil
}

func parseHTTPSRemote(original string, remote string) (RemoteURL, error) {
	host, ownerAndRepository, delimiterFound := strings.Cut(remote, remotePathSeparatorConstant)
	if !delimiterFound {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}

	owner, repository, splitError := splitOwnerAndRepository(original, ownerAndRepository)
	if splitError != nil {
		return RemoteURL{}, splitError
	}
	return RemoteURL{Protocol: RemoteProtocolHTTPS, Host: host, Owner: owner, Repository: repository}, nil
}

func splitOwnerAndRepository(original string, ownerAndRepository string) (string, string, error) {
	owner, repositorySegment, delimiterFound := strings.Cut(ownerAndRepository, remotePathSeparatorConstant)
	if !delimiterFound || len(owner) == 0 {
		return "", "", RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}

	repository := strings.TrimSuffix(repositorySegment, repositorySuffixConstant)
	if len(repository) == 0 || strings.Contains(repository, remotePathSeparatorConstant) {
		return "", "", RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}
	return owner, repository, nil
}

// FormatRemoteURL renders a structured remote back into its canonical spelling:
// scp-like for SSH, scheme-prefixed with the .git suffix for HTTPS.
func FormatRemoteURL(remote RemoteURL) (string, error) {
	for _, requiredComponent := range []string{remote.Host, remote.Owner, remote.Repository} {
		if len(strings.TrimSpace(requiredComponent)) == 0 {
			return "", RemoteURLParseError{Input: requiredComponent, Message: requiredValueMessageConstant}
		}
	}

	switch remote.Protocol {
	case RemoteProtocolSSH:
		return fmt.Sprintf(sshRemoteTemplateConstant, remote.Host, remote.Owner, remote.Repository), nil
	case RemoteProtocolHTTPS:
		return fmt.Sprintf(httpsRemoteTemplateConstant, remote.Host, remote.Owner, remote.Repository), nil
	default:
		return "", UnsupportedProtocolError{Protocol: remote.Protocol}
	}
}
