// Package gitrepo fetches Git-hosted model repositories via the git CLI and
// normalizes them into deployable packages.
package gitrepo

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Provider identifies the repository host, which determines the credential
// convention used for authenticated clones.
type Provider string

const (
	ProviderGitHub Provider = "github"
	ProviderGitLab Provider = "gitlab"
	ProviderOther  Provider = "other"
)

// ValidateURL checks that rawURL is an HTTP(S) repository URL and detects its
// provider. github.com and gitlab.com URLs must have the host/owner/repo
// shape.
func ValidateURL(rawURL string) (Provider, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(err, "invalid repository URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.Errorf("repository URL must use http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", errors.New("repository URL has no host")
	}

	provider := ProviderOther
	switch parsed.Host {
	case "github.com", "www.github.com":
		provider = ProviderGitHub
	case "gitlab.com", "www.gitlab.com":
		provider = ProviderGitLab
	}

	if provider != ProviderOther {
		segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
		if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
			return "", errors.Errorf("%s URLs must look like https://%s/owner/repo", provider, parsed.Host)
		}
	}

	return provider, nil
}

// NormalizeCloneURL appends the .git suffix expected by the clone command.
func NormalizeCloneURL(rawURL string) string {
	if strings.HasSuffix(rawURL, ".git") {
		return rawURL
	}
	return rawURL + ".git"
}

// injectToken embeds an access token into the clone URL using the host's
// convention: GitHub takes the token as the basic-auth username, GitLab takes
// "oauth2" as the username and the token as the password. The returned URL is
// sensitive and must never be logged.
func injectToken(cloneURL string, provider Provider, token string) (string, error) {
	if token == "" {
		return cloneURL, nil
	}
	parsed, err := url.Parse(cloneURL)
	if err != nil {
		return "", errors.Wrap(err, "invalid clone URL")
	}
	switch provider {
	case ProviderGitLab:
		parsed.User = url.UserPassword("oauth2", token)
	default:
		parsed.User = url.User(token)
	}
	return parsed.String(), nil
}

// redactToken removes a token from text destined for logs or error messages.
func redactToken(text, token string) string {
	if token == "" {
		return text
	}
	return strings.ReplaceAll(text, token, "****")
}
