package gitrepo

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/aiforge-platform/aiforge-backend/internal/logger"
	"github.com/aiforge-platform/aiforge-backend/pkg/domain/entities"
	"github.com/aiforge-platform/aiforge-backend/pkg/packages/discovery"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// CloneOptions describe one repository fetch. AccessToken is sensitive and is
// redacted from every log line and error message this package produces.
type CloneOptions struct {
	URL         string
	Branch      string
	Commit      string
	AccessToken string
}

// Clone performs a shallow clone of the repository into destDir, optionally
// checks out a specific commit, strips the .git metadata directory and runs
// artifact discovery over the working tree. Failures are reported through the
// result.
func Clone(ctx context.Context, opts CloneOptions, destDir string) *entities.CloneResult {
	fail := func(err error) *entities.CloneResult {
		msg := redactToken(err.Error(), opts.AccessToken)
		logger.Error("repository clone failed", zap.String("url", opts.URL), zap.String("error", msg))
		return &entities.CloneResult{Success: false, Error: msg, ModelFiles: []string{}}
	}

	provider, err := ValidateURL(opts.URL)
	if err != nil {
		return fail(err)
	}

	cloneURL, err := injectToken(NormalizeCloneURL(opts.URL), provider, opts.AccessToken)
	if err != nil {
		return fail(err)
	}

	args := []string{"clone", "--depth", "1"}
	if opts.Branch != "" {
		args = append(args, "--branch", opts.Branch, "--single-branch")
	}
	args = append(args, cloneURL, destDir)

	if _, err := runGit(ctx, "", opts.AccessToken, args...); err != nil {
		return fail(err)
	}

	if opts.Commit != "" {
		if _, err := runGit(ctx, destDir, opts.AccessToken, "fetch", "--depth", "1", "origin", opts.Commit); err != nil {
			return fail(err)
		}
		if _, err := runGit(ctx, destDir, opts.AccessToken, "checkout", opts.Commit); err != nil {
			return fail(err)
		}
	}

	commitSHA, err := runGit(ctx, destDir, opts.AccessToken, "rev-parse", "HEAD")
	if err != nil {
		return fail(err)
	}
	branch, err := runGit(ctx, destDir, opts.AccessToken, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return fail(err)
	}

	// History metadata is dead weight in a build context.
	if err := os.RemoveAll(filepath.Join(destDir, ".git")); err != nil {
		logger.Warn("failed to strip .git directory", zap.Error(err))
	}

	found, err := discovery.FindArtifacts(destDir)
	if err != nil {
		return fail(err)
	}

	return &entities.CloneResult{
		Success:          true,
		ClonedPath:       destDir,
		Branch:           branch,
		CommitSHA:        commitSHA,
		ModelFiles:       found.ModelFiles,
		RequirementsPath: found.RequirementsPath,
		InferencePath:    found.InferencePath,
	}
}

// runGit executes one git command with interactive credential prompts
// disabled, so a bad token fails fast instead of hanging the deployment.
func runGit(ctx context.Context, dir, token string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return "", errors.Errorf("git %s failed: %s: %s", args[0], err, redactToken(output, token))
	}
	return output, nil
}
