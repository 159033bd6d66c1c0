// Package gcloud drives the external docker and gcloud CLIs that build, push
// and deploy endpoint images. The collaborators are plain CLI contracts; this
// package only assembles arguments and captures output for the build log.
package gcloud

import (
	"context"
	"os/exec"
	"strings"

	"github.com/aiforge-platform/aiforge-backend/internal/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// CommandRunner executes one external command and returns its combined
// output. Tests substitute a fake.
type CommandRunner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (string, error)
}

type execRunner struct{}

// NewCommandRunner returns the os/exec backed runner.
func NewCommandRunner() CommandRunner {
	return &execRunner{}
}

func (execRunner) Run(ctx context.Context, dir string, name string, args ...string) (string, error) {
	logger.Debug("running external command",
		zap.String("command", name),
		zap.String("args", strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return output, errors.Errorf("%s %s failed: %s: %s", name, args[0], err, output)
	}
	return output, nil
}
