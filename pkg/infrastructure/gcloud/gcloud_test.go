package gcloud

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCommand struct {
	dir  string
	name string
	args []string
}

type fakeRunner struct {
	commands []recordedCommand
	output   string
	err      error
}

func (r *fakeRunner) Run(ctx context.Context, dir string, name string, args ...string) (string, error) {
	r.commands = append(r.commands, recordedCommand{dir: dir, name: name, args: args})
	return r.output, r.err
}

func (r *fakeRunner) last(t *testing.T) recordedCommand {
	t.Helper()
	require.NotEmpty(t, r.commands)
	return r.commands[len(r.commands)-1]
}

func TestConfigureAuthTargetsRegistryHost(t *testing.T) {
	runner := &fakeRunner{}
	client := NewDockerClient(runner)

	err := client.ConfigureAuth(context.Background(), "asia-south1-docker.pkg.dev/proj/repo/endpoint-1:latest")
	require.NoError(t, err)

	cmd := runner.last(t)
	assert.Equal(t, "gcloud", cmd.name)
	assert.Equal(t, []string{"auth", "configure-docker", "asia-south1-docker.pkg.dev", "--quiet"}, cmd.args)
}

func TestBuildPinsPlatformAndInlineCache(t *testing.T) {
	runner := &fakeRunner{}
	client := NewDockerClient(runner)

	err := client.Build(context.Background(), "/tmp/work", "registry/repo/img:latest")
	require.NoError(t, err)

	cmd := runner.last(t)
	assert.Equal(t, "docker", cmd.name)
	assert.Equal(t, "/tmp/work", cmd.dir)
	joined := strings.Join(cmd.args, " ")
	assert.Contains(t, joined, "--platform linux/amd64")
	assert.Contains(t, joined, "--build-arg BUILDKIT_INLINE_CACHE=1")
	assert.Contains(t, joined, "-t registry/repo/img:latest")
}

func TestPushPropagatesRunnerError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("denied")}
	client := NewDockerClient(runner)

	err := client.Push(context.Background(), "registry/repo/img:latest")
	assert.Error(t, err)
}

func TestCloudRunDeployUsesPlatformConstants(t *testing.T) {
	runner := &fakeRunner{}
	client := NewCloudRunClient(runner, "test-project", "asia-south1")

	err := client.Deploy(context.Background(), "endpoint-1", "registry/repo/img:latest", map[string]string{
		"B_KEY": "two",
		"A_KEY": "one",
	})
	require.NoError(t, err)

	cmd := runner.last(t)
	assert.Equal(t, "gcloud", cmd.name)
	joined := strings.Join(cmd.args, " ")
	assert.Contains(t, joined, "run deploy endpoint-1")
	assert.Contains(t, joined, "--memory 2Gi")
	assert.Contains(t, joined, "--cpu 2")
	assert.Contains(t, joined, "--timeout 300s")
	assert.Contains(t, joined, "--max-instances 5")
	assert.Contains(t, joined, "--port 8080")
	assert.Contains(t, joined, "--allow-unauthenticated")
	// env vars are rendered sorted so repeat deploys diff cleanly
	assert.Contains(t, joined, "--set-env-vars A_KEY=one,B_KEY=two")
}

func TestCloudRunDeployOmitsEnvFlagWhenEmpty(t *testing.T) {
	runner := &fakeRunner{}
	client := NewCloudRunClient(runner, "test-project", "asia-south1")

	require.NoError(t, client.Deploy(context.Background(), "endpoint-1", "img:latest", nil))

	assert.NotContains(t, strings.Join(runner.last(t).args, " "), "--set-env-vars")
}

func TestServiceURLTrimsOutput(t *testing.T) {
	runner := &fakeRunner{output: "https://endpoint-1-abc.a.run.app\n"}
	client := NewCloudRunClient(runner, "test-project", "asia-south1")

	url, err := client.ServiceURL(context.Background(), "endpoint-1")
	require.NoError(t, err)
	assert.Equal(t, "https://endpoint-1-abc.a.run.app", url)

	cmd := runner.last(t)
	joined := strings.Join(cmd.args, " ")
	assert.Contains(t, joined, "run services describe endpoint-1")
	assert.Contains(t, joined, "--format value(status.url)")
}
