package gcloud

import (
	"context"
	"strings"
)

// DockerClient builds and pushes endpoint images with the docker CLI.
type DockerClient struct {
	runner CommandRunner
}

func NewDockerClient(runner CommandRunner) *DockerClient {
	return &DockerClient{runner: runner}
}

// ConfigureAuth authorizes docker pushes to the Artifact Registry host the
// image tag points at. Must run before the first push in a process.
func (d *DockerClient) ConfigureAuth(ctx context.Context, imageTag string) error {
	host := strings.SplitN(imageTag, "/", 2)[0]
	_, err := d.runner.Run(ctx, "", "gcloud", "auth", "configure-docker", host, "--quiet")
	return err
}

// Build builds the image from workDir. The platform is pinned to linux/amd64
// because Cloud Run runs amd64 regardless of the host architecture, and
// inline caching is enabled so pushed layers seed later builds.
func (d *DockerClient) Build(ctx context.Context, workDir, imageTag string) error {
	_, err := d.runner.Run(ctx, workDir, "docker", "build",
		"--platform", "linux/amd64",
		"--build-arg", "BUILDKIT_INLINE_CACHE=1",
		"-t", imageTag,
		".",
	)
	return err
}

// Push pushes the built image by tag.
func (d *DockerClient) Push(ctx context.Context, imageTag string) error {
	_, err := d.runner.Run(ctx, "", "docker", "push", imageTag)
	return err
}
