package gcloud

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aiforge-platform/aiforge-backend/internal/consts"
)

// CloudRunClient deploys endpoint images to Cloud Run and resolves their
// public URLs with the gcloud CLI.
type CloudRunClient struct {
	runner  CommandRunner
	project string
	region  string
}

func NewCloudRunClient(runner CommandRunner, project, region string) *CloudRunClient {
	return &CloudRunClient{runner: runner, project: project, region: region}
}

// Deploy creates or replaces the Cloud Run service for an endpoint. Resource
// limits are platform constants, not user-configurable.
func (c *CloudRunClient) Deploy(ctx context.Context, serviceName, imageTag string, envVars map[string]string) error {
	args := []string{
		"run", "deploy", serviceName,
		"--image", imageTag,
		"--project", c.project,
		"--region", c.region,
		"--memory", consts.CloudRunMemory,
		"--cpu", consts.CloudRunCPU,
		"--timeout", fmt.Sprintf("%ds", consts.CloudRunTimeoutSec),
		"--max-instances", fmt.Sprintf("%d", consts.CloudRunMaxInstances),
		"--port", fmt.Sprintf("%d", consts.CloudRunPort),
		"--allow-unauthenticated",
		"--quiet",
	}
	if len(envVars) > 0 {
		args = append(args, "--set-env-vars", formatEnvVars(envVars))
	}
	_, err := c.runner.Run(ctx, "", "gcloud", args...)
	return err
}

// ServiceURL queries the assigned public URL of a deployed service. An empty
// return means the platform has not resolved one.
func (c *CloudRunClient) ServiceURL(ctx context.Context, serviceName string) (string, error) {
	out, err := c.runner.Run(ctx, "", "gcloud",
		"run", "services", "describe", serviceName,
		"--project", c.project,
		"--region", c.region,
		"--format", "value(status.url)",
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// formatEnvVars renders KEY=VALUE pairs in sorted order so the deploy command
// is deterministic.
func formatEnvVars(envVars map[string]string) string {
	keys := make([]string, 0, len(envVars))
	for k := range envVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, envVars[k]))
	}
	return strings.Join(pairs, ",")
}
