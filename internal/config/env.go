package config

import (
	"encoding/json"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Environment contains the imported environment variables.
type Environment struct {
	// Port the API server listens on
	Port string `default:"8000"`

	// Postgres connection settings
	PostgresUser     string `split_words:"true" default:"postgres"`
	PostgresHost     string `split_words:"true" default:"localhost"`
	PostgresPassword string `split_words:"true" default:"postgres"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"aiforge"`
	PostgresPort     string `split_words:"true" default:"5432"`

	// Google Cloud surface
	GoogleCloudProject   string `split_words:"true" default:"aiforge-2026"`
	GCSBucketModels      string `envconfig:"GCS_BUCKET_MODELS" default:"aiforge-models"`
	GCSBucketBuild       string `envconfig:"GCS_BUCKET_BUILD" default:"aiforge-build-sources"`
	ArtifactRegistryRepo string `split_words:"true" default:"asia-south1-docker.pkg.dev/aiforge-2026/aiforge-models-repo"`
	CloudRunRegion       string `split_words:"true" default:"asia-south1"`

	// Local path to the serving application source tree copied into every
	// build context
	ServingAppDir string `split_words:"true" default:"./serving-app"`

	// Root under which per-endpoint working directories are created
	WorkspaceRoot string `split_words:"true" default:"./storage/workspaces"`

	// Deployment worker pool
	DeployWorkerCount  int `split_words:"true" default:"5"`
	DeployTaskQueueLen int `split_words:"true" default:"20"`

	// Bound on git clone duration
	CloneTimeoutSec int `split_words:"true" default:"120"`
}

func (e Environment) String() string {
	settings, err := json.MarshalIndent(e, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal env: %v", err).Error()
	}
	return fmt.Sprintf("Environment Settings:\n%s\n", string(settings))
}

// Load reads the optional .env file and then the process environment.
func Load() (*Environment, error) {
	_ = godotenv.Load(".env")

	var env Environment
	if err := envconfig.Process("", &env); err != nil {
		return nil, errors.Wrap(err, "failed to process environment variables")
	}
	return &env, nil
}
