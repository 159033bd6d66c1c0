package buildspec

import (
	"strings"
	"testing"

	"github.com/aiforge-platform/aiforge-backend/pkg/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagesOrdering(t *testing.T) {
	stages := Stages(entities.FrameworkSklearn)

	require.Len(t, stages, 4)
	assert.Equal(t, "base", stages[0].Name)
	assert.Equal(t, "runtime-deps", stages[1].Name)
	assert.Equal(t, "user-deps", stages[2].Name)
	assert.Equal(t, "runtime", stages[3].Name)

	assert.Equal(t, "base", stages[1].From)
	assert.Equal(t, "runtime-deps", stages[2].From)
}

func TestDockerfileCopiesRequirementsBeforeModelPackage(t *testing.T) {
	dockerfile, _, err := GenerateBuildFiles(entities.FrameworkSklearn, entities.DeploymentTypeZipArchive)
	require.NoError(t, err)

	reqIdx := strings.Index(dockerfile, "COPY requirements.txt")
	pkgIdx := strings.Index(dockerfile, "COPY model_package/")
	require.NotEqual(t, -1, reqIdx)
	require.NotEqual(t, -1, pkgIdx)
	assert.Less(t, reqIdx, pkgIdx)
}

func TestDockerfileCopiesModelPackageLast(t *testing.T) {
	dockerfile, _, err := GenerateBuildFiles(entities.FrameworkPytorch, entities.DeploymentTypeSingleFile)
	require.NoError(t, err)

	pkgIdx := strings.Index(dockerfile, "COPY model_package/")
	require.NotEqual(t, -1, pkgIdx)
	assert.Equal(t, pkgIdx, strings.LastIndex(dockerfile, "COPY "))
}

func TestDockerfileSmokeChecksFrameworkImport(t *testing.T) {
	cases := map[entities.Framework]string{
		entities.FrameworkPytorch:    `python -c "import torch"`,
		entities.FrameworkTensorflow: `python -c "import tensorflow"`,
		entities.FrameworkOnnx:       `python -c "import onnxruntime"`,
		entities.FrameworkSklearn:    `python -c "import sklearn"`,
		entities.FrameworkCustom:     `python -c "import numpy"`,
	}
	for framework, want := range cases {
		dockerfile, _, err := GenerateBuildFiles(framework, entities.DeploymentTypeZipArchive)
		require.NoError(t, err)
		assert.Contains(t, dockerfile, want, "framework %s", framework)
	}
}

func TestDockerfileRuntimeEnvironment(t *testing.T) {
	dockerfile, _, err := GenerateBuildFiles(entities.FrameworkSklearn, entities.DeploymentTypeGitRepository)
	require.NoError(t, err)

	assert.Contains(t, dockerfile, "ENV PORT=8080")
	assert.Contains(t, dockerfile, "DOWNLOAD_MODEL_ON_STARTUP=false")
	assert.Contains(t, dockerfile, "PYTHONPATH=/app:/app/model_package")
	assert.Contains(t, dockerfile, "EXPOSE 8080")
	assert.Contains(t, dockerfile, `CMD ["uvicorn", "app.main:app", "--host", "0.0.0.0", "--port", "8080"]`)
}

func TestDockerfileInlinesBaseRuntimeDeps(t *testing.T) {
	dockerfile, _, err := GenerateBuildFiles(entities.FrameworkSklearn, entities.DeploymentTypeZipArchive)
	require.NoError(t, err)

	assert.Contains(t, dockerfile, "RUN pip install 'fastapi==0.109.2'")
	assert.Contains(t, dockerfile, "'uvicorn[standard]==0.27.1'")
}

func TestDockerignoreKeepsModelPackage(t *testing.T) {
	_, dockerignore, err := GenerateBuildFiles(entities.FrameworkSklearn, entities.DeploymentTypeZipArchive)
	require.NoError(t, err)

	lines := strings.Split(dockerignore, "\n")
	assert.Contains(t, lines, "!model_package")
	assert.Contains(t, lines, "!model_package/**")
	assert.Contains(t, lines, ".git")
	assert.Contains(t, lines, "venv")
	assert.Contains(t, lines, "__MACOSX")
}

func TestGenerateBuildFilesMentionsDeploymentContext(t *testing.T) {
	dockerfile, dockerignore, err := GenerateBuildFiles(entities.FrameworkOnnx, entities.DeploymentTypeGitRepository)
	require.NoError(t, err)

	assert.Contains(t, dockerfile, "onnx model endpoint (GIT_REPOSITORY)")
	assert.Contains(t, dockerignore, "GIT_REPOSITORY deployment")
}
