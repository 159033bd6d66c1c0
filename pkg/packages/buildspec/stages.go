// Package buildspec synthesizes the container build description for a model
// endpoint: a multi-stage Dockerfile plus its .dockerignore.
//
// The stage ordering is a cache-efficiency invariant: system deps, then the
// fixed serving runtime deps, then user deps, then user model files. The
// most-frequently-changing input (the model package) must invalidate the
// fewest layers.
package buildspec

import (
	"fmt"
	"strings"

	"github.com/aiforge-platform/aiforge-backend/internal/consts"
	"github.com/aiforge-platform/aiforge-backend/pkg/domain/entities"
	"github.com/aiforge-platform/aiforge-backend/pkg/packages/requirements"
)

const pythonImage = "python:3.11-slim"

// Stage is one named stage of the multi-stage build.
type Stage struct {
	Name  string
	From  string
	Lines []string
}

// systemPackages are the OS-level packages native ML libraries link against.
var systemPackages = []string{
	"build-essential",
	"libgomp1",
	"libglib2.0-0",
	"libgl1",
}

// smokeImport returns the module whose import proves the framework installed
// correctly. The build fails loudly on a broken dependency set instead of
// shipping an image that dies at startup.
func smokeImport(framework entities.Framework) string {
	switch framework {
	case entities.FrameworkPytorch:
		return "torch"
	case entities.FrameworkTensorflow:
		return "tensorflow"
	case entities.FrameworkOnnx:
		return "onnxruntime"
	case entities.FrameworkSklearn:
		return "sklearn"
	default:
		return "numpy"
	}
}

// Stages builds the typed stage sequence for one deployment.
func Stages(framework entities.Framework) []Stage {
	return []Stage{
		{
			Name: "base",
			From: pythonImage,
			Lines: []string{
				"ENV PYTHONUNBUFFERED=1 PIP_NO_CACHE_DIR=1",
				"RUN apt-get update && \\",
				fmt.Sprintf("    apt-get install -y --no-install-recommends %s && \\", strings.Join(systemPackages, " ")),
				"    rm -rf /var/lib/apt/lists/*",
			},
		},
		{
			// Inlined fixed pins: this stage's inputs never vary between
			// deployments, so its layers are shared platform-wide.
			Name: "runtime-deps",
			From: "base",
			Lines: []string{
				fmt.Sprintf("RUN pip install %s", quoteAll(requirements.Base())),
			},
		},
		{
			Name: "user-deps",
			From: "runtime-deps",
			Lines: []string{
				// Requirements are copied before any model file so that
				// model-only redeploys reuse the dependency layers.
				"COPY requirements.txt /tmp/requirements.txt",
				"RUN pip install -r /tmp/requirements.txt",
				fmt.Sprintf(`RUN python -c "import %s" || (echo "framework import check failed" && exit 1)`, smokeImport(framework)),
			},
		},
		{
			Name: "runtime",
			From: pythonImage,
			Lines: []string{
				"ENV PYTHONUNBUFFERED=1",
				"WORKDIR /app",
				"COPY --from=user-deps /usr/local/lib/python3.11/site-packages /usr/local/lib/python3.11/site-packages",
				"COPY --from=user-deps /usr/local/bin /usr/local/bin",
				"COPY app/ ./app/",
				// The model package goes last: a model change must never
				// invalidate the dependency layers above.
				fmt.Sprintf("COPY %s/ ./%s/", consts.ModelPackageDir, consts.ModelPackageDir),
				fmt.Sprintf("ENV PORT=%d \\", consts.CloudRunPort),
				"    DOWNLOAD_MODEL_ON_STARTUP=false \\",
				fmt.Sprintf("    PYTHONPATH=/app:/app/%s", consts.ModelPackageDir),
				fmt.Sprintf("EXPOSE %d", consts.CloudRunPort),
				fmt.Sprintf(`CMD ["uvicorn", "app.main:app", "--host", "0.0.0.0", "--port", "%d"]`, consts.CloudRunPort),
			},
		},
	}
}

func quoteAll(lines []string) string {
	quoted := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		quoted = append(quoted, fmt.Sprintf("'%s'", line))
	}
	return strings.Join(quoted, " ")
}
