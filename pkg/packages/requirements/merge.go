// Package requirements merges base runtime, framework default and
// user-supplied pip requirements into a single deduplicated manifest.
package requirements

import (
	"regexp"
	"strings"

	"github.com/aiforge-platform/aiforge-backend/internal/logger"
	"github.com/aiforge-platform/aiforge-backend/pkg/domain/entities"
	"go.uber.org/zap"
)

// baseRequirements are the serving runtime's own dependencies, included in
// every merged manifest.
const baseRequirements = `fastapi==0.109.2
uvicorn[standard]==0.27.1
pydantic==2.6.1
pydantic-settings==2.1.0
python-multipart==0.0.9
google-cloud-storage==2.14.0
numpy==1.24.4`

// frameworkDefaults returns the default dependency block for a framework.
// Unknown frameworks fall back to the sklearn defaults; the fallback is an
// explicit branch, not a lookup-miss accident.
func frameworkDefaults(framework entities.Framework) string {
	switch framework {
	case entities.FrameworkSklearn:
		return "scikit-learn==1.3.2\nscipy==1.10.1\njoblib==1.3.2"
	case entities.FrameworkPytorch:
		return "torch==2.1.2\ntorchvision==0.16.2"
	case entities.FrameworkTensorflow:
		return "tensorflow==2.15.0"
	case entities.FrameworkOnnx:
		return "onnx==1.15.0\nonnxruntime==1.16.3"
	case entities.FrameworkCustom:
		return ""
	default:
		logger.Warn("unrecognized framework, falling back to sklearn defaults",
			zap.String("framework", string(framework)))
		return "scikit-learn==1.3.2\nscipy==1.10.1\njoblib==1.3.2"
	}
}

// Base returns the serving runtime's fixed dependency pins, one requirement
// per line. The build spec inlines these into a dedicated image stage so the
// layer is shared across every deployment.
func Base() []string {
	return strings.Split(baseRequirements, "\n")
}

// packageNameRe extracts the leading package-name token of a requirement
// line.
var packageNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*`)

// Merge folds base runtime requirements, framework defaults and user-supplied
// requirements (in that order) into one manifest. Later sources override
// earlier ones per package name, so user pins always win. Lines that do not
// start with a package name (--index-url and friends) are kept verbatim and
// deduplicated by exact text. Output preserves first-seen order and is stable
// under re-merging.
func Merge(framework entities.Framework, userRequirements string) string {
	order := []string{}
	lines := map[string]string{}

	fold := func(block string) {
		for _, raw := range strings.Split(block, "\n") {
			line := strings.TrimSpace(raw)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			key := strings.ToLower(packageNameRe.FindString(line))
			if key == "" {
				// Flags and URLs dedupe on their own full text.
				key = line
			}
			if _, seen := lines[key]; !seen {
				order = append(order, key)
			}
			lines[key] = line
		}
	}

	fold(baseRequirements)
	fold(frameworkDefaults(framework))
	fold(userRequirements)

	var out strings.Builder
	for _, key := range order {
		out.WriteString(lines[key])
		out.WriteString("\n")
	}
	return out.String()
}
