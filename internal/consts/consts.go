package consts

// ModelPackageDir is the canonical directory name every extraction path
// normalizes a user upload into. The serving runtime expects model files at
// /app/model_package inside the built image.
const ModelPackageDir = "model_package"

const (
	RequirementsFile = "requirements.txt"
	ModelConfigFile  = "model_config.json"
	ReadmeFile       = "README.md"
)

// Size limits enforced during validation.
const (
	MaxArchivePackageSize = int64(5) << 30 // 5 GiB, extracted ZIP total
	MaxRepositorySize     = int64(1) << 30 // 1 GiB, cloned repo after .git strip
	LargeFileWarnSize     = int64(1) << 30 // per-file warning threshold
	TinyModelFileSize     = int64(1) << 10 // model files below this smell corrupted
)

// ModelFileExtensions is the recognized model-artifact extension set, shared
// by archive extraction and repository discovery.
var ModelFileExtensions = map[string]bool{
	".pkl":         true,
	".pickle":      true,
	".pt":          true,
	".pth":         true,
	".h5":          true,
	".keras":       true,
	".onnx":        true,
	".joblib":      true,
	".pb":          true,
	".tflite":      true,
	".mlmodel":     true,
	".safetensors": true,
	".pmml":        true,
}

// ExcludedDirs are never descended into during artifact discovery.
var ExcludedDirs = map[string]bool{
	"__pycache__":  true,
	".git":         true,
	".svn":         true,
	".hg":          true,
	"venv":         true,
	".venv":        true,
	"env":          true,
	"node_modules": true,
	"__MACOSX":     true,
	".idea":        true,
	".vscode":      true,
}

// InferenceFileNames is the fallback entry-point search order when the
// manifest does not declare one.
var InferenceFileNames = []string{"inference.py", "predict.py", "model.py", "handler.py"}

// Cloud Run resource limits. Fixed for every endpoint; not user-configurable.
const (
	CloudRunMemory       = "2Gi"
	CloudRunCPU          = "2"
	CloudRunTimeoutSec   = 300
	CloudRunMaxInstances = 5
	CloudRunPort         = 8080
)
