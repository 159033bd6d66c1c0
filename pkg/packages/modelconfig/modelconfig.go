// Package modelconfig parses and validates the model_config.json manifest
// that ZIP deployments must carry.
package modelconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aiforge-platform/aiforge-backend/internal/consts"
	"github.com/aiforge-platform/aiforge-backend/pkg/domain/entities"
	"github.com/aiforge-platform/aiforge-backend/pkg/packages/discovery"
	"github.com/pkg/errors"
)

// Load reads and parses a manifest file.
func Load(path string) (*entities.ModelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read model_config.json")
	}
	var cfg entities.ModelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "invalid JSON in model_config.json")
	}
	if cfg.EntryPointType == "" {
		cfg.EntryPointType = entities.EntryPointTypeModule
	}
	return &cfg, nil
}

// findManifest locates model_config.json at the package root,
// case-insensitively.
func findManifest(root string) string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(entry.Name(), consts.ModelConfigFile) {
			return filepath.Join(root, entry.Name())
		}
	}
	return ""
}

// Validate checks an extracted ZIP package against the manifest contract.
// The report is deterministic and total: Valid is true exactly when Errors is
// empty, regardless of warnings.
func Validate(extractedPath string) *entities.ValidationReport {
	report := entities.NewValidationReport()

	manifestPath := findManifest(extractedPath)
	if manifestPath == "" {
		report.AddError("model_config.json not found at package root: ZIP deployments require a manifest describing how to load the model")
		return report
	}

	cfg, err := Load(manifestPath)
	if err != nil {
		report.AddError(err.Error())
		return report
	}

	validateRequiredFields(cfg, report)
	validateFunctions(cfg, report)
	validateFramework(cfg, report)
	validateFiles(cfg, extractedPath, report)
	validateSizes(extractedPath, report)
	validateHygiene(extractedPath, report)

	return report
}

func validateRequiredFields(cfg *entities.ModelConfig, report *entities.ValidationReport) {
	var missing []string
	if cfg.EntryPoint == "" {
		missing = append(missing, "entry_point")
	}
	if cfg.Load == nil {
		missing = append(missing, "load")
	}
	if cfg.Predict == nil {
		missing = append(missing, "predict")
	}
	if cfg.ModelFile == "" {
		missing = append(missing, "model_file")
	}
	if cfg.Framework == "" {
		missing = append(missing, "framework")
	}
	if len(missing) > 0 {
		report.AddError(fmt.Sprintf("model_config.json is missing required fields: %s", strings.Join(missing, ", ")))
	}

	if cfg.EntryPointType == entities.EntryPointTypeClass && cfg.ClassName == "" {
		report.AddError("class_name is required when entry_point_type is \"class\"")
	}
}

func validateFunctions(cfg *entities.ModelConfig, report *entities.ValidationReport) {
	if cfg.Load != nil {
		if cfg.Load.Name == "" {
			report.AddError("load.name must be a non-empty string")
		}
		if bad := outOfVocabulary(cfg.Load.Args, entities.ValidLoadArgs); len(bad) > 0 {
			report.AddError(fmt.Sprintf("load.args contains unsupported values: %s (must be one of: model_path, model_dir)", strings.Join(bad, ", ")))
		}
	}
	if cfg.Predict != nil {
		if cfg.Predict.Name == "" {
			report.AddError("predict.name must be a non-empty string")
		}
		if bad := outOfVocabulary(cfg.Predict.Args, entities.ValidPredictArgs); len(bad) > 0 {
			report.AddError(fmt.Sprintf("predict.args contains unsupported values: %s (must be one of: input_data, data, model)", strings.Join(bad, ", ")))
		}
	}
}

func validateFramework(cfg *entities.ModelConfig, report *entities.ValidationReport) {
	if cfg.Framework == "" {
		return
	}
	if !entities.Framework(cfg.Framework).Valid() {
		report.AddError(fmt.Sprintf("framework %q is not supported (must be one of: sklearn, pytorch, tensorflow, onnx, custom)", cfg.Framework))
	}
}

func validateFiles(cfg *entities.ModelConfig, extractedPath string, report *entities.ValidationReport) {
	if cfg.EntryPoint != "" {
		if !discovery.FileExists(filepath.Join(extractedPath, cfg.EntryPoint)) {
			report.AddError(fmt.Sprintf("entry_point %q does not exist in the package", cfg.EntryPoint))
		}
		if !strings.HasSuffix(cfg.EntryPoint, ".py") {
			report.AddWarning(fmt.Sprintf("entry_point %q does not end in .py", cfg.EntryPoint))
		}
	}

	if cfg.ModelFile != "" && !discovery.FileExists(filepath.Join(extractedPath, cfg.ModelFile)) {
		report.AddError(fmt.Sprintf("model_file %q does not exist in the package", cfg.ModelFile))
	}

	for _, aux := range cfg.AuxiliaryFiles {
		if !discovery.FileExists(filepath.Join(extractedPath, aux)) {
			report.AddWarning(fmt.Sprintf("auxiliary file %q does not exist in the package", aux))
		}
	}

	if !discovery.FileExists(filepath.Join(extractedPath, consts.RequirementsFile)) {
		report.AddWarning("requirements.txt not found; only base runtime dependencies will be installed")
	}
}

func validateSizes(extractedPath string, report *entities.ValidationReport) {
	total, err := discovery.TotalSize(extractedPath)
	if err != nil {
		report.AddWarning(fmt.Sprintf("could not compute package size: %s", err))
		return
	}
	if total > consts.MaxArchivePackageSize {
		report.AddError(fmt.Sprintf("extracted package is %d bytes, exceeding the 5 GiB limit", total))
	}

	_ = discovery.Walk(extractedPath, func(path string, info os.FileInfo) error {
		if info.Size() > consts.LargeFileWarnSize {
			rel, _ := filepath.Rel(extractedPath, path)
			report.AddWarning(fmt.Sprintf("file %q is larger than 1 GiB", rel))
		}
		return nil
	})

	found, err := discovery.FindArtifacts(extractedPath)
	if err != nil {
		return
	}
	for _, model := range found.ModelFiles {
		info, err := os.Stat(filepath.Join(extractedPath, model))
		if err == nil && info.Size() < consts.TinyModelFileSize {
			report.AddWarning(fmt.Sprintf("model file %q is smaller than 1 KiB and may be corrupted", model))
		}
	}
}

// validateHygiene flags directories that should not ship inside a package.
func validateHygiene(extractedPath string, report *entities.ValidationReport) {
	hygiene := map[string]string{
		"__MACOSX": "platform artifact directory",
		".git":     "version control directory",
		".svn":     "version control directory",
		".hg":      "version control directory",
		"venv":     "virtual environment",
		".venv":    "virtual environment",
		"env":      "virtual environment",
	}
	_ = filepath.Walk(extractedPath, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		if kind, ok := hygiene[info.Name()]; ok {
			rel, _ := filepath.Rel(extractedPath, path)
			report.AddWarning(fmt.Sprintf("package contains a %s (%s); it will be excluded from the image", kind, rel))
			return filepath.SkipDir
		}
		return nil
	})
}

func outOfVocabulary(args []string, vocab map[string]bool) []string {
	var bad []string
	for _, arg := range args {
		if !vocab[arg] {
			bad = append(bad, arg)
		}
	}
	return bad
}
