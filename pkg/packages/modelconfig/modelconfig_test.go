package modelconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aiforge-platform/aiforge-backend/pkg/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validManifest = `{
	"name": "sentiment",
	"version": "1.0.0",
	"framework": "sklearn",
	"entry_point": "inference.py",
	"load": {"name": "load_model", "args": ["model_path"]},
	"predict": {"name": "predict", "args": ["input_data"]},
	"model_file": "model.pkl"
}`

func writePackage(t *testing.T, manifest string, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	if manifest != "" {
		require.NoError(t, os.WriteFile(filepath.Join(root, "model_config.json"), []byte(manifest), 0o644))
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func validPackageFiles() map[string]string {
	return map[string]string{
		"inference.py":     "def load_model(model_path): ...\ndef predict(input_data): ...\n",
		"model.pkl":        strings.Repeat("x", 2048),
		"requirements.txt": "numpy==1.26.0\n",
	}
}

func TestValidateAcceptsCompletePackage(t *testing.T) {
	root := writePackage(t, validManifest, validPackageFiles())

	report := Validate(root)

	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
}

func TestValidateMissingManifestIsSingleError(t *testing.T) {
	root := writePackage(t, "", validPackageFiles())

	report := Validate(root)

	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "model_config.json")
}

func TestValidateMalformedManifestIsSingleError(t *testing.T) {
	root := writePackage(t, `{"name": "broken",`, validPackageFiles())

	report := Validate(root)

	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "invalid JSON")
}

func TestValidateFindsManifestCaseInsensitively(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Model_Config.JSON"), []byte(validManifest), 0o644))
	for name, content := range validPackageFiles() {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}

	report := Validate(root)

	assert.True(t, report.Valid)
}

func TestValidateReportsAllMissingRequiredFields(t *testing.T) {
	root := writePackage(t, `{"name": "sentiment", "version": "1.0.0"}`, validPackageFiles())

	report := Validate(root)

	assert.False(t, report.Valid)
	joined := strings.Join(report.Errors, "\n")
	assert.Contains(t, joined, "missing required fields")
	for _, field := range []string{"entry_point", "load", "predict", "model_file", "framework"} {
		assert.Contains(t, joined, field)
	}
}

func TestValidateMissingPredictNamesTheField(t *testing.T) {
	manifest := `{
		"name": "sentiment",
		"version": "1.0.0",
		"framework": "sklearn",
		"entry_point": "inference.py",
		"load": {"name": "load_model", "args": ["model_path"]},
		"model_file": "model.pkl"
	}`
	root := writePackage(t, manifest, validPackageFiles())

	report := Validate(root)

	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "predict")
}

func TestValidateRejectsOutOfVocabularyArgs(t *testing.T) {
	manifest := `{
		"name": "sentiment",
		"version": "1.0.0",
		"framework": "sklearn",
		"entry_point": "inference.py",
		"load": {"name": "load_model", "args": ["weights_url"]},
		"predict": {"name": "predict", "args": ["raw_request"]},
		"model_file": "model.pkl"
	}`
	root := writePackage(t, manifest, validPackageFiles())

	report := Validate(root)

	assert.False(t, report.Valid)
	joined := strings.Join(report.Errors, "\n")
	assert.Contains(t, joined, "load.args")
	assert.Contains(t, joined, "weights_url")
	assert.Contains(t, joined, "predict.args")
	assert.Contains(t, joined, "raw_request")
}

func TestValidateClassEntryPointRequiresClassName(t *testing.T) {
	manifest := `{
		"name": "sentiment",
		"version": "1.0.0",
		"framework": "sklearn",
		"entry_point": "inference.py",
		"entry_point_type": "class",
		"load": {"name": "load", "args": ["model_path"]},
		"predict": {"name": "predict", "args": ["input_data"]},
		"model_file": "model.pkl"
	}`
	root := writePackage(t, manifest, validPackageFiles())

	report := Validate(root)

	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "class_name")
}

func TestValidateRejectsUnknownFramework(t *testing.T) {
	manifest := strings.Replace(validManifest, `"sklearn"`, `"caffe"`, 1)
	root := writePackage(t, manifest, validPackageFiles())

	report := Validate(root)

	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], `"caffe"`)
}

func TestValidateRejectsMissingDeclaredFiles(t *testing.T) {
	root := writePackage(t, validManifest, map[string]string{
		"requirements.txt": "numpy==1.26.0\n",
	})

	report := Validate(root)

	assert.False(t, report.Valid)
	joined := strings.Join(report.Errors, "\n")
	assert.Contains(t, joined, `entry_point "inference.py" does not exist`)
	assert.Contains(t, joined, `model_file "model.pkl" does not exist`)
}

func TestValidateWarnsOnMissingAuxiliaryFile(t *testing.T) {
	manifest := strings.Replace(validManifest,
		`"model_file": "model.pkl"`,
		`"model_file": "model.pkl", "auxiliary_files": ["vocab.txt"]`, 1)
	root := writePackage(t, manifest, validPackageFiles())

	report := Validate(root)

	assert.True(t, report.Valid)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "vocab.txt")
}

func TestValidateWarnsOnMissingRequirements(t *testing.T) {
	files := validPackageFiles()
	delete(files, "requirements.txt")
	root := writePackage(t, validManifest, files)

	report := Validate(root)

	assert.True(t, report.Valid)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "requirements.txt")
}

func TestValidateWarnsOnTinyModelFile(t *testing.T) {
	files := validPackageFiles()
	files["model.pkl"] = "tiny"
	root := writePackage(t, validManifest, files)

	report := Validate(root)

	assert.True(t, report.Valid)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "smaller than 1 KiB")
}

func TestValidateWarnsOnHygieneDirectories(t *testing.T) {
	files := validPackageFiles()
	files[filepath.Join("venv", "pyvenv.cfg")] = "home = /usr\n"
	root := writePackage(t, validManifest, files)

	report := Validate(root)

	assert.True(t, report.Valid)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "virtual environment")
}

func TestLoadDefaultsEntryPointTypeToModule(t *testing.T) {
	root := writePackage(t, validManifest, nil)

	cfg, err := Load(filepath.Join(root, "model_config.json"))

	require.NoError(t, err)
	assert.Equal(t, entities.EntryPointTypeModule, cfg.EntryPointType)
	assert.Equal(t, "inference.py", cfg.EntryPoint)
}
