// Package discovery holds the directory-walk logic shared by archive
// extraction and repository fetching: locating model artifacts, requirements
// manifests, config manifests and inference entry points inside a normalized
// package directory.
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aiforge-platform/aiforge-backend/internal/consts"
	"github.com/pkg/errors"
)

// Artifacts is the vocabulary of files both extraction paths search for.
// ModelFiles are relative to the searched root; other paths are absolute.
type Artifacts struct {
	ModelFiles       []string
	RequirementsPath string
	ConfigPath       string
	InferencePath    string
}

// Walk visits every regular file under root, skipping the shared exclusion
// directory set, and calls fn with the file's absolute path and info.
func Walk(root string, fn func(path string, info fs.FileInfo) error) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && consts.ExcludedDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		return fn(path, info)
	})
}

// FindArtifacts walks root recursively and collects model files (by
// extension), requirements.txt and model_config.json (case-insensitive exact
// name), and an inference entry point matched against the fallback name list.
func FindArtifacts(root string) (*Artifacts, error) {
	found := &Artifacts{ModelFiles: []string{}}

	err := Walk(root, func(path string, info fs.FileInfo) error {
		base := strings.ToLower(info.Name())
		switch {
		case consts.ModelFileExtensions[filepath.Ext(base)]:
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			found.ModelFiles = append(found.ModelFiles, rel)
		case base == consts.RequirementsFile && found.RequirementsPath == "":
			found.RequirementsPath = path
		case base == consts.ModelConfigFile && found.ConfigPath == "":
			found.ConfigPath = path
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search %s", root)
	}

	for _, name := range consts.InferenceFileNames {
		candidate := filepath.Join(root, name)
		if FileExists(candidate) {
			found.InferencePath = candidate
			break
		}
	}

	return found, nil
}

// TotalSize accumulates the size of every file under root, honoring the
// exclusion set.
func TotalSize(root string) (int64, error) {
	var total int64
	err := Walk(root, func(_ string, info fs.FileInfo) error {
		total += info.Size()
		return nil
	})
	return total, err
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
