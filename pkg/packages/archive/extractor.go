// Package archive normalizes user-uploaded ZIP archives into the canonical
// model package layout.
package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aiforge-platform/aiforge-backend/internal/consts"
	"github.com/aiforge-platform/aiforge-backend/internal/logger"
	"github.com/aiforge-platform/aiforge-backend/pkg/domain/entities"
	"github.com/aiforge-platform/aiforge-backend/pkg/packages/discovery"
	"github.com/aiforge-platform/aiforge-backend/pkg/packages/modelconfig"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const scratchDirName = ".extract"

// Extract unpacks archivePath, strips platform artifacts, collapses a single
// wrapping root folder, materializes the result into destDir/model_package
// and discovers the model artifact set. Failures are reported through the
// result, never a panic.
func Extract(archivePath, destDir string) *entities.ExtractionResult {
	packagePath, err := normalize(archivePath, destDir)
	if err != nil {
		logger.Error("archive extraction failed",
			zap.String("archive", archivePath),
			zap.Error(err))
		return &entities.ExtractionResult{Success: false, Error: err.Error(), ModelFiles: []string{}}
	}

	found, err := discovery.FindArtifacts(packagePath)
	if err != nil {
		return &entities.ExtractionResult{Success: false, Error: err.Error(), ModelFiles: []string{}}
	}

	result := &entities.ExtractionResult{
		Success:          true,
		ExtractedPath:    packagePath,
		ModelFiles:       found.ModelFiles,
		RequirementsPath: found.RequirementsPath,
		InferencePath:    found.InferencePath,
		ConfigPath:       found.ConfigPath,
	}

	// The manifest's declared entry point wins over the fallback name list.
	if found.ConfigPath != "" {
		if cfg, err := modelconfig.Load(found.ConfigPath); err == nil && cfg.EntryPoint != "" {
			declared := filepath.Join(packagePath, cfg.EntryPoint)
			if discovery.FileExists(declared) {
				result.InferencePath = declared
			}
		}
	}

	return result
}

// normalize unpacks into a scratch directory, then moves the (possibly
// unwrapped) tree into destDir/model_package. Entries are moved, not copied.
func normalize(archivePath, destDir string) (string, error) {
	scratch := filepath.Join(destDir, scratchDirName)
	defer os.RemoveAll(scratch)

	if err := unzip(archivePath, scratch); err != nil {
		return "", err
	}

	root, err := collapseSingleRoot(scratch)
	if err != nil {
		return "", err
	}

	packagePath := filepath.Join(destDir, consts.ModelPackageDir)
	if err := os.MkdirAll(packagePath, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create package directory")
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return "", errors.Wrap(err, "failed to list extracted entries")
	}
	for _, entry := range entries {
		src := filepath.Join(root, entry.Name())
		dst := filepath.Join(packagePath, entry.Name())
		if err := os.Rename(src, dst); err != nil {
			return "", errors.Wrapf(err, "failed to move %s into package", entry.Name())
		}
	}

	return packagePath, nil
}

// unzip decompresses the archive into dir, skipping platform artifacts and
// rejecting entries that would escape dir.
func unzip(archivePath, dir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return errors.Wrap(err, "failed to open archive")
	}
	defer reader.Close()

	for _, file := range reader.File {
		if isPlatformArtifact(file.Name) {
			continue
		}

		target := filepath.Join(dir, filepath.Clean(file.Name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			return errors.Errorf("archive entry %q escapes extraction directory", file.Name)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrapf(err, "failed to create %s", file.Name)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.Wrapf(err, "failed to create directory for %s", file.Name)
		}

		src, err := file.Open()
		if err != nil {
			return errors.Wrapf(err, "failed to read archive entry %s", file.Name)
		}
		dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.Mode())
		if err != nil {
			src.Close()
			return errors.Wrapf(err, "failed to create %s", file.Name)
		}
		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return errors.Wrapf(err, "failed to extract %s", file.Name)
		}
	}

	return nil
}

// isPlatformArtifact matches macOS resource forks and hidden marker files
// that compression tools inject into archives.
func isPlatformArtifact(name string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(name), "/") {
		if segment == "__MACOSX" || segment == ".DS_Store" || strings.HasPrefix(segment, "._") {
			return true
		}
	}
	return false
}

// collapseSingleRoot unwraps one level of nesting when the archive contains
// exactly one top-level directory, which is what archives created by zipping
// a named folder look like. Flat and multi-folder layouts are left untouched.
func collapseSingleRoot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrap(err, "failed to list archive root")
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(dir, entries[0].Name()), nil
	}
	return dir, nil
}
