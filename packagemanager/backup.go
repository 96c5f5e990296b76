package packagemanager

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/safedep/dry/log"
)

// BackupSuffix marks backup artifacts written next to the originals.
// The installed packages directory backup is additionally hidden with a
// leading dot, e.g. node_modules is backed up to .node_modules.tryout
const BackupSuffix = ".tryout"

// adapterState holds the paths one adapter works on during a run.
type adapterState struct {
	projectDir         string
	manifestPath       string
	manifestBackupPath string
	packagesDir        string
	packagesBackupDir  string
}

func newAdapterState(projectDir, manifestFile, packagesDir string) adapterState {
	return adapterState{
		projectDir:         projectDir,
		manifestPath:       filepath.Join(projectDir, manifestFile),
		manifestBackupPath: filepath.Join(projectDir, manifestFile+BackupSuffix),
		packagesDir:        filepath.Join(projectDir, packagesDir),
		packagesBackupDir:  filepath.Join(projectDir, "."+strings.TrimPrefix(packagesDir, ".")+BackupSuffix),
	}
}

func (s *adapterState) hasBackup() bool {
	return pathExists(s.manifestBackupPath) || pathExists(s.packagesBackupDir)
}

// backup copies the manifest and the packages directory. A partial backup is
// removed before returning an error.
func (s *adapterState) backup() error {
	if err := copyFile(s.manifestPath, s.manifestBackupPath); err != nil {
		_ = os.Remove(s.manifestBackupPath)
		return fmt.Errorf("failed to back up %s: %w", s.manifestPath, err)
	}

	if err := copyDir(s.packagesDir, s.packagesBackupDir); err != nil {
		_ = os.Remove(s.manifestBackupPath)
		_ = os.RemoveAll(s.packagesBackupDir)
		return fmt.Errorf("failed to back up %s: %w", s.packagesDir, err)
	}

	return nil
}

// restore replaces the live manifest and packages directory with the
// backups. Files that are not in the backup are removed.
func (s *adapterState) restore() error {
	var errs []error

	if pathExists(s.manifestBackupPath) {
		if err := copyFile(s.manifestBackupPath, s.manifestPath); err != nil {
			errs = append(errs, fmt.Errorf("failed to restore %s: %w", s.manifestPath, err))
		}
	}

	if pathExists(s.packagesBackupDir) {
		if err := replaceDir(s.packagesBackupDir, s.packagesDir); err != nil {
			errs = append(errs, fmt.Errorf("failed to restore %s: %w", s.packagesDir, err))
		}
	}

	return errors.Join(errs...)
}

func (s *adapterState) discardBackup() error {
	var errs []error

	if err := os.Remove(s.manifestBackupPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, err)
	}

	if err := os.RemoveAll(s.packagesBackupDir); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}

	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	if err := out.Close(); err != nil {
		return err
	}

	// OpenFile does not change the mode of an existing file
	return os.Chmod(dst, info.Mode().Perm())
}

// copyDir copies a directory tree. A symlinked root is followed, links below
// it are copied as links, which keeps node_modules/.bin and workspace links
// intact.
func copyDir(src, dst string) error {
	root, err := filepath.EvalSymlinks(src)
	if err != nil {
		return err
	}

	info, err := os.Stat(root)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}

			return os.Symlink(link, target)
		case d.IsDir():
			dirInfo, err := d.Info()
			if err != nil {
				return err
			}

			return os.MkdirAll(target, dirInfo.Mode().Perm()|0o700)
		case d.Type().IsRegular():
			return copyFile(path, target)
		default:
			log.Debugf("Skipping special file %s", path)
			return nil
		}
	})
}

// replaceDir makes dst an exact copy of src. A symlinked dst keeps its link
// and the tree it points to is replaced.
func replaceDir(src, dst string) error {
	if resolved, err := filepath.EvalSymlinks(dst); err == nil {
		dst = resolved
	}

	if err := os.RemoveAll(dst); err != nil {
		return err
	}

	return copyDir(src, dst)
}
