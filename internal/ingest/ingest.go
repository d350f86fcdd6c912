// Package ingest copies a local copy of the robustness dataset into the data
// root, applying exclude filtering and MD5-based duplicate skipping.
package ingest

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Result is returned by ImportDir.
type Result struct {
	Copied   int // files newly copied into the data root
	Replaced int // existing files overwritten because content differed
	Skipped  int // identical duplicates left untouched
}

// ImportDir copies files from srcDir into dstDir. Files matching an exclude
// pattern are ignored. Existing destination files with identical MD5 are
// skipped; differing ones are replaced, since the dataset is versionless and
// the incoming copy is taken as authoritative.
func ImportDir(srcDir, dstDir string, excludes []string) (*Result, error) {
	result := &Result{}

	err := filepath.WalkDir(srcDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == srcDir {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		if matchesExclude(rel, excludes) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		dst := filepath.Join(dstDir, rel)

		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}

		if _, err := os.Stat(dst); err == nil {
			srcMD5, err := fileMD5(path)
			if err != nil {
				return fmt.Errorf("md5 %s: %w", path, err)
			}
			dstMD5, err := fileMD5(dst)
			if err != nil {
				return fmt.Errorf("md5 %s: %w", dst, err)
			}
			if srcMD5 == dstMD5 {
				result.Skipped++
				return nil
			}
			if err := copyFile(path, dst); err != nil {
				return fmt.Errorf("replace %s -> %s: %w", path, dst, err)
			}
			result.Replaced++
			return nil
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := copyFile(path, dst); err != nil {
			return fmt.Errorf("copy %s -> %s: %w", path, dst, err)
		}
		result.Copied++
		return nil
	})
	if err != nil {
		return result, err
	}
	return result, nil
}

// matchesExclude reports whether relPath matches any of the given glob patterns.
func matchesExclude(relPath string, patterns []string) bool {
	name := filepath.Base(relPath)
	for _, pattern := range patterns {
		// Match against the full relative path AND just the basename.
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}

// fileMD5 returns the hex-encoded MD5 digest of the file at path.
func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// copyFile copies src to dst, preserving permissions.
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

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
