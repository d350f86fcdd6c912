//go:build !windows

package cmd

import (
	"errors"
	"os"
)

// cleanupPartial removes a partial download file if possible.
func cleanupPartial(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
