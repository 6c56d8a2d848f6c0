package util

import (
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CleanupFiles removes multiple files, ignoring errors
func CleanupFiles(paths ...string) {
	for _, path := range paths {
		_ = os.Remove(path)
	}
}

// WithSuffix returns path with suffix inserted before the extension,
// optionally replacing the extension. "in.mp4" + "_ALTERED" gives
// "in_ALTERED.mp4".
func WithSuffix(path, suffix, ext string) string {
	cur := filepath.Ext(path)
	if ext == "" {
		ext = cur
	} else if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(path, cur) + suffix + ext
}
