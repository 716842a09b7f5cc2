package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gripulse/internal/config"
)

// Manager reads and writes files relative to the configured data
// directories. A leading "reports/", "etl/" or "logs/" prefix routes
// the rest of the path into that output directory; anything else lands
// under the data directory. Absolute paths pass through untouched.
type Manager struct {
	paths *config.Paths
}

// NewManager creates a manager over the given path layout.
func NewManager(paths *config.Paths) *Manager {
	return &Manager{paths: paths}
}

// FileExists reports whether path resolves to an existing file.
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(m.resolvePath(path))
	return err == nil
}

// GetFileSize returns the size of the file at path in bytes.
func (m *Manager) GetFileSize(path string) (int64, error) {
	info, err := os.Stat(m.resolvePath(path))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// ReadFile returns the full content of the file at path.
func (m *Manager) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(m.resolvePath(path))
}

// WriteFile writes data to path, creating parent directories as needed.
func (m *Manager) WriteFile(path string, data []byte) error {
	full := m.resolvePath(path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return os.WriteFile(full, data, 0644)
}

// DeleteFile removes the file at path.
func (m *Manager) DeleteFile(path string) error {
	return os.Remove(m.resolvePath(path))
}

// ListFiles returns the file names directly under dir, skipping
// subdirectories.
func (m *Manager) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(m.resolvePath(dir))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	for prefix, dir := range map[string]string{
		"reports/": m.paths.ReportsDir,
		"etl/":     m.paths.ETLOutDir,
		"logs/":    m.paths.LogsDir,
	} {
		if rest, ok := strings.CutPrefix(path, prefix); ok {
			return filepath.Join(dir, rest)
		}
	}
	return filepath.Join(m.paths.DataDir, path)
}
