package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery over the data directories
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance rooted at basePath
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindWorkbooks finds all Excel workbooks in the specified directory,
// sorted by name so yearly files come out in chronological order.
func (d *Discovery) FindWorkbooks(dir string) ([]FileInfo, error) {
	files, err := d.findByExtensions(dir, ".xlsx", ".xls")
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// FindDataFiles finds every file the batch cleaner can process: CSV and
// Excel, in one listing.
func (d *Discovery) FindDataFiles(dir string) ([]FileInfo, error) {
	files, err := d.findByExtensions(dir, ".csv", ".xlsx", ".xls")
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (d *Discovery) findByExtensions(dir string, exts ...string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		// Excel lock files start with ~$
		if strings.HasPrefix(name, "~$") {
			continue
		}

		lower := strings.ToLower(name)
		matched := false
		for _, ext := range exts {
			if strings.HasSuffix(lower, ext) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return files, nil
}

// FindFilesByPattern finds files matching a glob pattern
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	searchPattern := filepath.Join(d.resolve(dir), pattern)

	matches, err := filepath.Glob(searchPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:    match,
			Name:    filepath.Base(match),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return files, nil
}
