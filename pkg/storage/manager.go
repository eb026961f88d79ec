package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Manager writes finished archives into the output directory
type Manager struct {
	outputDir string
	overwrite bool
	saved     map[string]int64
	mu        sync.Mutex
}

// NewManager creates a storage manager rooted at outputDir. When overwrite is
// false an existing file is never replaced; the archive gets the next free
// name instead.
func NewManager(outputDir string, overwrite bool) (*Manager, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{
		outputDir: outputDir,
		overwrite: overwrite,
		saved:     make(map[string]int64),
	}, nil
}

// Exists reports whether a file with the given name is present in the output
// directory
func (m *Manager) Exists(name string) bool {
	_, err := os.Stat(filepath.Join(m.outputDir, name))
	return err == nil
}

// Save writes src under name and returns the path written. The file appears
// only once it is complete.
func (m *Manager) Save(name string, src io.WriterTo) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	target := filepath.Join(m.outputDir, m.targetName(name))

	out, err := os.CreateTemp(m.outputDir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := out.Name()

	written, err := src.WriteTo(out)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to write archive data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tempFile, target); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.saved[target] = written
	return target, nil
}

// targetName picks the file name to write, honoring the overwrite setting
func (m *Manager) targetName(name string) string {
	if m.overwrite || !m.Exists(name) {
		return name
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := stem + "-" + strconv.Itoa(i) + ext
		if !m.Exists(candidate) {
			return candidate
		}
	}
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// GetSavedCount returns the number of files written by this manager
func (m *Manager) GetSavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

// GetSavedBytes returns the number of bytes written by this manager
func (m *Manager) GetSavedBytes() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total int64
	for _, n := range m.saved {
		total += n
	}
	return total
}
