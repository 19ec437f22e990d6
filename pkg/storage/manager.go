package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Manager handles page file writes into the output directory
type Manager struct {
	outputDir string
	saved     int
	mu        sync.Mutex
}

// NewManager creates a new storage manager, creating the output directory
// if needed. A failure here is fatal to the run: fetching into a broken
// destination is meaningless.
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{outputDir: outputDir}, nil
}

// SavePage writes a page's raw response body under the given file name.
// The write is whole-buffer and atomic: a temporary file is renamed into
// place, so either the complete body is on disk under that name or no
// file exists under that name. Existing files are overwritten.
func (m *Manager) SavePage(name string, data []byte) error {
	filename := filepath.Join(m.outputDir, name)
	tempFile := filename + ".tmp"

	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write page data: %w", err)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.saved++
	m.mu.Unlock()

	return nil
}

// PageExists reports whether a page file with the given name is on disk
func (m *Manager) PageExists(name string) bool {
	_, err := os.Stat(filepath.Join(m.outputDir, name))
	return err == nil
}

// OutputDir returns the output directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// SavedCount returns the number of pages saved this run
func (m *Manager) SavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved
}
