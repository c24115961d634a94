package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputManager handles output file organization and path management
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates a new output manager
func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{
		BaseOutputDir: baseOutputDir,
	}
}

// CreateVersionOutputDir creates the directory holding the artifacts derived from one fact table version
func (om *OutputManager) CreateVersionOutputDir(version string) (string, error) {
	if version == "" || strings.ContainsAny(version, `/\`) {
		return "", fmt.Errorf("invalid version id %q", version)
	}
	dir := filepath.Join(om.BaseOutputDir, version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return dir, nil
}

// GetOutputFilePath generates a full path for an output file
func (om *OutputManager) GetOutputFilePath(version, fileName string) (string, error) {
	dir, err := om.CreateVersionOutputDir(version)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.Base(fileName)), nil
}

// GetFileType determines the file type based on extension
func (om *OutputManager) GetFileType(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return "csv"
	case ".json":
		return "json"
	case ".parquet":
		return "parquet"
	default:
		return "unknown"
	}
}

// EnsureOutputDirExists ensures the base output directory exists
func (om *OutputManager) EnsureOutputDirExists() error {
	return os.MkdirAll(om.BaseOutputDir, 0o755)
}
