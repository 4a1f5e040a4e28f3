// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"davit-cli/pkg/cueutil"

	"gopkg.in/yaml.v3"
)

const (
	// FileName is the catalog file davit looks for.
	FileName = "davit.yaml"
	// OverrideFileName is merged over the catalog when present alongside it.
	OverrideFileName = "davit.override.yaml"
)

//go:embed schema.cue
var catalogSchema []byte

// ErrCatalogNotFound is the sentinel error wrapped by NotFoundError.
var ErrCatalogNotFound = errors.New("catalog not found")

// NotFoundError is returned when no davit.yaml exists in the start directory
// or any of its parents.
type NotFoundError struct {
	StartDir string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found in %s or any parent directory", FileName, e.StartDir)
}

// Unwrap returns ErrCatalogNotFound so callers can use errors.Is.
func (e *NotFoundError) Unwrap() error { return ErrCatalogNotFound }

// Locate walks up from startDir looking for a davit.yaml and returns its
// absolute path.
func Locate(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", startDir, err)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &NotFoundError{StartDir: startDir}
		}
		dir = parent
	}
}

// Load reads the catalog at path, merges davit.override.yaml from the same
// directory when present, and returns the decoded catalog.
//
// Both files are schema-validated before decoding. The override is decoded
// into the already-populated catalog, so scalar fields it sets win and
// interaction entries it defines replace the base entries of the same name.
func Load(path string) (*Catalog, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	cat := &Catalog{}
	if err := decodeInto(cat, abs); err != nil {
		return nil, err
	}

	overridePath := filepath.Join(filepath.Dir(abs), OverrideFileName)
	if _, statErr := os.Stat(overridePath); statErr == nil {
		if err := decodeInto(cat, overridePath); err != nil {
			return nil, err
		}
	}

	cat.FilePath = abs
	return cat, nil
}

// Dir returns the directory containing the catalog file. Relative env-file
// and compose-file paths resolve against it.
func (c *Catalog) Dir() string {
	return filepath.Dir(c.FilePath)
}

func decodeInto(cat *Catalog, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog at %s: %w", path, err)
	}

	if err := cueutil.ValidateYAML(catalogSchema, data, "#Catalog", filepath.Base(path)); err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cat); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}
