// SPDX-License-Identifier: MPL-2.0

package environ

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"davit-cli/pkg/catalog"
)

func writeEnvFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestBuild_CatalogBlockOverridesDefaultPriorityFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeEnvFile(t, dir, ".env", "RAILS_ENV=from_file\nEXTRA=file_only\n")

	store, err := Build(BuildInput{
		BasePath:     dir,
		CatalogVars:  map[string]string{"RAILS_ENV": "from_block"},
		CatalogFiles: &catalog.EnvFileSpec{Files: []string{".env"}, Required: true},
	}, WithLookupEnv(noEnv))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got, _ := store.Get("RAILS_ENV"); got != "from_block" {
		t.Errorf("Get(RAILS_ENV) = %q, want environment block to win", got)
	}
	if got, _ := store.Get("EXTRA"); got != "file_only" {
		t.Errorf("Get(EXTRA) = %q, want file entry kept", got)
	}
}

func TestBuild_AfterEnvironmentPriorityFilesWin(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeEnvFile(t, dir, ".env", "RAILS_ENV=from_file\n")

	store, err := Build(BuildInput{
		BasePath:    dir,
		CatalogVars: map[string]string{"RAILS_ENV": "from_block"},
		CatalogFiles: &catalog.EnvFileSpec{
			Files:    []string{".env"},
			Required: true,
			Priority: catalog.PriorityAfterEnvironment,
		},
	}, WithLookupEnv(noEnv))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got, _ := store.Get("RAILS_ENV"); got != "from_file" {
		t.Errorf("Get(RAILS_ENV) = %q, want file to win under after_environment", got)
	}
}

func TestBuild_CommandLayerOverridesCatalogLayer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeEnvFile(t, dir, ".env.cmd", "TOKEN=from_command_file\n")

	store, err := Build(BuildInput{
		BasePath:     dir,
		CatalogVars:  map[string]string{"TOKEN": "from_catalog", "SHARED": "kept"},
		CommandVars:  map[string]string{"TOKEN": "from_command"},
		CommandFiles: &catalog.EnvFileSpec{Files: []string{".env.cmd"}, Required: true},
	}, WithLookupEnv(noEnv))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// Default priority: the command block wins over its own files.
	if got, _ := store.Get("TOKEN"); got != "from_command" {
		t.Errorf("Get(TOKEN) = %q, want command block value", got)
	}
	if got, _ := store.Get("SHARED"); got != "kept" {
		t.Errorf("Get(SHARED) = %q, want catalog value kept", got)
	}
}

func TestBuild_LaterFilesOverrideEarlierFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeEnvFile(t, dir, ".env", "A=one\nB=one\n")
	writeEnvFile(t, dir, ".env.local", "B=two\n")

	store, err := Build(BuildInput{
		BasePath:     dir,
		CatalogFiles: &catalog.EnvFileSpec{Files: []string{".env", ".env.local"}, Required: true},
	}, WithLookupEnv(noEnv))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got, _ := store.Get("A"); got != "one" {
		t.Errorf("Get(A) = %q, want %q", got, "one")
	}
	if got, _ := store.Get("B"); got != "two" {
		t.Errorf("Get(B) = %q, want later file to win", got)
	}
}

func TestBuild_MissingRequiredFileFails(t *testing.T) {
	t.Parallel()

	_, err := Build(BuildInput{
		BasePath:     t.TempDir(),
		CatalogFiles: &catalog.EnvFileSpec{Files: []string{".env.absent"}, Required: true},
	}, WithLookupEnv(noEnv))
	if !errors.Is(err, ErrEnvFileRequired) {
		t.Errorf("Build() error = %v, want ErrEnvFileRequired", err)
	}
}

func TestBuild_MissingOptionalFileSkipped(t *testing.T) {
	t.Parallel()

	store, err := Build(BuildInput{
		BasePath:     t.TempDir(),
		CatalogVars:  map[string]string{"A": "1"},
		CatalogFiles: &catalog.EnvFileSpec{Files: []string{".env.absent"}, Required: false},
	}, WithLookupEnv(noEnv))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got, _ := store.Get("A"); got != "1" {
		t.Errorf("Get(A) = %q, want %q", got, "1")
	}
}

func TestBuild_FileValuesInterpolateAgainstCatalogBlock(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeEnvFile(t, dir, ".env.cmd", "URL=https://$HOST/api\n")

	store, err := Build(BuildInput{
		BasePath:     dir,
		CatalogVars:  map[string]string{"HOST": "example.test"},
		CommandFiles: &catalog.EnvFileSpec{Files: []string{".env.cmd"}, Required: true},
	}, WithLookupEnv(noEnv))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got, _ := store.Get("URL"); got != "https://example.test/api" {
		t.Errorf("Get(URL) = %q, want interpolated value", got)
	}
}
