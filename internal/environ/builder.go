// SPDX-License-Identifier: MPL-2.0

package environ

import "davit-cli/pkg/catalog"

type (
	// BuildInput names the variable sources layered into a store, lowest
	// priority first:
	//
	//  1. Catalog-wide env files with priority before_environment (default)
	//  2. Catalog-wide environment block
	//  3. Catalog-wide env files with priority after_environment
	//  4. Per-command env files with priority before_environment (default)
	//  5. Per-command environment overlay
	//  6. Per-command env files with priority after_environment
	//
	// The live process environment overrides all of the above per key; that
	// rule is enforced inside Store.Merge rather than by layer ordering.
	BuildInput struct {
		// BasePath anchors relative env file paths (the catalog directory).
		BasePath string
		// CatalogVars is the catalog-wide environment block.
		CatalogVars map[string]string
		// CatalogFiles references the catalog-wide env files, nil when none.
		CatalogFiles *catalog.EnvFileSpec
		// CommandVars is the resolved command's environment overlay.
		CommandVars map[string]string
		// CommandFiles references the command's env files, nil when none.
		CommandFiles *catalog.EnvFileSpec
	}
)

// Build assembles the store for one dispatch by layering the input sources.
func Build(in BuildInput, opts ...StoreOption) (*Store, error) {
	store := NewStore(in.BasePath, opts...)

	if err := mergeLayer(store, in.BasePath, in.CatalogVars, in.CatalogFiles); err != nil {
		return nil, err
	}
	if err := mergeLayer(store, in.BasePath, in.CommandVars, in.CommandFiles); err != nil {
		return nil, err
	}

	return store, nil
}

// mergeLayer merges one environment block and its companion env files,
// positioning the files per the spec's priority flag.
func mergeLayer(store *Store, basePath string, vars map[string]string, files *catalog.EnvFileSpec) error {
	if files != nil && files.Priority.Effective() == catalog.PriorityBeforeEnvironment {
		if err := mergeFiles(store, basePath, files); err != nil {
			return err
		}
		files = nil
	}

	store.Merge(vars)

	if files != nil {
		if err := mergeFiles(store, basePath, files); err != nil {
			return err
		}
	}
	return nil
}

// mergeFiles loads the spec's files left to right into one map (later files
// overriding earlier ones) and merges the result into the store.
func mergeFiles(store *Store, basePath string, spec *catalog.EnvFileSpec) error {
	loaded := make(map[string]string)
	for _, path := range spec.Files {
		if err := LoadEnvFile(loaded, path, basePath, spec.Required); err != nil {
			return err
		}
	}
	store.Merge(loaded)
	return nil
}
