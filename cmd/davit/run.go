// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"davit-cli/internal/cluster"
	"davit-cli/internal/compose"
	"davit-cli/internal/config"
	"davit-cli/internal/dispatch"
	"davit-cli/internal/environ"
	"davit-cli/internal/issue"
	"davit-cli/internal/registry"
	"davit-cli/internal/status"
	"davit-cli/pkg/catalog"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

var (
	// runEnvVars collects -e KEY=VALUE flags, exported to the spawned process
	// and passed as -e to `compose run`.
	runEnvVars []string
	// runPublish collects -p port specs, passed as --publish to `compose run`.
	runPublish []string

	runCmd = &cobra.Command{
		Use:   "run <command> [args...]",
		Short: "Resolve a catalog command and run it",
		Long: `Resolve the longest matching command path in the catalog and run it
on its backend: a compose service, a cluster pod, or the local shell.
Tokens beyond the matched path are passed to the command as arguments.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runInteraction,
	}
)

func init() {
	runCmd.Flags().StringArrayVarP(&runEnvVars, "env", "e", nil,
		"set an environment variable (KEY=VALUE), repeatable")
	runCmd.Flags().StringArrayVarP(&runPublish, "publish", "p", nil,
		"publish a container port (compose run only), repeatable")
	// Everything after the command tokens belongs to the command, not davit.
	runCmd.Flags().SetInterspersed(false)
}

func runInteraction(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	reg, err := registry.Build(cat)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("build command registry").
			WithResource(cat.FilePath).
			WithSuggestion("Check the interaction entries in " + catalog.FileName).
			Wrap(err).
			Build()
	}

	desc, trailing, err := reg.Resolve(args)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("resolve command").
			WithResource(strings.Join(args, " ")).
			WithSuggestion("Run `davit ls` to see the available commands").
			Wrap(err).
			Build()
	}

	adhocVars, err := parseEnvFlags(runEnvVars)
	if err != nil {
		return err
	}

	store, err := environ.Build(environ.BuildInput{
		BasePath:     cat.Dir(),
		CatalogVars:  cat.Environment,
		CatalogFiles: cat.EnvFile,
		CommandVars:  desc.Environment,
		CommandFiles: desc.EnvFiles,
	})
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("build environment").
			WithResource(desc.Name()).
			WithSuggestion("Check the environment and env_file entries in " + catalog.FileName).
			Wrap(err).
			Build()
	}

	extraEnv := store.Values()
	for k, v := range adhocVars {
		extraEnv[k] = v
	}

	dispatcher := buildDispatcher(cat, store, extraEnv)
	result := dispatcher.Dispatch(ctx, desc, trailing, dispatch.Options{
		EnvVars: adhocVars,
		Publish: runPublish,
	})
	if result.Error != nil {
		return issue.NewErrorContext().
			WithOperation("run command").
			WithResource(desc.Name()).
			Wrap(result.Error).
			Build()
	}
	if result.ExitCode != 0 {
		return &ExitError{Code: result.ExitCode}
	}
	return nil
}

// loadCatalog locates davit.yaml upward from the working directory and loads
// it (merging the override file when present).
func loadCatalog() (*catalog.Catalog, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	path, err := catalog.Locate(cwd)
	if err != nil {
		if errors.Is(err, catalog.ErrCatalogNotFound) {
			return nil, issue.NewErrorContext().
				WithOperation("locate catalog").
				WithResource(cwd).
				WithSuggestion("Create a " + catalog.FileName + " in your project directory").
				WithSuggestion("Or run davit from inside a project that has one").
				Wrap(err).
				Build()
		}
		return nil, err
	}

	cat, err := catalog.Load(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load catalog").
			WithResource(path).
			WithSuggestion("Validate the YAML structure against the davit catalog schema").
			Wrap(err).
			Build()
	}
	return cat, nil
}

// buildDispatcher wires the strategy clients from the catalog and the global
// settings. Catalog values win over config values; compose file paths are
// interpolated through the store and anchored at the catalog directory.
func buildDispatcher(cat *catalog.Catalog, store *environ.Store, extraEnv map[string]string) *dispatch.Dispatcher {
	settings := cfg
	if settings == nil {
		settings = config.DefaultConfig()
	}
	envSlice := envToSlice(extraEnv)

	composeCommand := cat.Compose.Command
	if composeCommand == "" {
		composeCommand = settings.ComposeCommand
	}

	files := make([]string, 0, len(cat.Compose.Files))
	for _, f := range cat.Compose.Files {
		expanded := store.Interpolate(f)
		if !filepath.IsAbs(expanded) {
			expanded = filepath.Join(cat.Dir(), expanded)
		}
		files = append(files, expanded)
	}

	composeClient := compose.NewClient(
		compose.WithCommand(strings.Fields(composeCommand)),
		compose.WithFiles(files),
		compose.WithProjectName(cat.Compose.ProjectName),
		compose.WithProjectDirectory(cat.Compose.ProjectDirectory),
		compose.WithExtraEnv(envSlice),
	)

	kubectlBinary := cat.Kubectl.Binary
	if kubectlBinary == "" {
		kubectlBinary = settings.KubectlBinary
	}
	clusterClient := cluster.NewClient(
		cluster.WithBinary(kubectlBinary),
		cluster.WithNamespace(cat.Kubectl.Namespace),
		cluster.WithExtraEnv(envSlice),
	)

	cache := status.NewCache(composeClient, status.WithTTL(settings.StatusTTL))

	return dispatch.New(composeClient, clusterClient, cache,
		dispatch.WithExtraEnv(extraEnv))
}

// parseEnvFlags decodes repeated -e KEY=VALUE flags into a map.
func parseEnvFlags(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, found := strings.Cut(entry, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --env value %q, expected KEY=VALUE", entry)
		}
		vars[key] = value
	}
	return vars, nil
}

// envToSlice converts an environment map to sorted KEY=VALUE form.
func envToSlice(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
