// SPDX-License-Identifier: MPL-2.0

package catalog

type (
	// Catalog is the decoded davit.yaml file.
	Catalog struct {
		// Environment holds catalog-wide variables merged into every dispatch.
		Environment map[string]string `yaml:"environment"`
		// EnvFile references catalog-wide dotenv files.
		EnvFile *EnvFileSpec `yaml:"env_file"`
		// Compose parameterizes the compose front-end.
		Compose ComposeSettings `yaml:"compose"`
		// Kubectl parameterizes the cluster front-end.
		Kubectl KubectlSettings `yaml:"kubectl"`
		// Interaction is the nested command tree.
		Interaction map[string]*CommandSpec `yaml:"interaction"`

		// FilePath is the absolute path of the loaded catalog file.
		// Set by Load; not part of the YAML surface.
		FilePath string `yaml:"-"`
	}

	// ComposeSettings holds the catalog-wide compose front-end parameters.
	ComposeSettings struct {
		// Files lists compose file paths, relative to the catalog directory.
		// Entries may contain $VAR references expanded at dispatch time.
		Files StringList `yaml:"files"`
		// ProjectName is the compose project namespace. Empty means the
		// compose front-end's own default (directory name).
		ProjectName string `yaml:"project_name"`
		// ProjectDirectory overrides the compose project directory.
		ProjectDirectory string `yaml:"project_directory"`
		// Command overrides the compose front-end invocation,
		// e.g. "podman compose". Default is "docker compose".
		Command string `yaml:"command"`
	}

	// KubectlSettings holds the catalog-wide cluster front-end parameters.
	KubectlSettings struct {
		// Namespace is passed as -n to kubectl when non-empty.
		Namespace string `yaml:"namespace"`
		// Binary overrides the kubectl executable name.
		Binary string `yaml:"binary"`
	}

	// CommandSpec is one raw catalog entry. Unset fields inherit from the
	// parent entry during registry expansion; pointer fields distinguish
	// "unset" from an explicit zero value.
	CommandSpec struct {
		// Description is display-only free text.
		Description string `yaml:"description"`
		// Command is the literal invocation to run.
		Command string `yaml:"command"`
		// Shell selects shell-interpreted (true, default) vs vector argument
		// passing.
		Shell *bool `yaml:"shell"`
		// DefaultArgs is used when the caller supplies no trailing tokens.
		DefaultArgs string `yaml:"default_args"`
		// Service targets the compose backend.
		Service string `yaml:"service"`
		// Pod targets the cluster backend as "pod[:container]".
		Pod string `yaml:"pod"`
		// Runner names a strategy directly, overriding target detection.
		Runner string `yaml:"runner"`
		// Environment is merged over catalog-wide variables.
		Environment map[string]string `yaml:"environment"`
		// EnvFile references per-command dotenv files, layered after the
		// catalog-wide ones.
		EnvFile *EnvFileSpec `yaml:"env_file"`
		// Compose tunes the compose strategy for this command.
		Compose ComposeOptions `yaml:"compose"`
		// Subcommands nests further entries under this one.
		Subcommands map[string]*CommandSpec `yaml:"subcommands"`
	}

	// ComposeOptions tunes the compose strategy for a single command.
	ComposeOptions struct {
		// Method is run (default), exec, or up.
		Method string `yaml:"method"`
		// RunOptions are extra flags inserted into `compose run` invocations.
		RunOptions StringList `yaml:"run_options"`
		// Profiles forces `up` semantics, one --profile flag per entry.
		Profiles []string `yaml:"profiles"`
	}
)
