// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"davit-cli/pkg/catalog"

	"golang.org/x/exp/slices"
)

var (
	// ErrCommandNotFound is the sentinel error wrapped by NotFoundError.
	ErrCommandNotFound = errors.New("command not found")

	// ErrAmbiguousTarget is the sentinel error wrapped by AmbiguousTargetError.
	ErrAmbiguousTarget = errors.New("ambiguous backend target")
)

type (
	// Registry holds the flattened catalog: one descriptor per compound path.
	Registry struct {
		byPath map[string]*Descriptor
	}

	// NotFoundError is returned when a token vector matches no descriptor at
	// any prefix length.
	NotFoundError struct {
		Tokens []string
	}

	// AmbiguousTargetError is returned at build time when an entry names both
	// a compose service and a cluster pod.
	AmbiguousTargetError struct {
		Path []string
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("command %q is not defined in the catalog", strings.Join(e.Tokens, " "))
}

// Unwrap returns ErrCommandNotFound so callers can use errors.Is.
func (e *NotFoundError) Unwrap() error { return ErrCommandNotFound }

// Error implements the error interface.
func (e *AmbiguousTargetError) Error() string {
	return fmt.Sprintf("command %q sets both service and pod; a command targets at most one backend",
		strings.Join(e.Path, " "))
}

// Unwrap returns ErrAmbiguousTarget so callers can use errors.Is.
func (e *AmbiguousTargetError) Unwrap() error { return ErrAmbiguousTarget }

// Build flattens the catalog's interaction tree into a Registry.
func Build(cat *catalog.Catalog) (*Registry, error) {
	r := &Registry{byPath: make(map[string]*Descriptor)}
	for name, spec := range cat.Interaction {
		if err := r.expand([]string{name}, spec, nil); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// expand builds the descriptor for spec at path, inheriting from parent, then
// recurses into its subcommands with the built descriptor as their parent.
func (r *Registry) expand(path []string, spec *catalog.CommandSpec, parent *Descriptor) error {
	if spec == nil {
		spec = &catalog.CommandSpec{}
	}

	d, err := mergeWithParent(path, spec, parent)
	if err != nil {
		return err
	}
	r.byPath[d.Name()] = d

	for name, sub := range spec.Subcommands {
		subPath := append(append([]string{}, path...), name)
		if err := r.expand(subPath, sub, d); err != nil {
			return err
		}
	}
	return nil
}

// mergeWithParent produces a normalized descriptor: explicit child fields win,
// unset child fields inherit the parent's, and compose profiles force the up
// method with invocation and run options cleared.
func mergeWithParent(path []string, spec *catalog.CommandSpec, parent *Descriptor) (*Descriptor, error) {
	if parent == nil {
		parent = &Descriptor{Shell: true, Compose: ComposeConfig{Method: MethodRun}}
	}

	d := &Descriptor{
		Path:        append([]string{}, path...),
		Description: spec.Description,
		Command:     inherit(spec.Command, parent.Command),
		DefaultArgs: inherit(spec.DefaultArgs, parent.DefaultArgs),
		Service:     inherit(spec.Service, parent.Service),
		Pod:         inherit(spec.Pod, parent.Pod),
		Runner:      inherit(spec.Runner, parent.Runner),
		EnvFiles:    parent.EnvFiles,
	}

	d.Shell = parent.Shell
	if spec.Shell != nil {
		d.Shell = *spec.Shell
	}

	if spec.EnvFile != nil {
		copied := *spec.EnvFile
		d.EnvFiles = &copied
	}

	// Environment merges key-wise, the child winning per key.
	if len(parent.Environment) > 0 || len(spec.Environment) > 0 {
		d.Environment = make(map[string]string, len(parent.Environment)+len(spec.Environment))
		maps.Copy(d.Environment, parent.Environment)
		maps.Copy(d.Environment, spec.Environment)
	}

	d.Compose = ComposeConfig{
		Method:     ComposeMethod(inherit(spec.Compose.Method, string(parent.Compose.Method))),
		RunOptions: inheritSlice(spec.Compose.RunOptions, parent.Compose.RunOptions),
		Profiles:   inheritSlice(spec.Compose.Profiles, parent.Compose.Profiles),
	}
	if d.Compose.Method == "" {
		d.Compose.Method = MethodRun
	}
	if err := d.Compose.Method.Validate(); err != nil {
		return nil, fmt.Errorf("command %q: %w", d.Name(), err)
	}

	// Profiles are incompatible with a per-command invocation and with
	// run-only options; they always mean `up`.
	if len(d.Compose.Profiles) > 0 {
		d.Compose.Method = MethodUp
		d.Command = ""
		d.Compose.RunOptions = nil
	}

	if d.Service != "" && d.Pod != "" {
		return nil, &AmbiguousTargetError{Path: d.Path}
	}

	return d, nil
}

func inherit(child, parent string) string {
	if child != "" {
		return child
	}
	return parent
}

func inheritSlice(child, parent []string) []string {
	if len(child) > 0 {
		return append([]string{}, child...)
	}
	return append([]string{}, parent...)
}

// Resolve matches the longest possible prefix of tokens against the flattened
// paths and returns the matching descriptor plus the unmatched suffix, in
// original order, as trailing arguments.
func (r *Registry) Resolve(tokens []string) (*Descriptor, []string, error) {
	for n := len(tokens); n >= 1; n-- {
		key := strings.Join(tokens[:n], " ")
		if d, ok := r.byPath[key]; ok {
			return d, tokens[n:], nil
		}
	}
	return nil, nil, &NotFoundError{Tokens: tokens}
}

// Lookup returns the descriptor registered under the exact compound name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.byPath[name]
	return d, ok
}

// All returns every descriptor sorted by compound name, for listing.
func (r *Registry) All() []*Descriptor {
	names := make([]string, 0, len(r.byPath))
	for name := range r.byPath {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]*Descriptor, 0, len(names))
	for _, name := range names {
		out = append(out, r.byPath[name])
	}
	return out
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int { return len(r.byPath) }
