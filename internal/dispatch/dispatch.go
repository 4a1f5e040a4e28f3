// SPDX-License-Identifier: MPL-2.0

// Package dispatch selects and parameterizes the execution strategy for a
// resolved command descriptor.
//
// Descriptors are immutable; every dispatch computes a fresh execution plan
// (effective compose method, detected project name, final argument vector),
// so auto-detection switching `run` to `exec` never leaks into later
// dispatches.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"davit-cli/internal/cluster"
	"davit-cli/internal/compose"
	"davit-cli/internal/registry"
	"davit-cli/internal/status"

	"golang.org/x/exp/slices"
	"mvdan.cc/sh/v3/shell"
)

// ErrNothingToRun is the sentinel error wrapped by NothingToRunError.
var ErrNothingToRun = errors.New("nothing to run")

type (
	// NothingToRunError is returned when a descriptor resolves to an empty
	// invocation on a strategy that requires one.
	NothingToRunError struct {
		Name string
	}

	// Options carries per-invocation dispatch inputs from the CLI front-end.
	Options struct {
		// EnvVars are ad-hoc KEY=VAL variables injected as -e flags into
		// `compose run` invocations (and exported to every subprocess).
		EnvVars map[string]string
		// Publish are port specs passed as --publish flags to `compose run`.
		Publish []string
	}

	// Dispatcher routes descriptors to strategies.
	Dispatcher struct {
		composeClient *compose.Client
		clusterClient *cluster.Client
		statusCache   *status.Cache
		local         *localRunner

		// extraEnv is exported into every spawned subprocess (the resolved
		// environment store plus ad-hoc variables).
		extraEnv map[string]string
	}

	// Result is the outcome of one dispatch.
	Result struct {
		// ExitCode is the backend subprocess exit code.
		ExitCode int
		// Error is any infrastructure failure (not a non-zero exit).
		Error error
	}

	// Plan is the effective execution computed for a single dispatch. The
	// descriptor itself is never mutated.
	Plan struct {
		// Runner is the selected strategy.
		Runner Runner
		// Method is the effective compose method (compose strategy only).
		Method registry.ComposeMethod
		// ProjectOverride is the detected compose project name, passed as
		// --project-name when auto-detection attached to a running container.
		ProjectOverride string
		// Args is the backend argument vector (compose or kubectl), or the
		// local argument vector when Shell is false.
		Args []string
		// ShellLine is the local strategy's shell-interpreted command line
		// (local strategy with shell mode only).
		ShellLine string
	}

	// DispatcherOption configures a Dispatcher.
	DispatcherOption func(*Dispatcher)
)

// Error implements the error interface.
func (e *NothingToRunError) Error() string {
	return fmt.Sprintf("command %q has no invocation to run", e.Name)
}

// Unwrap returns ErrNothingToRun so callers can use errors.Is.
func (e *NothingToRunError) Unwrap() error { return ErrNothingToRun }

// Success returns true if the dispatch completed with exit code 0.
func (r *Result) Success() bool { return r.ExitCode == 0 && r.Error == nil }

// WithExtraEnv sets the variables exported to spawned subprocesses.
func WithExtraEnv(env map[string]string) DispatcherOption {
	return func(d *Dispatcher) { d.extraEnv = env }
}

// WithLocalShell overrides the local strategy's shell executable, for tests.
func WithLocalShell(shell string) DispatcherOption {
	return func(d *Dispatcher) { d.local.shell = shell }
}

// WithLocalExecCommand replaces the local strategy's exec.Cmd factory, for tests.
func WithLocalExecCommand(fn compose.ExecCommandFunc) DispatcherOption {
	return func(d *Dispatcher) { d.local.execCommand = fn }
}

// New creates a dispatcher over the given collaborator clients.
func New(composeClient *compose.Client, clusterClient *cluster.Client, cache *status.Cache, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		composeClient: composeClient,
		clusterClient: clusterClient,
		statusCache:   cache,
		local:         newLocalRunner(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.local.extraEnv = d.extraEnv
	return d
}

// Dispatch computes the execution plan for the descriptor and runs it.
func (d *Dispatcher) Dispatch(ctx context.Context, desc *registry.Descriptor, trailing []string, opts Options) *Result {
	plan, err := d.buildPlan(ctx, desc, trailing, opts)
	if err != nil {
		return &Result{ExitCode: 1, Error: err}
	}
	return d.execute(ctx, plan)
}

// buildPlan selects the strategy and assembles the final argument vector.
// Selection order: explicit runner, compose service, cluster pod, local.
func (d *Dispatcher) buildPlan(ctx context.Context, desc *registry.Descriptor, trailing []string, opts Options) (*Plan, error) {
	runner, err := selectRunner(desc)
	if err != nil {
		return nil, err
	}

	tokens, err := commandArgs(desc, trailing)
	if err != nil {
		return nil, err
	}

	switch runner {
	case RunnerCompose:
		return d.buildComposePlan(ctx, desc, tokens, opts)
	case RunnerKubectl:
		return d.buildClusterPlan(desc, tokens)
	case RunnerLocal:
		return buildLocalPlan(desc, tokens, trailing)
	default:
		return nil, &UnknownRunnerError{Name: string(runner)}
	}
}

// buildComposePlan assembles the compose argument vector, consulting the
// status cache when the descriptor would start a one-off run. A detected
// running container switches the plan to exec, strips run-only options, and
// carries the owning project name; any detection failure keeps the safe
// default of run.
func (d *Dispatcher) buildComposePlan(ctx context.Context, desc *registry.Descriptor, tokens []string, opts Options) (*Plan, error) {
	method := desc.Compose.Method
	runOptions := slices.Clone(desc.Compose.RunOptions)
	projectOverride := ""

	if method == registry.MethodRun && desc.Service != "" {
		if rec := d.statusCache.StatusFor(ctx, desc.Service); rec.Running() {
			method = registry.MethodExec
			runOptions = nil
			projectOverride = rec.Project
			if configured := d.composeClient.ProjectName(); configured != "" && configured != rec.Project {
				slog.Debug("running container belongs to another compose project, trusting detected name",
					"service", desc.Service, "configured", configured, "detected", rec.Project)
			}
		}
	}

	var args []string
	for _, profile := range desc.Compose.Profiles {
		args = append(args, "--profile", profile)
	}
	args = append(args, method.String())

	if method == registry.MethodRun {
		for _, k := range sortedKeys(opts.EnvVars) {
			args = append(args, "-e", k+"="+opts.EnvVars[k])
		}
		for _, p := range opts.Publish {
			args = append(args, "--publish", p)
		}
		args = append(args, "--rm")
		args = append(args, runOptions...)
	}

	if desc.Service != "" {
		args = append(args, desc.Service)
	}

	invocation, err := splitInvocation(desc.Command)
	if err != nil {
		return nil, err
	}
	args = append(args, invocation...)
	args = append(args, tokens...)

	return &Plan{
		Runner:          RunnerCompose,
		Method:          method,
		ProjectOverride: projectOverride,
		Args:            args,
	}, nil
}

func (d *Dispatcher) buildClusterPlan(desc *registry.Descriptor, tokens []string) (*Plan, error) {
	target := cluster.ParsePodTarget(desc.Pod)
	if target.Pod == "" {
		return nil, &NothingToRunError{Name: desc.Name()}
	}

	invocation, err := splitInvocation(desc.Command)
	if err != nil {
		return nil, err
	}
	command := append(invocation, tokens...)
	if len(command) == 0 {
		return nil, &NothingToRunError{Name: desc.Name()}
	}

	return &Plan{
		Runner: RunnerKubectl,
		Args:   d.clusterClient.ExecArgs(target, command),
	}, nil
}

// execute runs the plan on its strategy's client. Non-zero backend exits are
// reported through Result.ExitCode, never swallowed.
func (d *Dispatcher) execute(ctx context.Context, plan *Plan) *Result {
	var (
		code int
		err  error
	)
	switch plan.Runner {
	case RunnerCompose:
		code, err = d.composeClient.Run(ctx, plan.ProjectOverride, plan.Args)
	case RunnerKubectl:
		code, err = d.clusterClient.Run(ctx, plan.Args)
	case RunnerLocal:
		code, err = d.local.run(ctx, plan)
	default:
		err = &UnknownRunnerError{Name: string(plan.Runner)}
		code = 1
	}
	return &Result{ExitCode: code, Error: err}
}

// selectRunner picks the strategy: explicit runner name first, then the
// backend implied by the descriptor's target, defaulting to local.
func selectRunner(desc *registry.Descriptor) (Runner, error) {
	if desc.Runner != "" {
		return ParseRunner(desc.Runner)
	}
	if desc.Service != "" {
		return RunnerCompose, nil
	}
	if desc.Pod != "" {
		return RunnerKubectl, nil
	}
	return RunnerLocal, nil
}

// commandArgs returns the trailing tokens for the final vector: the caller's
// tokens when supplied, otherwise the descriptor's default arguments. The
// construction is shared across strategies. Shell mode joins the tokens into
// one shell-safe string (default arguments are already authored shell text
// and pass through whole); vector mode keeps them discrete, splitting default
// arguments into fields.
func commandArgs(desc *registry.Descriptor, trailing []string) ([]string, error) {
	if desc.Shell {
		if len(trailing) > 0 {
			return []string{joinShellArgs(trailing)}, nil
		}
		if desc.DefaultArgs == "" {
			return nil, nil
		}
		return []string{desc.DefaultArgs}, nil
	}

	if len(trailing) > 0 {
		return trailing, nil
	}
	if desc.DefaultArgs == "" {
		return nil, nil
	}
	fields, err := shell.Fields(desc.DefaultArgs, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse default_args for %q: %w", desc.Name(), err)
	}
	return fields, nil
}

// splitInvocation splits a command string into an argument vector.
func splitInvocation(command string) ([]string, error) {
	if command == "" {
		return nil, nil
	}
	fields, err := shell.Fields(command, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command %q: %w", command, err)
	}
	return fields, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
