// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"davit-cli/internal/compose"
	"davit-cli/internal/registry"

	"mvdan.cc/sh/v3/syntax"
)

// localRunner executes invocations on the host, either through the user's
// shell (shell mode) or as a direct argument vector.
type localRunner struct {
	shell       string
	execCommand compose.ExecCommandFunc
	extraEnv    map[string]string
}

func newLocalRunner() *localRunner {
	return &localRunner{execCommand: exec.CommandContext}
}

// buildLocalPlan assembles the local strategy plan. In shell mode the
// invocation and trailing arguments are joined into one shell-interpreted
// line (unsupplied arguments fall back to the raw default_args string); in
// vector mode the invocation is split into fields and the tokens appended.
func buildLocalPlan(desc *registry.Descriptor, tokens, trailing []string) (*Plan, error) {
	if desc.Command == "" {
		return nil, &NothingToRunError{Name: desc.Name()}
	}

	if desc.Shell {
		line := desc.Command
		argsText := joinShellArgs(trailing)
		if argsText == "" {
			argsText = desc.DefaultArgs
		}
		if argsText != "" {
			line += " " + argsText
		}
		return &Plan{Runner: RunnerLocal, ShellLine: line}, nil
	}

	invocation, err := splitInvocation(desc.Command)
	if err != nil {
		return nil, err
	}
	return &Plan{Runner: RunnerLocal, Args: append(invocation, tokens...)}, nil
}

// run executes the plan, streaming the process's own stdio, and returns the
// subprocess exit code.
func (r *localRunner) run(ctx context.Context, plan *Plan) (int, error) {
	var cmd *exec.Cmd
	if plan.ShellLine != "" {
		shellBin, err := r.getShell()
		if err != nil {
			return 1, err
		}
		cmd = r.execCommand(ctx, shellBin, "-c", plan.ShellLine)
	} else {
		if len(plan.Args) == 0 {
			return 1, &NothingToRunError{Name: "local"}
		}
		cmd = r.execCommand(ctx, plan.Args[0], plan.Args[1:]...)
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if len(r.extraEnv) > 0 {
		cmd.Env = append(os.Environ(), envToSlice(r.extraEnv)...)
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 1, fmt.Errorf("failed to execute command: %w", err)
	}
	return 0, nil
}

// getShell determines which shell runs shell-mode invocations.
func (r *localRunner) getShell() (string, error) {
	if r.shell != "" {
		return r.shell, nil
	}

	if runtime.GOOS == "windows" {
		if pwsh, err := exec.LookPath("pwsh"); err == nil {
			return pwsh, nil
		}
		return exec.LookPath("powershell")
	}

	if shellEnv := os.Getenv("SHELL"); shellEnv != "" {
		return shellEnv, nil
	}
	if bash, err := exec.LookPath("bash"); err == nil {
		return bash, nil
	}
	if sh, err := exec.LookPath("sh"); err == nil {
		return sh, nil
	}
	return "", fmt.Errorf("no shell found")
}

// joinShellArgs joins trailing arguments into shell-safe text for the
// command line, quoting any argument the shell would otherwise split.
func joinShellArgs(args []string) string {
	quoted := make([]string, 0, len(args))
	for _, a := range args {
		q, err := syntax.Quote(a, syntax.LangBash)
		if err != nil {
			q = a
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, " ")
}

// envToSlice converts an environment map to KEY=VALUE form, sorted for
// deterministic subprocess environments.
func envToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for _, k := range sortedKeys(env) {
		result = append(result, k+"="+env[k])
	}
	return result
}
