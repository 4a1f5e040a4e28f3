// SPDX-License-Identifier: MPL-2.0

// Package compose drives the Docker Compose front-end through its CLI.
//
// The client never talks to the container daemon directly; it assembles
// argument vectors (compose files, project identity, subcommand arguments)
// and spawns the compose binary as a monitored subprocess. Command creation
// is injectable so tests can observe the exact invocation without spawning
// processes.
package compose

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// DefaultCommand is the compose front-end invocation used when the catalog
// does not override it.
var DefaultCommand = []string{"docker", "compose"}

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Option configures a Client.
	Option func(*Client)

	// Client parameterizes and invokes the compose front-end.
	Client struct {
		command          []string
		files            []string
		projectName      string
		projectDirectory string
		execCommand      ExecCommandFunc

		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer

		// extraEnv is appended to the subprocess environment so the compose
		// front-end can expand ${VAR} references in compose files against the
		// resolved store.
		extraEnv []string
	}
)

// WithCommand overrides the compose front-end invocation, e.g.
// ["podman", "compose"].
func WithCommand(command []string) Option {
	return func(c *Client) {
		if len(command) > 0 {
			c.command = command
		}
	}
}

// WithFiles sets the compose file paths passed as -f flags.
func WithFiles(files []string) Option {
	return func(c *Client) { c.files = files }
}

// WithProjectName sets the configured compose project name.
func WithProjectName(name string) Option {
	return func(c *Client) { c.projectName = name }
}

// WithProjectDirectory sets the compose project directory.
func WithProjectDirectory(dir string) Option {
	return func(c *Client) { c.projectDirectory = dir }
}

// WithExecCommand replaces the exec.Cmd factory, for tests.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(c *Client) { c.execCommand = fn }
}

// WithExtraEnv appends KEY=VALUE entries to the subprocess environment.
func WithExtraEnv(env []string) Option {
	return func(c *Client) { c.extraEnv = env }
}

// WithStdio redirects the subprocess streams. Defaults to the process's own.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(c *Client) {
		c.stdin = stdin
		c.stdout = stdout
		c.stderr = stderr
	}
}

// NewClient creates a compose client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		command:     DefaultCommand,
		execCommand: exec.CommandContext,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProjectName returns the configured compose project name (may be empty).
func (c *Client) ProjectName() string { return c.projectName }

// GlobalArgs assembles the front-end flags that precede every compose
// subcommand: -f per compose file, the project name (projectOverride, when
// non-empty, wins over the configured name), and the project directory.
func (c *Client) GlobalArgs(projectOverride string) []string {
	var args []string
	for _, f := range c.files {
		args = append(args, "-f", f)
	}

	project := c.projectName
	if projectOverride != "" {
		project = projectOverride
	}
	if project != "" {
		args = append(args, "--project-name", project)
	}
	if c.projectDirectory != "" {
		args = append(args, "--project-directory", c.projectDirectory)
	}
	return args
}

// Run invokes the compose front-end with the given subcommand argument vector
// appended to the global flags, streaming through the configured stdio, and
// returns the subprocess exit code.
func (c *Client) Run(ctx context.Context, projectOverride string, args []string) (int, error) {
	argv := append(c.GlobalArgs(projectOverride), args...)
	full := append(append([]string{}, c.command[1:]...), argv...)

	cmd := c.execCommand(ctx, c.command[0], full...)
	cmd.Stdin = c.stdin
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr
	if len(c.extraEnv) > 0 {
		cmd.Env = append(os.Environ(), c.extraEnv...)
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 1, fmt.Errorf("failed to execute %s: %w", strings.Join(c.command, " "), err)
	}
	return 0, nil
}
