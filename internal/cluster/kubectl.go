// SPDX-License-Identifier: MPL-2.0

// Package cluster drives the kubectl front-end for pod-targeted commands.
package cluster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// DefaultBinary is the cluster front-end executable used when the catalog
// does not override it.
const DefaultBinary = "kubectl"

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Option configures a Client.
	Option func(*Client)

	// Client parameterizes and invokes the kubectl front-end.
	Client struct {
		binary      string
		namespace   string
		execCommand ExecCommandFunc

		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer

		// extraEnv is appended to the subprocess environment.
		extraEnv []string
	}

	// PodTarget is a parsed "pod[:container]" target.
	PodTarget struct {
		Pod       string
		Container string
	}
)

// WithBinary overrides the kubectl executable name.
func WithBinary(binary string) Option {
	return func(c *Client) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithNamespace sets the namespace passed as -n to every invocation.
func WithNamespace(namespace string) Option {
	return func(c *Client) { c.namespace = namespace }
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

// NewClient creates a kubectl client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		binary:      DefaultBinary,
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

// ParsePodTarget splits a "pod[:container]" target string.
func ParsePodTarget(spec string) PodTarget {
	pod, container, _ := strings.Cut(spec, ":")
	return PodTarget{Pod: pod, Container: container}
}

// ExecArgs builds the argument vector for an interactive exec into the
// target pod: exec --stdin --tty [--container c] pod -- command...
func (c *Client) ExecArgs(target PodTarget, command []string) []string {
	var args []string
	if c.namespace != "" {
		args = append(args, "-n", c.namespace)
	}
	args = append(args, "exec", "--stdin", "--tty")
	if target.Container != "" {
		args = append(args, "--container", target.Container)
	}
	args = append(args, target.Pod, "--")
	return append(args, command...)
}

// Run invokes kubectl with the given argument vector, streaming through the
// configured stdio, and returns the subprocess exit code.
func (c *Client) Run(ctx context.Context, args []string) (int, error) {
	cmd := c.execCommand(ctx, c.binary, args...)
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
		return 1, fmt.Errorf("failed to execute %s: %w", c.binary, err)
	}
	return 0, nil
}
