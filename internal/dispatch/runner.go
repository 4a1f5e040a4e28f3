// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// RunnerLocal executes the invocation on the local shell.
	RunnerLocal Runner = "local"
	// RunnerCompose executes through the compose front-end.
	RunnerCompose Runner = "compose"
	// RunnerKubectl executes through the cluster front-end.
	RunnerKubectl Runner = "kubectl"
)

// ErrUnknownRunner is the sentinel error wrapped by UnknownRunnerError.
var ErrUnknownRunner = errors.New("unknown runner")

type (
	// Runner is the closed set of execution strategies.
	Runner string

	// UnknownRunnerError is returned when a catalog entry names a runner that
	// maps to no known strategy. This is a configuration error and fatal at
	// dispatch time.
	UnknownRunnerError struct {
		Name string
	}
)

// Error implements the error interface.
func (e *UnknownRunnerError) Error() string {
	return fmt.Sprintf("unknown runner %q (valid: %s, %s, %s)",
		e.Name, RunnerLocal, RunnerCompose, RunnerKubectl)
}

// Unwrap returns ErrUnknownRunner so callers can use errors.Is.
func (e *UnknownRunnerError) Unwrap() error { return ErrUnknownRunner }

// Validate returns nil if the Runner is one of the defined strategies.
func (r Runner) Validate() error {
	switch r {
	case RunnerLocal, RunnerCompose, RunnerKubectl:
		return nil
	default:
		return &UnknownRunnerError{Name: string(r)}
	}
}

// ParseRunner maps an explicit runner name to a strategy. Matching is
// case-insensitive and ignores '-', '_' and space delimiters, so
// "docker_compose" and "Docker-Compose" both select the compose strategy.
func ParseRunner(name string) (Runner, error) {
	normalized := strings.ToLower(name)
	for _, cut := range []string{"-", "_", " "} {
		normalized = strings.ReplaceAll(normalized, cut, "")
	}

	switch normalized {
	case "local", "shell":
		return RunnerLocal, nil
	case "compose", "dockercompose":
		return RunnerCompose, nil
	case "kubectl", "kubernetes":
		return RunnerKubectl, nil
	default:
		return "", &UnknownRunnerError{Name: name}
	}
}
