// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"
	"strings"

	"davit-cli/pkg/catalog"
)

const (
	// MethodRun starts a one-off container for the service.
	MethodRun ComposeMethod = "run"
	// MethodExec runs inside an already-running container.
	MethodExec ComposeMethod = "exec"
	// MethodUp brings services (or profiles) up in the foreground.
	MethodUp ComposeMethod = "up"
)

// ErrInvalidComposeMethod is the sentinel error wrapped by InvalidComposeMethodError.
var ErrInvalidComposeMethod = errors.New("invalid compose method")

type (
	// ComposeMethod is the compose subcommand a descriptor dispatches to.
	// The zero value ("") is normalized to MethodRun at build time.
	ComposeMethod string

	// InvalidComposeMethodError is returned when a ComposeMethod is not one
	// of the defined methods.
	InvalidComposeMethodError struct {
		Value ComposeMethod
	}

	// ComposeConfig is a descriptor's normalized compose strategy tuning.
	ComposeConfig struct {
		// Method is run, exec, or up. Never empty after normalization.
		Method ComposeMethod
		// RunOptions are extra flags inserted into `compose run` invocations.
		RunOptions []string
		// Profiles emits one --profile flag per entry and forces MethodUp.
		Profiles []string
	}

	// Descriptor is the normalized, immutable representation of one catalog
	// command, ready for dispatch. Auto-detection never mutates a Descriptor;
	// per-dispatch adjustments live in the dispatcher's execution plan.
	Descriptor struct {
		// Path is the ordered catalog names identifying this command.
		Path []string
		// Description is display-only free text.
		Description string
		// Command is the literal invocation to run. May be empty.
		Command string
		// Shell joins arguments into one shell-interpreted string when true,
		// and passes them as a discrete vector when false.
		Shell bool
		// DefaultArgs is parsed in place of absent trailing tokens.
		DefaultArgs string
		// Service targets the compose backend when non-empty.
		Service string
		// Pod targets the cluster backend as "pod[:container]" when non-empty.
		Pod string
		// Runner overrides target-based strategy selection when non-empty.
		Runner string
		// Compose tunes the compose strategy.
		Compose ComposeConfig
		// Environment is this command's variable overlay (parent overlays
		// already merged in).
		Environment map[string]string
		// EnvFiles references per-command dotenv files, nil when none.
		EnvFiles *catalog.EnvFileSpec
	}
)

// Error implements the error interface.
func (e *InvalidComposeMethodError) Error() string {
	return fmt.Sprintf("invalid compose method %q (valid: %s, %s, %s)",
		e.Value, MethodRun, MethodExec, MethodUp)
}

// Unwrap returns ErrInvalidComposeMethod so callers can use errors.Is.
func (e *InvalidComposeMethodError) Unwrap() error { return ErrInvalidComposeMethod }

// Validate returns nil if the ComposeMethod is one of the defined methods.
func (m ComposeMethod) Validate() error {
	switch m {
	case MethodRun, MethodExec, MethodUp:
		return nil
	default:
		return &InvalidComposeMethodError{Value: m}
	}
}

// String returns the compose subcommand name.
func (m ComposeMethod) String() string { return string(m) }

// Name returns the space-joined path, the key callers type to invoke the
// command.
func (d *Descriptor) Name() string {
	return strings.Join(d.Path, " ")
}
