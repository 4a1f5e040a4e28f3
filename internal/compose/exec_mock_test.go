// SPDX-License-Identifier: MPL-2.0

package compose

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
)

type (
	// mockCommandRecorder captures arguments passed to exec.Command for
	// verification. It uses the TestHelperProcess pattern to simulate command
	// execution.
	mockCommandRecorder struct {
		// Invocations records each call to the mock exec.Command
		Invocations []mockInvocation
		// ExitCode is the exit code to return (0 = success)
		ExitCode int
		// Stdout is the output to write to stdout
		Stdout string
	}

	// mockInvocation represents a single invocation of exec.Command.
	mockInvocation struct {
		Name string
		Args []string
	}
)

// commandFunc returns a function that replaces the client's exec.Cmd factory.
// It records invocations and returns a command that runs TestHelperProcess.
func (m *mockCommandRecorder) commandFunc(t *testing.T) ExecCommandFunc {
	t.Helper()
	return func(_ context.Context, name string, args ...string) *exec.Cmd {
		m.Invocations = append(m.Invocations, mockInvocation{Name: name, Args: args})

		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, args...)
		cmd := exec.Command(os.Args[0], cs...)
		cmd.Env = []string{
			"GO_WANT_HELPER_PROCESS=1",
			fmt.Sprintf("GO_HELPER_EXIT_CODE=%d", m.ExitCode),
			fmt.Sprintf("GO_HELPER_STDOUT=%s", m.Stdout),
		}
		return cmd
	}
}

// lastArgs returns the arguments from the most recent invocation.
func (m *mockCommandRecorder) lastArgs() []string {
	if len(m.Invocations) == 0 {
		return nil
	}
	return m.Invocations[len(m.Invocations)-1].Args
}

// TestHelperProcess simulates command execution for the mock recorder.
// It is invoked by the mock, never directly.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	if stdout := os.Getenv("GO_HELPER_STDOUT"); stdout != "" {
		fmt.Fprint(os.Stdout, stdout)
	}

	exitCode := 0
	if code := os.Getenv("GO_HELPER_EXIT_CODE"); code != "" {
		fmt.Sscanf(code, "%d", &exitCode)
	}
	os.Exit(exitCode)
}
