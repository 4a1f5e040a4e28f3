// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"errors"
	"testing"
)

func TestParseRunner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want Runner
	}{
		{"local", "local", RunnerLocal},
		{"shell alias", "shell", RunnerLocal},
		{"compose", "compose", RunnerCompose},
		{"docker compose with dash", "docker-compose", RunnerCompose},
		{"docker compose with underscore", "Docker_Compose", RunnerCompose},
		{"kubectl", "kubectl", RunnerKubectl},
		{"kubernetes alias", "Kubernetes", RunnerKubectl},
		{"mixed case", "LOCAL", RunnerLocal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseRunner(tt.in)
			if err != nil {
				t.Fatalf("ParseRunner(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseRunner(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseRunner_Unknown(t *testing.T) {
	t.Parallel()

	_, err := ParseRunner("podman")
	if !errors.Is(err, ErrUnknownRunner) {
		t.Fatalf("ParseRunner(podman) error = %v, want ErrUnknownRunner", err)
	}

	var unknownErr *UnknownRunnerError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("error should be *UnknownRunnerError, got %T", err)
	}
	if unknownErr.Name != "podman" {
		t.Errorf("UnknownRunnerError.Name = %q, want original input", unknownErr.Name)
	}
}

func TestRunner_Validate(t *testing.T) {
	t.Parallel()

	for _, r := range []Runner{RunnerLocal, RunnerCompose, RunnerKubectl} {
		if err := r.Validate(); err != nil {
			t.Errorf("Validate(%q) error = %v", r, err)
		}
	}
	if err := Runner("ssh").Validate(); !errors.Is(err, ErrUnknownRunner) {
		t.Errorf("Validate(ssh) error = %v, want ErrUnknownRunner", err)
	}
}
