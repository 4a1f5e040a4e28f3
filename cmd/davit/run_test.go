// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"testing"

	"davit-cli/internal/registry"
)

func TestParseEnvFlags(t *testing.T) {
	t.Parallel()

	vars, err := parseEnvFlags([]string{"A=1", "B=with=equals", "C="})
	if err != nil {
		t.Fatalf("parseEnvFlags() error = %v", err)
	}
	if vars["A"] != "1" {
		t.Errorf("vars[A] = %q, want %q", vars["A"], "1")
	}
	if vars["B"] != "with=equals" {
		t.Errorf("vars[B] = %q, only the first '=' separates key and value", vars["B"])
	}
	if v, ok := vars["C"]; !ok || v != "" {
		t.Errorf("vars[C] = %q, %v, want empty value present", v, ok)
	}
}

func TestParseEnvFlags_Empty(t *testing.T) {
	t.Parallel()

	vars, err := parseEnvFlags(nil)
	if err != nil {
		t.Fatalf("parseEnvFlags() error = %v", err)
	}
	if vars != nil {
		t.Errorf("parseEnvFlags(nil) = %v, want nil", vars)
	}
}

func TestParseEnvFlags_Invalid(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"NOEQUALS", "=value"} {
		if _, err := parseEnvFlags([]string{bad}); err == nil {
			t.Errorf("parseEnvFlags(%q) expected error", bad)
		}
	}
}

func TestEnvToSlice_Sorted(t *testing.T) {
	t.Parallel()

	got := envToSlice(map[string]string{"Z": "26", "A": "1"})
	if len(got) != 2 || got[0] != "A=1" || got[1] != "Z=26" {
		t.Errorf("envToSlice() = %v, want sorted KEY=VALUE pairs", got)
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	err := &ExitError{Code: 3}
	if err.Error() != "exit status 3" {
		t.Errorf("Error() = %q, want %q", err.Error(), "exit status 3")
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		desc *registry.Descriptor
		want string
	}{
		{
			"description wins",
			&registry.Descriptor{Description: "Open a shell", Command: "bash", Service: "app"},
			"Open a shell",
		},
		{
			"service annotation",
			&registry.Descriptor{Command: "bash", Service: "app"},
			"bash (service app)",
		},
		{
			"pod annotation",
			&registry.Descriptor{Command: "sh", Pod: "web-0"},
			"sh (pod web-0)",
		},
		{
			"local command",
			&registry.Descriptor{Command: "make build"},
			"make build",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := describe(tt.desc); got != tt.want {
				t.Errorf("describe() = %q, want %q", got, tt.want)
			}
		})
	}
}
