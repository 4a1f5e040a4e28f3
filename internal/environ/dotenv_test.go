// SPDX-License-Identifier: MPL-2.0

package environ

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseEnvFile_BasicFormat(t *testing.T) {
	t.Parallel()

	content := `# comment line
FOO=bar

export BAZ=qux
EMPTY=
`
	env := make(map[string]string)
	if err := ParseEnvFile(env, []byte(content), ".env"); err != nil {
		t.Fatalf("ParseEnvFile() error = %v", err)
	}

	want := map[string]string{"FOO": "bar", "BAZ": "qux", "EMPTY": ""}
	for k, v := range want {
		if env[k] != v {
			t.Errorf("env[%q] = %q, want %q", k, env[k], v)
		}
	}
	if len(env) != len(want) {
		t.Errorf("len(env) = %d, want %d", len(env), len(want))
	}
}

func TestParseEnvFile_Quoting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		key  string
		want string
	}{
		{"double quoted escapes", `MSG="line1\nline2\t\"quoted\"\\"`, "MSG", "line1\nline2\t\"quoted\"\\"},
		{"single quoted literal", `RAW='a\nb $HOME'`, "RAW", `a\nb $HOME`},
		{"unquoted inline comment stripped", `VAL=hello # greeting`, "VAL", "hello"},
		{"unquoted hash without space kept", `URL=http://host/a#frag`, "URL", "http://host/a#frag"},
		{"crlf line ending", "KEY=value\r", "KEY", "value"},
		{"unknown escape kept", `ODD="a\qb"`, "ODD", `a\qb`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := make(map[string]string)
			if err := ParseEnvFile(env, []byte(tt.line), ".env"); err != nil {
				t.Fatalf("ParseEnvFile(%q) error = %v", tt.line, err)
			}
			if env[tt.key] != tt.want {
				t.Errorf("env[%q] = %q, want %q", tt.key, env[tt.key], tt.want)
			}
		})
	}
}

func TestParseEnvFile_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
	}{
		{"missing equals", "JUSTAKEY"},
		{"empty key", "=value"},
		{"unterminated double quote", `KEY="oops`},
		{"unterminated single quote", `KEY='oops`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := make(map[string]string)
			if err := ParseEnvFile(env, []byte(tt.line), ".env"); err == nil {
				t.Errorf("ParseEnvFile(%q) expected error, got nil", tt.line)
			}
		})
	}
}

func TestParseEnvFile_LaterWins(t *testing.T) {
	t.Parallel()

	env := make(map[string]string)
	if err := ParseEnvFile(env, []byte("A=first\nA=second"), ".env"); err != nil {
		t.Fatalf("ParseEnvFile() error = %v", err)
	}
	if env["A"] != "second" {
		t.Errorf("env[A] = %q, want %q", env["A"], "second")
	}
}

func TestLoadEnvFile_RelativeToBasePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("FOO=bar\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	env := make(map[string]string)
	if err := LoadEnvFile(env, ".env", dir, true); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if env["FOO"] != "bar" {
		t.Errorf("env[FOO] = %q, want %q", env["FOO"], "bar")
	}
}

func TestLoadEnvFile_MissingRequired(t *testing.T) {
	t.Parallel()

	env := make(map[string]string)
	err := LoadEnvFile(env, ".env.missing", t.TempDir(), true)
	if err == nil {
		t.Fatal("LoadEnvFile() expected error for missing required file")
	}
	if !errors.Is(err, ErrEnvFileRequired) {
		t.Errorf("error should unwrap to ErrEnvFileRequired, got %v", err)
	}

	var reqErr *RequiredFileError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error should be *RequiredFileError, got %T", err)
	}
	if reqErr.Path == "" {
		t.Error("RequiredFileError.Path should name the missing file")
	}
}

func TestLoadEnvFile_MissingOptional(t *testing.T) {
	t.Parallel()

	env := map[string]string{"KEEP": "me"}
	if err := LoadEnvFile(env, ".env.missing", t.TempDir(), false); err != nil {
		t.Fatalf("LoadEnvFile() optional missing file error = %v", err)
	}
	if env["KEEP"] != "me" {
		t.Error("existing entries should be untouched when an optional file is missing")
	}
}

func TestLoadEnvFile_QuestionMarkSuffix(t *testing.T) {
	t.Parallel()

	// The '?' suffix makes an individually required file optional.
	env := make(map[string]string)
	if err := LoadEnvFile(env, ".env.local?", t.TempDir(), true); err != nil {
		t.Fatalf("LoadEnvFile() with '?' suffix error = %v", err)
	}
}

func TestLoadEnvFile_QuestionMarkSuffixExistingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env.local"), []byte("A=1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	env := make(map[string]string)
	if err := LoadEnvFile(env, ".env.local?", dir, true); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if env["A"] != "1" {
		t.Errorf("env[A] = %q, want %q", env["A"], "1")
	}
}
