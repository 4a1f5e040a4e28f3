// SPDX-License-Identifier: MPL-2.0

package environ

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEnvFileRequired is the sentinel error wrapped by RequiredFileError.
var ErrEnvFileRequired = errors.New("required env file missing")

// RequiredFileError is returned when a required dotenv file cannot be read.
type RequiredFileError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *RequiredFileError) Error() string {
	return fmt.Sprintf("required env file %s could not be read: %v", e.Path, e.Cause)
}

// Unwrap returns ErrEnvFileRequired so callers can use errors.Is.
func (e *RequiredFileError) Unwrap() error { return ErrEnvFileRequired }

// LoadEnvFile loads a dotenv file and merges its contents into env.
// The path is resolved relative to basePath (the catalog directory).
// Files suffixed with '?' are optional, as is every file when required is
// false; missing optional files do not cause an error. Later calls override
// earlier values for the same keys.
func LoadEnvFile(env map[string]string, path, basePath string, required bool) error {
	if strings.HasSuffix(path, "?") {
		path = strings.TrimSuffix(path, "?")
		required = false
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(basePath, filepath.FromSlash(path))
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		if !required && os.IsNotExist(err) {
			return nil
		}
		return &RequiredFileError{Path: fullPath, Cause: err}
	}

	return ParseEnvFile(env, content, path)
}

// ParseEnvFile parses dotenv content and merges it into env.
// Supported format:
//   - Lines starting with # are comments
//   - Empty lines are ignored
//   - KEY=value (unquoted; trailing " #" comments stripped)
//   - KEY="value" (double-quoted, escape sequences: \n, \r, \t, \\, \")
//   - KEY='value' (single-quoted, literal)
//   - export KEY=value (export prefix ignored)
//   - KEY= (empty value)
//
// The filename parameter is used for error messages.
func ParseEnvFile(env map[string]string, content []byte, filename string) error {
	lines := strings.Split(string(content), "\n")

	for i, line := range lines {
		lineNum := i + 1

		line = strings.TrimSuffix(line, "\r")
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimPrefix(line, "export ")
		line = strings.TrimSpace(line)

		key, value, found := strings.Cut(line, "=")
		if !found {
			return fmt.Errorf("%s:%d: invalid format (missing '=')", filename, lineNum)
		}

		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("%s:%d: empty variable name", filename, lineNum)
		}

		parsedValue, err := parseEnvValue(value)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", filename, lineNum, err)
		}

		env[key] = parsedValue
	}

	return nil
}

// parseEnvValue parses a dotenv value, handling quoting and escape sequences.
func parseEnvValue(value string) (string, error) {
	value = strings.TrimSpace(value)

	if value == "" {
		return "", nil
	}

	if value[0] == '"' {
		if len(value) < 2 || value[len(value)-1] != '"' {
			return "", fmt.Errorf("unterminated double quote")
		}
		return unescapeDoubleQuoted(value[1 : len(value)-1]), nil
	}
	if value[0] == '\'' {
		if len(value) < 2 || value[len(value)-1] != '\'' {
			return "", fmt.Errorf("unterminated single quote")
		}
		// Single-quoted values are literal.
		return value[1 : len(value)-1], nil
	}

	// Unquoted: strip trailing inline comments.
	if idx := strings.Index(value, " #"); idx != -1 {
		value = strings.TrimSpace(value[:idx])
	}

	return value, nil
}

// unescapeDoubleQuoted processes escape sequences in a double-quoted value.
func unescapeDoubleQuoted(value string) string {
	var result strings.Builder
	result.Grow(len(value))

	i := 0
	for i < len(value) {
		if value[i] == '\\' && i+1 < len(value) {
			switch next := value[i+1]; next {
			case 'n':
				result.WriteByte('\n')
			case 'r':
				result.WriteByte('\r')
			case 't':
				result.WriteByte('\t')
			case '\\':
				result.WriteByte('\\')
			case '"':
				result.WriteByte('"')
			case '$':
				result.WriteByte('$')
			default:
				// Unknown escape, keep both characters.
				result.WriteByte('\\')
				result.WriteByte(next)
			}
			i += 2
			continue
		}
		result.WriteByte(value[i])
		i++
	}

	return result.String()
}
