// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	// PriorityBeforeEnvironment layers env files below the environment block
	// (the block wins). This is the default.
	PriorityBeforeEnvironment EnvFilePriority = "before_environment"
	// PriorityAfterEnvironment layers env files above the environment block
	// (the files win).
	PriorityAfterEnvironment EnvFilePriority = "after_environment"
)

// ErrInvalidEnvFilePriority is the sentinel error wrapped by InvalidEnvFilePriorityError.
var ErrInvalidEnvFilePriority = errors.New("invalid env file priority")

type (
	// EnvFilePriority controls where env files sit relative to the
	// environment block during layering. The zero value ("") is treated as
	// PriorityBeforeEnvironment.
	EnvFilePriority string

	// InvalidEnvFilePriorityError is returned when an EnvFilePriority is not
	// one of the defined priorities.
	InvalidEnvFilePriorityError struct {
		Value EnvFilePriority
	}

	// EnvFileSpec is the polymorphic env_file value. In YAML it is a single
	// path, a list of paths, or a mapping:
	//
	//	env_file: .env
	//	env_file: [.env, .env.local]
	//	env_file: {files: .env, required: false, priority: after_environment}
	//
	// Files are merged left to right, later overriding earlier.
	EnvFileSpec struct {
		// Files lists dotenv paths relative to the catalog directory.
		Files []string
		// Required makes a missing file fatal. Defaults to true. A trailing
		// '?' on an individual path marks just that file optional.
		Required bool
		// Priority positions the files relative to the environment block.
		Priority EnvFilePriority
	}

	// StringList decodes from either a YAML scalar or a sequence of scalars.
	StringList []string

	// envFileSpecMapping mirrors the mapping form of EnvFileSpec for decoding.
	envFileSpecMapping struct {
		Files    StringList      `yaml:"files"`
		Required *bool           `yaml:"required"`
		Priority EnvFilePriority `yaml:"priority"`
	}
)

// Error implements the error interface.
func (e *InvalidEnvFilePriorityError) Error() string {
	return fmt.Sprintf("invalid env file priority %q (valid: %s, %s)",
		e.Value, PriorityBeforeEnvironment, PriorityAfterEnvironment)
}

// Unwrap returns ErrInvalidEnvFilePriority so callers can use errors.Is.
func (e *InvalidEnvFilePriorityError) Unwrap() error { return ErrInvalidEnvFilePriority }

// Validate returns nil if the priority is one of the defined values.
// The zero value is valid and means before_environment.
func (p EnvFilePriority) Validate() error {
	switch p {
	case "", PriorityBeforeEnvironment, PriorityAfterEnvironment:
		return nil
	default:
		return &InvalidEnvFilePriorityError{Value: p}
	}
}

// Effective resolves the zero value to the default priority.
func (p EnvFilePriority) Effective() EnvFilePriority {
	if p == "" {
		return PriorityBeforeEnvironment
	}
	return p
}

// UnmarshalYAML decodes the scalar, sequence, or mapping form.
func (s *EnvFileSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var path string
		if err := node.Decode(&path); err != nil {
			return err
		}
		*s = EnvFileSpec{Files: []string{path}, Required: true}
		return nil
	case yaml.SequenceNode:
		var paths []string
		if err := node.Decode(&paths); err != nil {
			return err
		}
		*s = EnvFileSpec{Files: paths, Required: true}
		return nil
	case yaml.MappingNode:
		var m envFileSpecMapping
		if err := node.Decode(&m); err != nil {
			return err
		}
		if err := m.Priority.Validate(); err != nil {
			return err
		}
		required := true
		if m.Required != nil {
			required = *m.Required
		}
		*s = EnvFileSpec{Files: m.Files, Required: required, Priority: m.Priority}
		return nil
	default:
		return fmt.Errorf("line %d: env_file must be a string, list, or mapping", node.Line)
	}
}

// UnmarshalYAML decodes either a single scalar or a sequence.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = StringList(items)
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or list of strings", node.Line)
	}
}
