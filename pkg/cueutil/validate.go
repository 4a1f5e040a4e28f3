// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/yaml"
)

// MaxFileSize is the largest document accepted for validation (1 MiB).
// Catalog files are hand-written; anything larger is almost certainly a
// mistake, and bounding the size keeps schema unification cheap.
const MaxFileSize = 1 << 20

// ValidateYAML checks a YAML document against the root definition of an
// embedded CUE schema. The flow mirrors typed config loading elsewhere:
//
//  1. Compile the embedded schema
//  2. Extract the YAML document into a CUE value
//  3. Unify with the schema root and validate
//
// schemaPath names the root definition (e.g. "#Catalog"). filename is used
// only for error messages. A nil return means the document conforms; the
// caller is expected to decode the same bytes with its YAML codec afterwards.
func ValidateYAML(schema, data []byte, schemaPath, filename string) error {
	if filename == "" {
		filename = "<input>"
	}
	if len(data) > MaxFileSize {
		return fmt.Errorf("%s: file too large (%d bytes, max %d)", filename, len(data), MaxFileSize)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}

	file, err := yaml.Extract(filename, data)
	if err != nil {
		return FormatError(err, filename)
	}

	docValue := ctx.BuildFile(file)
	if docValue.Err() != nil {
		return FormatError(docValue.Err(), filename)
	}

	unified := schemaRoot.Unify(docValue)
	if err := unified.Validate(); err != nil {
		return FormatError(err, filename)
	}

	return nil
}
