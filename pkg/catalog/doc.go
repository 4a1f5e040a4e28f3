// SPDX-License-Identifier: MPL-2.0

// Package catalog defines the davit.yaml data model and its loader.
//
// A catalog is a hierarchical set of named commands ("interactions") plus the
// backend settings needed to dispatch them: compose files and project
// identity, a kubectl namespace, and catalog-wide environment sources. The
// loader locates the catalog by walking up from the working directory, merges
// an optional davit.override.yaml over it, validates the result against an
// embedded CUE schema, and decodes it into the typed structs in this package.
package catalog
