// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates YAML documents against embedded CUE schemas and
// formats CUE validation errors with JSON-path context for user display.
package cueutil
