// SPDX-License-Identifier: MPL-2.0

// Package environ resolves the per-invocation environment: it loads dotenv
// files, layers catalog-wide and per-command variable sources in priority
// order, and performs cyclic-safe $VAR/${VAR} interpolation.
//
// The one rule that trumps all layering: a key set in the live process
// environment always wins over any file- or catalog-sourced value for that
// key, including the computed DAVIT_* pseudo-variables.
package environ
