// SPDX-License-Identifier: MPL-2.0

// Package registry flattens the nested catalog into dispatchable command
// descriptors and resolves free-form token vectors against them.
//
// Flattening walks the interaction tree depth-first. Each subcommand inherits
// every field it leaves unset from its parent (the parent's subcommands are
// excluded from the inherited base), and is keyed by its compound path, e.g.
// "rails console". Resolution greedily matches the longest token prefix
// against those keys and hands back the unmatched suffix as trailing
// arguments.
package registry
