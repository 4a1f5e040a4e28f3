// SPDX-License-Identifier: MPL-2.0

package environ

import (
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"

	"golang.org/x/exp/slices"
)

const (
	// PseudoOS expands to the host operating system name (GOOS).
	PseudoOS = "DAVIT_OS"
	// PseudoWorkDirRelPath expands to the invocation directory's path
	// relative to the catalog directory (e.g. "/src/app" when davit runs
	// from <catalog-dir>/src/app).
	PseudoWorkDirRelPath = "DAVIT_WORK_DIR_REL_PATH"
	// PseudoCurrentUser expands to the numeric user id of the invoking user.
	PseudoCurrentUser = "DAVIT_CURRENT_USER"

	// maxInterpolationPasses bounds repeated expansion so that reference
	// cycles terminate instead of looping.
	maxInterpolationPasses = 10
)

// varPattern matches $VAR and ${VAR} references.
var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

type (
	// Store holds the resolved key/value variables for one invocation.
	// It is write-once-merge-many: layers are merged in priority order and
	// never deleted. Lookup resolves store values first, then the live
	// process environment, then the computed pseudo-variables.
	Store struct {
		values map[string]string

		// lookupEnv reads the live process environment. Defaults to
		// os.LookupEnv; tests inject a fixed map.
		lookupEnv func(string) (string, bool)

		// catalogDir and workDir feed the pseudo-variables.
		catalogDir string
		workDir    string

		// pseudo caches lazily computed pseudo-variables.
		pseudo map[string]string
	}

	// StoreOption configures a Store.
	StoreOption func(*Store)
)

// WithLookupEnv replaces the process environment lookup, for tests.
func WithLookupEnv(fn func(string) (string, bool)) StoreOption {
	return func(s *Store) { s.lookupEnv = fn }
}

// WithWorkDir overrides the invocation directory used by
// DAVIT_WORK_DIR_REL_PATH. Defaults to the current working directory.
func WithWorkDir(dir string) StoreOption {
	return func(s *Store) { s.workDir = dir }
}

// NewStore creates an empty store anchored at the catalog directory.
func NewStore(catalogDir string, opts ...StoreOption) *Store {
	s := &Store{
		values:     make(map[string]string),
		lookupEnv:  os.LookupEnv,
		catalogDir: catalogDir,
		pseudo:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Merge layers pairs into the store. Each value is interpolated against the
// current store and process environment before storage; for any key already
// set in the live process environment the process value is stored verbatim
// instead, matching the override rule. Keys are merged in sorted order so
// values referencing sibling keys resolve deterministically.
func (s *Store) Merge(pairs map[string]string) {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if hostValue, ok := s.lookupEnv(k); ok {
			s.values[k] = hostValue
			continue
		}
		s.values[k] = s.Interpolate(pairs[k])
	}
}

// Interpolate expands $VAR/${VAR} references in text against the store, the
// process environment, and the pseudo-variables, in that order. Unresolvable
// references stay literal. Expansion repeats until a fixed point, bounded at
// maxInterpolationPasses; hitting the bound logs the text and returns it
// partially resolved.
func (s *Store) Interpolate(text string) string {
	for pass := 0; pass < maxInterpolationPasses; pass++ {
		expanded := s.expandOnce(text)
		if expanded == text {
			return expanded
		}
		text = expanded
	}
	slog.Warn("environment interpolation did not settle, leaving value partially resolved",
		"value", text, "passes", maxInterpolationPasses)
	return text
}

// Get returns the resolved value for key using the store's lookup order.
func (s *Store) Get(key string) (string, bool) {
	return s.resolve(key)
}

// Values returns a copy of the stored key/value pairs (pseudo-variables and
// plain process environment entries are not included).
func (s *Store) Values() map[string]string {
	out := make(map[string]string, len(s.values))
	maps.Copy(out, s.values)
	return out
}

func (s *Store) expandOnce(text string) string {
	return varPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := varPattern.FindStringSubmatch(match)
		key := name[1]
		if key == "" {
			key = name[2]
		}
		if value, ok := s.resolve(key); ok {
			return value
		}
		return match
	})
}

// resolve looks a name up in the store, then the process environment, then
// the pseudo-variables. Process environment placement means a same-named host
// variable shadows the computed pseudo-values too.
func (s *Store) resolve(name string) (string, bool) {
	if value, ok := s.values[name]; ok {
		return value, true
	}
	if value, ok := s.lookupEnv(name); ok {
		return value, true
	}
	return s.pseudoVar(name)
}

// pseudoVar computes a DAVIT_* pseudo-variable on first use and caches it for
// the store's lifetime.
func (s *Store) pseudoVar(name string) (string, bool) {
	if value, ok := s.pseudo[name]; ok {
		return value, true
	}

	var value string
	switch name {
	case PseudoOS:
		value = runtime.GOOS
	case PseudoCurrentUser:
		value = strconv.Itoa(os.Getuid())
	case PseudoWorkDirRelPath:
		value = s.workDirRelPath()
	default:
		return "", false
	}

	s.pseudo[name] = value
	return value, true
}

func (s *Store) workDirRelPath() string {
	workDir := s.workDir
	if workDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			slog.Warn("failed to determine working directory", "error", err)
			return ""
		}
		workDir = cwd
	}

	rel, err := filepath.Rel(s.catalogDir, workDir)
	if err != nil {
		slog.Warn("failed to relativize working directory",
			"work_dir", workDir, "catalog_dir", s.catalogDir, "error", err)
		return ""
	}
	if rel == "." {
		return ""
	}
	return "/" + filepath.ToSlash(rel)
}
