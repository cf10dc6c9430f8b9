// Package patterns resolves named system-prompt templates from disk.
package patterns

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/weavecli/weave/internal/logging"
)

// Pattern is a named system prompt applied to a user query.
// Immutable once loaded; owned by the caller for one exchange.
type Pattern struct {
	Name   string
	System string
}

// Registry resolves pattern names to Patterns.
type Registry interface {
	Names() ([]string, error)
	Get(name string) (Pattern, error)
}

// DirRegistry reads patterns laid out as <dir>/<name>/system.md.
type DirRegistry struct {
	dir string
}

func NewDirRegistry(dir string) *DirRegistry {
	return &DirRegistry{dir: dir}
}

func (r *DirRegistry) Names() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read patterns dir %s: %w", r.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, ent := range entries {
		if !ent.IsDir() {
			continue
		}
		names = append(names, ent.Name())
	}
	return names, nil
}

func (r *DirRegistry) Get(name string) (Pattern, error) {
	path := filepath.Join(r.dir, name, "system.md")
	logging.Debug().Str("path", path).Msg("reading pattern file")

	system, err := os.ReadFile(path)
	if err != nil {
		return Pattern{}, fmt.Errorf("pattern %q: %w", name, err)
	}
	return Pattern{Name: name, System: string(system)}, nil
}

// Source multiplexes several registries. Get returns the first hit, so
// registries added later shadow earlier ones only when earlier ones miss.
type Source struct {
	registries []Registry
}

// NewSource builds a Source from the base pattern directory plus any extra
// directories. Paths that are not directories are skipped.
func NewSource(base string, extra ...string) *Source {
	s := &Source{}
	s.Add(NewDirRegistry(base))

	for _, dir := range extra {
		dir = expandHome(strings.TrimSpace(dir))
		if dir == "" {
			continue
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			logging.Debug().Str("dir", dir).Msg("skipping extra pattern path")
			continue
		}
		s.Add(NewDirRegistry(dir))
	}
	return s
}

func (s *Source) Add(r Registry) {
	s.registries = append(s.registries, r)
}

// Names returns the union of pattern names across registries, sorted.
// A registry that fails to enumerate is logged and skipped.
func (s *Source) Names() ([]string, error) {
	seen := make(map[string]struct{})
	var all []string
	for _, reg := range s.registries {
		names, err := reg.Names()
		if err != nil {
			logging.Debug().Err(err).Msg("failed to list patterns from registry")
			continue
		}
		for _, name := range names {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			all = append(all, name)
		}
	}
	sort.Strings(all)
	return all, nil
}

func (s *Source) Get(name string) (Pattern, error) {
	var lastErr error = fmt.Errorf("pattern %q: no registries configured", name)
	for _, reg := range s.registries {
		pat, err := reg.Get(name)
		if err == nil {
			return pat, nil
		}
		lastErr = err
	}
	return Pattern{}, lastErr
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
