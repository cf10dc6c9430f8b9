package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/weavecli/weave/internal/logging"
)

const transcriptExt = ".yml"

// Manager resolves session names to sessions backed by files in one
// directory.
type Manager struct {
	dir string
}

func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.dir, name+transcriptExt)
}

// Get resolves a name to a session. The empty name yields an ephemeral
// session with an empty transcript.
func (m *Manager) Get(name string) (*Session, error) {
	if name == "" {
		return Ephemeral(), nil
	}
	return m.LoadOrCreate(name)
}

// LoadOrCreate loads the named session, falling back to a fresh empty one
// when the file is missing or unreadable. The load failure is logged, not
// surfaced; only failure to create the new file is fatal.
func (m *Manager) LoadOrCreate(name string) (*Session, error) {
	sess, err := m.Load(name)
	if err == nil {
		return sess, nil
	}
	logging.Info().Err(err).Str("session", name).Msg("failed to load session, creating a new one")

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	path := m.path(name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("create session %s: %w", path, err)
	}
	return &Session{path: path, file: file}, nil
}

// Load opens the named session for read+append and decodes its transcript.
// Unknown-role entries load fine; a file that does not parse as an entry
// list is a load error.
func (m *Manager) Load(name string) (*Session, error) {
	path := m.path(name)
	file, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open session %s: %w", path, err)
	}

	entries, err := loadEntries(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("load session %s: %w", path, err)
	}
	return &Session{path: path, file: file, entries: entries}, nil
}

// Remove deletes the named session's transcript file without reading it,
// so a transcript that no longer parses can still be cleared.
func (m *Manager) Remove(name string) error {
	path := m.path(name)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove session %s: %w", path, err)
	}
	return nil
}

// List enumerates session names in the store directory. Files without the
// transcript extension are excluded. A missing directory is an empty store.
func (m *Manager) List() ([]string, error) {
	dirents, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}

	var names []string
	for _, ent := range dirents {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), transcriptExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(ent.Name(), transcriptExt))
	}
	return names, nil
}
