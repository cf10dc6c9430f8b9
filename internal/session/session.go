package session

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/weavecli/weave/internal/logging"
)

// Session is an ordered transcript with one of two identities: stored
// (bound to a file with an open append handle) or ephemeral (memory only,
// used when no session name is given). A session has a single writer for
// the lifetime of one invocation; concurrent invocations against the same
// name are not supported.
type Session struct {
	path    string
	file    *os.File
	entries []Entry
}

// Ephemeral returns an in-memory session that never touches disk.
func Ephemeral() *Session {
	return &Session{}
}

// IsEphemeral reports whether the session has no durable backing.
func (s *Session) IsEphemeral() bool {
	return s.file == nil && s.path == ""
}

// Entries returns the ordered transcript. The slice is shared; callers
// must not mutate it.
func (s *Session) Entries() []Entry {
	return s.entries
}

// Append persists the entry (stored sessions) and adds it to the in-memory
// list. The durable write is a single buffered write of a self-contained
// YAML sequence fragment, so repeated appends read back as one document.
// On write failure the in-memory list is left untouched.
func (s *Session) Append(entry Entry) error {
	if s.file != nil {
		frag, err := yaml.Marshal([]Entry{entry})
		if err != nil {
			return fmt.Errorf("encode entry: %w", err)
		}
		if _, err := s.file.Write(frag); err != nil {
			return fmt.Errorf("append to session %s: %w", s.path, err)
		}
	}

	s.entries = append(s.entries, entry)
	return nil
}

// Prune discards the oldest entries so at most limit remain, returning the
// discarded entries. Stored sessions rewrite the whole backing file from
// the remaining list; this is the one bulk-rewrite operation. Ephemeral
// sessions are left untouched.
func (s *Session) Prune(limit int) ([]Entry, error) {
	if s.IsEphemeral() {
		return nil, nil
	}
	if limit < 0 {
		limit = 0
	}
	if len(s.entries) <= limit {
		return nil, nil
	}

	cut := len(s.entries) - limit
	discard := append([]Entry(nil), s.entries[:cut]...)
	remaining := append([]Entry(nil), s.entries[cut:]...)
	logging.Debug().Int("discarded", len(discard)).Msg("pruning session")

	if s.file != nil {
		if err := s.rewrite(remaining); err != nil {
			return nil, err
		}
	}

	s.entries = remaining
	return discard, nil
}

// rewrite truncates the backing file and writes the given entries as a
// fresh document. Zero entries leave the file empty so later appends
// still concatenate into a valid sequence.
func (s *Session) rewrite(entries []Entry) error {
	if err := s.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate session %s: %w", s.path, err)
	}
	if len(entries) == 0 {
		return nil
	}
	doc, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	// The handle is append-mode, so this lands at the new end of file.
	if _, err := s.file.Write(doc); err != nil {
		return fmt.Errorf("rewrite session %s: %w", s.path, err)
	}
	return nil
}

// Clear deletes the backing file entirely. Ephemeral sessions no-op.
func (s *Session) Clear() error {
	if s.file == nil {
		return nil
	}
	if err := s.file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("close session %s: %w", s.path, err)
	}
	s.file = nil
	if err := os.Remove(s.path); err != nil {
		return fmt.Errorf("remove session %s: %w", s.path, err)
	}
	return nil
}

// Close releases the append handle. Safe on ephemeral sessions.
func (s *Session) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// loadEntries decodes the full ordered entry list from an open handle,
// leaving the offset at end of file for subsequent appends. An empty file
// is an empty transcript, not an error.
func loadEntries(f *os.File) ([]Entry, error) {
	var entries []Entry
	if err := yaml.NewDecoder(f).Decode(&entries); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse transcript: %w", err)
	}
	return entries, nil
}
