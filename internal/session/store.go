package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// ErrSessionNotFound is returned when an operation names a session id
// absent from the store.
var ErrSessionNotFound = errors.New("session: not found")

// Store holds the authoritative set of sessions and mirrors every
// mutation to a single JSON file. The file is rewritten wholesale; the
// in-memory set and the persisted copy are equal after every mutating
// operation returns.
//
// A mutex serializes all access: TUI commands run on their own
// goroutines and can overlap with reads from the update loop.
type Store struct {
	mu       sync.Mutex
	path     string
	sessions []*Session
}

// Open loads the session file at path. A missing file yields an empty
// store. A malformed file also yields an empty store rather than an
// error: persisted state is a cache of conversations, and refusing to
// start over a corrupt file would lock the user out entirely.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	if err := json.Unmarshal(data, &s.sessions); err != nil {
		s.sessions = nil
		return s, nil
	}

	return s, nil
}

// save rewrites the whole session array to disk.
func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	sessions := s.sessions
	if sessions == nil {
		sessions = []*Session{}
	}
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling sessions: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}

	return nil
}

// newID returns a millisecond-timestamp id unique within the store.
// Two sessions created within the same millisecond get consecutive ids.
func (s *Store) newID() string {
	n := time.Now().UnixMilli()
	for {
		id := strconv.FormatInt(n, 10)
		if s.find(id) == nil {
			return id
		}
		n++
	}
}

func (s *Store) find(id string) *Session {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// Create allocates a new session, optionally seeded with one user
// message, appends it to the store and persists.
func (s *Store) Create(kind Kind, name, sourceFileName, initialMessage string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{
		ID:             s.newID(),
		Name:           name,
		Kind:           kind,
		SourceFileName: sourceFileName,
		CreatedAt:      time.Now(),
	}
	if initialMessage != "" {
		sess.Messages = append(sess.Messages, NewMessage(RoleUser, initialMessage))
	}

	s.sessions = append(s.sessions, sess)
	if err := s.save(); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get returns the session with the given id, or nil if unknown.
func (s *Store) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(id)
}

// Append adds a message to the named session and persists. Returns the
// updated session, or ErrSessionNotFound for an unknown id.
func (s *Store) Append(id string, msg Message) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(id)
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	sess.Messages = append(sess.Messages, msg)
	if err := s.save(); err != nil {
		return nil, err
	}
	return sess, nil
}

// Rename changes a session's display name and persists.
func (s *Store) Rename(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(id)
	if sess == nil {
		return ErrSessionNotFound
	}

	sess.Name = name
	return s.save()
}

// SetRemoteID records the backend-issued session id and persists.
func (s *Store) SetRemoteID(id, remoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(id)
	if sess == nil {
		return ErrSessionNotFound
	}

	sess.RemoteID = remoteID
	return s.save()
}

// Remove deletes the named session and persists.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sess := range s.sessions {
		if sess.ID == id {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			return s.save()
		}
	}
	return ErrSessionNotFound
}

// List returns sessions in insertion order, filtered by kind when kind
// is non-empty.
func (s *Store) List(kind Kind) []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if kind == "" {
		return append([]*Session(nil), s.sessions...)
	}

	var out []*Session
	for _, sess := range s.sessions {
		if sess.Kind == kind {
			out = append(out, sess)
		}
	}
	return out
}

// Path returns the file the store persists to.
func (s *Store) Path() string {
	return s.path
}
