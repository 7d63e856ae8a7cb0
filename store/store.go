package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"movix-cli/model"
)

const (
	appDirName  = "movix-cli"
	sessionFile = "session.json"

	TokenKey = "access_token"
	UserKey  = "user"
)

// Storage is a durable string key-value store.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key string, value string) error
	Remove(key string) error
}

// FileStorage keeps every entry in one JSON document on disk. A document that
// does not parse reads as empty.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage stores entries under dir. An empty dir means the user config
// directory.
func NewFileStorage(dir string) (*FileStorage, error) {
	if strings.TrimSpace(dir) == "" {
		path, err := configPath(sessionFile)
		if err != nil {
			return nil, err
		}
		return &FileStorage{path: path}, nil
	}
	return &FileStorage{path: filepath.Join(dir, sessionFile)}, nil
}

func (s *FileStorage) Path() string {
	return s.path
}

func (s *FileStorage) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", false, err
	}
	value, ok := entries[key]
	return value, ok, nil
}

func (s *FileStorage) Set(key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	entries[key] = value
	return s.save(entries)
}

func (s *FileStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return s.save(entries)
}

func (s *FileStorage) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		// An unreadable document is dropped; the next save replaces it.
		return map[string]string{}, nil
	}
	return entries, nil
}

func (s *FileStorage) save(entries map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, payload, 0o600)
}

// MemoryStorage is a Storage that lives only as long as the process.
type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: map[string]string{}}
}

func (s *MemoryStorage) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.entries[key]
	return value, ok, nil
}

func (s *MemoryStorage) Set(key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

func (s *MemoryStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// UserStatus describes what LoadSession found in the user entry.
type UserStatus int

const (
	UserAbsent UserStatus = iota
	UserLoaded
	// UserDiscarded means the entry did not parse and was removed.
	UserDiscarded
)

// LoadSession reads the persisted token and user. A user entry that is not
// valid JSON is removed and reported as UserDiscarded; it is never an error.
func LoadSession(s Storage) (string, *model.User, UserStatus, error) {
	token, _, err := s.Get(TokenKey)
	if err != nil {
		return "", nil, UserAbsent, err
	}
	raw, ok, err := s.Get(UserKey)
	if err != nil {
		return token, nil, UserAbsent, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return token, nil, UserAbsent, nil
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		_ = s.Remove(UserKey)
		return token, nil, UserDiscarded, nil
	}
	return token, &user, UserLoaded, nil
}

func SaveSession(s Storage, token string, user model.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.Set(TokenKey, token); err != nil {
		return err
	}
	return s.Set(UserKey, string(payload))
}

func ClearSession(s Storage) error {
	return errors.Join(s.Remove(TokenKey), s.Remove(UserKey))
}

// Token returns the persisted access token, or "" when there is none or the
// storage cannot be read.
func Token(s Storage) string {
	token, _, err := s.Get(TokenKey)
	if err != nil {
		return ""
	}
	return token
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName, name), nil
}

// CachePath returns a path under the user cache directory for this app.
func CachePath(name string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName, name), nil
}
