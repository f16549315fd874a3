// Package settings persists small user-editable values (the API credential)
// as a single flat JSON object on disk. Updates are read-modify-write: the
// file is read fully, the changed key merged in, and the whole object
// rewritten, so keys written by other versions of the app survive.
package settings

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// EnvAPIKey takes precedence over the persisted credential.
const EnvAPIKey = "OPENAI_API_KEY"

// KeyAPIKey is the credential's key inside the settings file.
const KeyAPIKey = "openai_api_key"

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// load reads the settings file into a map. A missing file is an empty map,
// not an error.
func (s *Store) load() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	values := map[string]any{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// Get returns the string value for key from the settings file.
func (s *Store) Get(key string) (string, bool) {
	values, err := s.load()
	if err != nil {
		return "", false
	}
	v, ok := values[key].(string)
	return v, ok && v != ""
}

// Set merges key=value into the settings file, creating it if absent.
// Existing keys are retained unless overwritten.
func (s *Store) Set(key, value string) error {
	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// APIKey resolves the transcription credential: environment variable first,
// then the persisted settings value. Empty means no credential configured.
func (s *Store) APIKey() string {
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key
	}
	key, _ := s.Get(KeyAPIKey)
	return key
}

// SetAPIKey persists the credential into the settings file.
func (s *Store) SetAPIKey(key string) error {
	return s.Set(KeyAPIKey, key)
}
