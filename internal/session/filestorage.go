// ABOUTME: File-backed session storage in the XDG config directory
// ABOUTME: Keeps all entries in a single 0600 JSON document rewritten on every change

package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// sessionFileName is the file holding persisted entries inside the config dir
const sessionFileName = "session.json"

// FileStorage persists entries to <configDir>/session.json
type FileStorage struct {
	configDir string
	mu        sync.Mutex
}

type fileData struct {
	Entries map[string]string `json:"entries"`
}

// NewFileStorage creates a storage rooted at configDir.
// The directory is created lazily on the first write.
func NewFileStorage(configDir string) *FileStorage {
	return &FileStorage{configDir: configDir}
}

// Path returns the backing file path
func (fs *FileStorage) Path() string {
	return filepath.Join(fs.configDir, sessionFileName)
}

func (fs *FileStorage) Get(key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.load()
	if err != nil {
		return "", false, err
	}
	v, ok := entries[key]
	return v, ok, nil
}

func (fs *FileStorage) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.load()
	if err != nil {
		return err
	}
	entries[key] = value
	return fs.save(entries)
}

func (fs *FileStorage) Remove(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return fs.save(entries)
}

// load reads the entries map. Must hold mu.
// A missing or corrupt file reads as empty.
func (fs *FileStorage) load() (map[string]string, error) {
	data, err := os.ReadFile(fs.Path())
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil || fd.Entries == nil {
		return map[string]string{}, nil
	}
	return fd.Entries, nil
}

// save writes the entries map atomically. Must hold mu.
func (fs *FileStorage) save(entries map[string]string) error {
	if fs.configDir == "" {
		return fmt.Errorf("no config directory available")
	}
	if err := os.MkdirAll(fs.configDir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(fileData{Entries: entries}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(fs.configDir, sessionFileName+".*")
	if err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write session file: %w", err)
	}
	return os.Rename(tmp.Name(), fs.Path())
}
