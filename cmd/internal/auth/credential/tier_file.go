package credential

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// FileTier persists values as a JSON object in a single file.
//
// The file is re-read on every operation so separate processes observe each
// other's writes. Writes go through a temp file + rename.
type FileTier struct {
	path string
	mu   sync.Mutex
}

// NewFileTier returns a durable tier backed by path.
func NewFileTier(path string) *FileTier {
	return &FileTier{path: path}
}

// DefaultFilePath returns <user config dir>/hiring/credentials.json.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hiring", "credentials.json"), nil
}

// Name returns the tier label used in logs.
func (t *FileTier) Name() string { return "file" }

// Path returns the backing file path.
func (t *FileTier) Path() string { return t.path }

// Get returns the stored value for key.
func (t *FileTier) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	m, err := t.load()
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

// Set stores value under key.
func (t *FileTier) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	m, err := t.load()
	if err != nil {
		return err
	}
	if cur, ok := m[key]; ok && cur == value {
		return nil
	}
	m[key] = value
	return t.save(m)
}

// Delete removes key. Missing keys are not an error.
func (t *FileTier) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	m, err := t.load()
	if err != nil {
		return err
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return t.save(m)
}

func (t *FileTier) load() (map[string]string, error) {
	b, err := os.ReadFile(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, err
	}
	m := make(map[string]string)
	if len(b) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(b, &m); err != nil {
		// A corrupt file is treated as empty; the next write replaces it.
		return make(map[string]string), nil
	}
	return m, nil
}

func (t *FileTier) save(m map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0o700); err != nil {
		return err
	}

	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(t.path), ".credentials-*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, t.path); err == nil {
		return nil
	}

	defer os.Remove(tmp)

	if runtime.GOOS == "windows" {
		_ = os.Remove(t.path)
	}
	return os.Rename(tmp, t.path)
}
