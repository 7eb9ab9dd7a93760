package roomstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ===================== File backend =====================

// FileBackend keeps all rooms in one JSON document. A path ending in ".zst"
// is zstd-compressed.
type FileBackend struct {
	Path string
}

func (f FileBackend) compressed() bool { return strings.HasSuffix(f.Path, ".zst") }

func (f FileBackend) Load() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	if f.compressed() {
		dec, err := zstd.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		if raw, err = io.ReadAll(dec); err != nil {
			return nil, fmt.Errorf("zstd decode %s: %w", f.Path, err)
		}
	}
	rooms := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &rooms); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	return rooms, nil
}

// Save writes to a temporary file and renames it over Path.
func (f FileBackend) Save(rooms map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(rooms, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if f.compressed() {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		data = enc.EncodeAll(data, nil)
		enc.Close()
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}

// ===================== Memory backend =====================

// MemoryBackend keeps the last saved map in memory.
type MemoryBackend struct {
	mu    sync.Mutex
	rooms map[string]json.RawMessage
	saves int
	// Err, when set, is returned by Save.
	Err error
}

func (m *MemoryBackend) Load() (map[string]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]json.RawMessage, len(m.rooms))
	for k, v := range m.rooms {
		out[k] = clone(v)
	}
	return out, nil
}

func (m *MemoryBackend) Save(rooms map[string]json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.rooms = make(map[string]json.RawMessage, len(rooms))
	for k, v := range rooms {
		m.rooms[k] = clone(v)
	}
	m.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (m *MemoryBackend) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
