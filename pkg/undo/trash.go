package undo

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// indexFile records every entry the trash holds.
const indexFile = "trash.json"

// ErrNotExists reports that the path handed to Put is already gone.
var ErrNotExists = errors.New("path does not exist")

// ErrProtected reports that a protect pattern refused the path.
var ErrProtected = errors.New("path is protected")

// 📄 Entry records one trashed path.
type Entry struct {
	Name      string    `json:"name"`       // entry name inside the trash dir
	Original  string    `json:"original"`   // absolute path the entry came from
	TrashedAt time.Time `json:"trashed_at"` // when it was moved
}

// TrashOptions configures a Trash.
type TrashOptions struct {
	Dir     string   // holding area root, created if missing
	Protect []string // doublestar patterns that must never be trashed
}

// 🗑️ Trash moves paths into a recoverable holding area instead of deleting
// them, so a rolled-back transaction can still be inspected or restored.
// Entries are moved with a single rename: targets must live on the same
// filesystem as the holding area.
type Trash struct {
	dir     string
	protect []string

	mu sync.Mutex
}

// 🏭 NewTrash validates the protect patterns and creates the holding area.
func NewTrash(opts TrashOptions) (*Trash, error) {
	if opts.Dir == "" {
		return nil, errors.New("trash dir is required")
	}
	for _, pattern := range opts.Protect {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid protect pattern %q", pattern)
		}
	}

	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, errors.Errorf("resolving trash dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Errorf("creating trash dir: %w", err)
	}

	return &Trash{dir: dir, protect: opts.Protect}, nil
}

// Dir returns the holding area root.
func (t *Trash) Dir() string {
	return t.dir
}

// Put moves path into the holding area and records it in the index. The
// returned entry carries the name needed to restore it later.
func (t *Trash) Put(ctx context.Context, path string) (Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		return Entry{}, errors.Errorf("resolving %q: %w", path, err)
	}

	for _, pattern := range t.protect {
		matched, err := doublestar.Match(pattern, abs)
		if err != nil {
			return Entry{}, errors.Errorf("matching protect pattern %q: %w", pattern, err)
		}
		if matched {
			return Entry{}, errors.Errorf("trashing %q (matches %q): %w", abs, pattern, ErrProtected)
		}
	}

	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return Entry{}, errors.Errorf("trashing %q: %w", abs, ErrNotExists)
	} else if err != nil {
		return Entry{}, errors.Errorf("checking %q: %w", abs, err)
	}

	idx, err := t.readIndex()
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{
		Name:      t.entryName(abs),
		Original:  abs,
		TrashedAt: time.Now().UTC(),
	}

	if err := os.Rename(abs, filepath.Join(t.dir, entry.Name)); err != nil {
		return Entry{}, errors.Errorf("moving %q to trash: %w", abs, err)
	}

	idx.Entries = append(idx.Entries, entry)
	if err := t.writeIndex(idx); err != nil {
		return Entry{}, err
	}

	zerolog.Ctx(ctx).Info().
		Str("path", abs).
		Str("entry", entry.Name).
		Msg("moved to trash")

	return entry, nil
}

// Restore moves an entry back to its original path. It refuses to overwrite
// anything that reappeared there in the meantime.
func (t *Trash) Restore(ctx context.Context, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, err := t.readIndex()
	if err != nil {
		return err
	}

	pos := -1
	for i, e := range idx.Entries {
		if e.Name == name {
			pos = i
			break
		}
	}
	if pos == -1 {
		return errors.Errorf("no trash entry named %q", name)
	}
	entry := idx.Entries[pos]

	if _, err := os.Stat(entry.Original); err == nil {
		return errors.Errorf("restoring %q: %q already exists", name, entry.Original)
	} else if !os.IsNotExist(err) {
		return errors.Errorf("checking %q: %w", entry.Original, err)
	}

	if err := os.MkdirAll(filepath.Dir(entry.Original), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}
	if err := os.Rename(filepath.Join(t.dir, entry.Name), entry.Original); err != nil {
		return errors.Errorf("restoring %q: %w", name, err)
	}

	idx.Entries = append(idx.Entries[:pos], idx.Entries[pos+1:]...)
	if err := t.writeIndex(idx); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("entry", name).
		Str("path", entry.Original).
		Msg("restored from trash")

	return nil
}

// List returns the recorded entries, oldest first.
func (t *Trash) List(ctx context.Context) ([]Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, err := t.readIndex()
	if err != nil {
		return nil, err
	}
	return idx.Entries, nil
}

// entryName builds a unique name like 20260821T153000-www for the entry.
func (t *Trash) entryName(path string) string {
	stamp := time.Now().UTC().Format("20060102T150405")
	base := filepath.Base(path)
	name := stamp + "-" + base
	for n := 1; ; n++ {
		if _, err := os.Stat(filepath.Join(t.dir, name)); os.IsNotExist(err) {
			return name
		}
		name = stamp + "-" + base + "-" + strconv.Itoa(n)
	}
}

type trashIndex struct {
	Entries []Entry `json:"entries"`
}

func (t *Trash) indexPath() string {
	return filepath.Join(t.dir, indexFile)
}

func (t *Trash) readIndex() (*trashIndex, error) {
	data, err := os.ReadFile(t.indexPath())
	if os.IsNotExist(err) {
		return &trashIndex{}, nil
	}
	if err != nil {
		return nil, errors.Errorf("reading trash index: %w", err)
	}

	var idx trashIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, errors.Errorf("parsing trash index: %w", err)
	}
	return &idx, nil
}

func (t *Trash) writeIndex(idx *trashIndex) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return errors.Errorf("marshaling trash index: %w", err)
	}

	// Write to temp file, then rename (atomic operation)
	tempPath := t.indexPath() + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return errors.Errorf("writing temp index: %w", err)
	}
	if err := os.Rename(tempPath, t.indexPath()); err != nil {
		os.Remove(tempPath) // Clean up temp file
		return errors.Errorf("renaming temp index: %w", err)
	}

	return nil
}
