package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/foxobr/ficha-rpg/internal/game/character"
)

// backupPrefix keys backup files; the rest of the name is the creation
// timestamp, so lexicographic order is chronological order.
const backupPrefix = "character_backup_"

const backupTimeLayout = "20060102T150405.000000000Z"

// ErrNoBackups is returned when a restore finds nothing to restore.
var ErrNoBackups = errors.New("client: no backups found")

// BackupStore keeps timestamped local snapshots of a character sheet on
// disk, newest first.
type BackupStore struct {
	dir string
	now func() time.Time
}

// NewBackupStore creates a BackupStore rooted at dir, creating it if
// needed.
func NewBackupStore(dir string) (*BackupStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup dir: %w", err)
	}
	return &BackupStore{dir: dir, now: time.Now}, nil
}

// Save writes a snapshot keyed by the current time and returns its key.
//
// Postcondition: The stored document carries a backupTimestamp matching
// the key; the in-memory character is not modified.
func (b *BackupStore) Save(c *character.Character) (string, error) {
	if c == nil {
		return "", character.ErrNilCharacter
	}
	stamp := b.now().UTC().Format(backupTimeLayout)
	key := backupPrefix + stamp

	snapshot := c.Clone()
	snapshot.BackupTimestamp = stamp
	data, err := character.Export(snapshot)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Join(b.dir, key+".json"), data, 0o644); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}
	return key, nil
}

// List returns the backup keys, newest first.
func (b *BackupStore) List() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, fmt.Errorf("reading backup dir: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

// Load reads the backup with the given key.
func (b *BackupStore) Load(key string) (*character.Character, error) {
	data, err := os.ReadFile(filepath.Join(b.dir, key+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoBackups
		}
		return nil, fmt.Errorf("reading backup: %w", err)
	}
	return character.Import(data)
}

// LoadLatest reads the newest backup.
//
// Postcondition: Returns ErrNoBackups when the store is empty.
func (b *BackupStore) LoadLatest() (*character.Character, error) {
	keys, err := b.List()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, ErrNoBackups
	}
	return b.Load(keys[0])
}
