package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxobr/ficha-rpg/internal/game/character"
)

func TestBackupStore_RoundTrip(t *testing.T) {
	bs, err := NewBackupStore(t.TempDir())
	require.NoError(t, err)

	c := character.New()
	c.CharacterName = "Kael"
	c.TrainedSkills["Rastreamento"] = 3

	key, err := bs.Save(c)
	require.NoError(t, err)
	assert.Contains(t, key, backupPrefix)
	assert.Empty(t, c.BackupTimestamp, "saving must not modify the live sheet")

	got, err := bs.Load(key)
	require.NoError(t, err)
	assert.Equal(t, "Kael", got.CharacterName)
	assert.Equal(t, 3, got.TrainedSkills["Rastreamento"])
	assert.NotEmpty(t, got.BackupTimestamp)
}

func TestBackupStore_ListNewestFirst(t *testing.T) {
	bs, err := NewBackupStore(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		bs.now = func() time.Time { return at }
		c := character.New()
		c.ExperiencePoints = i
		_, err := bs.Save(c)
		require.NoError(t, err)
	}

	keys, err := bs.List()
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.True(t, keys[0] > keys[1] && keys[1] > keys[2], "keys must sort newest first")

	latest, err := bs.LoadLatest()
	require.NoError(t, err)
	assert.Equal(t, 2, latest.ExperiencePoints)
}

func TestBackupStore_Empty(t *testing.T) {
	bs, err := NewBackupStore(t.TempDir())
	require.NoError(t, err)

	keys, err := bs.List()
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = bs.LoadLatest()
	assert.ErrorIs(t, err, ErrNoBackups)

	_, err = bs.Load("character_backup_missing")
	assert.ErrorIs(t, err, ErrNoBackups)
}
