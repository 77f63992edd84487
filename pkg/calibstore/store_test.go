package calibstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONStore_LoadBeforeFirstSave(t *testing.T) {
	store, err := NewJSONStore(filepath.Join(t.TempDir(), "calibration.json"))
	require.NoError(t, err)

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Record{}, rec)
	assert.False(t, rec.IsCalibrated)
}

func TestJSONStore_SaveLoadRoundTrip(t *testing.T) {
	store, err := NewJSONStore(filepath.Join(t.TempDir(), "calibration.json"))
	require.NoError(t, err)

	want := Record{
		SittingReferenceY:  0.82,
		StandingReferenceY: 0.41,
		IsCalibrated:       true,
	}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestJSONStore_SaveOverwrites(t *testing.T) {
	store, err := NewJSONStore(filepath.Join(t.TempDir(), "calibration.json"))
	require.NoError(t, err)

	require.NoError(t, store.Save(Record{SittingReferenceY: 0.7, StandingReferenceY: 0.3, IsCalibrated: true}))
	require.NoError(t, store.Save(Record{SittingReferenceY: 0.8, StandingReferenceY: 0.4, IsCalibrated: true}))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0.8, got.SittingReferenceY)
	assert.Equal(t, 0.4, got.StandingReferenceY)
}

func TestJSONStore_FileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.json")
	store, err := NewJSONStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(Record{SittingReferenceY: 0.8, StandingReferenceY: 0.4, IsCalibrated: true}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var stored fileData
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, currentVersion, stored.Version)
	assert.NotEmpty(t, stored.UpdatedAt)
	assert.True(t, stored.Record.IsCalibrated)

	// No stray temp file left behind
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestJSONStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "calibration.json")
	store, err := NewJSONStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(Record{IsCalibrated: true}))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestJSONStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	store, err := NewJSONStore(path)
	require.NoError(t, err)

	_, err = store.Load()
	assert.Error(t, err)
}

func TestJSONStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.json")
	store, err := NewJSONStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(Record{IsCalibrated: true}))

	require.NoError(t, store.Clear())

	rec, err := store.Load()
	require.NoError(t, err)
	assert.False(t, rec.IsCalibrated)

	// Clearing an already empty store is fine
	assert.NoError(t, store.Clear())
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Record{}, rec)

	want := Record{SittingReferenceY: 0.8, StandingReferenceY: 0.4, IsCalibrated: true}
	require.NoError(t, store.Save(want))
	assert.Equal(t, 1, store.SaveCount)

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.Clear())
	rec, err = store.Load()
	require.NoError(t, err)
	assert.False(t, rec.IsCalibrated)
}
