package redisdns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDelRemovesFromAllFamilies(t *testing.T) {
	ds := NewDatastore(0)
	ds.Set("k", []byte("v"), 0)
	require.True(t, ds.Del("k"))
	require.False(t, ds.Del("k"))
}

func TestTypeReflectsFamily(t *testing.T) {
	ds := NewDatastore(0)
	require.Equal(t, "none", ds.Type("k"))

	ds.Set("k", []byte("v"), 0)
	require.Equal(t, "string", ds.Type("k"))
}

func TestExpireDeletesImmediatelyOnNonPositive(t *testing.T) {
	ds := NewDatastore(0)
	ds.Set("k", []byte("v"), 0)
	require.NoError(t, ds.Expire("k", 0))
	require.Equal(t, "none", ds.Type("k"))
}

func TestExpireMissingKeyErrors(t *testing.T) {
	ds := NewDatastore(0)
	err := ds.Expire("missing", 10)
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestExpireSetsTTL(t *testing.T) {
	ds := NewDatastore(0)
	ds.Set("k", []byte("v"), 0)
	require.NoError(t, ds.Expire("k", 60))
	require.Greater(t, ds.apc.TTLRemaining("k"), 59*time.Second)
}

func TestRenameMovesValueAndStats(t *testing.T) {
	ds := NewDatastore(0)
	ds.Set("old", []byte("v"), 0)
	require.NoError(t, ds.Rename("old", "new"))

	require.False(t, ds.apc.Contains("old"))
	require.True(t, ds.apc.Contains("new"))
	// One access from Set, inherited by "new", plus one from the rename.
	require.Equal(t, uint64(2), ds.apc.stats["new"].accessCount)

	_, ok := ds.Get("old")
	require.False(t, ok)
	val, ok := ds.Get("new")
	require.True(t, ok)
	require.Equal(t, []byte("v"), val)
}

func TestRenameMissingKeyErrors(t *testing.T) {
	ds := NewDatastore(0)
	err := ds.Rename("missing", "new")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRenameOverwritesDestination(t *testing.T) {
	ds := NewDatastore(0)
	ds.Set("a", []byte("1"), 0)
	ds.Set("b", []byte("2"), 0)
	require.NoError(t, ds.Rename("a", "b"))

	val, ok := ds.Get("b")
	require.True(t, ok)
	require.Equal(t, []byte("1"), val)
}

func TestKeysOmitsExpired(t *testing.T) {
	ds := NewDatastore(0)
	ds.Set("live", []byte("v"), 0)
	ds.Set("dying", []byte("v"), time.Millisecond)
	now := time.Now().Add(time.Second)
	ds.apc.now = func() time.Time { return now }

	keys := toStrings(ds.Keys())
	require.Contains(t, keys, "live")
	require.NotContains(t, keys, "dying")
}

func TestFlushAllClearsEverything(t *testing.T) {
	ds := NewDatastore(0)
	ds.Set("s", []byte("v"), 0)
	ds.RPush("l", []byte("v"))
	ds.HSet("h", "f", []byte("v"))

	ds.FlushAll()
	require.Empty(t, ds.Keys())
	require.Equal(t, 0, ds.apc.Size())
}

func TestCapacityEvictionBoundsSize(t *testing.T) {
	ds := NewDatastore(2)
	ds.Set("a", []byte("1"), 0)
	ds.Set("b", []byte("2"), 0)
	ds.Set("c", []byte("3"), 0)

	require.LessOrEqual(t, len(ds.Keys()), 2)
}
