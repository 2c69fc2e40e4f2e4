package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func openTestStore(t *testing.T, opts Options) *boltStore {
	t.Helper()
	raw, err := openBolt(filepath.Join(t.TempDir(), "state", "outcomes.db"), normalizeOptions(opts))
	require.NoError(t, err)
	store := raw.(*boltStore)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBoltStoreTracksLastState(t *testing.T) {
	store := openTestStore(t, Options{StateTTL: time.Hour})

	changed, err := store.Changed("p1", "aaa")
	require.NoError(t, err)
	assert.True(t, changed, "unknown probe must count as changed")

	require.NoError(t, store.Record("p1", "aaa"))

	changed, err = store.Changed("p1", "aaa")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = store.Changed("p1", "bbb")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = store.Changed("p2", "aaa")
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestBoltStoreExpiresState(t *testing.T) {
	store := openTestStore(t, Options{StateTTL: time.Minute, CleanupInterval: time.Minute})
	clock := time.Now()
	store.now = func() time.Time { return clock }

	require.NoError(t, store.Record("p1", "aaa"))

	clock = clock.Add(2 * time.Minute)
	changed, err := store.Changed("p1", "aaa")
	require.NoError(t, err)
	assert.True(t, changed, "expired state must count as changed")

	// cleanup ran on this call and dropped the expired key
	require.NoError(t, store.db.View(func(tx *bolt.Tx) error {
		assert.Nil(t, tx.Bucket([]byte(stateBucket)).Get([]byte("p1")))
		return nil
	}))
}

func TestDecodeStateRejectsShortValues(t *testing.T) {
	_, _, ok := decodeState([]byte{1, 2})
	assert.False(t, ok)

	expiry := time.Unix(1700000000, 0)
	got, fp, ok := decodeState(encodeState(expiry, "abc"))
	assert.True(t, ok)
	assert.Equal(t, expiry, got)
	assert.Equal(t, "abc", fp)
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	require.NoError(t, err)

	changed, err := store.Changed("x", "y")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NoError(t, store.Record("x", "y"))
}

func TestNewStoreValidation(t *testing.T) {
	_, err := NewStore("bbolt", " ", Options{})
	assert.Error(t, err)

	_, err = NewStore("redis", "x", Options{})
	assert.Error(t, err)
}
