package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetGetRoundTrip(t *testing.T) {
	s, err := OpenForBuild(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("s", []byte("hello")))
	require.NoError(t, s.Flush())

	value, found, err := s.Get("s")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("hello"), value)
}

func TestStore_GetMissingKey(t *testing.T) {
	s, err := OpenForBuild(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	defer s.Close()

	_, found, err := s.Get("nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_MultiGet(t *testing.T) {
	s, err := OpenForBuild(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("s", []byte("a")))
	require.NoError(t, s.Set("sw", []byte("b")))
	require.NoError(t, s.Flush())

	values, found, err := s.MultiGet([]string{"s", "swe", "sw"})
	require.NoError(t, err)
	require.Equal(t, []bool{true, false, true}, found)
	assert.Equal(t, []byte("a"), values[0])
	assert.Equal(t, []byte("b"), values[2])
}
