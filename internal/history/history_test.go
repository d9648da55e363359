package history_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysh-lang/mysh/internal/history"
)

func TestAddDropsConsecutiveDuplicates(t *testing.T) {
	h := history.New(10)
	h.Add("echo hi")
	h.Add("echo hi")
	h.Add("echo bye")
	assert.Equal(t, []string{"echo hi", "echo bye"}, h.Entries())
}

func TestAddTrimsToLimit(t *testing.T) {
	h := history.New(2)
	h.Add("one")
	h.Add("two")
	h.Add("three")
	assert.Equal(t, []string{"two", "three"}, h.Entries())
}

func TestRecallBangReturnsMostRecent(t *testing.T) {
	h := history.New(10)
	h.Add("echo one")
	h.Add("echo two")

	got, ok := h.Recall("!")
	require.True(t, ok)
	assert.Equal(t, "echo two", got)
}

func TestRecallByIndexIsOneBased(t *testing.T) {
	h := history.New(10)
	h.Add("first")
	h.Add("second")
	h.Add("third")

	got, ok := h.Recall("!2")
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestRecallByIndexOutOfRangeFails(t *testing.T) {
	h := history.New(10)
	h.Add("first")
	_, ok := h.Recall("!5")
	assert.False(t, ok)
}

func TestRecallByPrefixFindsMostRecentMatch(t *testing.T) {
	h := history.New(10)
	h.Add("echo first")
	h.Add("ls -la")
	h.Add("echo second")

	got, ok := h.Recall("!echo")
	require.True(t, ok)
	assert.Equal(t, "echo second", got)
}

func TestRecallOnEmptyHistoryFails(t *testing.T) {
	h := history.New(10)
	_, ok := h.Recall("!")
	assert.False(t, ok)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.cbor")

	h := history.New(10)
	h.Add("echo one")
	h.Add("echo two")
	require.NoError(t, h.Save(path))

	loaded, err := history.Load(path, 10)
	require.NoError(t, err)
	assert.Equal(t, h.Entries(), loaded.Entries())
}

func TestLoadMissingFileReturnsEmptyHistory(t *testing.T) {
	dir := t.TempDir()
	loaded, err := history.Load(filepath.Join(dir, "nope.cbor"), 5)
	require.NoError(t, err)
	assert.Empty(t, loaded.Entries())
}

func TestLoadInvalidDataFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.cbor")
	require.NoError(t, os.WriteFile(path, []byte("not cbor data"), 0o644))

	_, err := history.Load(path, 5)
	assert.Error(t, err)
}
