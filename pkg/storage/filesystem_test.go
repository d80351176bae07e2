package storage

import (
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveStreamWithinLimit(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	n, err := store.SaveStream("flows/f1/passport_photo", bytes.NewReader([]byte("photo")), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.True(t, store.Exists("flows/f1/passport_photo"))

	f, err := store.Open("flows/f1/passport_photo")
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	data, _ := io.ReadAll(f)
	assert.Equal(t, "photo", string(data))
}

func TestLocalStorageSaveStreamTooLargeKeepsPrevious(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("flows/f1/ob_photo", []byte("old"))
	require.NoError(t, err)

	_, err = store.SaveStream("flows/f1/ob_photo", bytes.NewReader(make([]byte, 11)), 10)
	assert.ErrorIs(t, err, ErrTooLarge)

	data, err := os.ReadFile(store.Path("flows/f1/ob_photo"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestLocalStorageRejectsEscapes(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../outside", []byte("x"))
	assert.Error(t, err)
	assert.Error(t, store.DeleteDir("."))
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("receipts/old.pdf", []byte("x"))
	require.NoError(t, err)
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(store.Path("receipts/old.pdf"), past, past))
	_, err = store.Save("receipts/new.pdf", []byte("y"))
	require.NoError(t, err)

	deleted, err := store.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Len(t, deleted, 1)
	assert.False(t, store.Exists("receipts/old.pdf"))
	assert.True(t, store.Exists("receipts/new.pdf"))
}
