package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()

	sq, err := NewSQLite(filepath.Join(t.TempDir(), "state.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]Storage{
		"file":   NewFile(filepath.Join(t.TempDir(), "nested", "dir")),
		"sqlite": sq,
		"memory": NewMemory(),
	}
}

func TestStorage_RoundTrip(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.GetItem("persist:root")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, st.SetItem("persist:root", []byte(`{"isAuthenticated":true}`)))
			got, err := st.GetItem("persist:root")
			require.NoError(t, err)
			assert.JSONEq(t, `{"isAuthenticated":true}`, string(got))

			// Overwrite replaces, never appends
			require.NoError(t, st.SetItem("persist:root", []byte(`{"isAuthenticated":false}`)))
			got, err = st.GetItem("persist:root")
			require.NoError(t, err)
			assert.JSONEq(t, `{"isAuthenticated":false}`, string(got))

			require.NoError(t, st.RemoveItem("persist:root"))
			_, err = st.GetItem("persist:root")
			assert.ErrorIs(t, err, ErrNotFound)

			// Removing a missing key is not an error
			assert.NoError(t, st.RemoveItem("persist:root"))
		})
	}
}

func TestFile_KeyBecomesSafeFileName(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(dir)
	require.NoError(t, f.SetItem("persist:root", []byte("{}")))

	_, err := os.Stat(filepath.Join(dir, "persist-root.json"))
	assert.NoError(t, err)
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.sqlite")

	first, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.SetItem("persist:root", []byte("saved")))
	require.NoError(t, first.Close())

	second, err := NewSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.GetItem("persist:root")
	require.NoError(t, err)
	assert.Equal(t, "saved", string(got))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	st, err := Open(BackendFile, dir)
	require.NoError(t, err)
	assert.IsType(t, &File{}, st)

	st, err = Open(BackendMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, st)

	st, err = Open(BackendSQLite, dir)
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, st)
	st.(*SQLite).Close()

	_, err = Open("redis", dir)
	assert.Error(t, err)
}
