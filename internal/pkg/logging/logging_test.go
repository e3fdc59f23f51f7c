package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	w, err := NewDailyWriter(dir)
	require.NoError(t, err)

	day := time.Date(2024, 1, 2, 23, 59, 0, 0, time.Local)
	w.now = func() time.Time { return day }

	_, err = w.Write([]byte("one\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("two\n"))
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, "stdout_2024-01-02.log"))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(b))

	n, err := w.Write(nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNew(t *testing.T) {
	logger, err := New("debug", t.TempDir())
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	_, err = New("loud", "")
	require.Error(t, err)
}
