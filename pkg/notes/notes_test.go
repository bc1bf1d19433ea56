package notes

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "notes.txt")
	s := NewStore(path)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 9, 5, 0, 0, time.UTC) }

	lines, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, lines)

	require.NoError(t, s.Add("try   sodium  on 1.20.1"))
	require.NoError(t, s.Add("backup before updating"))

	lines, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2024-05-01 09:05: try sodium on 1.20.1",
		"2024-05-01 09:05: backup before updating",
	}, lines)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01 09:05: try sodium on 1.20.1\n2024-05-01 09:05: backup before updating\n", string(data))
}

func TestAddRejectsBlank(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "notes.txt"))
	assert.ErrorIs(t, s.Add("   "), ErrEmptyNote)
}
