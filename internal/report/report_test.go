package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []string{"2024-01-01T01:00:00Z", "2024-01-01T02:00:00Z"}))
	assert.Equal(t, "New Timestamps (2)\n\t2024-01-01T01:00:00Z\n\t2024-01-01T02:00:00Z\n", buf.String())
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))
	assert.Equal(t, "New Timestamps (0)\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWrite_PropagatesError(t *testing.T) {
	err := Write(failingWriter{}, []string{"2024-01-01T01:00:00Z"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
