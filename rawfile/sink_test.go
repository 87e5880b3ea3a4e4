package rawfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkAppendsFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.raw")
	sink, err := NewSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.WriteFrame([]byte("aaaa")))
	require.NoError(t, sink.WriteFrame([]byte("bbbb")))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "aaaabbbb", string(data))
}
