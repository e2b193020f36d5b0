package pointer

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestOpenDeviceMissing(t *testing.T) {
	_, err := OpenDevice(filepath.Join(t.TempDir(), "mouse0"))
	var pathErr *os.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "open", pathErr.Op)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDeviceNonBlockingRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mouse0")
	require.NoError(t, unix.Mkfifo(path, 0o600))

	dev, err := OpenDevice(path)
	require.NoError(t, err)
	defer dev.Close()
	assert.Equal(t, path, dev.Path())

	buf := make([]byte, PacketSize)

	// No writer yet: the fifo reads as end of file.
	_, err = dev.Read(buf)
	assert.ErrorIs(t, err, io.EOF)

	w, err := os.OpenFile(path, os.O_WRONLY, 0)
	require.NoError(t, err)
	defer w.Close()

	_, err = dev.Read(buf)
	assert.ErrorIs(t, err, ErrWouldBlock)

	_, err = w.Write([]byte{SyncBit, 5, 0xFD})
	require.NoError(t, err)

	d := NewDecoder(1920, 1080)
	pos := Position{X: 800, Y: 400}
	terminate, err := d.Decode(dev, &pos)
	require.NoError(t, err)
	assert.False(t, terminate)
	assert.Equal(t, Position{X: 805, Y: 397}, pos)
}
