package pointer

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// DefaultDevicePath is the first relative mouse exposed by the kernel.
const DefaultDevicePath = "/dev/input/mouse0"

// Device is a pointing device opened for non-blocking reads.
type Device struct {
	fd   int
	path string
}

func OpenDevice(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return &Device{fd: fd, path: path}, nil
}

// Read returns ErrWouldBlock when no bytes are waiting.
func (d *Device) Read(p []byte) (int, error) {
	n, err := unix.Read(d.fd, p)
	if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR) {
		return 0, ErrWouldBlock
	}
	if err != nil {
		return 0, &os.PathError{Op: "read", Path: d.path, Err: err}
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (d *Device) Close() error {
	return unix.Close(d.fd)
}

func (d *Device) Path() string { return d.path }
