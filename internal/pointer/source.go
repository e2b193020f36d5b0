package pointer

import (
	"errors"
	"fmt"
	"io"
	"time"

	"fractalviewer/internal/utils"

	"golang.org/x/time/rate"
)

// ErrUnavailable wraps the reason a device could not be opened.
var ErrUnavailable = errors.New("pointer: device unavailable")

// Source feeds the main loop one pointer update per Poll.
type Source interface {
	// Poll updates pos and reports whether the user asked to terminate.
	Poll(pos *Position) (bool, error)
	Close() error
}

type Backoff struct {
	Initial time.Duration
	Max     time.Duration
}

var DefaultBackoff = Backoff{Initial: 100 * time.Millisecond, Max: 2 * time.Second}

// DeviceSource decodes packets from a device node. While the device cannot
// be opened the source is unavailable and open attempts are paced by an
// exponential backoff; a failing read drops back to that state.
type DeviceSource struct {
	Path    string
	decoder *Decoder
	backoff Backoff

	dev     io.ReadCloser
	limiter *rate.Limiter
	delay   time.Duration
	lastErr error

	open func(path string) (io.ReadCloser, error)
	now  func() time.Time
}

var _ Source = (*DeviceSource)(nil)

func NewDeviceSource(path string, decoder *Decoder, backoff Backoff) *DeviceSource {
	if backoff.Initial <= 0 {
		backoff.Initial = DefaultBackoff.Initial
	}
	if backoff.Max < backoff.Initial {
		backoff.Max = backoff.Initial
	}
	return &DeviceSource{
		Path:    path,
		decoder: decoder,
		backoff: backoff,
		limiter: rate.NewLimiter(rate.Every(backoff.Initial), 1),
		delay:   backoff.Initial,
		open: func(path string) (io.ReadCloser, error) {
			return OpenDevice(path)
		},
		now: time.Now,
	}
}

// Available reports whether the device is currently open.
func (s *DeviceSource) Available() bool { return s.dev != nil }

// Err returns why the device is unavailable, or nil while it is open.
func (s *DeviceSource) Err() error {
	if s.dev != nil {
		return nil
	}
	return s.lastErr
}

// RetryDelay is the current wait between open attempts.
func (s *DeviceSource) RetryDelay() time.Duration { return s.delay }

func (s *DeviceSource) acquire() bool {
	now := s.now()
	if !s.limiter.AllowN(now, 1) {
		return false
	}

	dev, err := s.open(s.Path)
	if err != nil {
		s.lastErr = fmt.Errorf("%w: %w", ErrUnavailable, err)
		s.delay = min(s.delay*2, s.backoff.Max)
		s.limiter.SetLimitAt(now, rate.Every(s.delay))
		utils.Debug("Pointer: %v, retrying in %s", s.lastErr, s.delay)
		return false
	}

	s.dev = dev
	s.delay = s.backoff.Initial
	s.limiter.SetLimitAt(now, rate.Every(s.delay))
	utils.Info("Pointer: Opened %s", s.Path)
	return true
}

func (s *DeviceSource) release() {
	if s.dev == nil {
		return
	}
	if err := s.dev.Close(); err != nil {
		utils.Debug("Pointer: Closing %s: %v", s.Path, err)
	}
	s.dev = nil
}

// Poll opens the device if needed and decodes at most one packet. A
// DesyncError is returned to the caller; other read errors close the device
// and are not reported.
func (s *DeviceSource) Poll(pos *Position) (bool, error) {
	if s.dev == nil && !s.acquire() {
		return false, nil
	}

	terminate, err := s.decoder.Decode(s.dev, pos)
	if err != nil {
		var desync *DesyncError
		if errors.As(err, &desync) {
			return false, err
		}
		utils.Warn("Pointer: Read from %s failed, reopening: %v", s.Path, err)
		s.lastErr = fmt.Errorf("%w: %w", ErrUnavailable, err)
		s.release()
		return false, nil
	}
	return terminate, nil
}

func (s *DeviceSource) Close() error {
	s.release()
	return nil
}
