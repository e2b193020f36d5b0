// Package pointer turns pointing-device input into a screen-clamped
// position that pans the Julia layer, plus a terminate signal on click.
package pointer

import (
	"errors"
	"fmt"
	"io"

	"fractalviewer/internal/utils"
)

// Packet layout of a relative (PS/2 style) pointing device: a status byte
// followed by signed horizontal and vertical deltas.
const (
	PacketSize = 3

	ButtonMask byte = 0x03
	SyncBit    byte = 1 << 3
	XOverflow  byte = 1 << 4
	YOverflow  byte = 1 << 5

	DefaultResyncLimit = 64
)

// ErrWouldBlock is returned by non-blocking readers that have no data yet.
var ErrWouldBlock = errors.New("pointer: read would block")

type Position struct {
	X, Y int
}

type Packet [PacketSize]byte

func (p Packet) Synced() bool  { return p[0]&SyncBit != 0 }
func (p Packet) Buttons() byte { return p[0] & ButtonMask }

// Delta returns the motion of the packet, with the overflow flags pushing
// the 8-bit deltas a further 256 units negative.
func (p Packet) Delta() (dx, dy int) {
	dx = int(int8(p[1]))
	dy = int(int8(p[2]))
	if p[0]&XOverflow != 0 {
		dx -= 256
	}
	if p[0]&YOverflow != 0 {
		dy -= 256
	}
	return dx, dy
}

// DesyncError means no status byte with the sync bit was found within the
// resync limit.
type DesyncError struct {
	Discarded int
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("pointer: lost packet sync after discarding %d bytes", e.Discarded)
}

// Decoder applies packets to a position bounded by [0, Width] x [0, Height].
type Decoder struct {
	Width       int
	Height      int
	ResyncLimit int
}

func NewDecoder(width, height int) *Decoder {
	return &Decoder{Width: width, Height: height, ResyncLimit: DefaultResyncLimit}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp forces pos inside the decoder bounds.
func (d *Decoder) Clamp(pos *Position) {
	pos.X = clamp(pos.X, 0, d.Width)
	pos.Y = clamp(pos.Y, 0, d.Height)
}

// shortRead reports whether err only means "no more data for now".
func shortRead(err error) error {
	if err == nil || errors.Is(err, ErrWouldBlock) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Decode reads one packet from r and applies it to pos. It returns true when
// a button is pressed, in which case pos is left alone. A read that yields
// fewer than PacketSize bytes is not an error: pos is unchanged and Decode
// returns false.
//
// A status byte without the sync bit is dropped one byte at a time until
// the stream realigns; more than ResyncLimit dropped bytes is a DesyncError.
func (d *Decoder) Decode(r io.Reader, pos *Position) (bool, error) {
	var p Packet
	n, err := r.Read(p[:])
	if n < PacketSize {
		return false, shortRead(err)
	}

	limit := d.ResyncLimit
	if limit <= 0 {
		limit = DefaultResyncLimit
	}

	discarded := 0
	for !p.Synced() {
		if discarded >= limit {
			return false, &DesyncError{Discarded: discarded}
		}
		copy(p[:], p[1:])
		discarded++
		n, err = r.Read(p[PacketSize-1:])
		if n < 1 {
			return false, shortRead(err)
		}
	}
	if discarded > 0 {
		utils.Debug("Pointer: Resynchronized after discarding %d bytes", discarded)
	}

	if p.Buttons() != 0 {
		return true, nil
	}

	dx, dy := p.Delta()
	next := Position{X: pos.X + dx, Y: pos.Y + dy}
	d.Clamp(&next)
	*pos = next
	return false, nil
}
