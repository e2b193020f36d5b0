package pointer

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stream is a non-blocking in-memory device: reads return what is buffered
// and ErrWouldBlock once it is drained.
type stream struct {
	buf bytes.Buffer
	err error
}

func newStream(b ...byte) *stream {
	s := &stream{}
	s.buf.Write(b)
	return s
}

func (s *stream) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.buf.Len() == 0 {
		return 0, ErrWouldBlock
	}
	return s.buf.Read(p)
}

func TestDecodeMotion(t *testing.T) {
	d := NewDecoder(1920, 1080)
	pos := Position{X: 800, Y: 400}

	terminate, err := d.Decode(newStream(0b00001000, 5, 0xFD), &pos)
	require.NoError(t, err)
	assert.False(t, terminate)
	assert.Equal(t, Position{X: 805, Y: 397}, pos)
}

func TestDecodeButtonTerminates(t *testing.T) {
	d := NewDecoder(1920, 1080)
	for _, status := range []byte{0b00001001, 0b00001010, 0b00001011} {
		pos := Position{X: 123, Y: 456}
		terminate, err := d.Decode(newStream(status, 40, 40), &pos)
		require.NoError(t, err)
		assert.True(t, terminate)
		assert.Equal(t, Position{X: 123, Y: 456}, pos)
	}
}

func TestDecodeOverflowClampsToZero(t *testing.T) {
	d := NewDecoder(1920, 1080)
	pos := Position{X: 10, Y: 10}

	terminate, err := d.Decode(newStream(SyncBit|XOverflow, 10, 0), &pos)
	require.NoError(t, err)
	assert.False(t, terminate)
	assert.Equal(t, Position{X: 0, Y: 10}, pos)

	pos = Position{X: 1000, Y: 700}
	_, err = d.Decode(newStream(SyncBit|YOverflow, 0, 0xF6), &pos)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 1000, Y: 700 - 10 - 256}, pos)
}

func TestDecodeClampsToScreen(t *testing.T) {
	d := NewDecoder(1920, 1080)
	pos := Position{X: 1900, Y: 1070}

	_, err := d.Decode(newStream(SyncBit, 127, 127), &pos)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 1920, Y: 1080}, pos)
}

func TestDecodeShortRead(t *testing.T) {
	d := NewDecoder(1920, 1080)
	for _, s := range []*stream{newStream(), newStream(SyncBit), newStream(SyncBit, 5)} {
		pos := Position{X: 800, Y: 400}
		terminate, err := d.Decode(s, &pos)
		require.NoError(t, err)
		assert.False(t, terminate)
		assert.Equal(t, Position{X: 800, Y: 400}, pos)
	}

	pos := Position{X: 1, Y: 2}
	terminate, err := d.Decode(bytes.NewReader(nil), &pos)
	require.NoError(t, err)
	assert.False(t, terminate)
	assert.Equal(t, Position{X: 1, Y: 2}, pos)
}

func TestDecodeReadError(t *testing.T) {
	d := NewDecoder(1920, 1080)
	broken := &stream{err: errors.New("no such device")}
	pos := Position{X: 5, Y: 5}

	_, err := d.Decode(broken, &pos)
	assert.EqualError(t, err, "no such device")
	assert.Equal(t, Position{X: 5, Y: 5}, pos)
}

func TestDecodeResynchronizes(t *testing.T) {
	d := NewDecoder(1920, 1080)
	pos := Position{X: 800, Y: 400}

	// Two stray bytes ahead of a valid packet.
	s := newStream(0x00, 0x01, SyncBit, 5, 3, SyncBit, 1, 1)
	terminate, err := d.Decode(s, &pos)
	require.NoError(t, err)
	assert.False(t, terminate)
	assert.Equal(t, Position{X: 805, Y: 403}, pos)

	_, err = d.Decode(s, &pos)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 806, Y: 404}, pos)
}

func TestDecodeResyncRunsOutOfData(t *testing.T) {
	d := NewDecoder(1920, 1080)
	pos := Position{X: 800, Y: 400}

	terminate, err := d.Decode(newStream(0x00, 0x00, 0x00, 0x00), &pos)
	require.NoError(t, err)
	assert.False(t, terminate)
	assert.Equal(t, Position{X: 800, Y: 400}, pos)
}

func TestDecodeDesyncError(t *testing.T) {
	d := NewDecoder(1920, 1080)
	d.ResyncLimit = 8
	pos := Position{X: 800, Y: 400}

	_, err := d.Decode(newStream(make([]byte, 32)...), &pos)
	var desync *DesyncError
	require.ErrorAs(t, err, &desync)
	assert.Equal(t, 8, desync.Discarded)
	assert.Equal(t, Position{X: 800, Y: 400}, pos)
}

func TestDecodeStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d := NewDecoder(640, 480)
	pos := Position{X: 320, Y: 240}

	for i := 0; i < 5000; i++ {
		status := SyncBit | byte(rng.Intn(4))<<4
		p := Packet{status, byte(rng.Intn(256)), byte(rng.Intn(256))}
		before := pos
		dx, dy := p.Delta()

		terminate, err := d.Decode(newStream(p[:]...), &pos)
		require.NoError(t, err)
		require.False(t, terminate)

		assert.Equal(t, clamp(before.X+dx, 0, 640), pos.X)
		assert.Equal(t, clamp(before.Y+dy, 0, 480), pos.Y)
		require.True(t, pos.X >= 0 && pos.X <= 640 && pos.Y >= 0 && pos.Y <= 480, pos)
	}
}

func TestPacketDelta(t *testing.T) {
	dx, dy := Packet{SyncBit, 0x80, 0x7F}.Delta()
	assert.Equal(t, -128, dx)
	assert.Equal(t, 127, dy)

	dx, dy = Packet{SyncBit | XOverflow | YOverflow, 10, 0xFF}.Delta()
	assert.Equal(t, 10-256, dx)
	assert.Equal(t, -1-256, dy)
}

func TestShortReadClassification(t *testing.T) {
	assert.NoError(t, shortRead(nil))
	assert.NoError(t, shortRead(io.EOF))
	assert.NoError(t, shortRead(ErrWouldBlock))
	assert.Error(t, shortRead(io.ErrUnexpectedEOF))
}
