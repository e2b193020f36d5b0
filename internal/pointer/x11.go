package pointer

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const x11Buttons = xproto.KeyButMaskButton1 | xproto.KeyButMaskButton2 | xproto.KeyButMaskButton3

// X11Source follows the X11 root window pointer instead of a raw device,
// for running on a desktop session. Any pressed button terminates.
type X11Source struct {
	conn   *xgb.Conn
	root   xproto.Window
	Width  int
	Height int
}

var _ Source = (*X11Source)(nil)

func NewX11Source(width, height int) (*X11Source, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}

	setup := xproto.Setup(conn)
	return &X11Source{
		conn:   conn,
		root:   setup.DefaultScreen(conn).Root,
		Width:  width,
		Height: height,
	}, nil
}

// Poll replaces pos with the pointer position. X11 counts rows from the
// top, the renderer from the bottom.
func (s *X11Source) Poll(pos *Position) (bool, error) {
	reply, err := xproto.QueryPointer(s.conn, s.root).Reply()
	if err != nil {
		return false, err
	}
	return applyPointer(pos, int(reply.RootX), int(reply.RootY), reply.Mask, s.Width, s.Height), nil
}

func applyPointer(pos *Position, rootX, rootY int, mask uint16, width, height int) bool {
	if mask&x11Buttons != 0 {
		return true
	}
	pos.X = clamp(rootX, 0, width)
	pos.Y = clamp(height-rootY, 0, height)
	return false
}

func (s *X11Source) Close() error {
	s.conn.Close()
	return nil
}
