package netmod

import (
	"github.com/gorilla/websocket"

	"kslang/internal/kerr"
	"kslang/internal/object"
)

// wsConn wraps a gorilla/websocket connection as a heap value. Its send
// and recv methods are ordinary blocking native calls (spec §5 "Blocking
// I/O is the embedder's concern; the VM carries no non-blocking
// primitive"). Like module.Module, its attributes are plain closures
// over the connection rather than bound methods rebound by §4.D's
// attribute-resolution machinery.
type wsConn struct {
	object.Header
	conn   *websocket.Conn
	Attrs  map[string]object.Value
	closed bool
}

var WSConnType = object.NewType("wsconn")

func init() {
	WSConnType.Slots.Str = func(v object.Value) (string, error) { return "<wsconn>", nil }
	WSConnType.Slots.Repr = WSConnType.Slots.Str
	WSConnType.Slots.GetAttr = func(self object.Value, name string) (object.Value, error) {
		c := self.(*wsConn)
		v, ok := c.Attrs[name]
		if !ok {
			return nil, kerr.New(kerr.AttrError, "wsconn has no attribute %q", name)
		}
		object.IncRef(v)
		return v, nil
	}
}

func (c *wsConn) DecRef() {
	c.Header.DecRef(func() {
		for _, v := range c.Attrs {
			object.DecRef(v)
		}
		if !c.closed {
			c.conn.Close()
		}
	})
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{Header: object.NewHeader(WSConnType), conn: conn, Attrs: make(map[string]object.Value)}
}
