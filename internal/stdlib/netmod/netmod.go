// Package netmod is a native extension module exposing a minimal
// blocking WebSocket client (spec §4.J, §5 "blocking I/O is the
// embedder's concern").
package netmod

import (
	"github.com/gorilla/websocket"

	"kslang/internal/callable"
	"kslang/internal/kerr"
	"kslang/internal/module"
	"kslang/internal/object"
	"kslang/internal/value"
)

func init() {
	module.Register("net", newModule)
}

func newModule(argc int, argv []string) (*module.Module, error) {
	m := module.New("net", "<builtin>")
	m.Set("ws_connect", callable.NewCFunc("net.ws_connect", 1, wsConnect))
	return m, nil
}

func wsConnect(args []object.Value) (object.Value, error) {
	urlv, ok := args[0].(*value.Str)
	object.DecRef(args[0])
	if !ok {
		return nil, kerr.New(kerr.TypeError, "net.ws_connect: expected str url")
	}
	conn, _, err := websocket.DefaultDialer.Dial(urlv.S, nil)
	if err != nil {
		return nil, kerr.New(kerr.InternalError, "net.ws_connect: %v", err)
	}
	c := newWSConn(conn)
	c.Attrs["send"] = callable.NewCFunc("wsconn.send", 1, func(a []object.Value) (object.Value, error) {
		s, ok := a[0].(*value.Str)
		object.DecRef(a[0])
		if !ok {
			return nil, kerr.New(kerr.TypeError, "wsconn.send: expected str")
		}
		if werr := conn.WriteMessage(websocket.TextMessage, []byte(s.S)); werr != nil {
			return nil, kerr.New(kerr.InternalError, "wsconn.send: %v", werr)
		}
		return value.NoneVal(), nil
	})
	c.Attrs["recv"] = callable.NewCFunc("wsconn.recv", 0, func(a []object.Value) (object.Value, error) {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			return nil, kerr.New(kerr.InternalError, "wsconn.recv: %v", rerr)
		}
		return value.NewStr(string(data)), nil
	})
	c.Attrs["close"] = callable.NewCFunc("wsconn.close", 0, func(a []object.Value) (object.Value, error) {
		c.closed = true
		conn.Close()
		return value.NoneVal(), nil
	})
	return c, nil
}
