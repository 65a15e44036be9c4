package ws

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// wsTransport adapts a gorilla websocket connection to the registry's
// Transport contract. Writes are serialized with a mutex because gorilla
// connections support only one concurrent writer.
type wsTransport struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	closed atomic.Bool
}

func newTransport(conn *websocket.Conn) *wsTransport {
	return &wsTransport{conn: conn}
}

func (t *wsTransport) IsOpen() bool {
	return !t.closed.Load()
}

func (t *wsTransport) Send(payload []byte) error {
	if t.closed.Load() {
		return net.ErrClosed
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, payload)
}

func (t *wsTransport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	return t.conn.Close()
}

// markClosed flags the transport closed without tearing the socket down,
// used by the read loop which closes the socket itself.
func (t *wsTransport) markClosed() {
	t.closed.Store(true)
}
