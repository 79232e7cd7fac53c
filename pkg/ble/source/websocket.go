package source

import (
	"fmt"

	"golang.org/x/net/websocket"
)

// DefaultOrigin is sent when dialing websocket relays.
const DefaultOrigin = "http://localhost/"

// DialWebSocket connects to a relay which forwards the raw UART bytes
// as binary websocket messages.
func DialWebSocket(url, origin string) (*Stream, error) {
	if origin == "" {
		origin = DefaultOrigin
	}
	conn, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	conn.PayloadType = websocket.BinaryFrame
	return NewStream(url, conn), nil
}
