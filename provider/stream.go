package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
)

// Provider close codes shared by the streaming endpoints.
const (
	closeInternalError   = 4000
	closeLeaseNotFound   = 4001
	closeServiceNotFound = 4002
)

// streamEvent is one inbound event on a duplex stream: either a message or a
// terminal read error (which carries the close code when the provider closed
// the stream deliberately).
type streamEvent struct {
	data []byte
	err  error
}

// dialStream opens a websocket connection to a provider path over the same
// mTLS configuration as single-shot requests, sentinel SNI included.
func (c *Client) dialStream(ctx context.Context, endpoint *url.URL, pathAndQuery string) (*websocket.Conn, error) {
	wsURL := fmt.Sprintf("wss://%s%s", endpoint.Host, pathAndQuery)

	dialer := &websocket.Dialer{
		TLSClientConfig: c.tlsConfig,
	}
	header := http.Header{}
	header.Set("Host", sentinelServerName)

	conn, resp, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("could not open stream (%d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("could not open stream: %w", err)
	}
	return conn, nil
}

// readStream pumps inbound messages into a channel until the connection
// fails or closes, or done is closed. The final event carries the read
// error. Callers that stop receiving before the stream ends (timeout,
// cancellation) must close done so the pump can exit; a blocked channel
// send would otherwise pin the goroutine forever.
func readStream(conn *websocket.Conn, done <-chan struct{}) <-chan streamEvent {
	events := make(chan streamEvent)
	go func() {
		defer close(events)
		for {
			_, data, err := conn.ReadMessage()
			select {
			case events <- streamEvent{data: data, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return events
}

// closeCode extracts the websocket close code from a terminal read error, or
// 0 when the error is a transport fault rather than a deliberate close.
func closeCode(err error) int {
	if ce, ok := err.(*websocket.CloseError); ok {
		return ce.Code
	}
	return 0
}
