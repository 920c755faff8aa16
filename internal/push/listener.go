// Package push relays the backend's live-update channel to the browser hub.
package push

import (
	"context"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// Relayer receives raw frames from the backend
type Relayer interface {
	Relay(raw []byte)
}

type Listener struct {
	url    string
	dialer *websocket.Dialer
	out    Relayer
}

func NewListener(url string, out Relayer) *Listener {
	return &Listener{url: url, dialer: websocket.DefaultDialer, out: out}
}

// Run keeps a connection to the backend open until ctx is cancelled,
// reconnecting with exponential backoff.
func (l *Listener) Run(ctx context.Context) {
	backoff := minBackoff
	for {
		connected, err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		if connected {
			backoff = minBackoff
		}
		log.Printf("push: connection to %s lost: %v; retrying in %s", l.url, err, backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// listen forwards frames until the connection fails. connected reports whether
// the dial succeeded.
func (l *Listener) listen(ctx context.Context) (connected bool, err error) {
	conn, _, err := l.dialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return false, err
	}
	defer conn.Close()
	log.Printf("push: connected to %s", l.url)

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		l.out.Relay(raw)
	}
}
