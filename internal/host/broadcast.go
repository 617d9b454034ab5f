package host

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 8
	writeTimeout = 10 * time.Second
)

// broadcastSurface holds a widget's current text and pushes every change
// to the websocket subscribers watching it.
type broadcastSurface struct {
	mu     sync.Mutex
	text   string
	subs   map[*subscriber]struct{}
	closed bool
}

type subscriber struct {
	conn *websocket.Conn
	send chan string
}

func newBroadcastSurface() *broadcastSurface {
	return &broadcastSurface{subs: make(map[*subscriber]struct{})}
}

// SetText stores text and queues it for every subscriber. Subscribers that
// fall sendBuffer messages behind miss intermediate values; the latest text
// is always the last one queued.
func (b *broadcastSurface) SetText(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.text = text
	for s := range b.subs {
		select {
		case s.send <- text:
		default:
			// Drop the oldest queued value to make room for the newest.
			select {
			case <-s.send:
			default:
			}
			select {
			case s.send <- text:
			default:
			}
		}
	}
	return nil
}

// Text returns the current text.
func (b *broadcastSurface) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// subscribe registers conn and queues the current text for it.
// Returns nil if the surface is already closed.
func (b *broadcastSurface) subscribe(conn *websocket.Conn) *subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	s := &subscriber{conn: conn, send: make(chan string, sendBuffer)}
	s.send <- b.text
	b.subs[s] = struct{}{}
	return s
}

func (b *broadcastSurface) unsubscribe(s *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.send)
	}
}

// close disconnects all subscribers.
func (b *broadcastSurface) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for s := range b.subs {
		delete(b.subs, s)
		close(s.send)
	}
}

func (b *broadcastSurface) subscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// writeLoop sends queued texts to the connection until the channel closes
// or a write fails.
func (s *subscriber) writeLoop() {
	defer s.conn.Close()
	for text := range s.send {
		s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := s.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
			return
		}
	}
	s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}
