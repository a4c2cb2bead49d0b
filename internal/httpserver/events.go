// internal/httpserver/events.go
//
// Live session feed over websocket (GET /events).
// The hub subscribes to the session manager once and fans every event out
// to the connected clients as a JSON text message. A new client first gets
// {"kind":"snapshot","snapshot":{...}}. Each client only receives snapshots
// newer than the last one it was sent, so late or reordered deliveries are
// skipped. A client whose send buffer is full is dropped so the session
// never waits on a slow reader.

package httpserver

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/06AleKey04/bingo/internal/session"
)

const (
	sendBuffer   = 32
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingEvery    = 30 * time.Second
)

type hub struct {
	sess        *session.Manager
	upgrader    websocket.Upgrader
	unsubscribe func()

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	last uint64 // version of the newest snapshot queued; guarded by hub.mu
}

func newHub(sess *session.Manager, origin string) *hub {
	h := &hub{
		sess:    sess,
		clients: make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return allowOrigin(r, origin) },
	}
	h.unsubscribe = sess.Subscribe(h.broadcast)
	return h
}

// allowOrigin accepts non-browser clients, the configured client origin,
// and same-host pages.
func allowOrigin(r *http.Request, origin string) bool {
	o := r.Header.Get("Origin")
	if o == "" || o == origin {
		return true
	}
	u, err := url.Parse(o)
	return err == nil && u.Host == r.Host
}

func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}

	n, err := h.register(c)
	if err != nil {
		log.Error().Err(err).Msg("encode snapshot")
		_ = conn.Close()
		return
	}
	log.Info().Str("client", c.id).Int("clients", n).Msg("event client connected")

	go h.writePump(c)
	h.readPump(c)
}

// register queues the current snapshot for c and adds it to the hub in one
// step, so no broadcast can fall between the two. It returns the client count.
func (h *hub) register(c *client) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	snap := h.sess.Snapshot()
	first, err := json.Marshal(session.Event{Kind: session.EventSnapshot, Snapshot: snap})
	if err != nil {
		return 0, err
	}
	c.send <- first
	c.last = snap.Version
	h.clients[c] = struct{}{}
	return len(h.clients), nil
}

// broadcast is the session observer.
func (h *hub) broadcast(ev session.Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event", string(ev.Kind)).Msg("encode event")
		return
	}
	v := ev.Snapshot.Version
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if v <= c.last {
			continue
		}
		select {
		case c.send <- b:
			c.last = v
		default:
			log.Warn().Str("client", c.id).Msg("dropping slow event client")
			h.dropLocked(c)
		}
	}
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// dropLocked unregisters c and closes its send channel, which ends its
// writePump. Caller holds h.mu.
func (h *hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// close detaches the hub from the session and disconnects every client.
func (h *hub) close() {
	h.unsubscribe()
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.dropLocked(c)
	}
}

// readPump discards client messages and keeps the read deadline alive.
func (h *hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
		log.Info().Str("client", c.id).Msg("event client disconnected")
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *hub) writePump(c *client) {
	ticker := time.NewTicker(pingEvery)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
