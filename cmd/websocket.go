package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"fakhiuBack/internal/models"
	"fakhiuBack/internal/services"
	"fakhiuBack/internal/session"
)

const (
	readLimit     = 4 << 10
	readDeadline  = 120 * time.Second
	writeDeadline = 5 * time.Second
	pingInterval  = 15 * time.Second
	sendBuffer    = 8
)

type subscriber struct {
	sessionID string
	caller    services.Caller
	conn      *websocket.Conn
	send      chan session.State
}

type publication struct {
	sessionID string
	state     session.State
}

// sessionHub pushes a session's page to its websocket subscribers whenever
// the session or the snapshot behind it changes.
type sessionHub struct {
	app        *application
	subs       map[string]map[*subscriber]struct{}
	register   chan *subscriber
	unregister chan *subscriber
	publish    chan publication
	done       chan struct{}
}

func newSessionHub(app *application) *sessionHub {
	return &sessionHub{
		app:        app,
		subs:       make(map[string]map[*subscriber]struct{}),
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		publish:    make(chan publication, 64),
		done:       make(chan struct{}),
	}
}

// Run owns the subscriber map; all access goes through its channels.
func (h *sessionHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for _, set := range h.subs {
				for sub := range set {
					close(sub.send)
				}
			}
			h.subs = map[string]map[*subscriber]struct{}{}
			return

		case sub := <-h.register:
			set, ok := h.subs[sub.sessionID]
			if !ok {
				set = make(map[*subscriber]struct{})
				h.subs[sub.sessionID] = set
			}
			set[sub] = struct{}{}

		case sub := <-h.unregister:
			if set, ok := h.subs[sub.sessionID]; ok {
				if _, ok := set[sub]; ok {
					delete(set, sub)
					close(sub.send)
				}
				if len(set) == 0 {
					delete(h.subs, sub.sessionID)
				}
			}

		case p := <-h.publish:
			for sub := range h.subs[p.sessionID] {
				select {
				case sub.send <- p.state:
				default:
					h.app.log.Infof("ws: dropping update for slow subscriber of session %s", p.sessionID)
				}
			}
		}
	}
}

func (h *sessionHub) sessionChanged(st session.State) {
	select {
	case h.publish <- publication{sessionID: st.ID, state: st}:
	default:
		h.app.log.Errorf("ws: publish queue full, session %s not pushed", st.ID)
	}
}

// snapshotCommitted re-pushes every session that reads from the snapshot.
func (h *sessionHub) snapshotCommitted(key string, _ models.Snapshot) {
	for _, sess := range h.app.sessions.ByOwner(key) {
		h.sessionChanged(sess.State())
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// SessionSocket upgrades to a websocket that receives the session's view
// after every change. Browsers cannot set headers here, so the token may
// also come as ?token=.
func (app *application) SessionSocket(w http.ResponseWriter, r *http.Request) {
	c := app.caller(r)
	if c.Token == "" {
		if token := r.URL.Query().Get("token"); token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
			c = app.caller(r)
		}
	}
	if c.Token == "" {
		http.Error(w, `{"error":"authorization header missing or invalid"}`, http.StatusUnauthorized)
		return
	}

	id := r.URL.Query().Get(":id")
	sess, err := app.sessionService.Get(c, id)
	if err != nil {
		http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.log.Errorf("ws upgrade: %v", err)
		return
	}
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	sub := &subscriber{sessionID: id, caller: c, conn: conn, send: make(chan session.State, sendBuffer)}
	sess.OnChange(app.hub.sessionChanged)
	sub.send <- sess.State()
	select {
	case app.hub.register <- sub:
	case <-app.hub.done:
		_ = conn.Close()
		return
	}

	go app.writePump(sub)
	go app.readPump(sub)
}

// readPump only drains control frames; the client never sends data.
func (app *application) readPump(sub *subscriber) {
	defer func() {
		select {
		case app.hub.unregister <- sub:
		case <-app.hub.done:
		}
	}()
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (app *application) writePump(sub *subscriber) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = sub.conn.Close()
	}()

	for {
		select {
		case st, ok := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				_ = sub.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), app.cfg.BackendTimeout())
			view, err := app.sessionService.Render(ctx, sub.caller, st)
			cancel()
			if err != nil {
				app.log.Errorf("ws render session %s: %v", sub.sessionID, err)
				continue
			}
			if err := sub.conn.WriteJSON(view); err != nil {
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
