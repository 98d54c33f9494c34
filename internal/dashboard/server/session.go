package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"time"

	"cricstats/internal/dashboard"

	"github.com/gorilla/websocket"
	"github.com/mazen160/go-random"
)

const (
	report_session_open   = "session.open"
	report_session_closed = "session.closed"
	report_session_event  = "session.event"
)

const (
	writeWait      = 10 * time.Second
	idleTimeout    = 30 * time.Minute
	maxMessageSize = 1024
)

// Message is what a session sends after every event.
type Message struct {
	Session string          `json:"session"`
	View    *dashboard.View `json:"view,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("origin")
	if origin == "" {
		return true
	}
	if slices.Contains(s.opts.AllowedOrigins, "*") || slices.Contains(s.opts.AllowedOrigins, origin) {
		return true
	}
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return parsed.Host == r.Host
}

// handleSession serves one dashboard over a websocket. The session's state
// lives on this goroutine only, events are applied in the order received
// and each one is answered with a freshly computed view.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.tel.ReportWarning(report_session_open, err)
		return
	}
	defer conn.Close()

	id, err := random.String(16)
	if err != nil {
		s.tel.ReportBroken(report_session_open, err)
		return
	}
	s.tel.ReportDebug(report_session_open, id)

	ctx := r.Context()
	state := s.opts.Defaults

	send := func(msg Message) bool {
		msg.Session = id
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := conn.WriteJSON(msg)
		if err != nil {
			s.tel.ReportWarning(report_session_event, id, err)
			return false
		}
		return true
	}
	sendView := func() bool {
		view, err := s.Recompute(ctx, state)
		if err != nil {
			return send(Message{Error: err.Error()})
		}
		return send(Message{View: &view})
	}

	if !sendView() {
		return
	}

	conn.SetReadLimit(maxMessageSize)
	for {
		conn.SetReadDeadline(time.Now().Add(idleTimeout))

		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.tel.ReportWarning(report_session_closed, id, err)
			}
			s.tel.ReportDebug(report_session_closed, id)
			return
		}

		var event dashboard.ControlEvent
		err = json.Unmarshal(data, &event)
		if err != nil {
			if !send(Message{Error: fmt.Sprintf("decode event: %s", err)}) {
				return
			}
			continue
		}

		next, err := state.Apply(event)
		if err != nil {
			if !send(Message{Error: err.Error()}) {
				return
			}
			continue
		}
		state = next

		if !sendView() {
			return
		}
	}
}
