package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/asjidimtiaz/leadqual/internal/domain"
	"github.com/asjidimtiaz/leadqual/internal/engine"
)

// Frame types for the widget WebSocket protocol.
const (
	frameStart   = "start"
	frameMessage = "message"
	frameSession = "session"
	frameReply   = "reply"
	frameError   = "error"
)

const wsReadLimit = 64 * 1024

// wsFrame is a single JSON frame on the widget socket. The widget sends
// "start" and "message" frames; the server answers with "session", "reply",
// or "error".
type wsFrame struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Text      string      `json:"text,omitempty"`
	Mode      domain.Mode `json:"mode,omitempty"`
	Reply     string      `json:"reply,omitempty"`
	LeadScore int         `json:"leadScore,omitempty"`
	Converted bool        `json:"isConverted,omitempty"`
	Message   string      `json:"message,omitempty"` // error detail
}

// handleWebSocket upgrades the connection and runs the widget chat loop.
// The socket is stateless beyond the frames: the session id travels in every
// message frame, so a widget can reconnect and resume.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	s.log.Debug().Str("remote", r.RemoteAddr).Msg("widget connected")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Str("remote", r.RemoteAddr).Msg("widget disconnected")
			} else {
				s.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket read error")
			}
			return
		}

		var frame wsFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			writeWSError(conn, "invalid json frame")
			continue
		}

		switch frame.Type {
		case frameStart:
			s.wsStart(r.Context(), conn)
		case frameMessage:
			s.wsMessage(r.Context(), conn, frame)
		default:
			writeWSError(conn, "unknown frame type: "+frame.Type)
		}
	}
}

func (s *Server) wsStart(ctx context.Context, conn *websocket.Conn) {
	sess, err := s.manager.StartSession(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket session start failed")
		writeWSError(conn, "could not start session")
		return
	}
	writeWS(conn, wsFrame{Type: frameSession, SessionID: sess.ID, Mode: sess.Mode})
}

func (s *Server) wsMessage(ctx context.Context, conn *websocket.Conn, frame wsFrame) {
	if frame.SessionID == "" {
		writeWSError(conn, "sessionId is required")
		return
	}

	turnCtx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	res, err := s.manager.ProcessMessage(turnCtx, frame.SessionID, frame.Text)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeWSError(conn, "session not found")
		return
	case errors.Is(err, engine.ErrEmptyMessage):
		writeWSError(conn, "message is required")
		return
	case err != nil:
		s.log.Error().Err(err).Str("sessionId", frame.SessionID).Msg("websocket turn failed")
		writeWSError(conn, "could not process message")
		return
	}

	writeWS(conn, wsFrame{
		Type:      frameReply,
		SessionID: frame.SessionID,
		Mode:      res.Mode,
		Reply:     res.Reply,
		LeadScore: res.LeadScore,
		Converted: res.IsConverted,
	})
}

func writeWS(conn *websocket.Conn, frame wsFrame) {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	conn.WriteJSON(frame)
}

func writeWSError(conn *websocket.Conn, message string) {
	writeWS(conn, wsFrame{Type: frameError, Message: message})
}
