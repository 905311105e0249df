package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleStream upgrades to a websocket and pushes every newly published JPEG
// as one binary message. Slow clients simply miss intermediate frames.
func (s *Server) handleStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	s.log.Info("stream client connected", zap.String("remote", c.Request.RemoteAddr))

	// read pump: only used to notice the client going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.log.Debug("stream read failed", zap.Error(err))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(s.cfg.StreamInterval)
	defer ticker.Stop()

	var sent uint64
	for {
		select {
		case <-gone:
			s.log.Info("stream client disconnected", zap.String("remote", c.Request.RemoteAddr))
			return
		case <-s.closing:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case <-ticker.C:
		}

		v := s.pub.Version()
		if v == sent {
			continue
		}
		jpeg, ok := s.pub.Frame()
		if !ok {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.BinaryMessage, jpeg); err != nil {
			s.log.Debug("stream write failed", zap.Error(err))
			return
		}
		sent = v
	}
}
