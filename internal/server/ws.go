package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gavvahar/Monopoly-Deal/internal/game/rules"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	// sendBuffer bounds a slow consumer; overflow drops the connection
	// rather than blocking the game's dispatch path.
	sendBuffer = 64
)

type wsClient struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	cancel func()
	logger *zap.Logger
}

// close signals shutdown without closing the send channel: a publish
// already in flight may still be trying to enqueue.
func (c *wsClient) close() {
	c.once.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		close(c.done)
		c.conn.Close()
	})
}

// handleEvents streams a session's events to one WebSocket client. Events
// are produced synchronously inside game dispatch, so the listener only
// enqueues; the write pump does the network work.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("id")
	if _, err := s.sessions.Get(sessionID); err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}

	client := &wsClient{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		logger: s.logger,
	}

	cancel, err := s.sessions.Subscribe(sessionID, func(ev rules.Event) {
		data, err := json.Marshal(ev)
		if err != nil {
			return
		}
		select {
		case client.send <- data:
		case <-client.done:
		default:
			// Consumer too slow; drop the connection, not the game.
			client.close()
		}
	})
	if err != nil {
		conn.Close()
		return
	}
	client.cancel = cancel

	go client.writePump()
	go client.readPump()
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(writeWait))
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames; its job is noticing the close.
func (c *wsClient) readPump() {
	defer c.close()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("websocket read", zap.Error(err))
			}
			return
		}
	}
}
