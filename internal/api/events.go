package api

import (
	"encoding/json"
	"net/http"
	"time"

	"foodgame/internal/events"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// eventConn streams one game's events to a websocket client
type eventConn struct {
	conn *websocket.Conn
	hub  *events.Hub
	sub  *events.Subscription
	log  logrus.FieldLogger
}

// Events upgrades to a websocket and streams the game's events
func (a *GameAPI) Events(c *gin.Context) {
	gameID := c.Param("game_id")
	if _, err := a.game.State(gameID); err != nil {
		a.respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		a.log.WithError(err).WithField("game_id", gameID).Warn("failed to upgrade connection")
		return
	}

	ec := &eventConn{
		conn: conn,
		hub:  a.hub,
		sub:  a.hub.Subscribe(gameID),
		log:  a.log.WithField("game_id", gameID),
	}

	go ec.writePump()
	go ec.readPump()
}

// readPump drains client frames so pongs and closes are processed
func (ec *eventConn) readPump() {
	defer func() {
		ec.hub.Unsubscribe(ec.sub)
		ec.conn.Close()
	}()

	ec.conn.SetReadLimit(4096)
	ec.conn.SetReadDeadline(time.Now().Add(pongWait))
	ec.conn.SetPongHandler(func(string) error {
		ec.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := ec.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				ec.log.WithError(err).Warn("websocket closed unexpectedly")
			}
			return
		}
	}
}

// writePump forwards events and keeps the connection alive
func (ec *eventConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ec.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-ec.sub.C:
			ec.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				ec.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				ec.log.WithError(err).Error("failed to encode event")
				continue
			}
			if err := ec.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			ec.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ec.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
