package controllers

import (
	"net/http"
	"time"

	"github.com/hieuit01/BTL-CCNLTHD/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsPingEvery = 25 * time.Second
	wsReadWait  = 60 * time.Second
)

type RealtimeController struct {
	hub *services.RealtimeHub
}

func NewRealtimeController(hub *services.RealtimeHub) *RealtimeController {
	return &RealtimeController{hub: hub}
}

// Mobile clients send no Origin header, so any origin is accepted.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Connect upgrades to a websocket that receives chat messages and reminders.
func (rc *RealtimeController) Connect(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	sock := services.NewSocket(caller.ID, conn)
	rc.hub.Attach(sock)

	_ = conn.SetReadDeadline(time.Now().Add(wsReadWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(wsPingEvery)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := sock.Write(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	defer rc.hub.Detach(sock)
	// Inbound frames are ignored; reading keeps pong handling alive.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
