package controllers

import (
	"net/http"
	"time"

	"github.com/aapokoiv/nutrition-tracker/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const pingPeriod = 25 * time.Second

type RealtimeController struct {
	RT       *services.RealtimeHub
	upgrader websocket.Upgrader
}

// NewRealtimeController accepts upgrades only from allowedOrigin when it
// returns true; nil allows any origin.
func NewRealtimeController(rt *services.RealtimeHub, allowedOrigin func(string) bool) *RealtimeController {
	return &RealtimeController{
		RT: rt,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == nil || allowedOrigin(origin)
			},
		},
	}
}

// IntakeWS streams intake.updated and target.hit messages for the caller.
func (rc *RealtimeController) IntakeWS(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	conn, err := rc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	cl := &services.WSClient{UserID: uid, Conn: conn}
	rc.RT.Register(cl)

	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(pingPeriod)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := cl.Write(websocket.PingMessage, nil); err != nil {
					rc.RT.Unregister(cl)
					return
				}
			}
		}
	}()

	// The read loop only drains control frames and ends on close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			rc.RT.Unregister(cl)
			return
		}
	}
}
