package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/robsammonsdfw/EmbraceMacro-sub000/services"
)

type RealtimeController struct {
	RT          *services.RealtimeHub
	coordinator *services.CommitCoordinator
}

func NewRealtimeController(rt *services.RealtimeHub, coordinator *services.CommitCoordinator) *RealtimeController {
	return &RealtimeController{RT: rt, coordinator: coordinator}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // tighten behind ALB/CloudFront if needed
}

// UpdatesWS streams reconcile snapshots to the client. The connection
// is the session: its day-boundary monitor starts on register and stops
// when the socket closes, so no rollover fires after logout.
func (rc *RealtimeController) UpdatesWS(c *gin.Context) {
	uid := c.GetUint("userID")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	cl := services.NewWSClient(uid, conn)
	rc.RT.Register(cl)

	monitor := services.NewDayBoundaryMonitor(uid, rc.coordinator)
	monitor.Start(c.Request.Context())

	// ping to keep connections alive through some proxies; writes are
	// serialized with hub broadcasts inside the client
	go func() {
		t := time.NewTicker(25 * time.Second)
		defer t.Stop()
		for range t.C {
			if err := cl.Ping(); err != nil {
				return
			}
		}
	}()

	// read loop ends on client close/error → unregister, stop monitor
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			monitor.Stop()
			rc.RT.Unregister(cl)
			return
		}
	}
}
