package handler

import (
	"net/http"
	"slices"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/service"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// LiveHandler upgrades GET /v1/live/:table to a websocket that receives the
// table's rows after every committed write.
type LiveHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewLiveHandler(hub *ws.Hub) *LiveHandler {
	return &LiveHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The API only listens on loopback.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *LiveHandler) Serve(c *gin.Context) {
	table := c.Param("table")
	if !slices.Contains(service.BackupTables, table) {
		c.AbortWithStatusJSON(http.StatusNotFound, apierror.New("unknown table "+table))
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	if err := h.hub.Serve(table, conn); err != nil {
		log.Error().Err(err).Str("table", table).Msg("live feed")
	}
}
