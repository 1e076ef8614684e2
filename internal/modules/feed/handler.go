package feed

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// gate screens live on the staff network; origin filtering is handled by
	// the CORS layer in front
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Handler struct {
	hub *Hub
	log *zerolog.Logger
}

func NewHandler(hub *Hub, log *zerolog.Logger) *Handler {
	return &Handler{hub: hub, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/checkin/feed", h.Subscribe)
}

// Subscribe upgrades the connection and keeps it in the hub until the client
// goes away. The feed is write-only; anything the client sends is discarded.
func (h *Handler) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("feed upgrade failed")
		return
	}

	connID := uuid.NewString()
	h.hub.Register(connID, conn)
	h.log.Info().Str("conn_id", connID).Int("subscribers", h.hub.SubscriberCount()).Msg("feed subscriber connected")

	go func() {
		defer func() {
			h.hub.Unregister(connID)
			h.log.Info().Str("conn_id", connID).Msg("feed subscriber disconnected")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
