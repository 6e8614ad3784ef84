package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/taskroom/taskroom/internal/chat"
	"github.com/taskroom/taskroom/internal/middleware"
	"github.com/taskroom/taskroom/internal/modules/serializer"
)

type ChatHandler struct {
	relay       *chat.Relay
	auth        middleware.Authenticator
	requireAuth bool
	upgrader    websocket.Upgrader
	log         *zap.Logger
}

// NewChatHandler builds the socket endpoint. An empty allowedOrigins list
// accepts any origin.
func NewChatHandler(relay *chat.Relay, auth middleware.Authenticator, requireAuth bool, allowedOrigins []string, log *zap.Logger) *ChatHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return &ChatHandler{
		relay:       relay,
		auth:        auth,
		requireAuth: requireAuth,
		log:         log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				_, ok := allowed[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

// Connect godoc
//
//	@Summary		Join a project chat room
//	@Description	Upgrades to a websocket. Send {"sender","content"}; every member receives {"message","username"}.
//	@Tags			chat
//	@Param			project_id	path	integer	true	"Project ID"
//	@Param			token		query	string	false	"Access token, required when chat.requireAuth is on"
//	@Success		101
//	@Router			/ws/chat/{project_id}/ [get]
func (h *ChatHandler) Connect(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("project_id"), 10, 0)
	if err != nil {
		c.JSON(http.StatusNotFound, serializer.NotFound())
		return
	}

	if h.requireAuth {
		p, err := h.auth.Authenticate(c.Query("token"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
			return
		}
		middleware.SetPrincipal(c, p)
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the error response
		h.log.Sugar().Warnw("websocket upgrade failed", "room", roomID, "err", err)
		return
	}

	h.relay.Serve(c.Request.Context(), conn, uint(roomID))
}
