package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskroom/taskroom/internal/authz"
	"github.com/taskroom/taskroom/internal/modules/serializer"
	"github.com/taskroom/taskroom/internal/modules/service"
)

type MessageHandler struct {
	svc    service.MessageService
	matrix *authz.Matrix
}

func NewMessageHandler(s service.MessageService, m *authz.Matrix) *MessageHandler {
	return &MessageHandler{svc: s, matrix: m}
}

type MessageReq struct {
	// falls back to the project_id query parameter
	MessageProject *uint  `json:"message_project" example:"1"`
	Sender         string `json:"sender" binding:"required,max=15" example:"alice"`
	Content        string `json:"content" binding:"required" example:"hello"`
}

// ListMessages godoc
//
//	@Summary	List chat messages
//	@Tags		chat
//	@Produce	json
//	@Param		project_id	query	integer	false	"Project filter"
//	@Param		page		query	integer	false	"Page number, default 1"
//	@Param		page_size	query	integer	false	"Page size, default 20, max 200"
//	@Security	BearerAuth
//	@Success	200	{object}	paging.Result[model.Message]
//	@Router		/chat-messages/ [get]
func (h *MessageHandler) ListMessages(c *gin.Context) {
	if !authorize(c, h.matrix, authz.ResMessage, authz.List) {
		return
	}
	projectID, err := queryUint(c, "project_id")
	if err != nil {
		fieldError(c, "project_id", err)
		return
	}
	p, ok := pageParams(c)
	if !ok {
		return
	}

	res, err := h.svc.List(c.Request.Context(), projectID, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CreateMessage godoc
//
//	@Summary		Post chat message
//	@Description	Stores a message without broadcasting it to connected sockets.
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			project_id	query	integer				false	"Project, when message_project is not in the body"
//	@Param			payload		body	handler.MessageReq	true	"Message"
//	@Security		BearerAuth
//	@Success		201	{object}	model.Message
//	@Router			/chat-messages/ [post]
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	if !authorize(c, h.matrix, authz.ResMessage, authz.Create) {
		return
	}
	var req MessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.BindErr(err))
		return
	}
	projectID := req.MessageProject
	if projectID == nil {
		var err error
		if projectID, err = queryUint(c, "project_id"); err != nil {
			fieldError(c, "project_id", err)
			return
		}
	}
	if projectID == nil {
		fieldError(c, "message_project", service.ErrRequired)
		return
	}

	m, err := h.svc.Create(c.Request.Context(), *projectID, req.Sender, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// ArchiveMessages godoc
//
//	@Summary		Archive chat history
//	@Description	Exports a project's chat history to object storage and returns a temporary download link.
//	@Tags			chat
//	@Produce		json
//	@Param			project_id	query	integer	true	"Project ID"
//	@Security		BearerAuth
//	@Success		201	{object}	service.ArchiveOutput
//	@Failure		503	{object}	serializer.Response
//	@Router			/chat-messages/archive/ [post]
func (h *MessageHandler) ArchiveMessages(c *gin.Context) {
	if !authorize(c, h.matrix, authz.ResMessageArchive, authz.Create) {
		return
	}
	projectID, err := queryUint(c, "project_id")
	if err != nil {
		fieldError(c, "project_id", err)
		return
	}
	if projectID == nil {
		fieldError(c, "project_id", service.ErrRequired)
		return
	}

	out, err := h.svc.Archive(c.Request.Context(), *projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}
