package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskroom/taskroom/internal/authz"
	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/modules/repo"
	"github.com/taskroom/taskroom/internal/modules/serializer"
	"github.com/taskroom/taskroom/internal/modules/service"
)

type NotificationHandler struct {
	svc    service.NotificationService
	matrix *authz.Matrix
}

func NewNotificationHandler(s service.NotificationService, m *authz.Matrix) *NotificationHandler {
	return &NotificationHandler{svc: s, matrix: m}
}

type NotificationReq struct {
	NotificationProject  *uint                   `json:"notification_project" example:"1"`
	NotificationReceiver *uint                   `json:"notification_receiver" example:"2"`
	Read                 *bool                   `json:"read" example:"false"`
	NotificationType     *model.NotificationType `json:"notification_type" binding:"omitempty,oneof=ASG CHT DLN" example:"ASG"`
}

func (r NotificationReq) input() service.NotificationInput {
	return service.NotificationInput{
		ProjectID:  r.NotificationProject,
		ReceiverID: r.NotificationReceiver,
		Read:       r.Read,
		Type:       r.NotificationType,
	}
}

// ListNotifications godoc
//
//	@Summary	List notifications
//	@Tags		notification
//	@Produce	json
//	@Param		project_id	query	integer	false	"Project filter"
//	@Param		receiver_id	query	integer	false	"Receiver filter"
//	@Param		read		query	boolean	false	"Read state filter"
//	@Param		page		query	integer	false	"Page number, default 1"
//	@Param		page_size	query	integer	false	"Page size, default 20, max 200"
//	@Security	BearerAuth
//	@Success	200	{object}	paging.Result[model.Notification]
//	@Router		/notification/ [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	if !authorize(c, h.matrix, authz.ResNotification, authz.List) {
		return
	}

	var (
		f   repo.NotificationFilter
		err error
	)
	if f.ProjectID, err = queryUint(c, "project_id"); err != nil {
		fieldError(c, "project_id", err)
		return
	}
	if f.ReceiverID, err = queryUint(c, "receiver_id"); err != nil {
		fieldError(c, "receiver_id", err)
		return
	}
	if f.Read, err = queryBool(c, "read"); err != nil {
		fieldError(c, "read", err)
		return
	}
	p, ok := pageParams(c)
	if !ok {
		return
	}

	res, err := h.svc.List(c.Request.Context(), f, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetNotification godoc
//
//	@Summary	Get notification
//	@Tags		notification
//	@Produce	json
//	@Param		id	path	integer	true	"Notification ID"
//	@Security	BearerAuth
//	@Success	200	{object}	model.Notification
//	@Router		/notification/{id}/ [get]
func (h *NotificationHandler) GetNotification(c *gin.Context) {
	n, ok := loadFor(c, h.matrix, authz.ResNotification, authz.Retrieve, h.svc.Get, anyTarget[model.Notification])
	if !ok {
		return
	}
	c.JSON(http.StatusOK, n)
}

// CreateNotification godoc
//
//	@Summary	Create notification
//	@Tags		notification
//	@Accept		json
//	@Produce	json
//	@Param		payload	body	handler.NotificationReq	true	"Notification fields"
//	@Security	BearerAuth
//	@Success	201	{object}	model.Notification
//	@Router		/notification/ [post]
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	if !authorize(c, h.matrix, authz.ResNotification, authz.Create) {
		return
	}
	var req NotificationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.BindErr(err))
		return
	}

	n, err := h.svc.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

// UpdateNotification godoc
//
//	@Summary	Update notification
//	@Tags		notification
//	@Accept		json
//	@Produce	json
//	@Param		id		path	integer					true	"Notification ID"
//	@Param		payload	body	handler.NotificationReq	true	"Fields to change"
//	@Security	BearerAuth
//	@Success	200	{object}	model.Notification
//	@Router		/notification/{id}/ [put]
func (h *NotificationHandler) UpdateNotification(c *gin.Context) {
	n, ok := loadFor(c, h.matrix, authz.ResNotification, authz.Update, h.svc.Get, anyTarget[model.Notification])
	if !ok {
		return
	}
	var req NotificationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.BindErr(err))
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), n.ID, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteNotification godoc
//
//	@Summary	Delete notification
//	@Tags		notification
//	@Param		id	path	integer	true	"Notification ID"
//	@Security	BearerAuth
//	@Success	204
//	@Router		/notification/{id}/ [delete]
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	n, ok := loadFor(c, h.matrix, authz.ResNotification, authz.Delete, h.svc.Get, anyTarget[model.Notification])
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), n.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
