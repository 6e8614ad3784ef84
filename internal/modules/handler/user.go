package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskroom/taskroom/internal/authz"
	"github.com/taskroom/taskroom/internal/middleware"
	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/modules/repo"
	"github.com/taskroom/taskroom/internal/modules/serializer"
	"github.com/taskroom/taskroom/internal/modules/service"
)

type UserHandler struct {
	svc    service.UserService
	matrix *authz.Matrix
}

func NewUserHandler(s service.UserService, m *authz.Matrix) *UserHandler {
	return &UserHandler{svc: s, matrix: m}
}

type UserReq struct {
	Username  *string     `json:"username" binding:"omitempty,max=15" example:"alice"`
	Email     *string     `json:"email" example:"alice@example.com"`
	Password  *string     `json:"password"`
	FirstName *string     `json:"first_name"`
	LastName  *string     `json:"last_name"`
	UserType  *model.Role `json:"user_type" binding:"omitempty,oneof=ADM MBR" example:"MBR"`
}

func (r UserReq) input() service.UserInput {
	return service.UserInput{
		Username:  r.Username,
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		UserType:  r.UserType,
	}
}

func userTarget(u *model.User) *authz.Target { return &authz.Target{UserID: u.ID} }

// ListUsers godoc
//
//	@Summary		List users
//	@Description	Paginated users. With project_id only users assigned to a task of that project are returned.
//	@Tags			user
//	@Produce		json
//	@Param			project_id	query	integer	false	"Project filter"
//	@Param			page		query	integer	false	"Page number, default 1"
//	@Param			page_size	query	integer	false	"Page size, default 20, max 200"
//	@Security		BearerAuth
//	@Success		200	{object}	paging.Result[model.User]
//	@Router			/custom_user/ [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	if !authorize(c, h.matrix, authz.ResUser, authz.List) {
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

	res, err := h.svc.List(c.Request.Context(), repo.UserFilter{ProjectID: projectID}, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetUser godoc
//
//	@Summary	Get user
//	@Tags		user
//	@Produce	json
//	@Param		id	path	integer	true	"User ID"
//	@Security	BearerAuth
//	@Success	200	{object}	model.User
//	@Router		/custom_user/{id}/ [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	u, ok := loadFor(c, h.matrix, authz.ResUser, authz.Retrieve, h.svc.Get, userTarget)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, u)
}

// CreateUser godoc
//
//	@Summary	Create user
//	@Tags		user
//	@Accept		json
//	@Produce	json
//	@Param		payload	body	handler.UserReq	true	"User fields"
//	@Security	BearerAuth
//	@Success	201	{object}	model.User
//	@Router		/custom_user/ [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	if !authorize(c, h.matrix, authz.ResUser, authz.Create) {
		return
	}
	var req UserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.BindErr(err))
		return
	}

	u, err := h.svc.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// UpdateUser godoc
//
//	@Summary		Update user
//	@Description	Users may edit their own profile; admins may edit anyone. Only admins may change user_type.
//	@Tags			user
//	@Accept			json
//	@Produce		json
//	@Param			id		path	integer			true	"User ID"
//	@Param			payload	body	handler.UserReq	true	"Fields to change"
//	@Security		BearerAuth
//	@Success		200	{object}	model.User
//	@Router			/custom_user/{id}/ [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	u, ok := loadFor(c, h.matrix, authz.ResUser, authz.Update, h.svc.Get, userTarget)
	if !ok {
		return
	}
	var req UserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.BindErr(err))
		return
	}
	if req.UserType != nil && *req.UserType != u.UserType && !middleware.Principal(c).IsAdmin() {
		respondError(c, authz.ErrForbidden)
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), u.ID, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteUser godoc
//
//	@Summary	Delete user
//	@Tags		user
//	@Param		id	path	integer	true	"User ID"
//	@Security	BearerAuth
//	@Success	204
//	@Router		/custom_user/{id}/ [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	u, ok := loadFor(c, h.matrix, authz.ResUser, authz.Delete, h.svc.Get, userTarget)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), u.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
