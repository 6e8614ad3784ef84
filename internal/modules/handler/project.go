package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskroom/taskroom/internal/authz"
	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/modules/serializer"
	"github.com/taskroom/taskroom/internal/modules/service"
	"github.com/taskroom/taskroom/internal/pkg/paging"
)

type ProjectHandler struct {
	svc    service.ProjectService
	matrix *authz.Matrix
}

func NewProjectHandler(s service.ProjectService, m *authz.Matrix) *ProjectHandler {
	return &ProjectHandler{svc: s, matrix: m}
}

type ProjectReq struct {
	Label       *string `json:"label" binding:"omitempty,max=100" example:"Website redesign"`
	Description *string `json:"description"`
}

// ProjectResp renders creation_date as a calendar date.
type ProjectResp struct {
	ID           uint   `json:"id"`
	Label        string `json:"label"`
	CreationDate string `json:"creation_date" example:"2024-05-01"`
	Description  string `json:"description"`
}

func newProjectResp(p model.Project) ProjectResp {
	return ProjectResp{
		ID:           p.ID,
		Label:        p.Label,
		CreationDate: formatDate(p.CreationDate),
		Description:  p.Description,
	}
}

// ListProjects godoc
//
//	@Summary	List projects
//	@Tags		project
//	@Produce	json
//	@Param		page		query	integer	false	"Page number, default 1"
//	@Param		page_size	query	integer	false	"Page size, default 20, max 200"
//	@Security	BearerAuth
//	@Success	200	{object}	paging.Result[handler.ProjectResp]
//	@Router		/project/ [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	if !authorize(c, h.matrix, authz.ResProject, authz.List) {
		return
	}
	p, ok := pageParams(c)
	if !ok {
		return
	}

	res, err := h.svc.List(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paging.Map(res, newProjectResp))
}

// GetProject godoc
//
//	@Summary	Get project
//	@Tags		project
//	@Produce	json
//	@Param		id	path	integer	true	"Project ID"
//	@Security	BearerAuth
//	@Success	200	{object}	handler.ProjectResp
//	@Router		/project/{id}/ [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	p, ok := loadFor(c, h.matrix, authz.ResProject, authz.Retrieve, h.svc.Get, anyTarget[model.Project])
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newProjectResp(*p))
}

// CreateProject godoc
//
//	@Summary	Create project
//	@Tags		project
//	@Accept		json
//	@Produce	json
//	@Param		payload	body	handler.ProjectReq	true	"Project fields"
//	@Security	BearerAuth
//	@Success	201	{object}	handler.ProjectResp
//	@Router		/project/ [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	if !authorize(c, h.matrix, authz.ResProject, authz.Create) {
		return
	}
	var req ProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.BindErr(err))
		return
	}

	p, err := h.svc.Create(c.Request.Context(), service.ProjectInput{Label: req.Label, Description: req.Description})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newProjectResp(*p))
}

// UpdateProject godoc
//
//	@Summary		Update project
//	@Description	creation_date is immutable and ignored if sent.
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			id		path	integer				true	"Project ID"
//	@Param			payload	body	handler.ProjectReq	true	"Fields to change"
//	@Security		BearerAuth
//	@Success		200	{object}	handler.ProjectResp
//	@Router			/project/{id}/ [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	p, ok := loadFor(c, h.matrix, authz.ResProject, authz.Update, h.svc.Get, anyTarget[model.Project])
	if !ok {
		return
	}
	var req ProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.BindErr(err))
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), p.ID, service.ProjectInput{Label: req.Label, Description: req.Description})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProjectResp(*updated))
}

// DeleteProject godoc
//
//	@Summary		Delete project
//	@Description	Deletes the project with its tasks, notifications and chat messages.
//	@Tags			project
//	@Param			id	path	integer	true	"Project ID"
//	@Security		BearerAuth
//	@Success		204
//	@Router			/project/{id}/ [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	p, ok := loadFor(c, h.matrix, authz.ResProject, authz.Delete, h.svc.Get, anyTarget[model.Project])
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), p.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
