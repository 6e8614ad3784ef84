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
	"github.com/taskroom/taskroom/internal/pkg/paging"
)

type TaskHandler struct {
	svc    service.TaskService
	matrix *authz.Matrix
}

func NewTaskHandler(s service.TaskService, m *authz.Matrix) *TaskHandler {
	return &TaskHandler{svc: s, matrix: m}
}

type TaskReq struct {
	TaskProject *uint `json:"task_project" example:"1"`
	// defaults to the caller on create
	TaskAuthor    *uint           `json:"task_author" example:"1"`
	TaskAssignees []uint          `json:"task_assignees"`
	Label         *string         `json:"label" binding:"omitempty,max=100" example:"Write copy"`
	Description   *string         `json:"description"`
	StartDate     *string         `json:"start_date" binding:"omitempty,datetime=2006-01-02" example:"2024-05-01"`
	EndDate       *string         `json:"end_date" binding:"omitempty,datetime=2006-01-02" example:"2024-05-10"`
	TaskPriority  *model.Priority `json:"task_priority" binding:"omitempty,oneof=LOW MDM HGH" example:"LOW"`
	TaskStatus    *model.Status   `json:"task_status" binding:"omitempty,oneof=SCD PRG DNE" example:"SCD"`
}

func (r TaskReq) input() (service.TaskInput, error) {
	in := service.TaskInput{
		ProjectID:    r.TaskProject,
		AuthorID:     r.TaskAuthor,
		AssigneeIDs:  r.TaskAssignees,
		Label:        r.Label,
		Description:  r.Description,
		TaskPriority: r.TaskPriority,
		TaskStatus:   r.TaskStatus,
	}
	var err error
	if in.StartDate, err = parseDate(r.StartDate); err != nil {
		return in, &service.FieldError{Field: "start_date", Err: err}
	}
	if in.EndDate, err = parseDate(r.EndDate); err != nil {
		return in, &service.FieldError{Field: "end_date", Err: err}
	}
	return in, nil
}

type TaskResp struct {
	ID            uint           `json:"id"`
	TaskProject   uint           `json:"task_project"`
	TaskAuthor    uint           `json:"task_author"`
	TaskAssignees []uint         `json:"task_assignees"`
	Label         string         `json:"label"`
	Description   *string        `json:"description"`
	StartDate     string         `json:"start_date" example:"2024-05-01"`
	EndDate       string         `json:"end_date" example:"2024-05-10"`
	TaskPriority  model.Priority `json:"task_priority"`
	TaskStatus    model.Status   `json:"task_status"`
}

func newTaskResp(t model.Task) TaskResp {
	return TaskResp{
		ID:            t.ID,
		TaskProject:   t.TaskProjectID,
		TaskAuthor:    t.TaskAuthorID,
		TaskAssignees: t.AssigneeIDs(),
		Label:         t.Label,
		Description:   t.Description,
		StartDate:     formatDate(t.StartDate),
		EndDate:       formatDate(t.EndDate),
		TaskPriority:  t.TaskPriority,
		TaskStatus:    t.TaskStatus,
	}
}

func taskTarget(t *model.Task) *authz.Target {
	return &authz.Target{AssigneeIDs: t.AssigneeIDs()}
}

// ListTasks godoc
//
//	@Summary	List tasks
//	@Tags		task
//	@Produce	json
//	@Param		project_id	query	integer	false	"Project filter"
//	@Param		page		query	integer	false	"Page number, default 1"
//	@Param		page_size	query	integer	false	"Page size, default 20, max 200"
//	@Security	BearerAuth
//	@Success	200	{object}	paging.Result[handler.TaskResp]
//	@Router		/task/ [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	if !authorize(c, h.matrix, authz.ResTask, authz.List) {
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

	res, err := h.svc.List(c.Request.Context(), repo.TaskFilter{ProjectID: projectID}, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paging.Map(res, newTaskResp))
}

// GetTask godoc
//
//	@Summary		Get task
//	@Description	Visible to admins and to the task's assignees.
//	@Tags			task
//	@Produce		json
//	@Param			id	path	integer	true	"Task ID"
//	@Security		BearerAuth
//	@Success		200	{object}	handler.TaskResp
//	@Router			/task/{id}/ [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	t, ok := loadFor(c, h.matrix, authz.ResTask, authz.Retrieve, h.svc.Get, taskTarget)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newTaskResp(*t))
}

// CreateTask godoc
//
//	@Summary	Create task
//	@Tags		task
//	@Accept		json
//	@Produce	json
//	@Param		payload	body	handler.TaskReq	true	"Task fields"
//	@Security	BearerAuth
//	@Success	201	{object}	handler.TaskResp
//	@Router		/task/ [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	if !authorize(c, h.matrix, authz.ResTask, authz.Create) {
		return
	}
	var req TaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.BindErr(err))
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, err)
		return
	}

	t, err := h.svc.Create(c.Request.Context(), middleware.Principal(c).UserID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTaskResp(*t))
}

// UpdateTask godoc
//
//	@Summary		Update task
//	@Description	Allowed for admins and for the task's assignees. Omitting task_assignees keeps the current set.
//	@Tags			task
//	@Accept			json
//	@Produce		json
//	@Param			id		path	integer			true	"Task ID"
//	@Param			payload	body	handler.TaskReq	true	"Fields to change"
//	@Security		BearerAuth
//	@Success		200	{object}	handler.TaskResp
//	@Router			/task/{id}/ [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	t, ok := loadFor(c, h.matrix, authz.ResTask, authz.Update, h.svc.Get, taskTarget)
	if !ok {
		return
	}
	var req TaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.BindErr(err))
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), t.ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResp(*updated))
}

// DeleteTask godoc
//
//	@Summary	Delete task
//	@Tags		task
//	@Param		id	path	integer	true	"Task ID"
//	@Security	BearerAuth
//	@Success	204
//	@Router		/task/{id}/ [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	t, ok := loadFor(c, h.matrix, authz.ResTask, authz.Delete, h.svc.Get, taskTarget)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), t.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
