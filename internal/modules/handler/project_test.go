package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"

	"github.com/taskroom/taskroom/internal/authz"
	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/modules/service"
	"github.com/taskroom/taskroom/internal/pkg/paging"
)

func projectRouter(p *authz.Principal, svc *MockProjectService) http.Handler {
	h := NewProjectHandler(svc, authz.NewMatrix(false))
	r := setupRouter(p)
	r.GET("/project/", h.ListProjects)
	r.POST("/project/", h.CreateProject)
	r.GET("/project/:id/", h.GetProject)
	r.PUT("/project/:id/", h.UpdateProject)
	r.DELETE("/project/:id/", h.DeleteProject)
	return r
}

func sampleProject() *model.Project {
	return &model.Project{
		ID:           3,
		Label:        "Website",
		Description:  "relaunch",
		CreationDate: datatypes.Date(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func TestProjectHandler_MemberAccess(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		setup  func(*MockProjectService)
		status int
	}{
		{
			name:   "list allowed",
			method: http.MethodGet,
			path:   "/project/",
			setup: func(svc *MockProjectService) {
				svc.On("List", mock.Anything, paging.Params{Page: 1, PageSize: 20}).
					Return(paging.NewResult([]model.Project{*sampleProject()}, 1, paging.Params{Page: 1, PageSize: 20}), nil)
			},
			status: http.StatusOK,
		},
		{
			name:   "retrieve allowed",
			method: http.MethodGet,
			path:   "/project/3/",
			setup: func(svc *MockProjectService) {
				svc.On("Get", mock.Anything, uint(3)).Return(sampleProject(), nil)
			},
			status: http.StatusOK,
		},
		{
			name:   "create forbidden",
			method: http.MethodPost,
			path:   "/project/",
			body:   ProjectReq{Label: ptr("x")},
			setup:  func(*MockProjectService) {},
			status: http.StatusForbidden,
		},
		{
			name:   "update forbidden",
			method: http.MethodPut,
			path:   "/project/3/",
			body:   ProjectReq{Label: ptr("x")},
			setup:  func(*MockProjectService) {},
			status: http.StatusForbidden,
		},
		{
			name:   "delete forbidden",
			method: http.MethodDelete,
			path:   "/project/3/",
			setup:  func(*MockProjectService) {},
			status: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockProjectService{}
			tt.setup(svc)

			w := doJSON(projectRouter(memberP, svc), tt.method, tt.path, tt.body)

			assert.Equal(t, tt.status, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestProjectHandler_Get(t *testing.T) {
	svc := &MockProjectService{}
	svc.On("Get", mock.Anything, uint(3)).Return(sampleProject(), nil)

	w := doJSON(projectRouter(memberP, svc), http.MethodGet, "/project/3/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ProjectResp{ID: 3, Label: "Website", CreationDate: "2024-05-01", Description: "relaunch"}, decode[ProjectResp](t, w))
}

func TestProjectHandler_GetMissing(t *testing.T) {
	svc := &MockProjectService{}
	svc.On("Get", mock.Anything, uint(99)).Return(nil, service.ErrNotFound)

	w := doJSON(projectRouter(memberP, svc), http.MethodGet, "/project/99/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(projectRouter(memberP, svc), http.MethodGet, "/project/abc/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectHandler_AdminCreate(t *testing.T) {
	svc := &MockProjectService{}
	svc.On("Create", mock.Anything, service.ProjectInput{Label: ptr("Website"), Description: ptr("relaunch")}).
		Return(sampleProject(), nil)

	w := doJSON(projectRouter(adminP, svc), http.MethodPost, "/project/", ProjectReq{Label: ptr("Website"), Description: ptr("relaunch")})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "2024-05-01", decode[ProjectResp](t, w).CreationDate)
	svc.AssertExpectations(t)
}

func TestProjectHandler_AdminCreateValidation(t *testing.T) {
	svc := &MockProjectService{}
	svc.On("Create", mock.Anything, mock.Anything).Return(nil, &service.FieldError{Field: "label", Err: service.ErrRequired})

	w := doJSON(projectRouter(adminP, svc), http.MethodPost, "/project/", ProjectReq{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectHandler_AdminDelete(t *testing.T) {
	svc := &MockProjectService{}
	svc.On("Get", mock.Anything, uint(3)).Return(sampleProject(), nil)
	svc.On("Delete", mock.Anything, uint(3)).Return(nil)

	w := doJSON(projectRouter(adminP, svc), http.MethodDelete, "/project/3/", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}

func TestProjectHandler_AdminDeleteMissing(t *testing.T) {
	svc := &MockProjectService{}
	svc.On("Get", mock.Anything, uint(8)).Return(nil, service.ErrNotFound)

	w := doJSON(projectRouter(adminP, svc), http.MethodDelete, "/project/8/", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
