package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/taskroom/taskroom/internal/authz"
	"github.com/taskroom/taskroom/internal/middleware"
	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/modules/repo"
	"github.com/taskroom/taskroom/internal/modules/serializer"
	"github.com/taskroom/taskroom/internal/modules/service"
	"github.com/taskroom/taskroom/internal/pkg/paging"
)

var (
	adminP  = &authz.Principal{UserID: 1, Role: model.RoleAdmin}
	memberP = &authz.Principal{UserID: 2, Role: model.RoleMember}
)

func setupRouter(p *authz.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	serializer.UseJSONFieldNames()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if p != nil {
			middleware.SetPrincipal(c, p)
		}
		c.Next()
	})
	return r
}

func ptr[T any](v T) *T { return &v }

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignIn(ctx context.Context, identifier, password string) (*service.SignInOutput, error) {
	args := m.Called(ctx, identifier, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SignInOutput), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Authenticate(accessToken string) (*authz.Principal, error) {
	args := m.Called(accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authz.Principal), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, in service.UserInput) (*model.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, f repo.UserFilter, p paging.Params) (paging.Result[model.User], error) {
	args := m.Called(ctx, f, p)
	return args.Get(0).(paging.Result[model.User]), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uint, in service.UserInput) (*model.User, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) Create(ctx context.Context, in service.ProjectInput) (*model.Project, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, id uint) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) List(ctx context.Context, p paging.Params) (paging.Result[model.Project], error) {
	args := m.Called(ctx, p)
	return args.Get(0).(paging.Result[model.Project]), args.Error(1)
}

func (m *MockProjectService) Update(ctx context.Context, id uint, in service.ProjectInput) (*model.Project, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) Create(ctx context.Context, callerID uint, in service.TaskInput) (*model.Task, error) {
	args := m.Called(ctx, callerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) Get(ctx context.Context, id uint) (*model.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) List(ctx context.Context, f repo.TaskFilter, p paging.Params) (paging.Result[model.Task], error) {
	args := m.Called(ctx, f, p)
	return args.Get(0).(paging.Result[model.Task]), args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, id uint, in service.TaskInput) (*model.Task, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Create(ctx context.Context, in service.NotificationInput) (*model.Notification, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *MockNotificationService) Get(ctx context.Context, id uint) (*model.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *MockNotificationService) List(ctx context.Context, f repo.NotificationFilter, p paging.Params) (paging.Result[model.Notification], error) {
	args := m.Called(ctx, f, p)
	return args.Get(0).(paging.Result[model.Notification]), args.Error(1)
}

func (m *MockNotificationService) Update(ctx context.Context, id uint, in service.NotificationInput) (*model.Notification, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *MockNotificationService) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockNotificationService) NotifyAssigned(ctx context.Context, projectID uint, receiverIDs []uint) error {
	return m.Called(ctx, projectID, receiverIDs).Error(0)
}

type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) Create(ctx context.Context, projectID uint, sender, content string) (*model.Message, error) {
	args := m.Called(ctx, projectID, sender, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

func (m *MockMessageService) List(ctx context.Context, projectID *uint, p paging.Params) (paging.Result[model.Message], error) {
	args := m.Called(ctx, projectID, p)
	return args.Get(0).(paging.Result[model.Message]), args.Error(1)
}

func (m *MockMessageService) Archive(ctx context.Context, projectID uint) (*service.ArchiveOutput, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ArchiveOutput), args.Error(1)
}
