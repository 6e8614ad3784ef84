package service

import (
	"context"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/modules/repo"
	"github.com/taskroom/taskroom/internal/pkg/paging"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type TaskInput struct {
	ProjectID *uint
	AuthorID  *uint
	// nil keeps the current assignees; an empty slice clears them
	AssigneeIDs  []uint
	Label        *string
	Description  *string
	StartDate    *datatypes.Date
	EndDate      *datatypes.Date
	TaskPriority *model.Priority
	TaskStatus   *model.Status
}

type TaskService interface {
	// Create stores a task. When in.AuthorID is nil the caller becomes the author.
	Create(ctx context.Context, callerID uint, in TaskInput) (*model.Task, error)
	Get(ctx context.Context, id uint) (*model.Task, error)
	List(ctx context.Context, f repo.TaskFilter, p paging.Params) (paging.Result[model.Task], error)
	Update(ctx context.Context, id uint, in TaskInput) (*model.Task, error)
	Delete(ctx context.Context, id uint) error
}

type taskService struct {
	r             repo.TaskRepo
	projects      repo.ProjectRepo
	users         repo.UserRepo
	notifications NotificationService
	log           *zap.Logger
}

func NewTaskService(
	r repo.TaskRepo,
	projects repo.ProjectRepo,
	users repo.UserRepo,
	notifications NotificationService,
	log *zap.Logger,
) TaskService {
	return &taskService{r: r, projects: projects, users: users, notifications: notifications, log: log}
}

func (s *taskService) Create(ctx context.Context, callerID uint, in TaskInput) (*model.Task, error) {
	switch {
	case in.ProjectID == nil:
		return nil, fieldErr("task_project", ErrRequired)
	case in.Label == nil:
		return nil, fieldErr("label", ErrRequired)
	case in.StartDate == nil:
		return nil, fieldErr("start_date", ErrRequired)
	case in.EndDate == nil:
		return nil, fieldErr("end_date", ErrRequired)
	}
	if in.AuthorID == nil {
		in.AuthorID = &callerID
	}

	t := &model.Task{
		TaskPriority: model.PriorityLow,
		TaskStatus:   model.StatusScheduled,
	}
	if err := s.apply(ctx, t, in); err != nil {
		return nil, err
	}

	assignees := in.AssigneeIDs
	if assignees == nil {
		assignees = []uint{}
	}
	if err := s.r.Create(ctx, t, assignees); err != nil {
		return nil, err
	}

	created, err := s.r.Get(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	s.notifyNew(ctx, created, nil)
	return created, nil
}

func (s *taskService) Get(ctx context.Context, id uint) (*model.Task, error) {
	t, err := s.r.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (s *taskService) List(ctx context.Context, f repo.TaskFilter, p paging.Params) (paging.Result[model.Task], error) {
	p = p.Normalize()
	items, total, err := s.r.List(ctx, f, p)
	if err != nil {
		return paging.Result[model.Task]{}, err
	}
	return paging.NewResult(items, total, p), nil
}

func (s *taskService) Update(ctx context.Context, id uint, in TaskInput) (*model.Task, error) {
	t, err := s.r.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	before := t.AssigneeIDs()

	if err := s.apply(ctx, t, in); err != nil {
		return nil, err
	}
	if err := s.r.Update(ctx, t, in.AssigneeIDs); err != nil {
		return nil, notFound(err)
	}

	updated, err := s.r.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	s.notifyNew(ctx, updated, before)
	return updated, nil
}

func (s *taskService) Delete(ctx context.Context, id uint) error {
	return notFound(s.r.Delete(ctx, id))
}

// notifyNew sends assignment notifications to assignees absent from before.
// A failure here does not undo the task write.
func (s *taskService) notifyNew(ctx context.Context, t *model.Task, before []uint) {
	var added []uint
	for _, uid := range t.AssigneeIDs() {
		if !slices.Contains(before, uid) {
			added = append(added, uid)
		}
	}
	if err := s.notifications.NotifyAssigned(ctx, t.TaskProjectID, added); err != nil {
		s.log.Sugar().Errorw("assignment notifications failed", "task_id", t.ID, "err", err)
	}
}

func (s *taskService) apply(ctx context.Context, t *model.Task, in TaskInput) error {
	if in.ProjectID != nil {
		ok, err := s.projects.Exists(ctx, *in.ProjectID)
		if err != nil {
			return err
		}
		if !ok {
			return fieldErr("task_project", ErrUnknownReference)
		}
		t.TaskProjectID = *in.ProjectID
	}

	if in.AuthorID != nil {
		author, err := s.users.Get(ctx, *in.AuthorID)
		if err != nil {
			if notFound(err) == ErrNotFound {
				return fieldErr("task_author", ErrUnknownReference)
			}
			return err
		}
		if !author.IsAdmin() {
			return fieldErr("task_author", ErrAuthorNotAdmin)
		}
		t.TaskAuthorID = author.ID
	}

	if in.AssigneeIDs != nil {
		users, err := s.users.FindByIDs(ctx, in.AssigneeIDs)
		if err != nil {
			return err
		}
		for _, id := range in.AssigneeIDs {
			if !slices.ContainsFunc(users, func(u model.User) bool { return u.ID == id }) {
				return fieldErr("task_assignees", ErrUnknownReference)
			}
		}
	}

	if in.Label != nil {
		label := strings.TrimSpace(*in.Label)
		if label == "" {
			return fieldErr("label", ErrRequired)
		}
		if utf8.RuneCountInString(label) > labelMaxLen {
			return fieldErr("label", ErrTooLong)
		}
		t.Label = label
	}
	if in.Description != nil {
		d := *in.Description
		t.Description = &d
	}
	if in.StartDate != nil {
		t.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		t.EndDate = *in.EndDate
	}
	if time.Time(t.StartDate).IsZero() || time.Time(t.EndDate).IsZero() {
		return fieldErr("start_date", ErrRequired)
	}
	if !t.DatesOrdered() {
		return fieldErr("end_date", ErrInvalidDateRange)
	}

	if in.TaskPriority != nil {
		if !in.TaskPriority.Valid() {
			return fieldErr("task_priority", ErrInvalidValue)
		}
		t.TaskPriority = *in.TaskPriority
	}
	if in.TaskStatus != nil {
		if !in.TaskStatus.Valid() {
			return fieldErr("task_status", ErrInvalidValue)
		}
		t.TaskStatus = *in.TaskStatus
	}
	return nil
}
