package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/modules/repo"
	"github.com/taskroom/taskroom/internal/pkg/paging"
	"go.uber.org/zap"
)

const labelMaxLen = 100

type ProjectInput struct {
	Label       *string
	Description *string
}

type ProjectService interface {
	Create(ctx context.Context, in ProjectInput) (*model.Project, error)
	Get(ctx context.Context, id uint) (*model.Project, error)
	List(ctx context.Context, p paging.Params) (paging.Result[model.Project], error)
	Update(ctx context.Context, id uint, in ProjectInput) (*model.Project, error)
	// Delete removes the project with its tasks, notifications and messages.
	Delete(ctx context.Context, id uint) error
}

type projectService struct {
	r   repo.ProjectRepo
	log *zap.Logger
}

func NewProjectService(r repo.ProjectRepo, log *zap.Logger) ProjectService {
	return &projectService{r: r, log: log}
}

func (s *projectService) Create(ctx context.Context, in ProjectInput) (*model.Project, error) {
	if in.Label == nil {
		return nil, fieldErr("label", ErrRequired)
	}
	p := &model.Project{}
	if err := applyProject(p, in); err != nil {
		return nil, err
	}
	if err := s.r.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) Get(ctx context.Context, id uint) (*model.Project, error) {
	p, err := s.r.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *projectService) List(ctx context.Context, p paging.Params) (paging.Result[model.Project], error) {
	p = p.Normalize()
	items, total, err := s.r.List(ctx, p)
	if err != nil {
		return paging.Result[model.Project]{}, err
	}
	return paging.NewResult(items, total, p), nil
}

func (s *projectService) Update(ctx context.Context, id uint, in ProjectInput) (*model.Project, error) {
	p, err := s.r.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := applyProject(p, in); err != nil {
		return nil, err
	}
	if err := s.r.Update(ctx, p); err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *projectService) Delete(ctx context.Context, id uint) error {
	if err := s.r.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.log.Sugar().Infow("project deleted", "project_id", id)
	return nil
}

func applyProject(p *model.Project, in ProjectInput) error {
	if in.Label != nil {
		label := strings.TrimSpace(*in.Label)
		if label == "" {
			return fieldErr("label", ErrRequired)
		}
		if utf8.RuneCountInString(label) > labelMaxLen {
			return fieldErr("label", ErrTooLong)
		}
		p.Label = label
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	return nil
}
