package repo

import (
	"context"

	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/pkg/paging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *model.Project) error
	Get(ctx context.Context, id uint) (*model.Project, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, p paging.Params) ([]model.Project, int64, error)
	Update(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, id uint) error
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *projectRepo) Get(ctx context.Context, id uint) (*model.Project, error) {
	var p model.Project
	return &p, r.db.WithContext(ctx).First(&p, id).Error
}

func (r *projectRepo) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Project{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *projectRepo) List(ctx context.Context, p paging.Params) ([]model.Project, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Project{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Project
	err := q.Order("id ASC").Offset(p.Offset()).Limit(p.Limit()).Find(&items).Error
	return items, total, err
}

// Update writes the mutable columns only; creation_date never changes.
func (r *projectRepo) Update(ctx context.Context, p *model.Project) error {
	res := r.db.WithContext(ctx).Model(&model.Project{ID: p.ID}).
		Select("Label", "Description").
		Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the project and everything it owns in one transaction.
func (r *projectRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&model.Task{}).Select("id").Where("task_project_id = ?", id)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&taskAssignee{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_project_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("notification_project_id = ?", id).Delete(&model.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("message_project_id = ?", id).Delete(&model.Message{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&model.Project{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
