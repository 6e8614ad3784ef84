package repo

import (
	"context"

	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/pkg/paging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// taskAssignee is a row of the task <-> user join table.
type taskAssignee struct {
	TaskID uint `gorm:"primaryKey"`
	UserID uint `gorm:"primaryKey"`
}

func (taskAssignee) TableName() string { return "task_assignees" }

type TaskFilter struct {
	ProjectID *uint
}

type TaskRepo interface {
	// Create inserts the task and its assignee links.
	Create(ctx context.Context, t *model.Task, assigneeIDs []uint) error
	Get(ctx context.Context, id uint) (*model.Task, error)
	List(ctx context.Context, f TaskFilter, p paging.Params) ([]model.Task, int64, error)
	// Update saves the task columns; a non-nil assigneeIDs replaces the assignee set.
	Update(ctx context.Context, t *model.Task, assigneeIDs []uint) error
	Delete(ctx context.Context, id uint) error
}

type taskRepo struct{ db *gorm.DB }

func NewTaskRepo(db *gorm.DB) TaskRepo {
	return &taskRepo{db: db}
}

func (r *taskRepo) Create(ctx context.Context, t *model.Task, assigneeIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return err
		}
		return setAssignees(tx, t.ID, assigneeIDs)
	})
}

func (r *taskRepo) Get(ctx context.Context, id uint) (*model.Task, error) {
	var t model.Task
	err := r.db.WithContext(ctx).
		Preload("TaskAssignees", func(db *gorm.DB) *gorm.DB { return db.Order("users.id ASC") }).
		First(&t, id).Error
	return &t, err
}

func (r *taskRepo) List(ctx context.Context, f TaskFilter, p paging.Params) ([]model.Task, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{})
	if f.ProjectID != nil {
		q = q.Where("task_project_id = ?", *f.ProjectID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Task
	err := q.Preload("TaskAssignees", func(db *gorm.DB) *gorm.DB { return db.Order("users.id ASC") }).
		Order("id ASC").
		Offset(p.Offset()).
		Limit(p.Limit()).
		Find(&items).Error
	return items, total, err
}

func (r *taskRepo) Update(ctx context.Context, t *model.Task, assigneeIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Task{ID: t.ID}).
			Select("TaskProjectID", "TaskAuthorID", "Label", "Description", "StartDate", "EndDate", "TaskPriority", "TaskStatus").
			Updates(t)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if assigneeIDs == nil {
			return nil
		}
		if err := tx.Where("task_id = ?", t.ID).Delete(&taskAssignee{}).Error; err != nil {
			return err
		}
		return setAssignees(tx, t.ID, assigneeIDs)
	})
}

func (r *taskRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&taskAssignee{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Task{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func setAssignees(tx *gorm.DB, taskID uint, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]taskAssignee, 0, len(userIDs))
	seen := make(map[uint]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, taskAssignee{TaskID: taskID, UserID: id})
	}
	return tx.Create(&rows).Error
}
