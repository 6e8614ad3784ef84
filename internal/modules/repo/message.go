package repo

import (
	"context"

	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/pkg/paging"
	"gorm.io/gorm"
)

type MessageRepo interface {
	Create(ctx context.Context, m *model.Message) error
	// List returns the newest messages first; a nil projectID lists every room.
	List(ctx context.Context, projectID *uint, p paging.Params) ([]model.Message, int64, error)
	// ListAll returns a room's full history, oldest first.
	ListAll(ctx context.Context, projectID uint) ([]model.Message, error)
}

type messageRepo struct{ db *gorm.DB }

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, m *model.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *messageRepo) List(ctx context.Context, projectID *uint, p paging.Params) ([]model.Message, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Message{})
	if projectID != nil {
		q = q.Where("message_project_id = ?", *projectID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Message
	err := q.Order("moment DESC, id DESC").Offset(p.Offset()).Limit(p.Limit()).Find(&items).Error
	return items, total, err
}

func (r *messageRepo) ListAll(ctx context.Context, projectID uint) ([]model.Message, error) {
	var items []model.Message
	return items, r.db.WithContext(ctx).
		Where("message_project_id = ?", projectID).
		Order("moment ASC, id ASC").
		Find(&items).Error
}
