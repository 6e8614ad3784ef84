package repo

import (
	"context"

	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/pkg/paging"
	"gorm.io/gorm"
)

type NotificationFilter struct {
	ProjectID  *uint
	ReceiverID *uint
	Read       *bool
}

type NotificationRepo interface {
	Create(ctx context.Context, n *model.Notification) error
	CreateBatch(ctx context.Context, ns []model.Notification) error
	Get(ctx context.Context, id uint) (*model.Notification, error)
	List(ctx context.Context, f NotificationFilter, p paging.Params) ([]model.Notification, int64, error)
	Update(ctx context.Context, n *model.Notification) error
	Delete(ctx context.Context, id uint) error
}

type notificationRepo struct{ db *gorm.DB }

func NewNotificationRepo(db *gorm.DB) NotificationRepo {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) CreateBatch(ctx context.Context, ns []model.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&ns).Error
}

func (r *notificationRepo) Get(ctx context.Context, id uint) (*model.Notification, error) {
	var n model.Notification
	return &n, r.db.WithContext(ctx).First(&n, id).Error
}

func (r *notificationRepo) List(ctx context.Context, f NotificationFilter, p paging.Params) ([]model.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Notification{})
	if f.ProjectID != nil {
		q = q.Where("notification_project_id = ?", *f.ProjectID)
	}
	if f.ReceiverID != nil {
		q = q.Where("notification_receiver_id = ?", *f.ReceiverID)
	}
	if f.Read != nil {
		q = q.Where("read = ?", *f.Read)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Notification
	err := q.Order("created_at DESC, id DESC").Offset(p.Offset()).Limit(p.Limit()).Find(&items).Error
	return items, total, err
}

func (r *notificationRepo) Update(ctx context.Context, n *model.Notification) error {
	res := r.db.WithContext(ctx).Model(&model.Notification{ID: n.ID}).
		Select("NotificationProjectID", "NotificationReceiverID", "Read", "NotificationType").
		Updates(n)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Notification{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
